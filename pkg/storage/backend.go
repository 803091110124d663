package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// ErrAlreadyExists is returned by Upload when the destination refuses to
// overwrite an existing file. Callers treat it as a skip.
var ErrAlreadyExists = errors.New("remote file already exists")

// Backend is a destination photos are uploaded to
type Backend interface {
	// Name identifies the backend in logs and summaries
	Name() string
	// EnsureFolder creates folder if it does not exist. It is idempotent.
	EnsureFolder(ctx context.Context, folder string) error
	// Exists reports whether a file is already stored at remotePath
	Exists(ctx context.Context, remotePath string) (bool, error)
	// Upload stores data at remotePath without overwriting
	Upload(ctx context.Context, remotePath string, data []byte) error
}

// Options carries what the factory needs besides the destination section
type Options struct {
	// Token authorizes the Yandex.Disk backend
	Token   string
	Timeout time.Duration
	Logger  logger.Logger
}

// RemotePath joins a folder and a file name the way every backend addresses
// files: "vk_photos" and "12_1700000000.jpg" give "vk_photos/12_1700000000.jpg".
func RemotePath(folder, fileName string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return fileName
	}
	return path.Join(folder, fileName)
}

// New builds the backend selected by cfg.Backend
func New(ctx context.Context, cfg config.DestinationConfig, opts Options) (Backend, error) {
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}

	switch cfg.Backend {
	case config.BackendYandex, "":
		if opts.Token == "" {
			return nil, errs.Config("yandex backend", "destination token is required")
		}
		return NewYandex(cfg.Yandex, opts.Token, opts.Timeout, opts.Logger), nil
	case config.BackendS3:
		return NewS3(ctx, cfg.S3, opts.Logger)
	case config.BackendMinio:
		return NewMinio(cfg.Minio, opts.Logger)
	case config.BackendLocal:
		return NewLocal(cfg.Local.Root, opts.Logger)
	default:
		return nil, errs.Config("storage", fmt.Sprintf("unknown backend %q", cfg.Backend))
	}
}

func contentType(data []byte) string {
	return mimetype.Detect(data).String()
}
