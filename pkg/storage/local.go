package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// Local stores photos in a directory tree. Useful for dry runs and for
// mirroring to a mounted drive.
type Local struct {
	fs     billy.Filesystem
	logger logger.Logger
}

// NewLocal roots the backend at dir, creating it when missing
func NewLocal(root string, log logger.Logger) (*Local, error) {
	if root == "" {
		return nil, errs.Config("local backend", "root directory is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return NewLocalWithFS(osfs.New(root), log), nil
}

// NewLocalWithFS wraps an existing filesystem such as memfs
func NewLocalWithFS(fs billy.Filesystem, log logger.Logger) *Local {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Local{
		fs:     fs,
		logger: log.WithFields(map[string]interface{}{"backend": config.BackendLocal, "root": fs.Root()}),
	}
}

func (l *Local) Name() string { return config.BackendLocal }

func (l *Local) EnsureFolder(ctx context.Context, folder string) error {
	if err := l.fs.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", folder, err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := l.fs.Stat(remotePath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", remotePath, err)
}

// Upload writes to a temporary file in the target folder and renames it
// into place
func (l *Local) Upload(ctx context.Context, remotePath string, data []byte) error {
	if ok, err := l.Exists(ctx, remotePath); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("write %s: %w", remotePath, ErrAlreadyExists)
	}

	dir := path.Dir(remotePath)
	if err := l.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", dir, err)
	}

	tmp, err := util.TempFile(l.fs, dir, ".upload-")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err != nil {
		l.fs.Remove(tmpName)
		return fmt.Errorf("failed to save photo data: %w", err)
	}
	if closeErr != nil {
		l.fs.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := l.fs.Rename(tmpName, remotePath); err != nil {
		l.fs.Remove(tmpName)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	l.logger.DebugWithFields("file stored", map[string]interface{}{
		"path": remotePath,
		"size": len(data),
	})
	return nil
}
