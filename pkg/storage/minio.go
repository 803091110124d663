package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// MinioAPI is the subset of the minio client the backend calls
type MinioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Minio uploads to a MinIO bucket
type Minio struct {
	client MinioAPI
	bucket string
	logger logger.Logger
}

// NewMinio connects with static access keys
func NewMinio(cfg config.MinioConfig, log logger.Logger) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, "create minio client", err)
	}
	return NewMinioWithClient(client, cfg.Bucket, log), nil
}

// NewMinioWithClient creates the backend around an existing client
func NewMinioWithClient(client MinioAPI, bucket string, log logger.Logger) *Minio {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Minio{
		client: client,
		bucket: bucket,
		logger: log.WithFields(map[string]interface{}{
			"backend": config.BackendMinio,
			"bucket":  bucket,
		}),
	}
}

func (m *Minio) Name() string { return config.BackendMinio }

func (m *Minio) EnsureFolder(ctx context.Context, folder string) error {
	ok, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return m.wrap("bucket exists", err)
	}
	if !ok {
		return errs.New(errs.ErrorTypeNotFound, "bucket exists", fmt.Sprintf("bucket %q does not exist", m.bucket))
	}
	return nil
}

func (m *Minio) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectName(remotePath), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, m.wrap("stat object", err)
	}
	return true, nil
}

func (m *Minio) Upload(ctx context.Context, remotePath string, data []byte) error {
	name := objectName(remotePath)
	opts := minio.PutObjectOptions{ContentType: contentType(data)}
	// If-None-Match: * makes the server refuse to replace an existing object
	opts.SetMatchETagExcept("*")

	info, err := m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "PreconditionFailed" {
			return fmt.Errorf("put object %s: %w", name, ErrAlreadyExists)
		}
		return m.wrap("put object", err)
	}

	m.logger.DebugWithFields("object stored", map[string]interface{}{
		"key":  name,
		"size": info.Size,
		"etag": info.ETag,
	})
	return nil
}

func (m *Minio) wrap(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return errs.Network(op, err)
	}
	return &errs.Error{Type: errs.FromStatus(resp.StatusCode), Op: op, Code: resp.StatusCode, Message: resp.Message, Err: err}
}

func objectName(remotePath string) string {
	return strings.TrimLeft(remotePath, "/")
}
