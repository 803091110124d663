package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

// S3API is the subset of the S3 client the backend calls
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads to an S3 bucket. Folders are key prefixes.
type S3 struct {
	client S3API
	bucket string
	prefix string
	logger logger.Logger
}

// NewS3 loads AWS credentials from the default chain and creates the backend
func NewS3(ctx context.Context, cfg config.S3Config, log logger.Logger) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, "load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

// NewS3WithClient creates the backend around an existing client
func NewS3WithClient(client S3API, bucket, prefix string, log logger.Logger) *S3 {
	if log == nil {
		log = logger.GetLogger()
	}
	return &S3{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: log.WithFields(map[string]interface{}{
			"backend": config.BackendS3,
			"bucket":  bucket,
		}),
	}
}

func (b *S3) Name() string { return config.BackendS3 }

// EnsureFolder only verifies the bucket is reachable; S3 has no directories
func (b *S3) EnsureFolder(ctx context.Context, folder string) error {
	if _, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)}); err != nil {
		return b.wrap("head bucket", err)
	}
	return nil
}

func (b *S3) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(remotePath)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, b.wrap("head object", err)
	}
	return true, nil
}

// Upload writes the object with If-None-Match so an existing key is kept
func (b *S3) Upload(ctx context.Context, remotePath string, data []byte) error {
	key := b.key(remotePath)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(data)),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if apiCode(err) == "PreconditionFailed" {
			return fmt.Errorf("put object %s: %w", key, ErrAlreadyExists)
		}
		return b.wrap("put object", err)
	}

	b.logger.DebugWithFields("object stored", map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
	return nil
}

func (b *S3) key(remotePath string) string {
	if b.prefix == "" {
		return strings.TrimLeft(remotePath, "/")
	}
	return path.Join(b.prefix, remotePath)
}

func (b *S3) wrap(op string, err error) error {
	code := apiCode(err)
	t := errs.ErrorTypeNetwork
	switch code {
	case "":
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden":
		t = errs.ErrorTypeAuth
	case "NoSuchBucket", "NotFound":
		t = errs.ErrorTypeNotFound
	case "SlowDown":
		t = errs.ErrorTypeRateLimit
	default:
		t = errs.ErrorTypeRemoteAPI
	}
	return errs.Wrap(t, op, err)
}

// isS3NotFound matches both the modelled NotFound of HeadObject and the
// bare NoSuchKey some compatible stores return
func isS3NotFound(err error) bool {
	switch apiCode(err) {
	case "NotFound", "NoSuchKey":
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}

func apiCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
