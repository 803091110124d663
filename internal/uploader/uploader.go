package uploader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
	"vkbackup/pkg/retry"
	"vkbackup/pkg/storage"
)

// PhotoDownloader fetches the bytes of a photo rendition
type PhotoDownloader interface {
	DownloadPhoto(ctx context.Context, url string) ([]byte, error)
}

// Uploader copies photos from the source CDN to a destination backend
type Uploader struct {
	source PhotoDownloader
	dest   storage.Backend
	retry  *retry.Config
	logger logger.Logger
}

// New creates an Uploader. A nil retry config makes a single attempt.
func New(source PhotoDownloader, dest storage.Backend, retryCfg *retry.Config, log logger.Logger) *Uploader {
	if log == nil {
		log = logger.GetLogger()
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &Uploader{
		source: source,
		dest:   dest,
		retry:  retryCfg,
		logger: log.WithField("component", "uploader"),
	}
}

// EnsureFolder creates the destination folder if needed
func (u *Uploader) EnsureFolder(ctx context.Context, folder string) error {
	err := retry.Do(ctx, func() error {
		return u.dest.EnsureFolder(ctx, folder)
	}, u.retry)
	if err != nil {
		return fmt.Errorf("ensure folder %s: %w", folder, err)
	}
	return nil
}

// UploadPhoto stores photo at folder/file_name. When a file with that name
// already exists the photo is skipped without being downloaded.
func (u *Uploader) UploadPhoto(ctx context.Context, folder string, photo models.PhotoRecord) models.UploadResult {
	start := time.Now()
	result := models.UploadResult{
		Photo:      photo,
		RemotePath: storage.RemotePath(folder, photo.FileName),
	}

	exists, err := retry.DoWithResult(ctx, func() (bool, error) {
		return u.dest.Exists(ctx, result.RemotePath)
	}, u.retry)
	if err != nil {
		return u.fail(result, fmt.Errorf("check %s: %w", result.RemotePath, err))
	}
	if exists {
		result.Outcome = models.OutcomeSkipped
		logger.LogUpload(u.logger, photo.FileName, result.RemotePath, false, nil)
		return result
	}

	data, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		return u.source.DownloadPhoto(ctx, photo.URL)
	}, u.retry)
	if err != nil {
		return u.fail(result, fmt.Errorf("download %s: %w", photo.FileName, err))
	}
	result.Bytes = len(data)

	err = retry.Do(ctx, func() error {
		return u.dest.Upload(ctx, result.RemotePath, data)
	}, u.retry)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		result.Outcome = models.OutcomeSkipped
		logger.LogUpload(u.logger, photo.FileName, result.RemotePath, false, nil)
		return result
	case err != nil:
		return u.fail(result, fmt.Errorf("upload %s: %w", photo.FileName, err))
	}

	result.Outcome = models.OutcomeUploaded
	u.logger.DebugWithFields("photo uploaded", map[string]interface{}{
		"file_name": photo.FileName,
		"size":      result.Bytes,
		"duration":  time.Since(start).String(),
	})
	logger.LogUpload(u.logger, photo.FileName, result.RemotePath, true, nil)
	return result
}

func (u *Uploader) fail(result models.UploadResult, err error) models.UploadResult {
	result.Outcome = models.OutcomeFailed
	result.Err = err
	logger.LogUpload(u.logger, result.Photo.FileName, result.RemotePath, false, err)
	return result
}
