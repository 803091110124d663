package syncer

import (
	"context"

	"vkbackup/pkg/models"
	"vkbackup/pkg/storage"
)

// PhotoSource lists an album and downloads photo renditions
type PhotoSource interface {
	FetchPhotos(ctx context.Context, userID, accessToken string, count int, albumID string) ([]models.PhotoRecord, error)
	DownloadPhoto(ctx context.Context, url string) ([]byte, error)
}

// BackendFactory opens the destination once the destination token is known
type BackendFactory func(ctx context.Context, destToken string) (storage.Backend, error)
