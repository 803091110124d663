package uploader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
	"vkbackup/pkg/retry"
)

// MockClient is a mock photo source
type MockClient struct {
	downloadDelay   time.Duration
	downloadError   error
	failURL         string
	downloadCounter int32
}

func (m *MockClient) DownloadPhoto(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt32(&m.downloadCounter, 1)
	if m.downloadDelay > 0 {
		time.Sleep(m.downloadDelay)
	}
	if m.downloadError != nil && (m.failURL == "" || m.failURL == url) {
		return nil, m.downloadError
	}
	return []byte("photo:" + url), nil
}

func (m *MockClient) GetDownloadCount() int {
	return int(atomic.LoadInt32(&m.downloadCounter))
}

// MockBackend is an in-memory destination
type MockBackend struct {
	mu      sync.Mutex
	files   map[string][]byte
	folders map[string]bool
	uploads []string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{files: map[string][]byte{}, folders: map[string]bool{}}
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) EnsureFolder(ctx context.Context, folder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.folders[folder] = true
	return nil
}

func (m *MockBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[remotePath]
	return ok, nil
}

func (m *MockBackend) Upload(ctx context.Context, remotePath string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[remotePath] = data
	m.uploads = append(m.uploads, remotePath)
	return nil
}

func photo(likes int, date int64) models.PhotoRecord {
	return models.PhotoRecord{
		FileName: fmt.Sprintf("%d_%d.jpg", likes, date),
		Size:     "z",
		URL:      fmt.Sprintf("https://cdn.example/%d_%d.jpg", likes, date),
	}
}

func TestUploadPhotoUploadsMissingFile(t *testing.T) {
	client := &MockClient{}
	backend := NewMockBackend()
	u := New(client, backend, nil, logger.NewNopLogger())

	result := u.UploadPhoto(context.Background(), "vk_photos", photo(12, 1700000000))

	assert.Equal(t, models.OutcomeUploaded, result.Outcome)
	assert.Equal(t, "vk_photos/12_1700000000.jpg", result.RemotePath)
	assert.NoError(t, result.Err)
	assert.Equal(t, "photo:https://cdn.example/12_1700000000.jpg", string(backend.files["vk_photos/12_1700000000.jpg"]))
	assert.Equal(t, 1, client.GetDownloadCount())
}

func TestUploadPhotoSkipsExistingWithoutDownloading(t *testing.T) {
	client := &MockClient{}
	backend := NewMockBackend()
	backend.files["vk_photos/12_1700000000.jpg"] = []byte("already there")
	u := New(client, backend, nil, logger.NewNopLogger())

	result := u.UploadPhoto(context.Background(), "vk_photos", photo(12, 1700000000))

	assert.Equal(t, models.OutcomeSkipped, result.Outcome)
	assert.Equal(t, 0, client.GetDownloadCount())
	assert.Empty(t, backend.uploads)
	assert.Equal(t, "already there", string(backend.files["vk_photos/12_1700000000.jpg"]))
}

func TestUploadPhotoNoRetryByDefault(t *testing.T) {
	client := &MockClient{downloadError: errs.Network("download photo", errors.New("connection reset"))}
	u := New(client, NewMockBackend(), nil, logger.NewNopLogger())

	result := u.UploadPhoto(context.Background(), "vk_photos", photo(1, 1))

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.ErrorContains(t, result.Err, "connection reset")
	assert.Equal(t, 1, client.GetDownloadCount())
}

func TestUploadPhotoRetriesWhenConfigured(t *testing.T) {
	client := &MockClient{downloadError: errs.Network("download photo", errors.New("timeout"))}
	cfg := retry.FromSettings(config.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2,
	}, logger.NewNopLogger())
	u := New(client, NewMockBackend(), cfg, logger.NewNopLogger())

	result := u.UploadPhoto(context.Background(), "vk_photos", photo(1, 1))

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Equal(t, 3, client.GetDownloadCount())
}

func TestEnsureFolder(t *testing.T) {
	backend := NewMockBackend()
	u := New(&MockClient{}, backend, nil, logger.NewNopLogger())

	require.NoError(t, u.EnsureFolder(context.Background(), "vk_photos"))
	assert.True(t, backend.folders["vk_photos"])
}

func TestWorkerPoolSequentialOrder(t *testing.T) {
	client := &MockClient{}
	backend := NewMockBackend()
	pool := NewWorkerPool(1, New(client, backend, nil, logger.NewNopLogger()), logger.NewNopLogger())

	photos := []models.PhotoRecord{photo(3, 30), photo(1, 10), photo(2, 20)}
	var results []models.UploadResult
	err := pool.Run(context.Background(), "vk_photos", photos, func(r models.UploadResult) {
		results = append(results, r)
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{
		"vk_photos/3_30.jpg",
		"vk_photos/1_10.jpg",
		"vk_photos/2_20.jpg",
	}, backend.uploads)
}

func TestWorkerPoolDuplicateNamesUploadOnce(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			client := &MockClient{downloadDelay: 5 * time.Millisecond}
			backend := NewMockBackend()
			pool := NewWorkerPool(workers, New(client, backend, nil, logger.NewNopLogger()), logger.NewNopLogger())

			first := photo(5, 50)
			second := first
			second.URL = "https://cdn.example/other.jpg"

			var uploaded, skipped int32
			err := pool.Run(context.Background(), "vk_photos", []models.PhotoRecord{first, second}, func(r models.UploadResult) {
				switch r.Outcome {
				case models.OutcomeUploaded:
					atomic.AddInt32(&uploaded, 1)
				case models.OutcomeSkipped:
					atomic.AddInt32(&skipped, 1)
				}
			})

			require.NoError(t, err)
			assert.Equal(t, int32(1), uploaded)
			assert.Equal(t, int32(1), skipped)
			assert.Len(t, backend.uploads, 1)
		})
	}
}

func TestWorkerPoolStopsOnFirstFailure(t *testing.T) {
	client := &MockClient{
		downloadError: errors.New("boom"),
		failURL:       "https://cdn.example/2_20.jpg",
	}
	backend := NewMockBackend()
	pool := NewWorkerPool(1, New(client, backend, nil, logger.NewNopLogger()), logger.NewNopLogger())

	photos := []models.PhotoRecord{photo(1, 10), photo(2, 20), photo(3, 30), photo(4, 40)}
	var results []models.UploadResult
	err := pool.Run(context.Background(), "vk_photos", photos, func(r models.UploadResult) {
		results = append(results, r)
	})

	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"vk_photos/1_10.jpg"}, backend.uploads)
	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, models.OutcomeFailed, results[1].Outcome)
	assert.LessOrEqual(t, len(results), 3)
}

func TestWorkerPoolConcurrent(t *testing.T) {
	client := &MockClient{downloadDelay: 10 * time.Millisecond}
	backend := NewMockBackend()
	pool := NewWorkerPool(3, New(client, backend, nil, logger.NewNopLogger()), logger.NewNopLogger())

	var photos []models.PhotoRecord
	for i := 0; i < 10; i++ {
		photos = append(photos, photo(i, int64(i)))
	}

	var count int32
	err := pool.Run(context.Background(), "vk_photos", photos, func(r models.UploadResult) {
		atomic.AddInt32(&count, 1)
	})

	require.NoError(t, err)
	assert.Equal(t, int32(10), count)
	assert.Equal(t, 10, client.GetDownloadCount())
	assert.Len(t, backend.files, 10)
}
