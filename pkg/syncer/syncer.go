package syncer

import (
	"context"
	"fmt"
	"time"

	"vkbackup/internal/uploader"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/ledger"
	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
	"vkbackup/pkg/retry"
	"vkbackup/pkg/storage"
	"vkbackup/pkg/ui"
	"vkbackup/pkg/vk"
)

// RunConfig is everything one run needs from the user. It is built once by
// the entry point; DestToken may be filled in after Collect.
type RunConfig struct {
	UserID      string
	AlbumID     string
	Count       int
	SourceToken string
	DestToken   string
}

// Validate checks the run inputs before any request is made
func (rc RunConfig) Validate() error {
	const op = "run config"
	switch {
	case rc.UserID == "":
		return errs.Config(op, "user id is required")
	case rc.AlbumID == "":
		return errs.Config(op, "album id is required")
	case rc.Count < 1 || rc.Count > config.MaxPhotoCount:
		return errs.Config(op, fmt.Sprintf("count must be between 1 and %d, got %d", config.MaxPhotoCount, rc.Count))
	case rc.SourceToken == "":
		return errs.Config(op, "source access token is required")
	}
	return nil
}

// Batch is the outcome of the collect phase
type Batch struct {
	// Fetched is every photo returned by the source, in source order
	Fetched []models.PhotoRecord
	// Added are the fetched photos that were new to the ledger
	Added []models.PhotoRecord
	// LedgerTotal is the ledger size after the merge
	LedgerTotal int
}

// Summary reports a finished run
type Summary struct {
	Fetched     int
	Added       int
	LedgerTotal int
	Uploaded    int
	Skipped     int
	Failed      int
	Bytes       int64
	Duration    time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("fetched %d, new in ledger %d, uploaded %d, skipped %d",
		s.Fetched, s.Added, s.Uploaded, s.Skipped)
}

// Syncer backs up one album: it lists the photos, records them in the ledger
// and uploads each to the destination
type Syncer struct {
	source     PhotoSource
	ledger     *ledger.Ledger
	newBackend BackendFactory
	folder     string
	workers    int
	retry      *retry.Config
	reporter   ui.Reporter
	notifier   *ui.Notifier
	logger     logger.Logger
}

// Option customises a Syncer
type Option func(*Syncer)

// WithSource replaces the VK client
func WithSource(src PhotoSource) Option {
	return func(s *Syncer) { s.source = src }
}

// WithBackendFactory replaces the configured destination
func WithBackendFactory(f BackendFactory) Option {
	return func(s *Syncer) { s.newBackend = f }
}

// WithReporter sets where per-photo progress goes
func WithReporter(r ui.Reporter) Option {
	return func(s *Syncer) { s.reporter = r }
}

// WithNotifier enables completion notifications
func WithNotifier(n *ui.Notifier) Option {
	return func(s *Syncer) { s.notifier = n }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// New creates a Syncer from the application config
func New(cfg *config.Config, opts ...Option) *Syncer {
	s := &Syncer{
		folder:   cfg.Destination.Folder,
		workers:  cfg.Download.ConcurrentUploads,
		reporter: ui.NopReporter{},
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "syncer")

	if s.source == nil {
		s.source = vk.NewClient(cfg.VK, cfg.Download.Timeout, s.logger)
	}
	if s.newBackend == nil {
		dest := cfg.Destination
		timeout := cfg.Download.Timeout
		log := s.logger
		s.newBackend = func(ctx context.Context, token string) (storage.Backend, error) {
			return storage.New(ctx, dest, storage.Options{Token: token, Timeout: timeout, Logger: log})
		}
	}
	s.ledger = ledger.New(cfg.Ledger.Path, s.logger)
	s.retry = retry.FromSettings(cfg.Retry, s.logger)
	return s
}

// SetReporter replaces the progress reporter. Used when the display can only
// start after the interactive prompts are done.
func (s *Syncer) SetReporter(r ui.Reporter) {
	if r == nil {
		r = ui.NopReporter{}
	}
	s.reporter = r
}

// Run performs Collect then Upload
func (s *Syncer) Run(ctx context.Context, rc RunConfig) (*Summary, error) {
	batch, err := s.Collect(ctx, rc)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, rc, batch)
}

// Collect fetches the album, merges it into the ledger and persists the
// ledger. A missing or unreadable ledger counts as empty.
func (s *Syncer) Collect(ctx context.Context, rc RunConfig) (*Batch, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("Fetching photos", map[string]interface{}{
		"user_id":  rc.UserID,
		"album_id": rc.AlbumID,
		"count":    rc.Count,
	})

	fetched, err := s.source.FetchPhotos(ctx, rc.UserID, rc.SourceToken, rc.Count, rc.AlbumID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}

	existing := s.ledger.Load()
	merged, added := ledger.Merge(existing, fetched)
	if err := s.ledger.Persist(merged); err != nil {
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	s.logger.InfoWithFields("Ledger updated", map[string]interface{}{
		"path":    s.ledger.Path(),
		"fetched": len(fetched),
		"added":   len(added),
		"total":   len(merged),
	})

	return &Batch{Fetched: fetched, Added: added, LedgerTotal: len(merged)}, nil
}

// Upload sends every fetched photo to the destination, not only the ones
// new to the ledger. Photos already present remotely are skipped. The first
// failure stops the batch; the ledger written by Collect is kept.
func (s *Syncer) Upload(ctx context.Context, rc RunConfig, batch *Batch) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		Fetched:     len(batch.Fetched),
		Added:       len(batch.Added),
		LedgerTotal: batch.LedgerTotal,
	}

	defer s.reporter.Done()

	backend, err := s.newBackend(ctx, rc.DestToken)
	if err != nil {
		return summary, fmt.Errorf("failed to open destination: %w", err)
	}

	up := uploader.New(s.source, backend, s.retry, s.logger)
	if err := up.EnsureFolder(ctx, s.folder); err != nil {
		s.notifyFailure(summary, err)
		return summary, err
	}

	s.reporter.SetTotal(len(batch.Fetched))
	pool := uploader.NewWorkerPool(s.workers, up, s.logger)
	err = pool.Run(ctx, s.folder, batch.Fetched, func(r models.UploadResult) {
		switch r.Outcome {
		case models.OutcomeUploaded:
			summary.Uploaded++
			summary.Bytes += int64(r.Bytes)
		case models.OutcomeSkipped:
			summary.Skipped++
		case models.OutcomeFailed:
			summary.Failed++
		}
		s.reporter.FinishUpload(r)
		logger.LogSyncProgress(s.logger, summary.Uploaded+summary.Skipped+summary.Failed, summary.Fetched)
	})
	summary.Duration = time.Since(start)

	if err != nil {
		s.notifyFailure(summary, err)
		return summary, err
	}

	s.logger.InfoWithFields("Sync completed", map[string]interface{}{
		"backend":  backend.Name(),
		"folder":   s.folder,
		"fetched":  summary.Fetched,
		"added":    summary.Added,
		"uploaded": summary.Uploaded,
		"skipped":  summary.Skipped,
		"duration": summary.Duration.String(),
	})
	if s.notifier != nil {
		s.notifier.SendSuccess("Backup complete", summary.String())
	}
	return summary, nil
}

func (s *Syncer) notifyFailure(summary *Summary, err error) {
	s.logger.WithError(err).WithFields(map[string]interface{}{
		"uploaded": summary.Uploaded,
		"skipped":  summary.Skipped,
	}).Error("Sync aborted")
	if s.notifier != nil {
		s.notifier.SendError("Backup stopped", fmt.Sprintf("%d of %d photos done before the failure",
			summary.Uploaded+summary.Skipped, summary.Fetched))
	}
}
