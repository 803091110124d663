package uploader

import (
	"context"
	"errors"
	"sync"

	"vkbackup/pkg/logger"
	"vkbackup/pkg/models"
	"vkbackup/pkg/storage"
)

// Job is a single photo waiting to be uploaded
type Job struct {
	Index int
	Photo models.PhotoRecord
}

// WorkerPool uploads a batch with a bounded number of workers. With one
// worker photos are processed strictly in order.
type WorkerPool struct {
	numWorkers int
	uploader   *Uploader
	logger     logger.Logger

	mu      sync.Mutex
	claimed map[string]bool
}

// NewWorkerPool creates a pool; numWorkers below 1 means 1
func NewWorkerPool(numWorkers int, uploader *Uploader, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		uploader:   uploader,
		logger:     log.WithField("component", "worker_pool"),
		claimed:    make(map[string]bool),
	}
}

// Run uploads photos into folder and calls onResult for every processed
// photo. The first failure cancels the remaining batch and is returned;
// photos that were never started are not reported.
func (wp *WorkerPool) Run(ctx context.Context, folder string, photos []models.PhotoRecord, onResult func(models.UploadResult)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.mu.Lock()
	wp.claimed = make(map[string]bool)
	wp.mu.Unlock()

	jobQueue := make(chan Job)
	resultQueue := make(chan models.UploadResult, wp.numWorkers)

	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
		"photos":      len(photos),
	})

	var wg sync.WaitGroup
	for i := 0; i < wp.numWorkers; i++ {
		wg.Add(1)
		go wp.worker(ctx, cancel, i, folder, jobQueue, resultQueue, &wg)
	}

	go func() {
		defer close(jobQueue)
		for i, photo := range photos {
			select {
			case jobQueue <- Job{Index: i, Photo: photo}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultQueue)
	}()

	var firstErr error
	for result := range resultQueue {
		if onResult != nil {
			onResult(result)
		}
		// a worker interrupted by the cancellation may report before the
		// worker whose failure caused it
		if result.Outcome == models.OutcomeFailed && (firstErr == nil || errors.Is(firstErr, context.Canceled)) {
			firstErr = result.Err
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (wp *WorkerPool) worker(ctx context.Context, cancel context.CancelFunc, id int, folder string, jobs <-chan Job, results chan<- models.UploadResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		}

		result := wp.process(ctx, id, folder, job)
		if result.Outcome == models.OutcomeFailed {
			cancel()
		}
		results <- result
	}
}

// process claims the remote path so two photos sharing a file name are
// never uploaded concurrently; the later one is reported as skipped.
func (wp *WorkerPool) process(ctx context.Context, id int, folder string, job Job) models.UploadResult {
	remotePath := storage.RemotePath(folder, job.Photo.FileName)

	wp.mu.Lock()
	taken := wp.claimed[remotePath]
	wp.claimed[remotePath] = true
	wp.mu.Unlock()

	if taken && wp.numWorkers > 1 {
		wp.logger.DebugWithFields("Remote path already claimed in this batch", map[string]interface{}{
			"worker_id":   id,
			"remote_path": remotePath,
		})
		return models.UploadResult{Photo: job.Photo, RemotePath: remotePath, Outcome: models.OutcomeSkipped}
	}

	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": id,
		"index":     job.Index,
		"file_name": job.Photo.FileName,
	})
	return wp.uploader.UploadPhoto(ctx, folder, job.Photo)
}
