package ui

import (
	"sync"
	"time"

	"vkbackup/pkg/models"
)

// StatusTracker counts upload outcomes for one run
type StatusTracker struct {
	mu        sync.Mutex
	total     int
	uploaded  int
	skipped   int
	failed    int
	bytes     int64
	startTime time.Time
}

// NewStatusTracker creates a tracker for total photos
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Record adds one finished photo
func (st *StatusTracker) Record(result models.UploadResult) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch result.Outcome {
	case models.OutcomeUploaded:
		st.uploaded++
		st.bytes += int64(result.Bytes)
	case models.OutcomeSkipped:
		st.skipped++
	case models.OutcomeFailed:
		st.failed++
	}
}

// SetTotal changes the number of photos expected
func (st *StatusTracker) SetTotal(total int) {
	st.mu.Lock()
	st.total = total
	st.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Total    int
	Uploaded int
	Skipped  int
	Failed   int
	Bytes    int64
	Elapsed  time.Duration
}

// Done is the number of photos finished in any way
func (s Snapshot) Done() int {
	return s.Uploaded + s.Skipped + s.Failed
}

// Percent is the finished fraction in [0, 1]. An empty batch is complete.
func (s Snapshot) Percent() float64 {
	if s.Total <= 0 {
		return 1
	}
	p := float64(s.Done()) / float64(s.Total)
	if p > 1 {
		p = 1
	}
	return p
}

// Rate is finished photos per minute
func (s Snapshot) Rate() float64 {
	minutes := s.Elapsed.Minutes()
	if minutes == 0 {
		return 0
	}
	return float64(s.Done()) / minutes
}

// Snapshot returns the current counters
func (st *StatusTracker) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return Snapshot{
		Total:    st.total,
		Uploaded: st.uploaded,
		Skipped:  st.skipped,
		Failed:   st.failed,
		Bytes:    st.bytes,
		Elapsed:  time.Since(st.startTime),
	}
}
