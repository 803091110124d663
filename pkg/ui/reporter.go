package ui

import "vkbackup/pkg/models"

// Reporter receives per-photo progress from a sync run. ProgressDisplay and
// tui.TUI implement it.
type Reporter interface {
	SetTotal(total int)
	FinishUpload(result models.UploadResult)
	Done()
}

// NopReporter discards progress
type NopReporter struct{}

func (NopReporter) SetTotal(int)                     {}
func (NopReporter) FinishUpload(models.UploadResult) {}
func (NopReporter) Done()                            {}
