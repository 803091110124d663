package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"vkbackup/pkg/models"
)

// ProgressDisplay prints a single self-updating progress line, one step per
// finished photo. In verbose mode every photo gets its own line instead.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	bar     progress.Model
	tracker *StatusTracker
	current string
	verbose bool
}

// NewProgressDisplay creates a display for total photos
func NewProgressDisplay(out io.Writer, label string, total int, verbose bool) *ProgressDisplay {
	if out == nil {
		out = Stdout
	}
	return &ProgressDisplay{
		out:     out,
		label:   label,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		tracker: NewStatusTracker(total),
		verbose: verbose,
	}
}

// SetTotal updates the number of photos expected
func (p *ProgressDisplay) SetTotal(total int) {
	p.tracker.SetTotal(total)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.verbose {
		p.printProgress()
	}
}

// FinishUpload records a finished photo and redraws
func (p *ProgressDisplay) FinishUpload(result models.UploadResult) {
	p.tracker.Record(result)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = result.Photo.FileName
	if p.verbose {
		p.printResult(result)
		return
	}
	p.printProgress()
}

// Done finishes the progress line
func (p *ProgressDisplay) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.verbose {
		p.current = ""
		p.printProgress()
		fmt.Fprintln(p.out)
	}
}

// Snapshot returns the counters seen so far
func (p *ProgressDisplay) Snapshot() Snapshot {
	return p.tracker.Snapshot()
}

// Line renders the progress line without printing it
func (p *ProgressDisplay) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *ProgressDisplay) line() string {
	s := p.tracker.Snapshot()

	line := fmt.Sprintf("%s %s %d/%d • %.1f/min • %s",
		Cyan(p.label),
		p.bar.ViewAs(s.Percent()),
		s.Done(),
		s.Total,
		s.Rate(),
		FormatBytes(s.Bytes),
	)
	if p.current != "" {
		line += fmt.Sprintf(" • %s", p.current)
	}
	if s.Failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", s.Failed)))
	}
	return line
}

func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 120), p.line())
}

func (p *ProgressDisplay) printResult(result models.UploadResult) {
	switch result.Outcome {
	case models.OutcomeUploaded:
		fmt.Fprintf(p.out, "%s %s • %s\n", Green("✓"), result.RemotePath, FormatBytes(int64(result.Bytes)))
	case models.OutcomeSkipped:
		fmt.Fprintf(p.out, "%s %s • %s\n", Dim("="), result.RemotePath, Dim("exists"))
	case models.OutcomeFailed:
		fmt.Fprintf(p.out, "%s %s • %v\n", Red("✗"), result.RemotePath, result.Err)
	}
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// FormatBytes formats bytes in a human-readable way
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
