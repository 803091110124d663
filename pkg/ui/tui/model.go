package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vkbackup/pkg/models"
)

const (
	maxRecentItems = 8
	maxLogMessages = 5
)

// LogMessage is a line shown under the upload list
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model of an upload run
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	folder   string
	backend  string
	total    int
	uploaded int
	skipped  int
	failed   int
	bytes    int64
	recent   []models.UploadResult

	logMessages []LogMessage
	startTime   time.Time
	width       int
	done        bool
	cancelled   bool
	onCancel    func()
}

// NewModel creates a model for uploads into folder on backend. onCancel is
// called when the user quits before the run is done.
func NewModel(folder, backend string, onCancel func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	return &Model{
		spinner:   s,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		folder:    folder,
		backend:   backend,
		startTime: time.Now(),
		onCancel:  onCancel,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetTotal sets the number of photos in the batch
func (m *Model) SetTotal(total int) {
	m.total = total
}

// Record adds a finished upload
func (m *Model) Record(result models.UploadResult) {
	switch result.Outcome {
	case models.OutcomeUploaded:
		m.uploaded++
		m.bytes += int64(result.Bytes)
	case models.OutcomeSkipped:
		m.skipped++
	case models.OutcomeFailed:
		m.failed++
		if result.Err != nil {
			m.AddLogMessage("ERROR", result.Photo.FileName+": "+result.Err.Error())
		}
	}

	m.recent = append(m.recent, result)
	if len(m.recent) > maxRecentItems {
		m.recent = m.recent[len(m.recent)-maxRecentItems:]
	}
}

// AddLogMessage keeps the last few log lines
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})
	if len(m.logMessages) > maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-maxLogMessages:]
	}
}

// Finished is the number of photos processed in any way
func (m *Model) Finished() int {
	return m.uploaded + m.skipped + m.failed
}

// Percent is the finished fraction of the batch
func (m *Model) Percent() float64 {
	if m.total <= 0 {
		if m.done {
			return 1
		}
		return 0
	}
	p := float64(m.Finished()) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// Cancelled reports whether the user quit before the run finished
func (m *Model) Cancelled() bool {
	return m.cancelled
}
