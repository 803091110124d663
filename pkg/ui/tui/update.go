package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"vkbackup/pkg/models"
)

// TotalMsg sets the batch size
type TotalMsg struct {
	Total int
}

// ResultMsg reports one finished photo
type ResultMsg struct {
	Result models.UploadResult
}

// LogMsg adds a log line
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg ends the program after the final frame
type DoneMsg struct{}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TotalMsg:
		m.SetTotal(msg.Total)
		return m, nil

	case ResultMsg:
		m.Record(msg.Result)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if !m.done {
			m.cancelled = true
			m.AddLogMessage("WARN", "Cancelled by user")
			if m.onCancel != nil {
				m.onCancel()
			}
		}
		return m, tea.Quit
	}
	return m, nil
}
