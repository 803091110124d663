package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vkbackup/pkg/models"
)

// TUI runs the dashboard in the terminal and implements ui.Reporter
type TUI struct {
	program *tea.Program
	model   *Model
	exited  chan error
}

// New creates the dashboard. onCancel is invoked if the user quits early.
func New(folder, backend string, onCancel func()) *TUI {
	return NewWithIO(folder, backend, onCancel, os.Stdin, os.Stdout)
}

// NewWithIO is New with explicit terminal streams
func NewWithIO(folder, backend string, onCancel func(), in io.Reader, out io.Writer) *TUI {
	model := NewModel(folder, backend, onCancel)
	return &TUI{
		program: tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out)),
		model:   model,
		exited:  make(chan error, 1),
	}
}

// Start runs the program in the background
func (t *TUI) Start() {
	go func() {
		_, err := t.program.Run()
		t.exited <- err
	}()
}

// SetTotal implements ui.Reporter
func (t *TUI) SetTotal(total int) {
	t.program.Send(TotalMsg{Total: total})
}

// FinishUpload implements ui.Reporter
func (t *TUI) FinishUpload(result models.UploadResult) {
	t.program.Send(ResultMsg{Result: result})
}

// Log adds a line to the dashboard
func (t *TUI) Log(level, message string) {
	t.program.Send(LogMsg{Level: level, Message: message})
}

// Done renders the final frame and waits for the program to exit
func (t *TUI) Done() {
	t.program.Send(DoneMsg{})
	<-t.exited
}
