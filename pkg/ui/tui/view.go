package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vkbackup/pkg/models"
	"vkbackup/pkg/ui"
)

// View renders the dashboard
func (m *Model) View() string {
	sections := []string{
		titleStyle.Render(fmt.Sprintf("vkbackup → %s:%s", m.backend, m.folder)),
		m.renderProgress(),
		m.renderStats(),
	}

	if len(m.recent) > 0 {
		sections = append(sections, panelStyle.Render(m.renderRecent()))
	}
	if len(m.logMessages) > 0 {
		sections = append(sections, m.renderLogs())
	}
	if !m.done {
		sections = append(sections, helpStyle.Render("q: cancel"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *Model) renderProgress() string {
	status := m.spinner.View() + " uploading"
	if m.done {
		status = uploadedStyle.Render("✓ done")
	}
	if m.cancelled {
		status = warningStyle.Render("cancelled")
	}
	return fmt.Sprintf("%s %s %d/%d", m.bar.ViewAs(m.Percent()), status, m.Finished(), m.total)
}

func (m *Model) renderStats() string {
	stat := func(label, value string) string {
		return statsLabelStyle.Render(label+": ") + statsValueStyle.Render(value)
	}
	return strings.Join([]string{
		stat("uploaded", fmt.Sprintf("%d", m.uploaded)),
		stat("skipped", fmt.Sprintf("%d", m.skipped)),
		stat("failed", fmt.Sprintf("%d", m.failed)),
		stat("sent", ui.FormatBytes(m.bytes)),
	}, "  ")
}

func (m *Model) renderRecent() string {
	lines := make([]string, 0, len(m.recent))
	for _, r := range m.recent {
		switch r.Outcome {
		case models.OutcomeUploaded:
			lines = append(lines, uploadedStyle.Render("✓ ")+r.RemotePath+" "+skippedStyle.Render(ui.FormatBytes(int64(r.Bytes))))
		case models.OutcomeSkipped:
			lines = append(lines, skippedStyle.Render("= "+r.RemotePath+" exists"))
		case models.OutcomeFailed:
			lines = append(lines, failedStyle.Render("✗ ")+r.RemotePath)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderLogs() string {
	lines := make([]string, 0, len(m.logMessages))
	for _, l := range m.logMessages {
		lines = append(lines, logTimestampStyle.Render(l.Time.Format("15:04:05"))+" "+levelStyle(l.Level).Render(l.Message))
	}
	return strings.Join(lines, "\n")
}
