package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#5FAFFF")
	green   = lipgloss.Color("#5FD75F")
	orange  = lipgloss.Color("#FFAF5F")
	red     = lipgloss.Color("#FF5F5F")
	dimGray = lipgloss.Color("#8A8A8A")

	titleStyle = lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	uploadedStyle = lipgloss.NewStyle().Foreground(green)
	skippedStyle  = lipgloss.NewStyle().Foreground(dimGray)
	failedStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(orange)

	logTimestampStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			PaddingTop(1)
)

func levelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR":
		return failedStyle
	case "WARN":
		return warningStyle
	case "SUCCESS":
		return uploadedStyle
	default:
		return skippedStyle
	}
}
