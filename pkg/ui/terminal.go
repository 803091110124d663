package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Logo printed at the top of an interactive run
const Logo = `
 ╭──────────────────────────────────────────╮
 │  vkbackup · VK photos → cloud storage     │
 ╰──────────────────────────────────────────╯
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Color functions for terminal output
var (
	Cyan    = colorize(cyanStyle)
	Yellow  = colorize(yellowStyle)
	Red     = colorize(redStyle)
	Green   = colorize(greenStyle)
	Magenta = colorize(magentaStyle)
	Dim     = colorize(dimStyle)
)

// Stdout and Stderr are where the Print helpers write; tests swap them
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func colorize(style lipgloss.Style) func(string) string {
	return func(text string) string {
		return style.Render(text)
	}
}

// PrintLogo prints the logo with color
func PrintLogo() {
	fmt.Fprint(Stdout, Cyan(Logo))
}

// PrintError prints an error message in red to stderr
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Stderr, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Stderr, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Stdout, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Stdout, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Stdout, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Stdout, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Stdout, Magenta(msg))
}
