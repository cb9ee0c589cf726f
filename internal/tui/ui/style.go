// Package ui provides shared terminal styling for the study assistant.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette (256-color).
var (
	ClrBrand  = lipgloss.Color("69")  // indigo
	ClrMuted  = lipgloss.Color("245") // gray
	ClrSubtle = lipgloss.Color("242") // darker gray
	ClrGreen  = lipgloss.Color("114") // green
	ClrRed    = lipgloss.Color("203") // red/error
	ClrCyan   = lipgloss.Color("81")  // cyan for sources
	ClrYellow = lipgloss.Color("220") // yellow for warnings
)

// Reusable styles.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Brand   = colored(ClrBrand).Bold(true)
	Muted   = colored(ClrMuted)
	Subtle  = colored(ClrSubtle)
	Green   = colored(ClrGreen)
	Red     = colored(ClrRed)
	Cyan    = colored(ClrCyan)
	Yellow  = colored(ClrYellow)
	Keyword = colored(ClrBrand)
)

// colored returns a foreground style, or a plain one when color is off.
func colored(c lipgloss.Color) lipgloss.Style {
	if !Enabled() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

// Prompt renders the input prompt like "you> " with color.
func Prompt(who string) string {
	return Brand.Render(who+">") + " "
}

// Error formats an error message.
func Error(msg string) string {
	return Red.Render("error: " + msg)
}

// Errorf formats an error with printf-style formatting.
func Errorf(format string, a ...any) string {
	return Error(fmt.Sprintf(format, a...))
}

// Info formats an informational label with details.
func Info(label, detail string) string {
	return Brand.Render(label) + " " + Muted.Render(detail)
}

// Source formats a document-page attribution string.
func Source(text string) string {
	return Cyan.Render(text)
}

// Dim renders dimmed/muted text.
func Dim(text string) string {
	return Subtle.Render(text)
}

// Enabled reports whether color output is enabled.
func Enabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
