package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	primaryColor   = lipgloss.Color("39")  // Cyan
	successColor   = lipgloss.Color("82")  // Green
	warningColor   = lipgloss.Color("214") // Orange
	errorColor     = lipgloss.Color("196") // Red
	dimColor       = lipgloss.Color("240") // Gray
	userColor      = lipgloss.Color("255") // White
	assistantColor = lipgloss.Color("252") // Light gray
	barColor       = lipgloss.Color("236")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(userColor).
			Background(barColor).
			Padding(0, 1)

	headerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	headerDimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	headerValueStyle = lipgloss.NewStyle().
				Foreground(successColor)

	footerStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Background(barColor).
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(successColor).
				Bold(true)

	userPrefixStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(assistantColor)

	commandStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	tierStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	editorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)

	editorTitleStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)
)

// Icons
const (
	iconCommand = "⚡"
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "ℹ"
	iconWarning = "⚠"
	iconUser    = ">"
)

// truncate cuts s to maxLen runes, adding "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
