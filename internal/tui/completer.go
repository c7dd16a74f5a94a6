package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CommandDef defines a slash command for autocomplete
type CommandDef struct {
	Name        string // e.g., "/help"
	Description string
	ArgHint     string // e.g., "<name>"
}

// BuiltinCommands is the list of all slash commands.
var BuiltinCommands = []CommandDef{
	{Name: "/help", Description: "Show navigation help and commands"},
	{Name: "/context", Description: "Show the current navigation context"},
	{Name: "/save", Description: "Save the editor code", ArgHint: "<name>"},
	{Name: "/files", Description: "List saved sketches"},
	{Name: "/open", Description: "Open a saved sketch in the editor", ArgHint: "<name>"},
	{Name: "/upload", Description: "Send the editor code to the board", ArgHint: "[name]"},
	{Name: "/clear", Description: "Clear the transcript"},
	{Name: "/quit", Description: "Exit"},
}

// Completer provides slash command autocomplete
type Completer struct {
	all      []CommandDef
	filtered []CommandDef
	selected int
	active   bool
}

// NewCompleter creates a Completer over BuiltinCommands
func NewCompleter() *Completer {
	return &Completer{all: BuiltinCommands}
}

// Update filters commands for the current input. Only a bare "/word"
// activates the dropdown.
func (c *Completer) Update(input string) {
	if !strings.HasPrefix(input, "/") || strings.Contains(input, " ") {
		c.Dismiss()
		return
	}

	prefix := strings.ToLower(input)
	var filtered []CommandDef
	for _, cmd := range c.all {
		if strings.HasPrefix(cmd.Name, prefix) {
			filtered = append(filtered, cmd)
		}
	}
	c.filtered = filtered
	c.active = len(filtered) > 0
	if c.selected >= len(c.filtered) {
		c.selected = 0
	}
}

// IsActive returns whether the dropdown should be shown
func (c *Completer) IsActive() bool {
	return c.active
}

// MoveUp moves the selection up, wrapping
func (c *Completer) MoveUp() {
	if !c.active {
		return
	}
	c.selected = (c.selected - 1 + len(c.filtered)) % len(c.filtered)
}

// MoveDown moves the selection down, wrapping
func (c *Completer) MoveDown() {
	if !c.active {
		return
	}
	c.selected = (c.selected + 1) % len(c.filtered)
}

// Accept returns the selected command and dismisses the dropdown.
func (c *Completer) Accept() string {
	if !c.active {
		return ""
	}
	cmd := c.filtered[c.selected]
	c.Dismiss()
	if cmd.ArgHint != "" {
		return cmd.Name + " "
	}
	return cmd.Name
}

// Dismiss hides the dropdown
func (c *Completer) Dismiss() {
	c.active = false
	c.filtered = nil
	c.selected = 0
}

// Render renders the dropdown. Empty when inactive.
func (c *Completer) Render(width int) string {
	if !c.active {
		return ""
	}
	lines := make([]string, 0, len(c.filtered))
	for i, cmd := range c.filtered {
		name := cmd.Name
		if cmd.ArgHint != "" {
			name += " " + cmd.ArgHint
		}
		line := truncate(padRight(name, 18)+" "+cmd.Description, max(width-4, 20))
		if i == c.selected {
			lines = append(lines, completerSelectedStyle.Render(line))
		} else {
			lines = append(lines, completerItemStyle.Render(line))
		}
	}
	return completerBoxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// helpLines lists every command for /help.
func helpLines() string {
	var b strings.Builder
	for _, cmd := range BuiltinCommands {
		name := cmd.Name
		if cmd.ArgHint != "" {
			name += " " + cmd.ArgHint
		}
		b.WriteString("  " + padRight(name, 18) + " " + cmd.Description + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

var (
	completerBoxStyle = lipgloss.NewStyle().
				Background(barColor).
				Foreground(assistantColor).
				Padding(0, 1)

	completerItemStyle = lipgloss.NewStyle().
				Foreground(assistantColor)

	completerSelectedStyle = lipgloss.NewStyle().
				Foreground(userColor).
				Background(lipgloss.Color("238")).
				Bold(true)
)
