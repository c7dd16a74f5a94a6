package tui

import "github.com/tenxer/handnav/internal/protocol"

// askResultMsg carries the outcome of a submitted prompt.
type askResultMsg struct {
	result protocol.AskResult
	err    error
}

// slashResultMsg carries the outcome of a slash command.
type slashResultMsg struct {
	kind BlockType
	text string
}

// contextChangedMsg is sent whenever the navigation state changes.
type contextChangedMsg struct{}

// QuitMsg signals the TUI to quit
type QuitMsg struct{}
