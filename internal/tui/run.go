package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/logging"
)

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, deps Deps) error {
	if !IsTTYAvailable() {
		return fmt.Errorf("TUI mode requires a terminal")
	}
	if deps.Server == nil {
		return fmt.Errorf("TUI needs a protocol server")
	}

	model := NewModel(ctx, deps)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if deps.Machine != nil {
		deps.Machine.OnChange(func(command.NavigationContext) {
			program.Send(contextChangedMsg{})
		})
	}

	log := logging.Global().WithPrefix("tui")
	log.Debug("starting tui", logging.Model(deps.ModelName))

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// IsTTYAvailable checks whether stdout is a terminal
func IsTTYAvailable() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode()&os.ModeCharDevice != 0
}
