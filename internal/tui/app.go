package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tenxer/handnav/internal/logging"
)

// Init starts the cursor blink
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.ready = true
			m.state = StateIdle
		}
		m.layout()
		return m, nil

	case askResultMsg:
		m.state = StateIdle
		m.textInput.Focus()
		if msg.err != nil {
			m.AddBlock(ContentBlock{Type: BlockError, Content: msg.err.Error()})
			return m, nil
		}
		res := msg.result
		m.AddBlock(ContentBlock{Type: BlockAssistant, Content: res.Response, Tier: string(res.Tier)})
		if res.Command != nil {
			m.AddBlock(ContentBlock{Type: BlockCommand, Content: res.Command.String()})
		}
		m.layout()
		return m, nil

	case slashResultMsg:
		m.AddBlock(ContentBlock{Type: msg.kind, Content: msg.text})
		m.layout()
		return m, nil

	case contextChangedMsg:
		m.layout()
		return m, nil

	case spinner.TickMsg:
		if m.state != StateBusy {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	if m.completer.IsActive() {
		switch msg.Type {
		case tea.KeyUp:
			m.completer.MoveUp()
			return m, nil
		case tea.KeyDown:
			m.completer.MoveDown()
			return m, nil
		case tea.KeyTab:
			m.textInput.SetValue(m.completer.Accept())
			m.textInput.CursorEnd()
			m.layout()
			return m, nil
		case tea.KeyEsc:
			m.completer.Dismiss()
			m.layout()
			return m, nil
		}
	}

	switch msg.Type {
	case tea.KeyEnter:
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, nil
		}
		m.textInput.Reset()
		m.completer.Dismiss()

		if strings.HasPrefix(input, "/") {
			return m.handleSlash(input)
		}
		if m.state == StateBusy {
			m.AddBlock(ContentBlock{Type: BlockWarning, Content: "Still working on the last request"})
			return m, nil
		}

		m.AddBlock(ContentBlock{Type: BlockUser, Content: input})
		m.state = StateBusy
		m.layout()
		return m, tea.Batch(m.ask(input), m.spinner.Tick)

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.completer.Update(m.textInput.Value())
	m.layout()
	return m, cmd
}

// ask resolves prompt off the update loop.
func (m Model) ask(prompt string) tea.Cmd {
	srv := m.deps.Server
	ctx := m.ctx
	log := m.log
	return func() tea.Msg {
		if ctx == nil {
			ctx = context.Background()
		}
		res, err := srv.Ask(ctx, prompt)
		if err != nil {
			log.Warn("prompt failed", logging.Query(prompt), logging.Error(err))
		}
		return askResultMsg{result: res, err: err}
	}
}
