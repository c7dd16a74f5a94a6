package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/resolver"
)

// handleSlash runs a slash command. Commands that touch storage run as
// tea.Cmds and report through slashResultMsg.
func (m Model) handleSlash(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/clear":
		m.ClearBlocks()
		return m, nil

	case "/help":
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: protocol.HelpText + "\n\nCommands:\n" + helpLines()})
		return m, nil

	case "/context":
		ctx, ok := m.deps.Server.Context()
		if !ok {
			m.AddBlock(ContentBlock{Type: BlockError, Content: "Navigation is not bound"})
			return m, nil
		}
		data, _ := json.MarshalIndent(ctx, "", "  ")
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: string(data)})
		return m, nil

	case "/save":
		return m, m.saveCmd(arg)
	case "/files":
		return m, m.filesCmd()
	case "/open":
		return m, m.openCmd(arg)
	case "/upload":
		return m, m.uploadCmd(arg)
	}

	m.AddBlock(ContentBlock{Type: BlockWarning, Content: fmt.Sprintf("Unknown command %s. Type /help for the list.", name)})
	return m, nil
}

func failed(format string, args ...any) tea.Msg {
	return slashResultMsg{kind: BlockError, text: fmt.Sprintf(format, args...)}
}

func (m Model) saveCmd(name string) tea.Cmd {
	store := m.deps.Store
	point, ok := m.editorPoint()
	ctx := m.ctx
	return func() tea.Msg {
		switch {
		case store == nil:
			return failed("No file store configured")
		case name == "":
			return failed("Usage: /save <name>")
		case !ok || point.Code == "":
			return failed("Nothing to save: the editor is empty")
		}
		saved, err := store.Save(ctx, name, point.Code)
		if err != nil {
			return failed("Save failed: %v", err)
		}
		return slashResultMsg{kind: BlockSuccess, text: "Saved as " + saved}
	}
}

func (m Model) filesCmd() tea.Cmd {
	store := m.deps.Store
	ctx := m.ctx
	return func() tea.Msg {
		if store == nil {
			return failed("No file store configured")
		}
		files, err := store.List(ctx)
		if err != nil {
			return failed("Listing failed: %v", err)
		}
		if len(files) == 0 {
			return slashResultMsg{kind: BlockInfo, text: "No saved sketches"}
		}
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = "  " + f.Name
		}
		return slashResultMsg{kind: BlockInfo, text: "Saved sketches:\n" + strings.Join(names, "\n")}
	}
}

func (m Model) openCmd(name string) tea.Cmd {
	store := m.deps.Store
	srv := m.deps.Server
	ctx := m.ctx
	return func() tea.Msg {
		switch {
		case store == nil:
			return failed("No file store configured")
		case srv == nil:
			return failed("Navigation is not bound")
		case name == "":
			return failed("Usage: /open <name>")
		}
		safe, err := filestore.NormalizeName(name)
		if err != nil {
			return failed("Open failed: %v", err)
		}
		code, err := store.Load(ctx, safe)
		if err != nil {
			return failed("Open failed: %v", err)
		}
		cmd := command.Interact(command.SetFileContentTarget, map[string]any{
			"fileName": safe,
			"content":  code,
		})
		if err := srv.Apply(cmd); err != nil {
			return failed("Open failed: %v", err)
		}
		return slashResultMsg{kind: BlockSuccess, text: "Opened " + safe}
	}
}

func (m Model) uploadCmd(name string) tea.Cmd {
	up := m.deps.Uploader
	point, ok := m.editorPoint()
	ctx := m.ctx
	return func() tea.Msg {
		switch {
		case up == nil:
			return failed("No upload directory configured")
		case !ok || point.Code == "":
			return failed("Nothing to upload: the editor is empty")
		}
		if name == "" {
			name = uploadName(point)
		}
		if _, err := up.Upload(ctx, name, point.Code); err != nil {
			return failed("Upload failed: %v", err)
		}
		return slashResultMsg{kind: BlockSuccess, text: name + " uploaded to server successfully."}
	}
}

// uploadName uses the open file name when it is a sketch.
func uploadName(p navigation.Point) string {
	if strings.HasSuffix(p.ID, filestore.Extension) {
		return p.ID
	}
	return resolver.GeneratedFileName
}
