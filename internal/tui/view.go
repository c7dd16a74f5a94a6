package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Starting handnav...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	body := m.viewport.View()
	if point, ok := m.editorOpen(); ok {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderEditor(point.Label, point.ID, point.Code, point.Language))
	}
	b.WriteString(body)
	b.WriteString("\n")

	if c := m.completer.Render(m.width); c != "" {
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader shows the navigation state.
func (m Model) renderHeader() string {
	parts := []string{headerTitleStyle.Render("handnav")}
	if m.deps.ModelName != "" {
		parts = append(parts, headerDimStyle.Render(m.deps.ModelName))
	}
	if ctx, ok := m.deps.Server.Context(); ok {
		video := "off"
		if ctx.VideoPlaying {
			video = "on"
		}
		parts = append(parts,
			headerDimStyle.Render("view ")+headerValueStyle.Render(string(ctx.CurrentView)),
			headerDimStyle.Render("page ")+headerValueStyle.Render(fmt.Sprintf("%d", ctx.CurrentIndex)),
			headerDimStyle.Render("video ")+headerValueStyle.Render(video),
			headerDimStyle.Render("point ")+headerValueStyle.Render(ctx.SelectedPointOr("none")),
		)
	} else {
		parts = append(parts, errorStyle.Render("unbound"))
	}
	return headerStyle.Width(m.width).Render(strings.Join(parts, headerDimStyle.Render(" │ ")))
}

func (m Model) renderFooter() string {
	prompt := inputPromptStyle.Render(iconUser + " ")
	line := prompt + m.textInput.View()
	if m.state == StateBusy {
		line = m.spinner.View() + " " + headerDimStyle.Render("resolving...")
	}
	return footerStyle.Width(m.width).Render(line)
}

// renderEditor draws the split-view code pane.
func (m Model) renderEditor(label, name, code, language string) string {
	width := m.width - m.width/2 - 4
	if width < 10 {
		width = 10
	}
	height := m.viewport.Height - 3
	if height < 1 {
		height = 1
	}

	lines := strings.Split(m.hl.HighlightFile(name, code, language), "\n")
	if len(lines) > height {
		lines = append(lines[:height-1], headerDimStyle.Render(fmt.Sprintf("… %d more lines", len(lines)-height+1)))
	}
	title := editorTitleStyle.Render(label)
	if name != "" && name != label {
		title += headerDimStyle.Render(" " + name)
	}
	return editorBoxStyle.Width(width).Render(title + "\n" + strings.Join(lines, "\n"))
}

// renderContent renders the transcript
func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range *m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderBlock(block))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderBlock(block ContentBlock) string {
	switch block.Type {
	case BlockUser:
		return userPrefixStyle.Render(iconUser+" ") + userStyle.Render(block.Content)
	case BlockAssistant:
		text := assistantStyle.Render(m.hl.HighlightMarkdownCodeBlocks(block.Content))
		if block.Tier != "" {
			text += " " + tierStyle.Render("("+block.Tier+")")
		}
		return text
	case BlockCommand:
		return commandStyle.Render(iconCommand + " " + block.Content)
	case BlockError:
		return errorStyle.Render(iconError + " " + block.Content)
	case BlockWarning:
		return warningStyle.Render(iconWarning + " " + block.Content)
	case BlockSuccess:
		return successStyle.Render(iconSuccess + " " + block.Content)
	default:
		return infoStyle.Render(iconInfo + " " + block.Content)
	}
}
