package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/logging"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/ui/highlight"
)

// AppState represents the current state of the application
type AppState int

const (
	StateStarting AppState = iota // waiting for the first window size
	StateIdle                     // waiting for user input
	StateBusy                     // a prompt is being resolved
)

// BlockType represents the type of content block
type BlockType int

const (
	BlockUser      BlockType = iota // User prompt
	BlockAssistant                  // Resolver reply
	BlockCommand                    // Command that was applied
	BlockError
	BlockInfo
	BlockWarning
	BlockSuccess
)

// ContentBlock represents a piece of content in the transcript
type ContentBlock struct {
	Type    BlockType
	Content string
	Tier    string
}

// Deps are the collaborators the TUI drives. Store and Uploader are
// optional; their commands report an error when unset.
type Deps struct {
	Server    *protocol.Server
	Machine   *navigation.Machine
	Store     filestore.Store
	Uploader  *filestore.Uploader
	ModelName string
	Highlight bool
}

// Model is the Bubble Tea model for the chat
type Model struct {
	deps Deps
	ctx  context.Context
	log  *logging.Logger

	width  int
	height int
	ready  bool
	state  AppState

	// Pointer so it survives model copies
	blocks *[]ContentBlock

	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model
	completer *Completer
	hl        *highlight.Highlighter

	quitting bool
}

// NewModel creates a chat model
func NewModel(ctx context.Context, deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask to navigate, write code, or type / for commands"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 50

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = infoStyle

	blocks := make([]ContentBlock, 0)
	return Model{
		deps:      deps,
		ctx:       ctx,
		log:       logging.Global().WithPrefix("tui"),
		state:     StateStarting,
		blocks:    &blocks,
		textInput: ti,
		spinner:   sp,
		completer: NewCompleter(),
		hl:        highlight.New(deps.Highlight),
	}
}

// AddBlock appends to the transcript and scrolls to the end
func (m *Model) AddBlock(block ContentBlock) {
	*m.blocks = append(*m.blocks, block)
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// ClearBlocks empties the transcript
func (m *Model) ClearBlocks() {
	*m.blocks = (*m.blocks)[:0]
	m.updateViewportContent()
}

// Blocks returns a copy of the transcript
func (m Model) Blocks() []ContentBlock {
	return append([]ContentBlock(nil), *m.blocks...)
}

// IsQuitting returns true if the model is quitting
func (m Model) IsQuitting() bool {
	return m.quitting
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

// editorPoint returns the point loaded in the editor, shown or not.
func (m Model) editorPoint() (navigation.Point, bool) {
	if m.deps.Machine == nil {
		return navigation.Point{}, false
	}
	return m.deps.Machine.Editor()
}

// editorOpen reports whether the split editor pane is showing.
func (m Model) editorOpen() (navigation.Point, bool) {
	p, ok := m.editorPoint()
	if !ok || m.deps.Machine.Context().CurrentView != command.ViewSplit {
		return navigation.Point{}, false
	}
	return p, true
}

// layout sizes the transcript around the header, footer and editor.
func (m *Model) layout() {
	viewportHeight := m.height - 4
	if c := m.completer.Render(m.width); c != "" {
		viewportHeight -= strings.Count(c, "\n") + 1
	}
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	width := m.width
	if _, ok := m.editorOpen(); ok {
		width = m.width / 2
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight
	m.textInput.Width = m.width - 4
	m.updateViewportContent()
}
