package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/config"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/llm"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/resolver"
)

func newTestModel(t *testing.T) (Model, *navigation.Machine, *filestore.DiskStore, string) {
	t.Helper()
	m := navigation.NewMachine()
	adapter := navigation.Bind(m)
	cls := classifier.New(llm.NewMockLLMClient(), config.ClassifierConfig{Timeout: time.Second})
	srv := protocol.NewServer(resolver.New(cls, adapter), adapter)

	store, err := filestore.NewDiskStore(filepath.Join(t.TempDir(), "user"))
	if err != nil {
		t.Fatal(err)
	}
	dropDir := filepath.Join(t.TempDir(), "drop")
	up, err := filestore.NewUploader(dropDir)
	if err != nil {
		t.Fatal(err)
	}

	model := NewModel(context.Background(), Deps{
		Server:    srv,
		Machine:   m,
		Store:     store,
		Uploader:  up,
		ModelName: "mock-model",
	})
	next, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), m, store, dropDir
}

func lastBlock(m Model) ContentBlock {
	blocks := m.Blocks()
	if len(blocks) == 0 {
		return ContentBlock{}
	}
	return blocks[len(blocks)-1]
}

func TestNewModelInitialization(t *testing.T) {
	model := NewModel(context.Background(), Deps{})
	if model.state != StateStarting {
		t.Errorf("Expected initial state StateStarting, got %v", model.state)
	}
	if model.blocks == nil {
		t.Error("Expected blocks to be initialized")
	}
	if got := model.View(); !strings.Contains(got, "Starting") {
		t.Errorf("Expected startup view, got %q", got)
	}
}

func TestWindowSizeMakesReady(t *testing.T) {
	model, _, _, _ := newTestModel(t)
	if !model.ready || model.state != StateIdle {
		t.Fatalf("Expected ready idle model, got ready=%v state=%v", model.ready, model.state)
	}
	if model.viewport.Height != 36 {
		t.Errorf("Expected viewport height 36, got %d", model.viewport.Height)
	}
}

func TestAskAppliesCommand(t *testing.T) {
	model, m, _, _ := newTestModel(t)

	msg := model.ask("next page")()
	next, _ := model.Update(msg)
	model = next.(Model)

	if m.Context().CurrentIndex != 1 {
		t.Errorf("Expected page 1, got %d", m.Context().CurrentIndex)
	}
	blocks := model.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("Expected reply and command blocks, got %d", len(blocks))
	}
	if blocks[0].Type != BlockAssistant || blocks[0].Tier != string(resolver.TierLocal) {
		t.Errorf("Unexpected reply block %+v", blocks[0])
	}
	if blocks[1].Type != BlockCommand || !strings.Contains(blocks[1].Content, "next") {
		t.Errorf("Unexpected command block %+v", blocks[1])
	}
}

func TestEnterStartsRequest(t *testing.T) {
	model, _, _, _ := newTestModel(t)
	model.textInput.SetValue("home")

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = next.(Model)
	if model.state != StateBusy {
		t.Errorf("Expected StateBusy, got %v", model.state)
	}
	if cmd == nil {
		t.Error("Expected a command")
	}
	if lastBlock(model).Type != BlockUser {
		t.Errorf("Expected user block, got %+v", lastBlock(model))
	}

	model.textInput.SetValue("again")
	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if lastBlock(next.(Model)).Type != BlockWarning {
		t.Error("Expected a busy warning")
	}
}

func TestSlashCommands(t *testing.T) {
	model, _, _, _ := newTestModel(t)

	next, _ := model.handleSlash("/help")
	model = next.(Model)
	if b := lastBlock(model); b.Type != BlockInfo || !strings.Contains(b.Content, "/upload") {
		t.Errorf("Expected help with commands, got %+v", b)
	}

	next, _ = model.handleSlash("/context")
	if b := lastBlock(next.(Model)); !strings.Contains(b.Content, `"currentView": "amazing"`) {
		t.Errorf("Expected context JSON, got %q", b.Content)
	}

	next, _ = model.handleSlash("/bogus")
	if lastBlock(next.(Model)).Type != BlockWarning {
		t.Error("Expected warning for unknown command")
	}

	next, _ = model.handleSlash("/clear")
	if len(next.(Model).Blocks()) != 0 {
		t.Error("Expected empty transcript")
	}

	next, cmd := model.handleSlash("/quit")
	if !next.(Model).IsQuitting() || cmd == nil {
		t.Error("Expected quit")
	}
}

func TestSaveOpenUpload(t *testing.T) {
	model, m, store, dropDir := newTestModel(t)

	if msg := model.saveCmd("wave")().(slashResultMsg); msg.kind != BlockError {
		t.Errorf("Expected error with empty editor, got %+v", msg)
	}

	m.PointInteraction(navigation.Point{ID: "point-1", Label: "Point 1", Code: "void loop() {}", Language: "cpp"})
	if msg := model.saveCmd("wave")().(slashResultMsg); msg.kind != BlockSuccess || msg.text != "Saved as wave.ino" {
		t.Fatalf("Unexpected save result %+v", msg)
	}
	if code, err := store.Load(context.Background(), "wave.ino"); err != nil || code != "void loop() {}" {
		t.Fatalf("Expected saved code, got %q %v", code, err)
	}

	m.Home()
	if msg := model.openCmd("wave")().(slashResultMsg); msg.kind != BlockSuccess {
		t.Fatalf("Unexpected open result %+v", msg)
	}
	ctx := m.Context()
	if ctx.CurrentView != command.ViewSplit || ctx.SelectedPointOr("") != "wave.ino" {
		t.Errorf("Expected split view on wave.ino, got %+v", ctx)
	}

	if msg := model.uploadCmd("")().(slashResultMsg); msg.kind != BlockSuccess {
		t.Fatalf("Unexpected upload result %+v", msg)
	}
	data, err := os.ReadFile(filepath.Join(dropDir, "wave.ino"))
	if err != nil || string(data) != "void loop() {}" {
		t.Errorf("Expected uploaded sketch, got %q %v", data, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	model, _, _, _ := newTestModel(t)
	if msg := model.openCmd("ghost")().(slashResultMsg); msg.kind != BlockError {
		t.Errorf("Expected error, got %+v", msg)
	}
}

func TestUploadName(t *testing.T) {
	if got := uploadName(navigation.Point{ID: "blink.ino"}); got != "blink.ino" {
		t.Errorf("Expected blink.ino, got %s", got)
	}
	if got := uploadName(navigation.Point{ID: "point-2"}); got != resolver.GeneratedFileName {
		t.Errorf("Expected %s, got %s", resolver.GeneratedFileName, got)
	}
}

func TestViewShowsHeaderAndEditor(t *testing.T) {
	model, m, _, _ := newTestModel(t)

	view := model.View()
	if !strings.Contains(view, "handnav") || !strings.Contains(view, "amazing") {
		t.Errorf("Expected header with view name, got %q", view)
	}

	m.PointInteraction(navigation.Point{ID: "point-0", Label: "Code Editor", Code: "int x = 1;", Language: "cpp"})
	next, _ := model.Update(contextChangedMsg{})
	view = next.(Model).View()
	if !strings.Contains(view, "Code Editor") {
		t.Errorf("Expected editor pane, got %q", view)
	}
}

func TestCompleter(t *testing.T) {
	c := NewCompleter()
	c.Update("/s")
	if !c.IsActive() {
		t.Fatal("Expected active completer")
	}
	if got := c.Accept(); got != "/save " {
		t.Errorf("Expected '/save ', got %q", got)
	}

	c.Update("/save wave")
	if c.IsActive() {
		t.Error("Expected inactive completer while typing args")
	}

	c.Update("/")
	c.MoveUp()
	if got := c.Accept(); got != "/quit" {
		t.Errorf("Expected wrap to /quit, got %q", got)
	}
}
