package protocol

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/llm"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/resolver"
)

func newBoundServer(t *testing.T, mock *llm.MockLLMClient) (*Server, *navigation.Machine) {
	t.Helper()
	m := navigation.NewMachine()
	adapter := navigation.Bind(m)
	cls := classifier.New(mock, config.ClassifierConfig{Timeout: time.Second})
	return NewServer(resolver.New(cls, adapter), adapter), m
}

func newUnboundServer() *Server {
	cls := classifier.New(llm.NewMockLLMClient(), config.ClassifierConfig{})
	return NewServer(resolver.New(cls, nil), nil)
}

func call(t *testing.T, s *Server, method string, params any) Response {
	t.Helper()
	req := Request{JSONRPC: Version, ID: json.RawMessage(`1`), Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = data
	}
	return s.Handle(context.Background(), req)
}

func TestHandle_ToolsList(t *testing.T) {
	s, _ := newBoundServer(t, llm.NewMockLLMClient())
	resp := call(t, s, MethodToolsList, nil)
	require.Nil(t, resp.Error)
	assert.Equal(t, Version, resp.JSONRPC)

	tools := resp.Result.(map[string]any)["tools"].([]Tool)
	require.Len(t, tools, 3)
	assert.Equal(t, []string{ToolNavigate, ToolInteract, ToolGetInfo}, []string{tools[0].Name, tools[1].Name, tools[2].Name})
	assert.Contains(t, tools[0].InputSchema.Properties["target"].(map[string]any)["enum"], "interactive-hand")
}

func TestHandle_ResourcesList(t *testing.T) {
	s := newUnboundServer()
	resp := call(t, s, MethodResourcesList, nil)
	require.Nil(t, resp.Error)
	resources := resp.Result.(map[string]any)["resources"].([]Resource)
	require.Len(t, resources, 2)
	assert.Equal(t, URIContext, resources[0].URI)
	assert.Equal(t, URIHelp, resources[1].URI)
}

func TestHandle_MethodNotFoundLeavesState(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())
	m.DotClick(2)
	before := m.Context()

	resp := call(t, s, "tools/destroy", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
	assert.Equal(t, "Method not found: tools/destroy", resp.Error.Message)
	assert.Equal(t, before, m.Context())
}

func TestHandle_NavigateTool(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())

	resp := call(t, s, MethodToolsCall, map[string]any{
		"name":      "navigate",
		"arguments": map[string]any{"target": "amazing-hand", "parameters": map[string]any{"page": 1}},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, ToolResult{Success: true, Message: "Navigated to amazing-hand"}, resp.Result)
	assert.Equal(t, 1, m.Context().CurrentIndex)

	resp = call(t, s, MethodToolsCall, map[string]any{
		"name":      "navigate",
		"arguments": map[string]any{"target": "the-moon"},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestHandle_NavigateToolOpenFile(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())

	resp := call(t, s, MethodToolsCall, map[string]any{
		"name": "navigate",
		"arguments": map[string]any{
			"target": "split",
			"parameters": map[string]any{
				"openFile": map[string]any{"name": "blink.ino", "content": "void loop() {}"},
			},
		},
	})
	require.Nil(t, resp.Error)

	point, ok := m.Editor()
	require.True(t, ok)
	assert.Equal(t, "blink.ino", point.ID)
	assert.Equal(t, "void loop() {}", point.Code)
	assert.Equal(t, navigation.DefaultLanguage, point.Language)
	assert.Equal(t, command.ViewSplit, m.Context().CurrentView)

	resp = call(t, s, MethodToolsCall, map[string]any{
		"name": "navigate",
		"arguments": map[string]any{
			"target":     "split",
			"parameters": map[string]any{"openFile": map[string]any{"content": "x"}},
		},
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestHandle_InteractTool(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())
	resp := call(t, s, MethodToolsCall, map[string]any{
		"name":      "interact",
		"arguments": map[string]any{"target": "dot-2"},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, command.ViewSplit, m.Context().CurrentView)
	assert.Equal(t, "point-2", *m.Context().SelectedPoint)
}

func TestHandle_GetInfoNeverCallsClassifier(t *testing.T) {
	mock := llm.NewMockLLMClient()
	s, _ := newBoundServer(t, mock)
	resp := call(t, s, MethodToolsCall, map[string]any{
		"name":      "get_info",
		"arguments": map[string]any{"query": "what is a servo"},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, map[string]string{"response": GetInfoResponse}, resp.Result)
	assert.Equal(t, 0, mock.CallCount())
}

func TestHandle_Unbound(t *testing.T) {
	s := newUnboundServer()

	for _, tool := range []string{"navigate", "interact"} {
		resp := call(t, s, MethodToolsCall, map[string]any{
			"name":      tool,
			"arguments": map[string]any{"target": "home"},
		})
		require.NotNil(t, resp.Error, tool)
		assert.Equal(t, CodeInvalidParams, resp.Error.Code, tool)
		assert.Equal(t, "Invalid params", resp.Error.Message, tool)
	}

	resp := call(t, s, MethodResourcesRead, map[string]string{"uri": URIContext})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)

	resp = call(t, s, MethodPromptProcess, PromptParams{Prompt: "next page"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)

	resp = call(t, s, MethodResourcesRead, map[string]string{"uri": URIHelp})
	assert.Nil(t, resp.Error, "help does not need a binding")
}

func TestHandle_UnknownTool(t *testing.T) {
	s, _ := newBoundServer(t, llm.NewMockLLMClient())
	resp := call(t, s, MethodToolsCall, map[string]any{"name": "teleport", "arguments": map[string]any{}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestHandle_ResourceRead(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())
	m.DotClick(3)

	resp := call(t, s, MethodResourcesRead, map[string]string{"uri": URIContext})
	require.Nil(t, resp.Error)
	items := resp.Result.(map[string]any)["contents"].([]ResourceContent)
	require.Len(t, items, 1)
	assert.Equal(t, "application/json", items[0].MimeType)

	var got command.NavigationContext
	require.NoError(t, json.Unmarshal([]byte(items[0].Text), &got))
	assert.Equal(t, m.Context(), got)

	resp = call(t, s, MethodResourcesRead, map[string]string{"uri": URIHelp})
	require.Nil(t, resp.Error)
	items = resp.Result.(map[string]any)["contents"].([]ResourceContent)
	assert.Contains(t, items[0].Text, "click dot [number]")

	resp = call(t, s, MethodResourcesRead, map[string]string{"uri": "tenxer://nope"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
	assert.Equal(t, "Resource not found: tenxer://nope", resp.Error.Message)
}

func TestHandle_PromptProcess(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())

	resp := call(t, s, MethodPromptProcess, PromptParams{Prompt: "go to ruka hand"})
	require.Nil(t, resp.Error)
	res := resp.Result.(AskResult)
	assert.Equal(t, resolver.TierLocal, res.Tier)
	assert.Equal(t, 2, res.Context.CurrentIndex)
	assert.Equal(t, m.Context(), res.Context)

	resp = call(t, s, MethodPromptProcess, PromptParams{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestAsk_CodeOpensEditor(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockReplying("void loop() {}"))

	res, err := s.Ask(context.Background(), "write code to move the thumb servo")
	require.NoError(t, err)
	assert.Equal(t, command.ViewSplit, res.Context.CurrentView)
	assert.Equal(t, resolver.GeneratedFileName, *res.Context.SelectedPoint)

	p, ok := m.Editor()
	require.True(t, ok)
	assert.Equal(t, "void loop() {}", p.Code)
}

func TestHandleJSON(t *testing.T) {
	s, _ := newBoundServer(t, llm.NewMockLLMClient())

	out := s.HandleJSON(context.Background(), []byte(`{"jsonrpc":"2.0","id":"abc","method":"tools/list"}`))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "abc", resp["id"])
	assert.Equal(t, "2.0", resp["jsonrpc"])

	out = s.HandleJSON(context.Background(), []byte(`{"id":7,"method":"nope"}`))
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, float64(7), resp["id"])

	out = s.HandleJSON(context.Background(), []byte(`{not json`))
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Nil(t, resp["id"])
	assert.Equal(t, float64(CodeParseError), resp["error"].(map[string]any)["code"])

	assert.Nil(t, s.HandleJSON(context.Background(), []byte(`{"method":"notifications/initialized"}`)))
}

func TestServer_ApplySharesRequestLock(t *testing.T) {
	s, m := newBoundServer(t, llm.NewMockLLMClient())
	cmd := command.Interact(command.SetFileContentTarget, map[string]any{"fileName": "wave.ino", "content": "void loop() {}"})

	s.mu.Lock()
	done := make(chan error, 1)
	go func() { done <- s.Apply(cmd) }()

	select {
	case <-done:
		t.Fatal("Apply ran while a request held the lock")
	case <-time.After(50 * time.Millisecond):
	}
	s.mu.Unlock()

	require.NoError(t, <-done)
	assert.Equal(t, "wave.ino", m.Context().SelectedPointOr(""))
	assert.Equal(t, command.ViewSplit, m.Context().CurrentView)
}

func TestServer_ApplyUnbound(t *testing.T) {
	err := newUnboundServer().Apply(command.Navigate(command.TargetHome, nil))
	assert.Equal(t, "callbacks_unbound", hnerr.GetCode(err))
}
