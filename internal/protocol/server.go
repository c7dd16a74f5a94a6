package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tenxer/handnav/internal/command"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/resolver"
)

// ServerName and ServerVersion are reported by initialize.
const (
	ServerName    = "handnav"
	ServerVersion = "0.3.0"
)

// Server dispatches envelopes. Requests are handled one at a time so
// commands apply in the order they arrive, whichever transport carried
// them.
type Server struct {
	mu       sync.Mutex
	catalog  catalog
	pipeline *resolver.Pipeline
	nav      navigation.Navigator
	log      *logging.Logger
}

// NewServer creates a server. A nil nav leaves navigation unbound:
// navigate and interact answer invalid params, the context resource and
// prompt/process answer internal error.
func NewServer(pipeline *resolver.Pipeline, nav navigation.Navigator) *Server {
	return &Server{
		catalog:  newCatalog(),
		pipeline: pipeline,
		nav:      nav,
		log:      logging.Global().WithPrefix("protocol"),
	}
}

// Tools returns the tool catalog.
func (s *Server) Tools() []Tool {
	return append([]Tool(nil), s.catalog.tools...)
}

// Resources returns the resource catalog.
func (s *Server) Resources() []Resource {
	return append([]Resource(nil), s.catalog.resources...)
}

// Handle dispatches one request. Panics in handlers become internal
// errors.
func (s *Server) Handle(ctx context.Context, req Request) (resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.log.Metrics().RecordMethod(req.Method)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("handler panic", logging.Method(req.Method), logging.F("panic", fmt.Sprint(r)))
			resp = errorResponse(req.ID, &Error{Code: CodeInternalError, Message: "Internal error", Data: fmt.Sprint(r)})
		}
		s.log.Debug("request handled",
			logging.Method(req.Method),
			logging.Success(resp.Error == nil),
			logging.DurationSince(start))
	}()

	result, perr := s.dispatch(ctx, req)
	if perr != nil {
		return errorResponse(req.ID, perr)
	}
	return Response{JSONRPC: Version, ID: normalizeID(req.ID), Result: result}
}

// HandleJSON decodes one request, handles it and encodes the response.
// It returns nil for notifications.
func (s *Server) HandleJSON(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return mustMarshal(errorResponse(nil, &Error{Code: CodeParseError, Message: "Parse error", Data: err.Error()}))
	}
	resp := s.Handle(ctx, req)
	if req.IsNotification() {
		return nil
	}
	return mustMarshal(resp)
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, *Error) {
	switch req.Method {
	case MethodInitialize:
		return map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo":      map[string]string{"name": ServerName, "version": ServerVersion},
			"capabilities":    map[string]any{"tools": map[string]any{}, "resources": map[string]any{}},
		}, nil
	case MethodToolsList:
		return map[string]any{"tools": s.catalog.tools}, nil
	case MethodResourcesList:
		return map[string]any{"resources": s.catalog.resources}, nil
	case MethodToolsCall:
		return s.callTool(req.Params)
	case MethodResourcesRead:
		return s.readResource(req.Params)
	case MethodPromptProcess:
		var p PromptParams
		if err := decodeParams(req.Params, &p); err != nil || strings.TrimSpace(p.Prompt) == "" {
			return nil, invalidParams("prompt is required")
		}
		res, err := s.ask(ctx, p.Prompt)
		if err != nil {
			return nil, toProtocolError(err)
		}
		return res, nil
	default:
		return nil, &Error{Code: CodeMethodNotFound, Message: "Method not found: " + req.Method}
	}
}

func (s *Server) callTool(raw json.RawMessage) (any, *Error) {
	var p ToolCallParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, invalidParams(err.Error())
	}

	switch p.Name {
	case ToolNavigate, ToolInteract:
		if s.nav == nil {
			return nil, invalidParams("")
		}
		var args TargetArgs
		if err := decodeParams(p.Arguments, &args); err != nil || args.Target == "" {
			return nil, invalidParams("target is required")
		}
		if p.Name == ToolNavigate {
			open, err := openFileParam(args.Parameters)
			if err != nil {
				return nil, invalidParams(err.Error())
			}
			if err := s.nav.Navigate(args.Target, args.Parameters, open); err != nil {
				return nil, toProtocolError(err)
			}
			return ToolResult{Success: true, Message: "Navigated to " + args.Target}, nil
		}
		if err := s.nav.Interact(args.Target, args.Parameters); err != nil {
			return nil, toProtocolError(err)
		}
		return ToolResult{Success: true, Message: "Interacted with " + args.Target}, nil
	case ToolGetInfo:
		return map[string]string{"response": GetInfoResponse}, nil
	default:
		return nil, invalidParams("")
	}
}

func (s *Server) readResource(raw json.RawMessage) (any, *Error) {
	var p struct {
		URI string `json:"uri"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return nil, invalidParams(err.Error())
	}

	switch p.URI {
	case URIContext:
		if s.nav == nil {
			return nil, toProtocolError(hnerr.CallbacksUnbound())
		}
		data, err := json.MarshalIndent(s.nav.Context(), "", "  ")
		if err != nil {
			return nil, toProtocolError(err)
		}
		return contents(ResourceContent{URI: p.URI, MimeType: "application/json", Text: string(data)}), nil
	case URIHelp:
		return contents(ResourceContent{URI: p.URI, MimeType: "text/plain", Text: HelpText}), nil
	default:
		return nil, &Error{Code: CodeInvalidParams, Message: "Resource not found: " + p.URI}
	}
}

func contents(c ResourceContent) map[string]any {
	return map[string]any{"contents": []ResourceContent{c}}
}

// AskResult is the outcome of resolving and applying a prompt.
type AskResult struct {
	resolver.Resolution
	Context command.NavigationContext `json:"context"`
}

// Ask resolves prompt, applies the resulting command and returns the
// reply with the new context. It shares the request lock with Handle.
func (s *Server) Ask(ctx context.Context, prompt string) (AskResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ask(ctx, prompt)
}

func (s *Server) ask(ctx context.Context, prompt string) (AskResult, error) {
	if s.nav == nil || s.pipeline == nil || !s.pipeline.Bound() {
		return AskResult{}, hnerr.CallbacksUnbound()
	}
	res, err := s.pipeline.Process(ctx, prompt)
	if err != nil {
		return AskResult{}, err
	}
	if err := navigation.Apply(s.nav, res.Command); err != nil {
		s.log.Warn("command not applied",
			logging.Action(string(res.Command.Action)),
			logging.Target(res.Command.Target),
			logging.Error(err))
	}
	return AskResult{Resolution: res, Context: s.nav.Context()}, nil
}

// Context returns the live navigation context, or false when unbound.
func (s *Server) Context() (command.NavigationContext, bool) {
	if s.nav == nil {
		return command.NavigationContext{}, false
	}
	return s.nav.Context(), true
}

// Apply runs cmd against the bound navigator under the request lock, so
// front-end actions are ordered with protocol requests and prompts.
func (s *Server) Apply(cmd *command.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav == nil {
		return hnerr.CallbacksUnbound()
	}
	return navigation.Apply(s.nav, cmd)
}

// openFileParam decodes parameters.openFile, if present.
func openFileParam(params map[string]any) (*command.OpenFile, error) {
	raw, ok := params["openFile"]
	if !ok || raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var open command.OpenFile
	if err := json.Unmarshal(data, &open); err != nil {
		return nil, fmt.Errorf("openFile: %w", err)
	}
	if open.Name == "" {
		return nil, errors.New("openFile.name is required")
	}
	return &open, nil
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing params")
	}
	return json.Unmarshal(raw, v)
}

func invalidParams(detail string) *Error {
	e := &Error{Code: CodeInvalidParams, Message: "Invalid params"}
	if detail != "" {
		e.Data = detail
	}
	return e
}

// toProtocolError maps handnav errors onto protocol codes.
func toProtocolError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	switch hnerr.GetCode(err) {
	case "invalid_params", "unknown_target":
		return invalidParams(err.Error())
	default:
		return &Error{Code: CodeInternalError, Message: "Internal error", Data: hnerr.GetUserMessage(err)}
	}
}

func errorResponse(id json.RawMessage, e *Error) Response {
	return Response{JSONRPC: Version, ID: normalizeID(id), Error: e}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorResponse(nil, &Error{Code: CodeInternalError, Message: "Internal error", Data: err.Error()}))
	}
	return data
}
