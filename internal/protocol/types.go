// Package protocol exposes the resolver through a JSON-RPC style
// envelope: tool and resource discovery, tool calls, resource reads and
// free-text prompt processing.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the envelope version stamped on every response.
const Version = "2.0"

// Method names.
const (
	MethodInitialize    = "initialize"
	MethodToolsList     = "tools/list"
	MethodResourcesList = "resources/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesRead = "resources/read"
	MethodPromptProcess = "prompt/process"
)

// Error codes.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one call. ID is kept raw so numeric and string ids
// round-trip unchanged; a missing ID marks a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the caller expects no response.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response carries either Result or Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a protocol-level failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("protocol error %d: %s (%v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// Schema is the JSON-schema subset tool inputs are described with.
type Schema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// Tool is a callable catalog entry.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Resource is a readable catalog entry.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is one item of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ToolCallParams are the params of tools/call.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// TargetArgs are the arguments of the navigate and interact tools.
type TargetArgs struct {
	Target     string         `json:"target"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ToolResult is the result of a state-changing tool call.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PromptParams are the params of prompt/process.
type PromptParams struct {
	Prompt string `json:"prompt"`
}
