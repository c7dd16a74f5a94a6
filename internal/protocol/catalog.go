package protocol

import (
	"github.com/tenxer/handnav/internal/command"
)

// Tool names.
const (
	ToolNavigate = "navigate"
	ToolInteract = "interact"
	ToolGetInfo  = "get_info"
)

// Resource URIs.
const (
	URIContext = "tenxer://navigation/context"
	URIHelp    = "tenxer://interface/help"
)

// GetInfoResponse is the fixed get_info reply. General questions go
// through prompt/process instead.
const GetInfoResponse = "General Q&A is disabled for this tool. Use navigation commands like 'go to ruka hand', 'next page', 'open split', 'home', or 'click dot 1'."

// HelpText is served at URIHelp.
const HelpText = `TenXer Interface Navigation Commands:

BASIC NAVIGATION:
- "go to ruka hand" - Navigate to Ruka Hand page
- "go to amazing hand" - Navigate to Amazing Hand preview
- "go to interactive hand" - Navigate to interactive hand with dots
- "next page" / "previous page" - Navigate between pages
- "home" - Play video mode
- "exit" - Exit current mode

INTERACTION:
- "click dot [number]" - Interact with specific dot on hand
- "write code to [motion]" - Generate Arduino code and open it in the editor

GENERAL:
- Ask any question about robotics, automation, or the interface
`

// catalog is built once and shared read-only.
type catalog struct {
	tools     []Tool
	resources []Resource
}

func newCatalog() catalog {
	targets := make([]string, 0, len(command.Targets))
	for _, t := range command.Targets {
		targets = append(targets, string(t))
	}
	targetArgs := func(targetSchema map[string]any) Schema {
		return Schema{
			Type: "object",
			Properties: map[string]any{
				"target":     targetSchema,
				"parameters": map[string]any{"type": "object"},
			},
			Required: []string{"target"},
		}
	}

	return catalog{
		tools: []Tool{
			{
				Name:        ToolNavigate,
				Description: "Navigate to different pages in the interface",
				InputSchema: targetArgs(map[string]any{"type": "string", "enum": targets}),
			},
			{
				Name:        ToolInteract,
				Description: "Interact with elements in the interface",
				InputSchema: targetArgs(map[string]any{"type": "string"}),
			},
			{
				Name:        ToolGetInfo,
				Description: "Get information about the interface or general topics",
				InputSchema: Schema{
					Type:       "object",
					Properties: map[string]any{"query": map[string]any{"type": "string"}},
					Required:   []string{"query"},
				},
			},
		},
		resources: []Resource{
			{
				URI:         URIContext,
				Name:        "Navigation Context",
				Description: "Current navigation state and context",
				MimeType:    "application/json",
			},
			{
				URI:         URIHelp,
				Name:        "Interface Help",
				Description: "Available commands and interface guide",
				MimeType:    "text/plain",
			},
		},
	}
}
