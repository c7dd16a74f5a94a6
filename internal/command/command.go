// Package command defines the vocabulary shared by the resolver, the
// navigation state machine and the protocol server.
package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Action is one of the three things a resolved command can do.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionInteract Action = "interact"
	ActionInfo     Action = "info"
)

// ParseAction decodes an action name. Only the canonical three are accepted.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionNavigate, ActionInteract, ActionInfo:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// UnmarshalJSON rejects anything but the canonical actions.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OpenFile asks the editor to load generated or saved content.
type OpenFile struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

// Command is a resolved intent. Target is a navigation Target for
// navigate, an interaction string (dot-3, editor:setFileContent) for
// interact, and free-form for info.
type Command struct {
	Action     Action         `json:"action"`
	Target     string         `json:"target,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	OpenFile   *OpenFile      `json:"openFile,omitempty"`
}

// Navigate builds a navigate command.
func Navigate(t Target, params map[string]any) *Command {
	return &Command{Action: ActionNavigate, Target: string(t), Parameters: params}
}

// Interact builds an interact command.
func Interact(target string, params map[string]any) *Command {
	return &Command{Action: ActionInteract, Target: target, Parameters: params}
}

// Page builds the {"page": n} parameter bag.
func Page(n int) map[string]any {
	return map[string]any{"page": n}
}

// Validate checks that the target is routable for the command's action.
func (c *Command) Validate() error {
	switch c.Action {
	case ActionNavigate:
		if c.OpenFile != nil && c.Target == "" {
			return nil
		}
		_, err := ParseTarget(c.Target)
		return err
	case ActionInteract:
		_, err := ParseInteraction(c.Target, c.Parameters)
		return err
	case ActionInfo:
		return nil
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
}

func (c *Command) String() string {
	if c == nil {
		return "<none>"
	}
	if c.Target == "" {
		return string(c.Action)
	}
	return string(c.Action) + " " + c.Target
}

// Result is the outcome of resolving one prompt. Response is always set.
type Result struct {
	Command  *Command `json:"command,omitempty"`
	Response string   `json:"response"`
}

// IntParam reads an integer parameter that may have arrived as a JSON
// number, a Go int, or a numeric string.
func IntParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// StringParam reads a string parameter.
func StringParam(params map[string]any, key string) (string, bool) {
	s, ok := params[key].(string)
	return s, ok
}

// ErrUnknownTarget matches any target or interaction outside the routing table.
var ErrUnknownTarget = hnerr.UnknownTarget("")
