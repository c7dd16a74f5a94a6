// Package llm wraps the text-generation backends the classifier talks to.
// Every backend answers a single non-streaming round trip: a system prompt
// plus user turns in, plain text out.
package llm

import (
	"context"
	"errors"
	"strings"

	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a conversation message
type Message struct {
	Role    string
	Content string
}

// Response represents an LLM response
type Response struct {
	Content    string
	StopReason string
	Model      string
}

// LLMClient is the interface for LLM clients
type LLMClient interface {
	Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error)
	SetModel(model string)
	GetModel() string
	Close() error
}

// UserText builds the message slice for a single user turn split into parts.
func UserText(parts ...string) []Message {
	msgs := make([]Message, 0, len(parts))
	for _, p := range parts {
		msgs = append(msgs, Message{Role: RoleUser, Content: p})
	}
	return msgs
}

// classifyError maps a raw backend error onto the project error taxonomy.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var he *hnerr.Error
	if errors.As(err, &he) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hnerr.LLMTimeout(err)
	case errors.Is(err, context.Canceled):
		return err
	case isRateLimitError(err):
		return hnerr.LLMRateLimited(err)
	case isUnavailableError(err):
		return hnerr.LLMUnavailable(err)
	default:
		return hnerr.LLMRequestFailed(err)
	}
}

// isRateLimitError checks if an error is a rate limit (429) or quota error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var he *hnerr.Error
	if errors.As(err, &he) && he.Code == "llm_rate_limited" {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "quota")
}

func isUnavailableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "unavailable")
}
