// Package classifier sends prompts to the text-generation backend in one
// of three modes: structured intent analysis, a free-form answer, or
// code only. The first two never fail; code generation reports errors so
// the caller can show a placeholder.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tenxer/handnav/internal/command"
	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/intent"
	"github.com/tenxer/handnav/internal/llm"
	"github.com/tenxer/handnav/internal/logging"
)

// Fixed replies used when the backend cannot be reached.
const (
	AnalysisErrorResponse = "I encountered an error while analyzing your request. Please try rephrasing your question."
	GeneralErrorResponse  = "I encountered an error while processing your request. Please try again later."
	ChangeResponse        = "To make changes to the hand, you'll need to access the code editor. Let me open split mode where you can see the hand and edit its code simultaneously!"
)

// DirectConfidence is the threshold for trusting a command from the
// direct analysis path.
const DirectConfidence = 60

// Analysis is the structured result of an intent classification.
type Analysis struct {
	Action     command.Action `json:"action"`
	Target     string         `json:"target,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Confidence int            `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Response   string         `json:"response"`

	// Err is set when the backend call failed and the analysis is the
	// fixed fallback.
	Err error `json:"-"`
}

// Command converts the analysis into a command when it clears minConfidence
// and names a routable target. Info analyses never produce a command.
func (a Analysis) Command(minConfidence int) *command.Command {
	if a.Confidence < minConfidence || a.Target == "" {
		return nil
	}
	cmd := &command.Command{Action: a.Action, Target: a.Target, Parameters: a.Parameters}
	switch a.Action {
	case command.ActionNavigate:
		t, err := command.ParseTarget(a.Target)
		if err != nil {
			return nil
		}
		cmd.Target = string(t)
	case command.ActionInteract:
		if err := cmd.Validate(); err != nil {
			return nil
		}
	default:
		return nil
	}
	return cmd
}

// ContextFile is reference material attached to a prompt.
type ContextFile struct {
	Name    string
	Content string
}

// Classifier wraps an LLMClient. A nil client leaves it unconfigured:
// analyses and answers degrade, code generation fails.
type Classifier struct {
	client  llm.LLMClient
	timeout time.Duration
	answers *expirable.LRU[string, string]
	log     *logging.Logger
}

// New creates a classifier. client may be nil.
func New(client llm.LLMClient, cfg config.ClassifierConfig) *Classifier {
	c := &Classifier{
		client:  client,
		timeout: cfg.Timeout,
		log:     logging.Global().WithPrefix("classifier"),
	}
	if cfg.CacheSize > 0 {
		c.answers = expirable.NewLRU[string, string](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c
}

// Configured reports whether a backend is attached.
func (c *Classifier) Configured() bool {
	return c.client != nil
}

// Model returns the backend model name, or "" when unconfigured.
func (c *Classifier) Model() string {
	if c.client == nil {
		return ""
	}
	return c.client.GetModel()
}

// ClassifyIntent asks the backend for a structured analysis of prompt in
// the given navigation context. Transport failures return an info
// analysis at confidence 0; unparsable replies one at confidence 30.
func (c *Classifier) ClassifyIntent(ctx context.Context, prompt string, nav command.NavigationContext) Analysis {
	start := time.Now()
	raw, err := c.chat(ctx, analysisPrompt(nav), fmt.Sprintf("Analyze this user prompt: %q", prompt))
	if err != nil {
		c.log.Warn("intent analysis failed", logging.Query(prompt), logging.Error(err), logging.DurationSince(start))
		return Analysis{
			Action:     command.ActionInfo,
			Confidence: 0,
			Reasoning:  "Error occurred during AI analysis",
			Response:   AnalysisErrorResponse,
			Err:        err,
		}
	}

	a := ParseAnalysis(raw)
	if intent.AsksAboutChanges(prompt) && a.Action == command.ActionNavigate && a.Target == string(command.TargetSplit) {
		a.Response = ChangeResponse
	}
	c.log.Debug("intent analysis",
		logging.Action(string(a.Action)),
		logging.Target(a.Target),
		logging.Confidence(a.Confidence),
		logging.DurationSince(start))
	return a
}

// ParseNavigationIntent runs ClassifyIntent and keeps the command only on
// the direct path threshold. Below it the command is an info command
// carrying the reply, so callers always get something to show. The
// underlying analysis is returned alongside.
func (c *Classifier) ParseNavigationIntent(ctx context.Context, prompt string, nav command.NavigationContext) (*command.Command, Analysis) {
	a := c.ClassifyIntent(ctx, prompt, nav)
	if cmd := a.Command(DirectConfidence); cmd != nil {
		cmd.Parameters = withResponse(cmd.Parameters, a.Response)
		return cmd, a
	}
	return &command.Command{
		Action:     command.ActionInfo,
		Target:     "general",
		Parameters: map[string]any{"response": a.Response},
	}, a
}

func withResponse(params map[string]any, response string) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["response"] = response
	return out
}

// AnswerGeneral returns a free-form answer. Failures yield a fixed
// apology.
func (c *Classifier) AnswerGeneral(ctx context.Context, prompt string, files ...ContextFile) string {
	answer, err := c.Answer(ctx, prompt, files...)
	if err != nil {
		c.log.Warn("general answer failed", logging.Query(prompt), logging.Error(err))
		return GeneralErrorResponse
	}
	return answer
}

// Answer is AnswerGeneral with the error exposed. Answers without
// context files are cached; failures are not.
func (c *Classifier) Answer(ctx context.Context, prompt string, files ...ContextFile) (string, error) {
	key := strings.ToLower(strings.TrimSpace(prompt))
	cacheable := c.answers != nil && len(files) == 0
	if cacheable {
		if cached, ok := c.answers.Get(key); ok {
			c.log.Debug("general answer cache hit", logging.Query(prompt))
			return cached, nil
		}
	}

	raw, err := c.chat(ctx, generalPrompt(files), prompt)
	if err != nil {
		return "", err
	}
	answer := stripThinkTags(raw)
	if answer == "" {
		return "", hnerr.LLMEmptyResponse()
	}
	if cacheable {
		c.answers.Add(key, answer)
	}
	return answer, nil
}

// AnswerCodeOnly asks for source code only and strips any markdown fence
// from the reply. Errors are returned to the caller.
func (c *Classifier) AnswerCodeOnly(ctx context.Context, prompt string, files ...ContextFile) (string, error) {
	raw, err := c.chat(ctx, codePrompt(files), "User request (generate code only): "+prompt)
	if err != nil {
		return "", hnerr.CodeGenerationFailed(err)
	}
	code := StripCodeFences(stripThinkTags(raw))
	if code == "" {
		return "", hnerr.CodeGenerationFailed(hnerr.LLMEmptyResponse())
	}
	return code, nil
}

// chat performs one bounded round trip.
func (c *Classifier) chat(ctx context.Context, system, user string) (string, error) {
	if c.client == nil {
		return "", hnerr.ClassifierNotConfigured()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.client.Chat(ctx, llm.UserText(user), system)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", hnerr.LLMTimeout(err)
		}
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
