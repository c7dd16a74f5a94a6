package llm

import (
	"context"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// AnthropicClient wraps the Anthropic SDK
type AnthropicClient struct {
	client      anthropic.Client
	maxTokens   int
	temperature float64

	mu    sync.RWMutex
	model string
}

// NewAnthropicClient creates a Claude-backed client. SDK-level retries are
// disabled; ResilientClient owns retry policy.
func NewAnthropicClient(cfg *config.Config) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.LLM.AnthropicAPIKey),
		option.WithMaxRetries(0),
	)
	return &AnthropicClient{
		client:      client,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
		model:       cfg.GetModel(),
	}
}

// SetModel changes the current model
func (c *AnthropicClient) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// GetModel returns the current model
func (c *AnthropicClient) GetModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Close is a no-op; the SDK holds no long-lived resources.
func (c *AnthropicClient) Close() error { return nil }

// Chat sends a message and returns the response
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	model := c.GetModel()
	log := logging.Global().WithPrefix("llm")
	start := time.Now()

	msg, err := c.client.Messages.New(ctx, c.buildParams(model, messages, systemPrompt))
	log.Metrics().RecordLLMRequest(time.Since(start), err)
	if err != nil {
		log.Warn("anthropic request failed", logging.Model(model), logging.Error(err), logging.DurationSince(start))
		return nil, classifyError(err)
	}

	resp := &Response{StopReason: string(msg.StopReason), Model: model}
	for _, block := range msg.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			resp.Content += b.Text
		}
	}
	if resp.Content == "" {
		return nil, hnerr.LLMEmptyResponse()
	}

	log.Debug("anthropic response", logging.Model(model), logging.DurationSince(start))
	return resp, nil
}

func (c *AnthropicClient) buildParams(model string, messages []Message, systemPrompt string) anthropic.MessageNewParams {
	var apiMessages []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.maxTokens),
		Messages:    apiMessages,
		Temperature: anthropic.Float(c.temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: systemPrompt}}
	}
	return params
}
