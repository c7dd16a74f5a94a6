package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	maxTokens   int32
	temperature float32

	mu    sync.RWMutex
	model string
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		return nil, hnerr.ClassifierNotConfigured()
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLM.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, hnerr.LLMUnavailable(err)
	}
	return &GeminiClient{
		cli:         cli,
		maxTokens:   int32(cfg.LLM.MaxTokens),
		temperature: float32(cfg.LLM.Temperature),
		model:       cfg.GetModel(),
	}, nil
}

// SetModel changes the current model
func (g *GeminiClient) SetModel(model string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = model
}

// GetModel returns the current model
func (g *GeminiClient) GetModel() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

// Close is a no-op for the HTTP-backed genai client.
func (g *GeminiClient) Close() error { return nil }

// Chat sends the system prompt as a system instruction and each message as
// its own content turn.
func (g *GeminiClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	model := g.GetModel()
	log := logging.Global().WithPrefix("llm")
	start := time.Now()

	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if systemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := g.cli.Models.GenerateContent(ctx, model, contents, gc)
	log.Metrics().RecordLLMRequest(time.Since(start), err)
	if err != nil {
		log.Warn("gemini request failed", logging.Model(model), logging.Error(err), logging.DurationSince(start))
		return nil, classifyError(err)
	}

	text := geminiText(resp)
	if text == "" {
		return nil, hnerr.LLMEmptyResponse()
	}

	out := &Response{Content: text, Model: model}
	if len(resp.Candidates) > 0 {
		out.StopReason = string(resp.Candidates[0].FinishReason)
	}
	log.Debug("gemini response", logging.Model(model), logging.DurationSince(start))
	return out, nil
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
