package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// Ollama-specific errors
var (
	ErrOllamaUnavailable = errors.New("ollama unavailable - run 'ollama serve'")
	ErrModelNotFound     = errors.New("model not found - run 'ollama pull <model>'")
)

// OllamaClient implements LLMClient for Ollama's HTTP API
type OllamaClient struct {
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client

	modelMu sync.RWMutex
	model   string
}

// OllamaMessage represents a message in Ollama's format
type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChatRequest represents a chat request to Ollama
type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *OllamaOptions  `json:"options,omitempty"`
}

// OllamaOptions represents model options
type OllamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// OllamaChatResponse represents a chat response from Ollama
type OllamaChatResponse struct {
	Model      string        `json:"model"`
	Message    OllamaMessage `json:"message"`
	Done       bool          `json:"done"`
	DoneReason string        `json:"done_reason,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(cfg *config.Config) *OllamaClient {
	return &OllamaClient{
		baseURL:     cfg.OllamaURL(),
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
		model:       cfg.GetModel(),
		// Per-call deadlines come from the caller's context.
		httpClient: &http.Client{},
	}
}

// SetModel changes the current model (thread-safe)
func (c *OllamaClient) SetModel(model string) {
	c.modelMu.Lock()
	defer c.modelMu.Unlock()
	c.model = model
}

// GetModel returns the current model (thread-safe)
func (c *OllamaClient) GetModel() string {
	c.modelMu.RLock()
	defer c.modelMu.RUnlock()
	return c.model
}

// Close releases idle connections.
func (c *OllamaClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// CheckHealth verifies Ollama is running
func (c *OllamaClient) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return hnerr.LLMUnavailable(ErrOllamaUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return hnerr.LLMUnavailable(ErrOllamaUnavailable)
	}
	return nil
}

// Chat sends a message and returns the response
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	currentModel := c.GetModel()
	log := logging.Global().WithPrefix("llm")
	start := time.Now()

	resp, err := c.chat(ctx, currentModel, messages, systemPrompt)
	log.Metrics().RecordLLMRequest(time.Since(start), err)
	if err != nil {
		log.Warn("ollama request failed", logging.Model(currentModel), logging.Error(err), logging.DurationSince(start))
		return nil, err
	}

	log.Debug("ollama response",
		logging.Model(currentModel),
		logging.F("done_reason", resp.StopReason),
		logging.DurationSince(start),
	)
	return resp, nil
}

func (c *OllamaClient) chat(ctx context.Context, model string, messages []Message, systemPrompt string) (*Response, error) {
	if err := c.CheckHealth(ctx); err != nil {
		return nil, err
	}

	request := OllamaChatRequest{
		Model:    model,
		Messages: c.buildMessages(messages, systemPrompt),
		Stream:   false,
		Options: &OllamaOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyError(fmt.Errorf("ollama request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return nil, classifyError(fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	var ollamaResp OllamaChatResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if ollamaResp.Error != "" {
		if ollamaResp.Error == "model not found" {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return nil, classifyError(fmt.Errorf("ollama error: %s", ollamaResp.Error))
	}
	if ollamaResp.Message.Content == "" {
		return nil, hnerr.LLMEmptyResponse()
	}

	return &Response{
		Content:    ollamaResp.Message.Content,
		StopReason: ollamaResp.DoneReason,
		Model:      model,
	}, nil
}

// buildMessages converts messages to Ollama format with the system prompt first
func (c *OllamaClient) buildMessages(messages []Message, systemPrompt string) []OllamaMessage {
	out := make([]OllamaMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, OllamaMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range messages {
		out = append(out, OllamaMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
