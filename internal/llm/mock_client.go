package llm

import (
	"context"
	"sync"
)

// MockLLMClient implements LLMClient for testing.
type MockLLMClient struct {
	// Injectable behavior
	ChatFunc func(ctx context.Context, messages []Message, systemPrompt string) (*Response, error)

	model string
	mu    sync.Mutex

	// Call recording
	ChatCalls []ChatCall
}

// ChatCall records the arguments of a Chat invocation.
type ChatCall struct {
	Messages     []Message
	SystemPrompt string
}

// NewMockLLMClient creates a mock client with sensible defaults.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{
		model: "mock-model",
	}
}

// NewMockReplying returns a mock that always answers with content.
func NewMockReplying(content string) *MockLLMClient {
	m := NewMockLLMClient()
	m.ChatFunc = func(context.Context, []Message, string) (*Response, error) {
		return &Response{Content: content, StopReason: "stop"}, nil
	}
	return m
}

// NewMockFailing returns a mock whose every call fails with err.
func NewMockFailing(err error) *MockLLMClient {
	m := NewMockLLMClient()
	m.ChatFunc = func(context.Context, []Message, string) (*Response, error) {
		return nil, err
	}
	return m
}

// Chat calls the injected ChatFunc or returns a default response.
func (m *MockLLMClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{
		Messages:     messages,
		SystemPrompt: systemPrompt,
	})
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, systemPrompt)
	}
	return &Response{
		Content:    "mock response",
		StopReason: "stop",
		Model:      m.GetModel(),
	}, nil
}

// CallCount returns how many times Chat was invoked.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// LastCall returns the most recent Chat call, or the zero value.
func (m *MockLLMClient) LastCall() ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatCalls) == 0 {
		return ChatCall{}
	}
	return m.ChatCalls[len(m.ChatCalls)-1]
}

// SetModel sets the model name.
func (m *MockLLMClient) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// GetModel returns the current model name.
func (m *MockLLMClient) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Close is a no-op for the mock client.
func (m *MockLLMClient) Close() error {
	return nil
}
