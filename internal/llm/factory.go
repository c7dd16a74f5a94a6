package llm

import (
	"context"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// New builds the configured provider client wrapped with token budgeting
// and the retrying circuit breaker. A hosted provider without an API key
// yields a ClassifierNotConfigured error so callers can run in the
// no-classifier mode.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (LLMClient, error) {
	base, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Global().WithPrefix("llm").Info("llm client ready",
		logging.Provider(string(cfg.LLM.Provider)),
		logging.Model(base.GetModel()))
	return Wrap(base, cfg.RateLimit, opts...), nil
}

// Option configures the rate-limited layer built by New and Wrap.
type Option func(*RateLimitedClient)

// WithWaitCallback reports rate-limit waits, e.g. to a terminal spinner.
func WithWaitCallback(cb WaitCallback) Option {
	return func(c *RateLimitedClient) { c.SetWaitCallback(cb) }
}

// Wrap layers rate limiting under the resilient retry loop.
func Wrap(base LLMClient, cfg config.RateLimitConfig, opts ...Option) *ResilientClient {
	rl := NewRateLimitedClient(base, cfg)
	for _, opt := range opts {
		opt(rl)
	}
	return NewResilientClient(rl, cfg)
}

func newProvider(ctx context.Context, cfg *config.Config) (LLMClient, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		if cfg.LLM.AnthropicAPIKey == "" {
			return nil, hnerr.ClassifierNotConfigured()
		}
		return NewAnthropicClient(cfg), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg), nil
	default:
		return NewGeminiClient(ctx, cfg)
	}
}
