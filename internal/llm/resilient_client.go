package llm

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// ResilientClient wraps an LLMClient with retry logic and circuit breaking.
type ResilientClient struct {
	inner      LLMClient
	cb         *CircuitBreaker
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewResilientClient wraps the given client with resilience features.
func NewResilientClient(inner LLMClient, cfg config.RateLimitConfig) *ResilientClient {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 1 * time.Second
	}
	maxDelay := cfg.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	return &ResilientClient{
		inner:      inner,
		cb:         NewCircuitBreaker(5, 30*time.Second),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
	}
}

// Chat sends a request with retry and circuit breaker protection.
func (rc *ResilientClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if !rc.cb.Allow() {
			return nil, hnerr.LLMUnavailable(ErrCircuitOpen)
		}

		resp, err := rc.inner.Chat(ctx, messages, systemPrompt)
		if err == nil {
			rc.cb.RecordSuccess()
			return resp, nil
		}

		lastErr = err
		rc.cb.RecordFailure()

		if !hnerr.IsRetryable(err) || attempt == rc.maxRetries || ctx.Err() != nil {
			break
		}

		delay := rc.backoff(attempt)
		logging.Global().WithPrefix("llm").Debug("retrying classifier call",
			logging.F("attempt", attempt+1), logging.Duration(delay), logging.Error(err))
		select {
		case <-ctx.Done():
			return nil, hnerr.LLMTimeout(ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

// Breaker exposes the circuit breaker for status reporting.
func (rc *ResilientClient) Breaker() *CircuitBreaker {
	return rc.cb
}

// SetModel delegates to the inner client.
func (rc *ResilientClient) SetModel(model string) {
	rc.inner.SetModel(model)
}

// GetModel delegates to the inner client.
func (rc *ResilientClient) GetModel() string {
	return rc.inner.GetModel()
}

// Close delegates to the inner client.
func (rc *ResilientClient) Close() error {
	return rc.inner.Close()
}

// backoff returns 50-100% of an exponentially growing delay.
func (rc *ResilientClient) backoff(attempt int) time.Duration {
	delay := rc.baseDelay * (1 << uint(attempt))
	if delay > rc.maxDelay {
		delay = rc.maxDelay
	}
	half := int64(delay / 2)
	if half <= 0 {
		return delay
	}
	return time.Duration(half + rand.Int64N(half))
}
