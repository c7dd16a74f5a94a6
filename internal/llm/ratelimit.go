package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tenxer/handnav/internal/config"
	"github.com/tenxer/handnav/internal/logging"
)

// TokenEstimator estimates token counts for rate limiting
type TokenEstimator struct{}

// NewTokenEstimator creates a new token estimator
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{}
}

// EstimateTokens estimates the number of tokens in a string.
// Uses chars/4 plus a 20% buffer.
func (e *TokenEstimator) EstimateTokens(text string) int {
	baseEstimate := len(text) / 4
	return int(float64(baseEstimate) * 1.2)
}

// EstimateMessages estimates tokens for a slice of messages
func (e *TokenEstimator) EstimateMessages(messages []Message) int {
	total := 0
	for _, msg := range messages {
		// ~4 tokens of structure per message
		total += 4
		total += e.EstimateTokens(msg.Content)
	}
	return total
}

// WaitInfo contains information about a rate limit wait
type WaitInfo struct {
	Duration    time.Duration // How long to wait
	Reason      string        // "token bucket cooldown" or "API returned 429"
	Attempt     int           // Current attempt number (1-based, 0 if not a retry)
	MaxAttempts int           // Maximum number of attempts (0 if not a retry)
}

// WaitCallback is called when the client needs to wait due to rate limiting.
// It should block for the specified duration or until context is cancelled.
type WaitCallback func(ctx context.Context, info WaitInfo) error

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	limiter *rate.Limiter
	mu      sync.Mutex
	onWait  WaitCallback
}

// NewTokenBucket creates a new token bucket rate limiter.
// tokensPerMinute is converted to tokens per second for the limiter.
func NewTokenBucket(tokensPerMinute int) *TokenBucket {
	tokensPerSecond := float64(tokensPerMinute) / 60.0
	// Burst covers ten seconds of budget
	burstSize := tokensPerMinute / 6
	if burstSize < 1000 {
		burstSize = 1000
	}

	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), burstSize),
	}
}

// SetWaitCallback sets a callback to be invoked when waiting for tokens
func (tb *TokenBucket) SetWaitCallback(cb WaitCallback) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.onWait = cb
}

// Wait blocks until the specified number of tokens are available
func (tb *TokenBucket) Wait(ctx context.Context, tokens int) error {
	tb.mu.Lock()
	onWait := tb.onWait
	tb.mu.Unlock()

	if tokens > tb.limiter.Burst() {
		tokens = tb.limiter.Burst()
	}
	reservation := tb.limiter.ReserveN(time.Now(), tokens)
	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}

	logging.Global().WithPrefix("llm").Debug("rate limit wait",
		logging.Duration(delay), logging.F("tokens", tokens))

	if onWait != nil {
		if err := onWait(ctx, WaitInfo{Duration: delay, Reason: "token bucket cooldown"}); err != nil {
			reservation.Cancel()
			return err
		}
		return nil
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return ctx.Err()
	}
}

// RateLimitedClient wraps any LLMClient with proactive token budgeting and
// 429-aware retries.
type RateLimitedClient struct {
	LLMClient
	tokenBucket *TokenBucket
	estimator   *TokenEstimator
	cfg         config.RateLimitConfig
	onWait      WaitCallback
}

// NewRateLimitedClient creates a new rate-limited client wrapper
func NewRateLimitedClient(client LLMClient, cfg config.RateLimitConfig) *RateLimitedClient {
	return &RateLimitedClient{
		LLMClient:   client,
		tokenBucket: NewTokenBucket(cfg.TokensPerMinute),
		estimator:   NewTokenEstimator(),
		cfg:         cfg,
	}
}

// SetWaitCallback sets a callback to be invoked when waiting due to rate limiting.
func (c *RateLimitedClient) SetWaitCallback(cb WaitCallback) {
	c.onWait = cb
	c.tokenBucket.SetWaitCallback(cb)
}

// Chat sends a message with rate limiting and returns the response
func (c *RateLimitedClient) Chat(ctx context.Context, messages []Message, systemPrompt string) (*Response, error) {
	log := logging.Global().WithPrefix("llm")

	if c.cfg.EnableRateLimiting {
		estimated := c.estimator.EstimateMessages(messages) + c.estimator.EstimateTokens(systemPrompt)
		if err := c.tokenBucket.Wait(ctx, estimated); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			if c.onWait != nil {
				if err := c.onWait(ctx, WaitInfo{
					Duration:    delay,
					Reason:      "API returned 429",
					Attempt:     attempt,
					MaxAttempts: c.cfg.MaxRetries,
				}); err != nil {
					return nil, err
				}
			} else {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}

		resp, err := c.LLMClient.Chat(ctx, messages, systemPrompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRateLimitError(err) {
			return nil, err
		}
		log.Warn("rate limit hit",
			logging.F("attempt", attempt+1),
			logging.F("max_attempts", c.cfg.MaxRetries+1),
			logging.Error(err))
	}

	return nil, lastErr
}

// calculateBackoff uses exponential backoff with 0-25% jitter, capped at MaxDelay.
func (c *RateLimitedClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	backoff += backoff * 0.25 * rand.Float64()
	if backoff > float64(c.cfg.MaxDelay) {
		backoff = float64(c.cfg.MaxDelay)
	}
	return time.Duration(backoff)
}
