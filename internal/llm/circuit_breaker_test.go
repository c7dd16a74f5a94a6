package llm

import (
	"testing"
	"time"
)

// newClockedBreaker returns a breaker whose clock is advanced by the test.
func newClockedBreaker(maxFailures int, timeout time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(maxFailures, timeout)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreaker_StartsClosedAndAllows(t *testing.T) {
	cb := NewCircuitBreaker(3, 100*time.Millisecond)
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("closed circuit should allow requests")
	}
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.State() != CircuitOpen {
		t.Errorf("expected open after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("open circuit should reject requests")
	}
}

func TestCircuitBreaker_HalfOpenAllowsSingleProbe(t *testing.T) {
	cb, now := newClockedBreaker(2, 50*time.Millisecond)
	cb.RecordFailure()
	cb.RecordFailure()

	*now = now.Add(60 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("should allow a probe after timeout")
	}
	if cb.State() != CircuitHalfOpen {
		t.Errorf("expected half-open, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("second concurrent probe should be rejected")
	}
}

func TestCircuitBreaker_ClosesAfterSuccessesInHalfOpen(t *testing.T) {
	cb, now := newClockedBreaker(2, 50*time.Millisecond)
	cb.RecordFailure()
	cb.RecordFailure()
	*now = now.Add(time.Second)

	cb.Allow()
	cb.RecordSuccess()
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("one success should keep half-open, got %s", cb.State())
	}
	cb.Allow()
	cb.RecordSuccess()
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successes in half-open, got %s", cb.State())
	}
}

func TestCircuitBreaker_ReOpensOnFailureInHalfOpen(t *testing.T) {
	cb, now := newClockedBreaker(2, 50*time.Millisecond)
	cb.RecordFailure()
	cb.RecordFailure()
	*now = now.Add(time.Second)
	cb.Allow()

	cb.RecordFailure()
	if cb.State() != CircuitOpen {
		t.Errorf("expected open after failure in half-open, got %s", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Second)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if cb.State() != CircuitClosed {
		t.Error("expected closed after success reset")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Error("expected closed after reset")
	}
	if !cb.Allow() {
		t.Error("should allow after reset")
	}
}

func TestCircuitBreaker_DefaultValues(t *testing.T) {
	cb := NewCircuitBreaker(0, 0)
	if cb.maxFailures != 5 {
		t.Errorf("expected default maxFailures 5, got %d", cb.maxFailures)
	}
	if cb.timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cb.timeout)
	}
}

func TestCircuitState_String(t *testing.T) {
	tests := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(42): "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(state), got, want)
		}
	}
}
