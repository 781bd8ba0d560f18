package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterRateLimitThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	if !cb.Allow() {
		t.Fatalf("expected closed breaker to allow")
	}
	rl := RateLimitError{Provider: "tts"}
	cb.OnError(rl)
	if !cb.Allow() {
		t.Fatalf("expected breaker closed below threshold")
	}
	cb.OnError(rl)
	if cb.Allow() {
		t.Fatalf("expected breaker open at threshold")
	}
}

func TestBreakerIgnoresOtherErrors(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	cb.OnError(errors.New("timeout"))
	if !cb.Allow() {
		t.Fatalf("expected non-rate-limit errors to not trip the breaker")
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)
	cb.OnError(RateLimitError{})
	cb.OnSuccess()
	cb.OnError(RateLimitError{})
	if !cb.Allow() {
		t.Fatalf("expected failure count reset by success")
	}
}

func TestIsRateLimit(t *testing.T) {
	if !IsRateLimit(RateLimitError{Message: "429"}) {
		t.Fatalf("expected rate limit detection")
	}
	if IsRateLimit(errors.New("boom")) {
		t.Fatalf("expected plain error to not match")
	}
}
