package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

type flakyDescriber struct {
	failures int
	err      error
	calls    int
}

func (f *flakyDescriber) Describe(context.Context, string) (domain.Description, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.Description{}, f.err
	}
	return domain.Description{Category: "other", Description: "ok", SuggestedFilename: "ok"}, nil
}

func fastRetryConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
	}
}

func temporaryErr() error {
	return domain.WrapError(domain.ErrTemporary, "vision chat completion", errors.New("503"))
}

func TestDescribeRetriesTemporaryErrors(t *testing.T) {
	inner := &flakyDescriber{failures: 2, err: temporaryErr()}
	d := WrapDescriber(inner, fastRetryConfig(), nil)

	got, err := d.Describe(context.Background(), "/tmp/shot.png")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("inner calls = %d, want 3", inner.calls)
	}
	if got.Description != "ok" {
		t.Fatalf("unexpected description: %+v", got)
	}
}

func TestDescribeExhaustsAttempts(t *testing.T) {
	inner := &flakyDescriber{failures: 10, err: temporaryErr()}
	d := WrapDescriber(inner, fastRetryConfig(), nil)

	_, err := d.Describe(context.Background(), "/tmp/shot.png")
	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if inner.calls != 3 {
		t.Fatalf("inner calls = %d, want 3", inner.calls)
	}
}

func TestDescribeDoesNotRetryFormatErrors(t *testing.T) {
	inner := &flakyDescriber{
		failures: 10,
		err:      domain.WrapError(domain.ErrDescriptionFormat, "parse vision response", errors.New("bad json")),
	}
	d := WrapDescriber(inner, fastRetryConfig(), nil)

	_, err := d.Describe(context.Background(), "/tmp/shot.png")
	if !domain.IsKind(err, domain.ErrDescriptionFormat) {
		t.Fatalf("expected description-format kind, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1 (no retry)", inner.calls)
	}
}

func TestDescribeDoesNotRetryAfterCancel(t *testing.T) {
	inner := &flakyDescriber{failures: 10, err: temporaryErr()}
	d := WrapDescriber(inner, fastRetryConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Describe(ctx, "/tmp/shot.png")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("inner calls = %d, want 0", inner.calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute

	inner := &flakyDescriber{failures: 100, err: temporaryErr()}
	d := WrapDescriber(inner, cfg, nil)

	var lastErr error
	for i := 0; i < 5; i++ {
		_, lastErr = d.Describe(context.Background(), "/tmp/shot.png")
	}
	if !IsCircuitOpen(lastErr) {
		t.Fatalf("expected open circuit, got %v", lastErr)
	}
	if inner.calls >= 5 {
		t.Fatalf("inner calls = %d, breaker never short-circuited", inner.calls)
	}
}

func TestBreakerIgnoresFormatErrors(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute

	inner := &flakyDescriber{
		failures: 100,
		err:      domain.WrapError(domain.ErrDescriptionFormat, "parse vision response", fmt.Errorf("bad json")),
	}
	d := WrapDescriber(inner, cfg, nil)

	for i := 0; i < 10; i++ {
		if _, err := d.Describe(context.Background(), "/tmp/shot.png"); IsCircuitOpen(err) {
			t.Fatalf("breaker tripped on format errors at call %d", i+1)
		}
	}
	if inner.calls != 10 {
		t.Fatalf("inner calls = %d, want 10", inner.calls)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("attempts = %d, want %d", cfg.RetryMaxAttempts, def.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff {
		t.Fatalf("initial backoff = %v, want %v", cfg.RetryInitialBackoff, def.RetryInitialBackoff)
	}
	if cfg.BreakerMinRequests != def.BreakerMinRequests {
		t.Fatalf("breaker min requests = %d, want %d", cfg.BreakerMinRequests, def.BreakerMinRequests)
	}
}
