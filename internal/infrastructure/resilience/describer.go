package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/ports"
)

// Describer wraps a ContentDescriber with retry and a circuit breaker.
// Transient failures (network, model overload) are retried with exponential
// backoff; format errors and missing files are neither retried nor recorded
// against the breaker, since repeating them cannot help and they say nothing
// about backend health.
type Describer struct {
	inner   ports.ContentDescriber
	cfg     Config
	breaker *gobreaker.CircuitBreaker[domain.Description]
	logger  *slog.Logger
}

func WrapDescriber(inner ports.ContentDescriber, cfg Config, logger *slog.Logger) *Describer {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}

	d := &Describer{inner: inner, cfg: cfg, logger: logger}

	if cfg.BreakerEnabled {
		d.breaker = gobreaker.NewCircuitBreaker[domain.Description](gobreaker.Settings{
			Name:        "vision_describe",
			MaxRequests: cfg.BreakerHalfOpenMaxCalls,
			Timeout:     cfg.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.BreakerMinRequests {
					return false
				}
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRatio >= cfg.BreakerFailureRatio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !recordsFailure(err)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn("circuit_breaker_state_change",
					"operation", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return d
}

func (d *Describer) Describe(ctx context.Context, imagePath string) (domain.Description, error) {
	if d.breaker == nil {
		return d.describeWithRetry(ctx, imagePath)
	}
	return d.breaker.Execute(func() (domain.Description, error) {
		return d.describeWithRetry(ctx, imagePath)
	})
}

func (d *Describer) describeWithRetry(ctx context.Context, imagePath string) (domain.Description, error) {
	backoff := d.cfg.RetryInitialBackoff

	var lastErr error
	for attempt := 1; attempt <= d.cfg.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Description{}, err
		}

		description, err := d.inner.Describe(ctx, imagePath)
		if err == nil {
			return description, nil
		}
		lastErr = err

		if !retryable(err) || attempt == d.cfg.RetryMaxAttempts {
			return domain.Description{}, err
		}

		d.logger.Warn("retry_attempt",
			"operation", "vision_describe",
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			"error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.Description{}, ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * d.cfg.RetryMultiplier)
		if backoff > d.cfg.RetryMaxBackoff {
			backoff = d.cfg.RetryMaxBackoff
		}
	}

	return domain.Description{}, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return domain.IsKind(err, domain.ErrTemporary)
}

func recordsFailure(err error) bool {
	if domain.IsKind(err, domain.ErrDescriptionFormat) || domain.IsKind(err, domain.ErrFileNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
