// Package retry runs fallible source operations with capped exponential
// backoff, admitting every attempt through a rate limiter.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Admitter gates each attempt. *ratelimit.Limiter satisfies it.
type Admitter interface {
	Admit(ctx context.Context) error
}

type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

type Executor struct {
	cfg   Config
	admit Admitter

	// OnRetry is called after a transient failure, before sleeping.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func New(cfg Config, admit Admitter) *Executor {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return &Executor{cfg: cfg, admit: admit}
}

// Delay returns the backoff before retrying after the given zero-based attempt.
func (e *Executor) Delay(attempt int) time.Duration {
	delay := e.cfg.BaseDelay
	for i := 0; i < attempt && delay < e.cfg.MaxDelay; i++ {
		delay *= 2
	}
	return min(delay, e.cfg.MaxDelay)
}

// Execute runs op up to MaxRetries+1 times. Fatal errors, and any error once
// ctx is done, are returned as is. When all attempts fail the result is an
// *ExhaustedError naming operation.
func (e *Executor) Execute(ctx context.Context, operation string, op func(context.Context) error) error {
	var lastErr error
	attempts := e.cfg.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if e.admit != nil {
			if err := e.admit.Admit(ctx); err != nil {
				return err
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if Classify(err) == Fatal || ctx.Err() != nil {
			return err
		}

		if attempt == attempts-1 {
			break
		}

		delay := e.Delay(attempt)
		slog.Warn("Operation failed, retrying", "operation", operation, "attempt", attempt+1, "delay", delay, "error", err)
		if e.OnRetry != nil {
			e.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return &ExhaustedError{Context: operation, Attempts: attempts, Err: lastErr}
}
