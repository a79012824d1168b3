// Package retry implements bounded retries with exponential backoff and
// jitter for calls against external services.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// PermanentError wraps an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as non-retryable; Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

type Options struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Logger     *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Attempts:   3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Logger:     zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = d.BaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = d.MaxDelay
	}
	if o.Multiplier <= 1 {
		o.Multiplier = d.Multiplier
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

// Do runs the operation until it succeeds, the attempt budget is spent, or
// the context is canceled. The last error is returned when all attempts fail.
func Do(ctx context.Context, opts Options, operation func() error) error {
	opts = opts.withDefaults()

	var lastErr error
	delay := opts.BaseDelay

	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				opts.Logger.Info("Operation succeeded after retry", zap.Int("attempt", attempt))
			}
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}

		if attempt == opts.Attempts {
			break
		}

		opts.Logger.Warn("Operation failed, retrying",
			zap.Error(lastErr),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", opts.Attempts),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(delay)):
		}

		delay = time.Duration(float64(delay) * opts.Multiplier)
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}
	}

	return lastErr
}

// DoWithResult is Do for operations that return a value.
func DoWithResult[T any](ctx context.Context, opts Options, operation func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, opts, func() error {
		var opErr error
		result, opErr = operation()
		return opErr
	})
	return result, err
}

// jitter spreads retries by up to 10% in either direction.
func jitter(d time.Duration) time.Duration {
	offset := time.Duration((rand.Float64()*0.2 - 0.1) * float64(d))
	return d + offset
}
