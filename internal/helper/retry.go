// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/telekom/geotracer/internal/logger"
)

// RetryConfig configures how often and how patiently a failing call is retried.
type RetryConfig struct {
	// Count is the number of retries after the first attempt.
	Count int `json:"count" yaml:"count" mapstructure:"count"`
	// Delay is the wait before the first retry. It doubles with every further retry.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so [Retry] gives up immediately.
// Retrying a request the server rejected as invalid is pointless.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls fn until it succeeds, returns a [Permanent] error or the
// retries are used up. Delays grow exponentially.
// The context aborts the waiting between attempts.
func Retry[T any](ctx context.Context, rc RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	log := logger.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return res, perm.err
		}
		if attempt > rc.Count {
			return res, err
		}

		delay := getExpBackoff(rc.Delay, attempt)
		log.DebugContext(ctx, "Call failed, retrying", "attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// getExpBackoff returns the delay before the given retry, the first retry being 1.
func getExpBackoff(initialDelay time.Duration, iteration int) time.Duration {
	if iteration <= 1 {
		return initialDelay
	}
	return time.Duration(math.Pow(2, float64(iteration-1))) * initialDelay
}
