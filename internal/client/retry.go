package client

import (
	"context"
	"time"
)

const (
	retryAttempts = 2
	retryDelay    = time.Second
)

// Retry runs fn and, if it fails with a transport error, runs it once more after a
// one second pause. Server errors are returned as is.
func Retry[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	return retry(ctx, retryAttempts, retryDelay, fn)
}

func retry[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}

		result, err = fn(ctx)
		if err == nil || !IsTransport(err) {
			return result, err
		}
	}
	return result, err
}
