package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/pkg/retry"
)

// errVersionMismatch means a replace matched no document at the version
// that was read, so another writer got there first.
var errVersionMismatch = errors.New("document version changed")

func conflictRetry(attempts int) retry.Config {
	if attempts < 1 {
		attempts = 1
	}
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable: func(err error) bool {
			return errors.Is(err, errVersionMismatch)
		},
	}
}

func withConflictRetry[T any](ctx context.Context, cfg retry.Config, fn func() (T, error)) (T, error) {
	result, err := retry.DoWithResult(ctx, cfg, fn)
	if errors.Is(err, errVersionMismatch) {
		return result, fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
	}
	return result, err
}
