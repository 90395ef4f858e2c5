package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/circuitbreaker"
	"vidhub/pkg/retry"
	"vidhub/pkg/tracing"

	"go.uber.org/zap"
)

// ResilientStore guards a media store with a circuit breaker and retries.
// Every failure it returns wraps domain.ErrUpstream.
type ResilientStore struct {
	next    ports.MediaStore
	backend string
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	logger  *zap.SugaredLogger

	mu       sync.RWMutex
	onChange func(backend string, to circuitbreaker.State)
}

func NewResilientStore(next ports.MediaStore, backend string, cbCfg circuitbreaker.Config, retryCfg retry.Config, logger *zap.SugaredLogger) *ResilientStore {
	cbCfg.IsFailure = func(err error) bool {
		return !errors.Is(err, context.Canceled)
	}
	retryCfg.Retryable = func(err error) bool {
		return !errors.Is(err, circuitbreaker.ErrOpen) &&
			!errors.Is(err, context.Canceled) &&
			!errors.Is(err, context.DeadlineExceeded)
	}

	s := &ResilientStore{
		next:    next,
		backend: backend,
		breaker: circuitbreaker.New(cbCfg),
		retry:   retryCfg,
		logger:  logger,
	}
	s.breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("media circuit breaker state changed",
			"backend", backend,
			"from", from.String(),
			"to", to.String(),
		)

		s.mu.RLock()
		hook := s.onChange
		s.mu.RUnlock()
		if hook != nil {
			hook(backend, to)
		}
	})
	return s
}

// OnBreakerChange registers a hook for circuit transitions, e.g. to export
// the state as a metric.
func (s *ResilientStore) OnBreakerChange(fn func(backend string, to circuitbreaker.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *ResilientStore) Backend() string {
	return s.backend
}

func (s *ResilientStore) Upload(ctx context.Context, kind domain.MediaKind, upload ports.MediaUpload) (domain.MediaRef, error) {
	ctx, span := tracing.TraceMediaOperation(ctx, s.backend, "upload", string(kind))
	defer span.End()

	cfg := s.retry
	seeker, rewindable := upload.Body.(io.Seeker)
	if !rewindable {
		cfg.MaxAttempts = 1
	}

	attempt := 0
	ref, err := retry.DoWithResult(ctx, cfg, func() (domain.MediaRef, error) {
		if attempt > 0 {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return domain.MediaRef{}, err
			}
		}
		attempt++
		return circuitbreaker.Execute(ctx, s.breaker, func() (domain.MediaRef, error) {
			return s.next.Upload(ctx, kind, upload)
		})
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		s.logger.Errorw("media upload failed", "backend", s.backend, "kind", kind, "error", err)
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return ref, nil
}

func (s *ResilientStore) Release(ctx context.Context, kind domain.MediaKind, handle string) error {
	if handle == "" {
		return nil
	}

	ctx, span := tracing.TraceMediaOperation(ctx, s.backend, "release", string(kind))
	defer span.End()

	err := retry.Do(ctx, s.retry, func() error {
		return s.breaker.Execute(ctx, func() error {
			return s.next.Release(ctx, kind, handle)
		})
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return nil
}

func (s *ResilientStore) HealthCheck(ctx context.Context) error {
	if s.breaker.GetState() == circuitbreaker.StateOpen {
		return circuitbreaker.ErrOpen
	}
	if hc, ok := s.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (s *ResilientStore) BreakerState() circuitbreaker.State {
	return s.breaker.GetState()
}
