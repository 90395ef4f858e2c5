package services

import (
	"errors"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
)

type noopMetrics struct{}

func (noopMetrics) RecordAction(string, string) {}

func metricsOrNoop(m ports.MetricsRecorder) ports.MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// outcomeOf separates requests the rules refused from genuine failures.
func outcomeOf(err error) string {
	if err == nil {
		return ports.OutcomeSuccess
	}
	if errors.Is(err, domain.ErrUpstream) || errors.Is(err, domain.ErrConcurrentUpdate) {
		return ports.OutcomeError
	}

	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrVideoNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrNotSubscribed),
		errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, domain.ErrForbidden),
		domain.IsAlreadyApplied(err):
		return ports.OutcomeRejected
	}
	return ports.OutcomeError
}
