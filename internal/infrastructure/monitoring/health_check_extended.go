package monitoring

import (
	"context"
	"time"
)

// Pinger is anything that can report whether a dependency is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// AddDependencyCheck registers a check backed by p.HealthCheck.
func (h *HealthChecker) AddDependencyCheck(name string, p Pinger, interval, timeout time.Duration) {
	h.AddCheck(name, func(ctx context.Context) (bool, error) {
		if err := p.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// GetReadinessStatus returns readiness status for load balancer
func (h *HealthChecker) GetReadinessStatus(ctx context.Context) HealthStatus {
	return h.CheckAll(ctx)
}

// IsReady checks if the service is ready to accept traffic
func (h *HealthChecker) IsReady(ctx context.Context) bool {
	return h.CheckAll(ctx).Status == StatusHealthy
}
