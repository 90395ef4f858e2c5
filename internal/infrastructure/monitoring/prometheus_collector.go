package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Engagement and content actions by outcome
	actionsTotal *prometheus.CounterVec

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Media collaborator
	mediaBreakerState *prometheus.GaugeVec
}

// NewPrometheusCollector registers the collectors with reg. Use
// prometheus.DefaultRegisterer to expose them on /metrics.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidhub_actions_total",
			Help: "Engagement and content actions by outcome",
		}, []string{"action", "outcome"}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidhub_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidhub_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),

		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vidhub_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),

		mediaBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vidhub_media_circuit_state",
			Help: "Media circuit breaker state (0 closed, 1 open, 2 half-open)",
		}, []string{"backend"}),
	}
}

// RecordAction implements ports.MetricsRecorder.
func (p *PrometheusCollector) RecordAction(action, outcome string) {
	p.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (p *PrometheusCollector) RequestStarted() {
	p.httpInFlight.Inc()
}

func (p *PrometheusCollector) RequestFinished(method, route string, status int, duration time.Duration) {
	p.httpInFlight.Dec()
	p.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusCollector) SetMediaBreakerState(backend string, state int) {
	p.mediaBreakerState.WithLabelValues(backend).Set(float64(state))
}
