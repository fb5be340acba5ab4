package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ClientMetrics records API calls issued by the transport client.
type ClientMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopadmin_api_request_duration_seconds",
		Help:    "Duration of shop API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopadmin_api_requests_total",
		Help: "Shop API calls by outcome and status.",
	}, []string{"method", "route", "outcome", "status"})
	reg.MustRegister(duration, requests)
	return &ClientMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one finished call. status is the HTTP status, or 0 when no response arrived.
func (c *ClientMetrics) Observe(method, route string, status int, elapsed time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	route = normalizeLabel(route)
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.requests.WithLabelValues(method, route, outcome, statusLabel(status)).Inc()
}

func statusLabel(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
