// ABOUTME: Prometheus metrics for API calls
// ABOUTME: Request counts by method and outcome, latency by method

package vkapi

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds API call metrics. A nil *Metrics records nothing.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates API metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vkattach",
				Name:      "api_requests_total",
				Help:      "Total number of API calls",
			},
			[]string{"method", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vkattach",
				Name:      "api_request_duration_seconds",
				Help:      "API call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

func (m *Metrics) observe(method string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, status(err)).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func status(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	default:
		return "transport_error"
	}
}
