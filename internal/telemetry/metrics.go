package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PackagesTotal   *prometheus.CounterVec
	CarrierErrors   *prometheus.CounterVec
}

// NewMetrics creates the service metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balikobot_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "balikobot_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		PackagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balikobot_packages_added_total",
				Help: "Total number of packages accepted by carrier",
			},
			[]string{"carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balikobot_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error reason",
			},
			[]string{"carrier", "reason"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordPackages counts packages accepted by a carrier.
func (m *Metrics) RecordPackages(carrier string, n int) {
	m.PackagesTotal.WithLabelValues(carrier).Add(float64(n))
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, reason string) {
	m.CarrierErrors.WithLabelValues(carrier, reason).Inc()
}
