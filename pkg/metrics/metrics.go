package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	AdmissionsTotal  *prometheus.CounterVec
	DischargesTotal  *prometheus.CounterVec
	NotesWritten     *prometheus.CounterVec
	ReportsGenerated *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec

	DBQueryDuration *prometheus.HistogramVec
	DBConnections   prometheus.Gauge

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCollector registers every metric on reg. Pass prometheus.NewRegistry()
// in tests so collectors do not clash on the default registry.
func NewCollector(serviceName string, reg *prometheus.Registry) *Collector {
	f := promauto.With(reg)
	return &Collector{
		gatherer: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		AdmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ward",
			Name:      "admissions_total",
			Help:      "Total admissions by specialty.",
		}, []string{"specialty"}),

		DischargesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ward",
			Name:      "discharges_total",
			Help:      "Total discharges by specialty.",
		}, []string{"specialty"}),

		NotesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "ward",
			Name:      "notes_written_total",
			Help:      "Patient notes added or edited.",
		}, []string{"action"}),

		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Reports generated by mode and format.",
		}, []string{"mode", "format"}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Visit lifecycle events by type and outcome.",
		}, []string{"type", "outcome"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),

		AuditEntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
