package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce              sync.Once
	adminRequestsTotal        *prometheus.CounterVec
	adminLatencySeconds       *prometheus.HistogramVec
	adminErrorsTotal          *prometheus.CounterVec
	auditEntriesTotal         *prometheus.CounterVec
	attendanceMarksTotal      *prometheus.CounterVec
	snapshotLatencySeconds    *prometheus.HistogramVec
	activityFeedRequestsTotal *prometheus.CounterVec
	activityStreamClients     prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used for admin observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		auditEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Committed activity log entries by category.",
		}, []string{"category"})

		attendanceMarksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_marks_total",
			Help: "Attendance rows marked by person type and status.",
		}, []string{"person_type", "status"})

		snapshotLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_snapshot_seconds",
			Help:    "Time spent reconstructing batch attendance snapshots.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"person_type"})

		activityFeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_feed_requests_total",
			Help: "Activity feed requests by cache outcome.",
		}, []string{"result"})

		activityStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activity_stream_clients",
			Help: "Websocket clients following the live activity stream.",
		})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			auditEntriesTotal,
			attendanceMarksTotal,
			snapshotLatencySeconds,
			activityFeedRequestsTotal,
			activityStreamClients,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// AuditEntries exposes the counter of committed activity log entries.
func AuditEntries() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEntriesTotal
}

// AttendanceMarks exposes the counter of marked attendance rows.
func AttendanceMarks() *prometheus.CounterVec {
	RegisterMetrics()
	return attendanceMarksTotal
}

// SnapshotLatency exposes the snapshot build histogram.
func SnapshotLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return snapshotLatencySeconds
}

// ActivityFeedRequests exposes the feed cache outcome counter.
func ActivityFeedRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return activityFeedRequestsTotal
}

// ActivityStreamClients exposes the live stream connection gauge.
func ActivityStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return activityStreamClients
}

// MetricsHandler serves the default registry in the OpenMetrics format when negotiated.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
