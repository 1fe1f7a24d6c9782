package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dorm_maintenance"

var (
	// HTTPRequests counts API requests.
	// Labels: method, route (gin full path), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration measures request latency.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// DueScanRuns counts scheduled due scans.
	// Labels: status (success, error)
	DueScanRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "due_scan",
		Name:      "runs_total",
		Help:      "Total scheduled due scans by outcome",
	}, []string{"status"})

	// DueItems is the number of due items found by the last scan.
	DueItems = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "due_scan",
		Name:      "due_items",
		Help:      "Due maintenance items found by the last scan",
	})

	// NotificationsSent counts delivery attempts.
	// Labels: status (sent, failed)
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "deliveries_total",
		Help:      "Due notification deliveries by outcome",
	}, []string{"status"})

	// Completions counts schedules marked done, by channel (api, telegram).
	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "maintenance",
		Name:      "completions_total",
		Help:      "Maintenance schedules marked done",
	}, []string{"channel"})

	// Skips counts newly recorded skips, by channel (api, telegram).
	Skips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "maintenance",
		Name:      "skips_total",
		Help:      "Due occurrences skipped",
	}, []string{"channel"})
)

// RecordDueScan updates scan metrics from one dispatch run.
func RecordDueScan(due, sent, failed int, err error) {
	if err != nil {
		DueScanRuns.WithLabelValues("error").Inc()
		return
	}
	DueScanRuns.WithLabelValues("success").Inc()
	DueItems.Set(float64(due))
	NotificationsSent.WithLabelValues("sent").Add(float64(sent))
	NotificationsSent.WithLabelValues("failed").Add(float64(failed))
}
