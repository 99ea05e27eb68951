package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ── 分配运行 ──

	AssignmentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_assignment_runs_total",
			Help: "Total number of assignment runs by result",
		},
		[]string{"result"}, // success | error
	)

	AssignmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_assignment_duration_seconds",
			Help:    "Duration of a full assignment run in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	AssignmentTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roster_assignment_tasks",
			Help: "Task counts of the latest assignment run",
		},
		[]string{"state"}, // assigned | unassigned
	)

	AssignmentLeftoverWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roster_assignment_leftover_workers",
			Help: "Workers left in the unassigned pool by the latest run",
		},
	)

	// ── 上传 ──

	ImportedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_import_rows_total",
			Help: "Rows accepted from uploaded workbooks",
		},
		[]string{"kind"}, // roster | preferences
	)

	// ── HTTP ──

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveRun 记录一次成功分配的统计
func ObserveRun(seconds float64, assigned, unassigned, leftover int) {
	AssignmentRuns.WithLabelValues("success").Inc()
	AssignmentDuration.Observe(seconds)
	AssignmentTasks.WithLabelValues("assigned").Set(float64(assigned))
	AssignmentTasks.WithLabelValues("unassigned").Set(float64(unassigned))
	AssignmentLeftoverWorkers.Set(float64(leftover))
}
