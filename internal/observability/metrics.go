package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seedctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seedctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seedctl",
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Tool invocations by name and outcome.",
		},
		[]string{"tool", "success"},
	)
	toolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seedctl",
			Subsystem: "tool",
			Name:      "call_duration_seconds",
			Help:      "Tool invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool", "success"},
	)
	seedRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seedctl",
			Subsystem: "seed",
			Name:      "runs_total",
			Help:      "Seed runs by project type and failure kind.",
		},
		[]string{"project_type", "kind"},
	)
	seedDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seedctl",
			Subsystem: "seed",
			Name:      "run_duration_seconds",
			Help:      "Seed command duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"project_type"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, toolCalls, toolDuration, seedRuns, seedDuration)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordToolCall(tool string, success bool, duration time.Duration) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	toolCalls.WithLabelValues(tool, successLabel).Inc()
	toolDuration.WithLabelValues(tool, successLabel).Observe(duration.Seconds())
}

// RecordSeedRun counts one seed outcome; kind is "ok" for successful runs.
func RecordSeedRun(projectType, kind string, duration time.Duration) {
	RegisterMetrics()
	if kind == "" {
		kind = "ok"
	}
	seedRuns.WithLabelValues(projectType, kind).Inc()
	if duration > 0 {
		seedDuration.WithLabelValues(projectType).Observe(duration.Seconds())
	}
}
