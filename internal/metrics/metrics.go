package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "forexdaily"

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of ingestion runs by outcome",
		},
		[]string{"status"},
	)

	RunDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of one ingestion run in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	FeedsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feeds_total",
			Help:      "Total number of fetched feeds by outcome",
		},
		[]string{"status"},
	)

	DocumentsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_stored_total",
			Help:      "Total number of exchange rate documents written",
		},
	)

	DocumentsRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_removed_total",
			Help:      "Total number of stale exchange rate documents deleted",
		},
	)

	LastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful run",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by path, method and status code",
		},
		[]string{"path", "method", "code"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by path",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// ObserveRun records the outcome of one ingestion run
func ObserveRun(elapsed time.Duration, stored, removed int, err error) {
	RunDurationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		RunsTotal.WithLabelValues(StatusFailed).Inc()
		return
	}

	RunsTotal.WithLabelValues(StatusOK).Inc()
	DocumentsStoredTotal.Add(float64(stored))
	DocumentsRemovedTotal.Add(float64(removed))
	LastSuccessTimestamp.SetToCurrentTime()
}

// ObserveFeed records the outcome of one feed fetch and parse
func ObserveFeed(ok bool) {
	if ok {
		FeedsTotal.WithLabelValues(StatusOK).Inc()
		return
	}

	FeedsTotal.WithLabelValues(StatusFailed).Inc()
}

// ObserveHTTP records one served request
func ObserveHTTP(path, method string, code int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(code)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(path).Observe(elapsed.Seconds())
}
