// Package metrics exposes Prometheus instrumentation for backend fetches,
// report pages, exports, dashboard polls and tab rotation.
package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/j-veylop/hydro-dashboard-tui/internal/logger"
)

const (
	metricPrefix = "hydro_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec

	reportFetchTotal   *prometheus.CounterVec
	reportFetchLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
	exportBytes   *prometheus.CounterVec

	snapshotTotal   *prometheus.CounterVec
	snapshotLatency prometheus.Histogram
	sourceUp        *prometheus.GaugeVec

	rotationsTotal *prometheus.CounterVec
)

// Init registers the collectors. A non-nil db adds gauges backed by SQL counts.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		apiRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "api_requests_total",
				Help: "Total backend API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		apiLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "api_latency_seconds",
				Help:    "Backend API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)

		reportFetchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_fetch_total",
				Help: "Total report page fetches by kind and result",
			},
			[]string{"kind", "result"},
		)
		reportFetchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_fetch_latency_seconds",
				Help:    "Report page fetch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by kind, format and result",
			},
			[]string{"kind", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		exportBytes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_bytes_total",
				Help: "Bytes written by exports",
			},
			[]string{"format"},
		)

		snapshotTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_total",
				Help: "Total dashboard snapshot polls by result",
			},
			[]string{"result"},
		)
		snapshotLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "snapshot_latency_seconds",
				Help:    "Dashboard snapshot latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)
		sourceUp = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "source_up",
				Help: "Whether the last fetch of a live source succeeded",
			},
			[]string{"source"},
		)

		rotationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "autoloop_rotations_total",
				Help: "Total scheduled tab activations by tab",
			},
			[]string{"tab"},
		)

		prometheus.MustRegister(
			apiRequests,
			apiLatency,
			reportFetchTotal,
			reportFetchLatency,
			exportTotal,
			exportLatency,
			exportBytes,
			snapshotTotal,
			snapshotLatency,
			sourceUp,
			rotationsTotal,
		)

		if db != nil {
			registerDBMetrics(db)
		}
	})
}

func resultLabel(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObserveAPIRequest records one backend request.
func ObserveAPIRequest(endpoint string, err error, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if apiRequests != nil {
		apiRequests.WithLabelValues(endpoint, resultLabel(err)).Inc()
	}
	if apiLatency != nil {
		apiLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// ObserveReportFetch records one report page fetch.
func ObserveReportFetch(kind string, err error, duration time.Duration) {
	if reportFetchTotal != nil {
		reportFetchTotal.WithLabelValues(kind, resultLabel(err)).Inc()
	}
	if reportFetchLatency != nil {
		reportFetchLatency.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// ObserveExport records one export job.
func ObserveExport(kind, format string, err error, duration time.Duration, bytes int64) {
	if exportTotal != nil {
		exportTotal.WithLabelValues(kind, format, resultLabel(err)).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
	if exportBytes != nil && bytes > 0 {
		exportBytes.WithLabelValues(format).Add(float64(bytes))
	}
}

// ObserveSnapshot records one dashboard aggregation. err is the summary error.
func ObserveSnapshot(err error, duration time.Duration) {
	if snapshotTotal != nil {
		snapshotTotal.WithLabelValues(resultLabel(err)).Inc()
	}
	if snapshotLatency != nil {
		snapshotLatency.Observe(duration.Seconds())
	}
}

// SetSourceUp flags whether a live source answered on the last poll.
func SetSourceUp(source string, up bool) {
	if sourceUp == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	sourceUp.WithLabelValues(source).Set(v)
}

// IncRotation counts a scheduled tab activation.
func IncRotation(tab string) {
	if rotationsTotal != nil {
		rotationsTotal.WithLabelValues(tab).Inc()
	}
}

func registerDBMetrics(db *sql.DB) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "export_history_records",
			Help: "Export records kept in the local history",
		},
		func() float64 {
			return queryCount(db, "SELECT COUNT(*) FROM export_history")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "dam_readings_recorded",
			Help: "Dam readings recorded locally",
		},
		func() float64 {
			return queryCount(db, "SELECT COUNT(*) FROM dam_readings")
		},
	))
}

func queryCount(db *sql.DB, query string) float64 {
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		logger.Debug("metrics query failed", "error", err)
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
