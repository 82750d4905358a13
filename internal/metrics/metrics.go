// Package metrics provides Prometheus collectors for analytics runs and sample ingestion.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names
const (
	MetricAnalyticsRunsTotal     = "classpulse_analytics_runs_total"
	MetricAnalyticsDuration      = "classpulse_analytics_duration_seconds"
	MetricSamplesIngestedTotal   = "classpulse_samples_ingested_total"
	MetricSamplesRejectedTotal   = "classpulse_samples_rejected_total"
	MetricSkippedPeriodsTotal    = "classpulse_skipped_periods_total"
	MetricReportCacheHitsTotal   = "classpulse_report_cache_hits_total"
	MetricReportCacheMissesTotal = "classpulse_report_cache_misses_total"
)

// Analytics operations
const (
	OperationAnalyze        = "analyze"
	OperationSummary        = "summary"
	OperationAdvanced       = "advanced"
	OperationReport         = "report"
	OperationStateless      = "stateless"
	OperationTeacherSummary = "teacher_summary"
)

// Sample sources
const (
	SourceHTTP  = "http"
	SourceQueue = "queue"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	ingestedTotal  *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	skippedPeriods prometheus.Counter
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
}

// NewMetrics creates the collectors. They are not registered; call Register.
func NewMetrics() *Metrics {
	return &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnalyticsRunsTotal,
				Help: "Total number of analytics computations by operation and status",
			},
			[]string{"operation", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricAnalyticsDuration,
				Help:    "Histogram of analytics computation time in seconds by operation",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		ingestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSamplesIngestedTotal,
				Help: "Total number of engagement samples stored by source",
			},
			[]string{"source"},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSamplesRejectedTotal,
				Help: "Total number of engagement samples rejected by source and reason",
			},
			[]string{"source", "reason"},
		),
		skippedPeriods: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSkippedPeriodsTotal,
			Help: "Total number of sustained periods skipped because a timestamp did not parse",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricReportCacheHitsTotal,
			Help: "Total number of post-session reports served from cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricReportCacheMissesTotal,
			Help: "Total number of post-session reports computed on demand",
		}),
	}
}

// Register registers all collectors with reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns all collectors
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.runsTotal,
		m.runDuration,
		m.ingestedTotal,
		m.rejectedTotal,
		m.skippedPeriods,
		m.cacheHits,
		m.cacheMisses,
	}
}

// ObserveRun records one analytics computation that started at start
func (m *Metrics) ObserveRun(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.runsTotal.WithLabelValues(operation, status).Inc()
	m.runDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddIngested counts stored samples
func (m *Metrics) AddIngested(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingestedTotal.WithLabelValues(source).Add(float64(n))
}

// AddRejected counts rejected samples
func (m *Metrics) AddRejected(source, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rejectedTotal.WithLabelValues(source, reason).Add(float64(n))
}

// AddSkippedPeriods counts sustained periods dropped from a report
func (m *Metrics) AddSkippedPeriods(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedPeriods.Add(float64(n))
}

// ObserveCache records a report cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}
