package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the clustering engine.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Run lifecycle metrics
	RunsSubmitted prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
	PointsOrdered prometheus.Counter

	// Run shape metrics
	OrderingLength *prometheus.GaugeVec
	ClusterCount   *prometheus.GaugeVec
	OutlierCount   *prometheus.GaugeVec
	RunMemoryBytes *prometheus.GaugeVec

	// Peak-finding / run latency metrics
	RunLatency      prometheus.Histogram
	PeakFindLatency prometheus.Histogram
	BorderCount     prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Batch operation metrics
	BatchRunTotal    prometheus.Counter
	BatchRunDuration prometheus.Histogram

	// Run-owner quota metrics
	OwnersTotal     prometheus.Gauge
	OwnerQuotaUsage *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
	CPUUsage        prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics returns the process-wide Metrics instance, registering every
// collector with the default Prometheus registry on first call. Collectors
// registered with the default registry are process-wide, so repeated calls
// share one instance rather than re-registering.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	m := &Metrics{
		// Request metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opticscore_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "opticscore_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opticscore_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		// Run lifecycle metrics
		RunsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_runs_submitted_total",
				Help: "Total number of OPTICS runs submitted",
			},
		),
		RunsCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_runs_completed_total",
				Help: "Total number of OPTICS runs completed successfully",
			},
		),
		RunsFailed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_runs_failed_total",
				Help: "Total number of OPTICS runs that failed validation or execution",
			},
		),
		PointsOrdered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_points_ordered_total",
				Help: "Total number of points emitted into a cluster ordering across all runs",
			},
		),

		// Run shape metrics
		OrderingLength: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opticscore_ordering_length",
				Help: "Number of points in the ordering, by run",
			},
			[]string{"run_id"},
		),
		ClusterCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opticscore_cluster_count",
				Help: "Number of non-outlier clusters extracted, by run",
			},
			[]string{"run_id"},
		),
		OutlierCount: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opticscore_outlier_count",
				Help: "Number of points diverted to the outlier bucket, by run",
			},
			[]string{"run_id"},
		),
		RunMemoryBytes: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opticscore_run_memory_bytes",
				Help: "Approximate memory held by a run's PointStore and ordering, by run",
			},
			[]string{"run_id"},
		),

		// Latency metrics
		RunLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opticscore_run_latency_seconds",
				Help:    "OpticsOrdering wall-clock latency in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		PeakFindLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opticscore_peak_find_latency_seconds",
				Help:    "PeakFinder latency in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .5, 1},
			},
		),
		BorderCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opticscore_border_count",
				Help:    "Number of cluster borders returned by PeakFinder",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		// Cache metrics
		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_cache_hits_total",
				Help: "Total number of run-result cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_cache_misses_total",
				Help: "Total number of run-result cache misses",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "opticscore_cache_size",
				Help: "Current number of entries in the run-result cache",
			},
		),

		// Batch operation metrics
		BatchRunTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "opticscore_batch_run_total",
				Help: "Total number of batch run submissions",
			},
		),
		BatchRunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opticscore_batch_run_duration_seconds",
				Help:    "Batch run submission duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		// Run-owner quota metrics
		OwnersTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "opticscore_owners_total",
				Help: "Total number of active run owners",
			},
		),
		OwnerQuotaUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opticscore_owner_quota_usage",
				Help: "Run owner quota usage percentage by owner and resource",
			},
			[]string{"owner", "resource"},
		),

		// System metrics
		GoroutinesCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "opticscore_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "opticscore_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
		CPUUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "opticscore_cpu_usage",
				Help: "CPU usage percentage",
			},
		),
	}

	return m
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordRunSubmitted records a run entering the queue.
func (m *Metrics) RecordRunSubmitted() {
	m.RunsSubmitted.Inc()
}

// RecordRunCompleted records a run's ordering completing, with its latency
// and the number of points it emitted.
func (m *Metrics) RecordRunCompleted(runID string, duration time.Duration, pointCount int) {
	m.RunsCompleted.Inc()
	m.RunLatency.Observe(duration.Seconds())
	m.PointsOrdered.Add(float64(pointCount))
	m.OrderingLength.WithLabelValues(runID).Set(float64(pointCount))
}

// RecordRunFailed records a run that failed validation or execution.
func (m *Metrics) RecordRunFailed() {
	m.RunsFailed.Inc()
}

// RecordPeakFind records one PeakFinder invocation.
func (m *Metrics) RecordPeakFind(duration time.Duration, borderCount int) {
	m.PeakFindLatency.Observe(duration.Seconds())
	m.BorderCount.Observe(float64(borderCount))
}

// RecordClusterExtraction records a completed ClusterExtractor call.
func (m *Metrics) RecordClusterExtraction(runID string, clusterCount, outlierCount int) {
	m.ClusterCount.WithLabelValues(runID).Set(float64(clusterCount))
	m.OutlierCount.WithLabelValues(runID).Set(float64(outlierCount))
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateRunMemory updates the approximate memory metric for a run.
func (m *Metrics) UpdateRunMemory(runID string, bytes int64) {
	m.RunMemoryBytes.WithLabelValues(runID).Set(float64(bytes))
}

// RecordBatchRun records a batch run submission.
func (m *Metrics) RecordBatchRun(duration time.Duration, count int) {
	m.BatchRunTotal.Inc()
	m.BatchRunDuration.Observe(duration.Seconds())
	m.RunsSubmitted.Add(float64(count))
}

// UpdateOwnerCount updates the total run-owner count.
func (m *Metrics) UpdateOwnerCount(count int) {
	m.OwnersTotal.Set(float64(count))
}

// UpdateOwnerQuota updates a run owner's quota usage for one resource.
func (m *Metrics) UpdateOwnerQuota(owner, resource string, usage float64) {
	m.OwnerQuotaUsage.WithLabelValues(owner, resource).Set(usage)
}

// UpdateGoroutineCount updates goroutine count.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates memory usage.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateCPUUsage updates CPU usage.
func (m *Metrics) UpdateCPUUsage(percentage float64) {
	m.CPUUsage.Set(percentage)
}

// UpdateCacheSize updates cache size.
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}
