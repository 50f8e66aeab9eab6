package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "loancalc_"

	resultSuccess = "success"
	resultError   = "error"

	cacheHit  = "hit"
	cacheMiss = "miss"
)

var (
	registerOnce sync.Once

	scheduleComputeTotal   *prometheus.CounterVec
	scheduleComputeLatency *prometheus.HistogramVec
	scheduleTermMonths     prometheus.Histogram

	scheduleExportTotal   *prometheus.CounterVec
	scheduleExportLatency *prometheus.HistogramVec

	cacheLookupsTotal *prometheus.CounterVec
)

// Init registers the calculator metrics on the given registerer
// (prometheus.DefaultRegisterer when nil).
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		scheduleComputeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_compute_total",
				Help: "Total schedule computations by result",
			},
			[]string{"result"},
		)
		scheduleComputeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_compute_latency_seconds",
				Help:    "Schedule computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		scheduleTermMonths = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_term_months",
				Help:    "Distribution of requested loan terms in months",
				Buckets: []float64{6, 12, 24, 36, 48, 60, 120, 240, 360},
			},
		)
		scheduleExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_export_total",
				Help: "Total schedule exports by format and result",
			},
			[]string{"format", "result"},
		)
		scheduleExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "schedule_export_latency_seconds",
				Help:    "Schedule export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		cacheLookupsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Total response cache lookups by result",
			},
			[]string{"result"},
		)

		reg.MustRegister(
			scheduleComputeTotal,
			scheduleComputeLatency,
			scheduleTermMonths,
			scheduleExportTotal,
			scheduleExportLatency,
			cacheLookupsTotal,
		)
	})
}

// ObserveScheduleCompute records computation latency and result.
func ObserveScheduleCompute(result string, term int, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if scheduleComputeTotal != nil {
		scheduleComputeTotal.WithLabelValues(result).Inc()
	}
	if scheduleComputeLatency != nil {
		scheduleComputeLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if scheduleTermMonths != nil && result == resultSuccess {
		scheduleTermMonths.Observe(float64(term))
	}
}

// ObserveScheduleExport records export latency by format and result.
func ObserveScheduleExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if scheduleExportTotal != nil {
		scheduleExportTotal.WithLabelValues(format, result).Inc()
	}
	if scheduleExportLatency != nil {
		scheduleExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncCacheLookup increments the response cache counter.
func IncCacheLookup(result string) {
	if result == "" {
		result = "unknown"
	}
	if cacheLookupsTotal != nil {
		cacheLookupsTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit   = cacheHit
	CacheMiss  = cacheMiss
	CacheError = resultError
)
