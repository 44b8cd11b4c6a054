package usecase

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AggregateDurationSeconds times each aggregate query by name.
	AggregateDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_aggregate_duration_seconds",
		Help:    "Duration of a single dashboard aggregate query in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"aggregate"})
	// AggregateFailuresTotal counts aggregate queries that returned an error.
	AggregateFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_aggregate_failures_total",
		Help: "Total number of failed dashboard aggregate queries",
	}, []string{"aggregate"})
	// DashboardBuildSeconds times a full uncached build.
	DashboardBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_build_duration_seconds",
		Help:    "Duration of a full dashboard build in seconds",
		Buckets: prometheus.DefBuckets,
	})
	// CacheLookupsTotal is labelled hit, miss or error.
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_lookups_total",
		Help: "Dashboard cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	registerOnce sync.Once
)

// InitMetrics registers the dashboard collectors with the default registry.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AggregateDurationSeconds,
			AggregateFailuresTotal,
			DashboardBuildSeconds,
			CacheLookupsTotal,
		)
	})
}

func observeAggregate(name string, started time.Time, err error) {
	AggregateDurationSeconds.WithLabelValues(name).Observe(time.Since(started).Seconds())
	if err != nil {
		AggregateFailuresTotal.WithLabelValues(name).Inc()
	}
}

func observeCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}
