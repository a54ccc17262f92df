// Prometheus instrumentation for the tenant core. Label cardinality is kept
// bounded: outcomes and steps are small fixed sets, never store identifiers.
package tenant

import "github.com/prometheus/client_golang/prometheus"

var (
	// resolutionsTotal counts request-time resolutions by strategy and outcome.
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolutions_total",
			Help: "Total tenant resolution attempts by strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	// hostCacheHits counts host→store cache hits and misses.
	hostCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_host_cache_total",
			Help: "Host-to-store cache lookups by result.",
		},
		[]string{"result"},
	)

	// bindsTotal counts successful tenant connection binds.
	bindsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_binds_total",
			Help: "Total successful tenant connection binds.",
		},
	)

	// provisionDuration tracks end-to-end provisioning time by outcome.
	provisionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tenant_provision_duration_seconds",
			Help:    "Duration of tenant database provisioning runs.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(resolutionsTotal, hostCacheHits, bindsTotal, provisionDuration)
}
