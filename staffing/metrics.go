package staffing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	allocationWrites *prometheus.CounterVec // by op
	bulkRollbacks    prometheus.Counter
	rankings         prometheus.Counter
	rankedCandidates prometheus.Histogram
}

// newEngineMetrics registers with reg; a nil reg builds unregistered metrics.
func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	f := promauto.With(reg)
	return &engineMetrics{
		allocationWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "staffing_allocation_writes_total",
			Help: "allocation ledger write operations by op",
		}, []string{"op"}),
		bulkRollbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_bulk_rollbacks_total",
			Help: "bulk range writes rolled back",
		}),
		rankings: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_bestfit_rankings_total",
			Help: "best-fit ranking requests served",
		}),
		rankedCandidates: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "staffing_bestfit_candidates",
			Help:    "candidates ranked per best-fit request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

type cacheMetrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	invalidated prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	f := promauto.With(reg)
	return &cacheMetrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_cache_hits_total",
			Help: "analytics lookups served from cache",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_cache_misses_total",
			Help: "analytics lookups computed from the ledger",
		}),
		evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_cache_evictions_total",
			Help: "expired analytics entries removed by the janitor",
		}),
		invalidated: f.NewCounter(prometheus.CounterOpts{
			Name: "staffing_cache_invalidations_total",
			Help: "full analytics cache invalidations triggered by writes",
		}),
	}
}
