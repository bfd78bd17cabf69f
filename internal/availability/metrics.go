// Package availability turns injury reports into team rating adjustments
// and caches them between feed refreshes.
package availability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHitRatio tracks the injury cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "injury_cache_hit_ratio",
			Help: "Injury availability cache hit ratio",
		},
	)

	// CacheEntries tracks the number of cached team entries
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "injury_cache_entries",
			Help: "Number of teams in the injury availability cache",
		},
	)

	// FallbacksTotal tracks availability lookups that fell back
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "injury_fallbacks_total",
			Help: "Availability lookups that fell back to stale or zero data",
		},
		[]string{"mode"}, // stale, zero
	)
)
