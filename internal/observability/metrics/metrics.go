// Package metrics exposes the intake pipeline's Prometheus metrics on the
// default registry; main serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts pipeline invocations by outcome:
	// registered, rejected, error.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tramite",
		Subsystem: "intake",
		Name:      "submissions_total",
		Help:      "Pipeline submissions by outcome.",
	}, []string{"outcome"})

	// ClassificationsTotal counts decisions by the strategy that produced them.
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tramite",
		Subsystem: "intake",
		Name:      "classifications_total",
		Help:      "Classification decisions by strategy.",
	}, []string{"strategy"})

	// DegradedRegistrationsTotal counts temporary case records synthesized
	// while the row store was unreachable.
	DegradedRegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tramite",
		Subsystem: "intake",
		Name:      "degraded_registrations_total",
		Help:      "Case registrations persisted as temporary records.",
	})

	// ProfileCacheHitsTotal and ProfileCacheMissesTotal track the requester
	// profile cache.
	ProfileCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tramite",
		Subsystem: "profiles",
		Name:      "cache_hits_total",
		Help:      "Requester profile cache hits.",
	})
	ProfileCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tramite",
		Subsystem: "profiles",
		Name:      "cache_misses_total",
		Help:      "Requester profile cache misses.",
	})
)
