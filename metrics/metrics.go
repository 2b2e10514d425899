package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AlertsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_alerts_ingested_total",
			Help: "Total number of alerts ingested",
		},
		[]string{"source"},
	)

	AlertsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_alerts_rejected_total",
			Help: "Total number of raw alerts rejected during normalization",
		},
		[]string{"reason"},
	)

	ContextsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_contexts_added_total",
			Help: "Total number of context values added to case timelines",
		},
		[]string{"type"},
	)

	ContextsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_contexts_dropped_total",
			Help: "Total number of context values dropped by full timelines",
		},
	)

	PlaybookRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_playbook_runs_total",
			Help: "Total number of playbook invocations by outcome",
		},
		[]string{"playbook", "outcome"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aegis_dispatch_duration_seconds",
			Help:    "Time taken to dispatch a case through the playbook chain",
			Buckets: prometheus.DefBuckets,
		},
	)

	WhitelistHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_whitelist_hits_total",
			Help: "Total number of indicators matched against the whitelist",
		},
		[]string{"category"},
	)

	AuditRowsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_audit_rows_recorded_total",
			Help: "Total number of audit trail updates recorded",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aegis_cache_errors_total",
			Help: "Total number of cache errors",
		},
		[]string{"cache", "operation"},
	)

	AuditStoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aegis_audit_store_failures_total",
			Help: "Total number of audit persistence failures",
		},
	)
)
