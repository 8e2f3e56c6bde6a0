package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route template and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route template
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roster",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AdminChanges counts admin roster changes applied by hospital saves
	AdminChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "admin_changes_total",
		Help:      "Admin roster changes, by operation and result.",
	}, []string{"operation", "result"})

	// HospitalMutations counts hospital create/update/status/delete calls that succeeded
	HospitalMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "hospital_mutations_total",
		Help:      "Successful hospital mutations, by operation.",
	}, []string{"operation"})

	// SnapshotLookups counts roster snapshot cache hits and misses
	SnapshotLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "snapshot_lookups_total",
		Help:      "Roster snapshot cache lookups, by result.",
	}, []string{"result"})

	// SnapshotRefreshes counts background snapshot rebuilds by result
	SnapshotRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "snapshot_refreshes_total",
		Help:      "Background roster snapshot rebuilds, by result.",
	}, []string{"result"})
)
