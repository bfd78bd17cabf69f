// Package metrics defines archive write metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Archive counter vectors
var (
	ArchiveWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "archive_writes_total",
		Help:      "Total number of archive write attempts by table and status",
	}, []string{"table", "status"})
)

// RecordArchiveWrite records an archive write outcome.
// table should be one of: "games", "predictions"
// status should be one of: "success", "error"
func RecordArchiveWrite(table, status string) {
	ArchiveWritesTotal.WithLabelValues(table, status).Inc()
}
