// Package monitoring pushes backup run metrics to a Prometheus Pushgateway.
// Pushing is opt-in: without a configured URL every method is a no-op.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "safestic"
	subsystem = "backup"
)

// BackupMetrics collects per-run backup metrics.
type BackupMetrics struct {
	StartTimestamp     prometheus.Gauge
	EndTimestamp       prometheus.Gauge
	Errors             prometheus.Gauge
	AvailableSnapshots prometheus.Gauge

	url      string
	hostname string
}

// NewBackupMetrics returns metrics pushed to the given Pushgateway URL,
// grouped by hostname. An empty URL disables pushing.
func NewBackupMetrics(url, hostname string) *BackupMetrics {
	return &BackupMetrics{
		StartTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_start_timestamp",
			Help:      "Timestamp when the last backup was started",
		}),
		EndTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_end_timestamp",
			Help:      "Timestamp when the last backup was finished",
		}),
		Errors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_errors",
			Help:      "How many source directories failed in the last backup",
		}),
		AvailableSnapshots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "available_snapshots",
			Help:      "How many snapshots are available in the repository",
		}),
		url:      url,
		hostname: hostname,
	}
}

// Push sends the current values to the Pushgateway.
func (m *BackupMetrics) Push() error {
	if m.url == "" {
		return nil
	}
	return push.New(m.url, "safestic_backup").
		Collector(m.StartTimestamp).
		Collector(m.EndTimestamp).
		Collector(m.Errors).
		Collector(m.AvailableSnapshots).
		Grouping("instance", m.hostname).
		Push()
}
