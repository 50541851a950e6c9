// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package metrics exposes Prometheus instrumentation for the snapshot
// lifecycle. The daemon serves these on /metrics; one-shot subcommands
// register them too but exit before scraping, so they only matter in
// daemon mode.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackupDuration observes the wall time of one full backup cycle,
	// prune included.
	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapkeeper_backup_duration_seconds",
			Help:    "Duration of backup cycles in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"database"},
	)

	// BackupLastSuccess holds the Unix time of the last published
	// snapshot, the primary alerting signal for stale backups.
	BackupLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "snapkeeper_backup_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successfully published snapshot",
		},
		[]string{"database"},
	)

	// BackupFailures counts failed dump attempts.
	BackupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeeper_backup_failures_total",
			Help: "Total number of failed backup attempts",
		},
		[]string{"database"},
	)

	// SnapshotsPruned counts snapshots removed by retention.
	SnapshotsPruned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeeper_snapshots_pruned_total",
			Help: "Total number of snapshots removed by the retention pruner",
		},
		[]string{"database"},
	)

	// RestoreOutcomes counts restore selector terminal outcomes.
	RestoreOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapkeeper_restore_outcomes_total",
			Help: "Restore selector outcomes by terminal state",
		},
		[]string{"database", "outcome"},
	)

	// SnapshotSize observes published snapshot sizes.
	SnapshotSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapkeeper_snapshot_size_bytes",
			Help:    "Compressed size of published snapshots in bytes",
			Buckets: prometheus.ExponentialBuckets(1<<20, 4, 8),
		},
		[]string{"database"},
	)
)
