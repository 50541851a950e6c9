// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"fmt"
	"os"

	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/metrics"
)

// Prune deletes the oldest canonical snapshots for database in dir so
// that at most maxBackups-reserve remain. The reserve leaves room for an
// about-to-be-written snapshot so the incoming one is never the victim of
// the pass that precedes it.
//
// Deletion is best-effort: per-file failures are logged and do not abort
// pruning of the remaining excess files. The returned count covers only
// successful removals. The only error case is failing to list dir, which
// wraps ErrPruneFailed.
func Prune(dir, database string, maxBackups, reserve int) (int, error) {
	snaps, err := List(dir, database)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPruneFailed, err)
	}

	limit := maxBackups - reserve
	if limit < 0 {
		limit = 0
	}

	excess := len(snaps) - limit
	if excess <= 0 {
		return 0, nil
	}

	removed := 0
	// snaps is newest first; the victims are the tail.
	for _, victim := range snaps[len(snaps)-excess:] {
		if err := os.Remove(victim.Path); err != nil {
			logging.Warn().Err(err).Str("path", victim.Path).Msg("Failed to delete stale snapshot")
			continue
		}
		removed++
		logging.Info().
			Str("database", database).
			Str("path", victim.Path).
			Str("stamp", victim.Stamp).
			Msg("Stale snapshot removed")
	}

	metrics.SnapshotsPruned.WithLabelValues(database).Add(float64(removed))
	return removed, nil
}
