// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// List returns the canonical snapshots for database in dir, newest first.
// Ordering is by modification time, ties broken by lexical filename order
// (which for the date convention coincides with chronological order).
// Files not matching the canonical pattern are ignored.
func List(dir, database string) ([]Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory %s: %w", dir, err)
	}

	pattern := canonicalPattern(database)

	var snaps []Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Deleted between ReadDir and Stat; treat as absent.
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:      filepath.Join(dir, entry.Name()),
			Database:  database,
			Stamp:     m[1],
			CreatedAt: info.ModTime(),
			Size:      info.Size(),
		})
	}

	sortNewestFirst(snaps)
	return snaps, nil
}

// sortNewestFirst orders snapshots most recent first by modification
// time, with the lexically greater filename winning ties.
func sortNewestFirst(snaps []Snapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
		}
		return filepath.Base(snaps[i].Path) > filepath.Base(snaps[j].Path)
	})
}
