// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func remainingStamps(t *testing.T, dir, database string) []string {
	t.Helper()
	snaps, err := List(dir, database)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	stamps := make([]string, len(snaps))
	for i, s := range snaps {
		stamps[i] = s.Stamp
	}
	return stamps
}

func TestPruneDeletesOldestExcess(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		writeSnapshotFile(t, dir, "example", stamp)
	}

	removed, err := Prune(dir, "example", 3, 0)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	got := remainingStamps(t, dir, "example")
	want := []string{"2024-01-05", "2024-01-04", "2024-01-03"}
	if len(got) != len(want) {
		t.Fatalf("remaining = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("remaining[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPruneNoExcessIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "example", "2024-01-01")
	writeSnapshotFile(t, dir, "example", "2024-01-02")

	removed, err := Prune(dir, "example", 5, 0)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if len(remainingStamps(t, dir, "example")) != 2 {
		t.Error("no-op prune must not delete anything")
	}
}

func TestPruneReservationLeavesHeadroom(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		writeSnapshotFile(t, dir, "example", stamp)
	}

	// Reserve one slot for an incoming snapshot: ceiling is 3-1=2.
	removed, err := Prune(dir, "example", 3, 1)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got := remainingStamps(t, dir, "example")
	if len(got) != 2 || got[0] != "2024-01-03" || got[1] != "2024-01-02" {
		t.Errorf("remaining = %v, want [2024-01-03 2024-01-02]", got)
	}
}

func TestPruneZeroCeilingDeletesAll(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "example", "2024-01-01")
	writeSnapshotFile(t, dir, "example", "2024-01-02")

	removed, err := Prune(dir, "example", 0, 0)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if len(remainingStamps(t, dir, "example")) != 0 {
		t.Error("expected empty directory with max_backups=0")
	}
}

func TestPruneProtectsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, stamp := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		writeSnapshotFile(t, dir, "example", stamp)
	}
	writeSnapshotFile(t, dir, "other", "2023-06-01")
	foreign := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(foreign, []byte("keep me"), 0o600); err != nil {
		t.Fatalf("failed to write foreign file: %v", err)
	}

	if _, err := Prune(dir, "example", 1, 0); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}

	if _, err := os.Stat(foreign); err != nil {
		t.Error("unrelated file was deleted by prune")
	}
	if got := remainingStamps(t, dir, "other"); len(got) != 1 {
		t.Error("other database's snapshot was deleted by prune")
	}
	if got := remainingStamps(t, dir, "example"); len(got) != 1 || got[0] != "2024-01-03" {
		t.Errorf("example remaining = %v, want [2024-01-03]", got)
	}
}

func TestPruneMissingDirFails(t *testing.T) {
	_, err := Prune(filepath.Join(t.TempDir(), "missing"), "example", 3, 0)
	if !errors.Is(err, ErrPruneFailed) {
		t.Errorf("expected ErrPruneFailed, got %v", err)
	}
}

func TestPruneRetentionBoundOverManyCycles(t *testing.T) {
	dir := t.TempDir()
	const k = 3

	stamps := []string{
		"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04",
		"2024-01-05", "2024-01-06", "2024-01-07",
	}
	for n, stamp := range stamps {
		// Each cycle prunes with a reservation, then publishes.
		if _, err := Prune(dir, "example", k, 1); err != nil {
			t.Fatalf("cycle %d prune: %v", n, err)
		}
		writeSnapshotFile(t, dir, "example", stamp)

		remaining := remainingStamps(t, dir, "example")
		wantCount := n + 1
		if wantCount > k {
			wantCount = k
		}
		if len(remaining) != wantCount {
			t.Fatalf("after %d cycles: %d snapshots, want %d (%v)", n+1, len(remaining), wantCount, remaining)
		}
		if remaining[0] != stamp {
			t.Fatalf("after cycle %d the newest must be %q, got %q", n+1, stamp, remaining[0])
		}
	}
}
