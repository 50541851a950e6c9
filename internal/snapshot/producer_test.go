// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeDumper implements Dumper for tests. When failAfterPartial is set it
// writes partial content before reporting failure, simulating a dump
// killed mid-write.
type fakeDumper struct {
	data             []byte
	err              error
	failAfterPartial bool
	calls            int
}

func (f *fakeDumper) Dump(_ context.Context, path string) error {
	f.calls++
	if f.err != nil {
		if f.failAfterPartial {
			if err := os.WriteFile(path, []byte("partial"), 0o600); err != nil {
				return err
			}
		}
		return f.err
	}
	return os.WriteFile(path, f.data, 0o600)
}

func newTestProducer(dumper Dumper, dir string, maxBackups int, now time.Time) *Producer {
	p := NewProducer(dumper, dir, "example", maxBackups)
	p.now = func() time.Time { return now }
	return p
}

func TestProducePublishesCanonicalSnapshot(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)
	dumper := &fakeDumper{data: []byte("full dump contents")}

	snap, err := newTestProducer(dumper, dir, 7, now).Produce(context.Background())
	if err != nil {
		t.Fatalf("Produce() error: %v", err)
	}

	wantPath := filepath.Join(dir, "example_2024-01-03.xz")
	if snap.Path != wantPath {
		t.Errorf("snap.Path = %q, want %q", snap.Path, wantPath)
	}
	if snap.Stamp != "2024-01-03" {
		t.Errorf("snap.Stamp = %q", snap.Stamp)
	}

	content, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("canonical snapshot missing: %v", err)
	}
	if string(content) != "full dump contents" {
		t.Errorf("canonical content = %q", content)
	}
	if snap.Size != int64(len(content)) {
		t.Errorf("snap.Size = %d, want %d", snap.Size, len(content))
	}

	assertNoTempFiles(t, dir)
}

func TestProduceFailureLeavesNoCanonicalFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)
	dumper := &fakeDumper{err: fmt.Errorf("mysqldump: exit status 2"), failAfterPartial: true}

	_, err := newTestProducer(dumper, dir, 7, now).Produce(context.Background())
	if !errors.Is(err, ErrDumpFailed) {
		t.Fatalf("expected ErrDumpFailed, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "example_2024-01-03.xz")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("failed dump must not publish a canonical file")
	}
	assertNoTempFiles(t, dir)
}

func TestProduceFailurePreservesHistory(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "example", "2024-01-01")
	writeSnapshotFile(t, dir, "example", "2024-01-02")

	before := readAll(t, dir)

	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)
	dumper := &fakeDumper{err: fmt.Errorf("connection refused"), failAfterPartial: true}

	_, err := newTestProducer(dumper, dir, 7, now).Produce(context.Background())
	if !errors.Is(err, ErrDumpFailed) {
		t.Fatalf("expected ErrDumpFailed, got %v", err)
	}

	after := readAll(t, dir)
	if len(after) != len(before) {
		t.Fatalf("snapshot set changed: before %v, after %v", keys(before), keys(after))
	}
	for name, content := range before {
		if after[name] != content {
			t.Errorf("snapshot %q was altered by a failed dump", name)
		}
	}
}

func TestProduceNoCredentialPassesThrough(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)
	dumper := &fakeDumper{err: fmt.Errorf("%w: /run/secrets/root-password", ErrNoCredential)}

	_, err := newTestProducer(dumper, dir, 7, now).Produce(context.Background())
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if errors.Is(err, ErrDumpFailed) {
		t.Error("credential failures must not be reported as dump failures")
	}
}

func TestProduceEnforcesRetentionOverCycles(t *testing.T) {
	dir := t.TempDir()
	const k = 3

	for day := 1; day <= 6; day++ {
		now := time.Date(2024, 1, day, 4, 0, 0, 0, time.UTC)
		dumper := &fakeDumper{data: []byte(fmt.Sprintf("dump day %d", day))}
		if _, err := newTestProducer(dumper, dir, k, now).Produce(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", day, err)
		}

		snaps, err := List(dir, "example")
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		wantCount := day
		if wantCount > k {
			wantCount = k
		}
		if len(snaps) != wantCount {
			t.Fatalf("after day %d: %d snapshots, want %d", day, len(snaps), wantCount)
		}
		wantNewest := now.Format("2006-01-02")
		if snaps[0].Stamp != wantNewest {
			t.Fatalf("after day %d newest = %q, want %q", day, snaps[0].Stamp, wantNewest)
		}
	}
}

func TestProduceZeroCeilingNeverAccumulates(t *testing.T) {
	dir := t.TempDir()

	for day := 1; day <= 3; day++ {
		now := time.Date(2024, 1, day, 4, 0, 0, 0, time.UTC)
		dumper := &fakeDumper{data: []byte(fmt.Sprintf("dump day %d", day))}
		if _, err := newTestProducer(dumper, dir, 0, now).Produce(context.Background()); err != nil {
			t.Fatalf("cycle %d: %v", day, err)
		}

		// Each cycle's pre-dump pass clears all prior snapshots, so only
		// the snapshot just published can remain.
		snaps, err := List(dir, "example")
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(snaps) != 1 {
			t.Fatalf("after day %d: %d snapshots, want 1", day, len(snaps))
		}
		if want := now.Format("2006-01-02"); snaps[0].Stamp != want {
			t.Fatalf("after day %d surviving stamp = %q, want %q", day, snaps[0].Stamp, want)
		}
	}

	// An explicit retention pass with no reservation then empties the
	// directory entirely.
	if _, err := Prune(dir, "example", 0, 0); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if got := remainingStamps(t, dir, "example"); len(got) != 0 {
		t.Errorf("expected empty directory after explicit prune, got %v", got)
	}
}

func TestProduceSameDayReplacesSnapshot(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)

	if _, err := newTestProducer(&fakeDumper{data: []byte("morning")}, dir, 7, now).Produce(context.Background()); err != nil {
		t.Fatalf("first Produce: %v", err)
	}
	if _, err := newTestProducer(&fakeDumper{data: []byte("evening")}, dir, 7, now.Add(12*time.Hour)).Produce(context.Background()); err != nil {
		t.Fatalf("second Produce: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "example_2024-01-03.xz"))
	if err != nil {
		t.Fatalf("canonical snapshot missing: %v", err)
	}
	if string(content) != "evening" {
		t.Errorf("expected the later publish to win, got %q", content)
	}
}

func TestProduceCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "backup")
	now := time.Date(2024, 1, 3, 4, 0, 0, 0, time.UTC)

	if _, err := newTestProducer(&fakeDumper{data: []byte("x")}, dir, 7, now).Produce(context.Background()); err != nil {
		t.Fatalf("Produce() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "example_2024-01-03.xz")); err != nil {
		t.Errorf("snapshot not created in new directory: %v", err)
	}
}

func TestCleanOrphans(t *testing.T) {
	dir := t.TempDir()
	writeSnapshotFile(t, dir, "example", "2024-01-01")

	orphan := filepath.Join(dir, tempName("example", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err := os.WriteFile(orphan, []byte("half-written"), 0o600); err != nil {
		t.Fatalf("failed to write orphan: %v", err)
	}
	foreign := filepath.Join(dir, ".other_2024-01-01.abc.tmp")
	if err := os.WriteFile(foreign, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write foreign temp: %v", err)
	}

	p := NewProducer(&fakeDumper{}, dir, "example", 7)
	if removed := p.CleanOrphans(); removed != 1 {
		t.Errorf("CleanOrphans() = %d, want 1", removed)
	}

	if _, err := os.Stat(orphan); !errors.Is(err, os.ErrNotExist) {
		t.Error("orphaned temp file not removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("foreign temp file must be left alone")
	}
	if got := remainingStamps(t, dir, "example"); len(got) != 1 {
		t.Error("canonical snapshot must survive orphan cleanup")
	}
}

// assertNoTempFiles fails if any temp work file is left in dir.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, e := range entries {
		if isTempFile("example", e.Name()) {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

// readAll maps filename to content for every regular file in dir.
func readAll(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("failed to read %s: %v", e.Name(), err)
		}
		out[e.Name()] = string(data)
	}
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
