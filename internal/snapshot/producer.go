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
	"time"

	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/metrics"
)

// Producer creates one complete compressed snapshot per invocation and
// publishes it atomically under its canonical name.
type Producer struct {
	dumper     Dumper
	dir        string
	database   string
	maxBackups int

	shield *Shield
	now    func() time.Time
}

// NewProducer returns a Producer writing snapshots of database into dir,
// keeping at most maxBackups of them.
func NewProducer(dumper Dumper, dir, database string, maxBackups int) *Producer {
	return &Producer{
		dumper:     dumper,
		dir:        dir,
		database:   database,
		maxBackups: maxBackups,
		shield:     NewShield(),
		now:        time.Now,
	}
}

// Produce runs one backup cycle: prune with a one-slot reservation, dump
// to a temp file, then rename into the canonical name. The rename is the
// atomic publish point; on any dump failure the temp file is removed and
// every existing canonical snapshot is left untouched.
//
// Termination signals delivered during the dump/publish window are
// deferred and re-delivered afterwards, so a graceful shutdown never
// leaves a half-written canonical file.
func (p *Producer) Produce(ctx context.Context) (Snapshot, error) {
	start := p.now()

	if err := os.MkdirAll(p.dir, 0o750); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	// Reclaim headroom first. The reservation guarantees the snapshot
	// about to be written is never rotated out by its own cycle. With a
	// zero ceiling the effective limit clamps to zero and the pass clears
	// every prior snapshot, so the directory never grows unbounded.
	if _, err := Prune(p.dir, p.database, p.maxBackups, 1); err != nil {
		// Non-fatal: a full retention pass runs again next cycle.
		logging.Warn().Err(err).Str("database", p.database).Msg("Pre-dump prune failed")
	}

	tempPath := filepath.Join(p.dir, tempName(p.database, start))
	canonicalPath := filepath.Join(p.dir, CanonicalName(p.database, start))

	p.shield.Enter()
	defer p.shield.Exit()

	if err := p.dumper.Dump(ctx, tempPath); err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.Warn().Err(rmErr).Str("path", tempPath).Msg("Failed to remove temp dump file")
		}
		metrics.BackupFailures.WithLabelValues(p.database).Inc()
		if errors.Is(err, ErrNoCredential) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrDumpFailed, err)
	}

	if err := os.Rename(tempPath, canonicalPath); err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.Warn().Err(rmErr).Str("path", tempPath).Msg("Failed to remove temp dump file")
		}
		metrics.BackupFailures.WithLabelValues(p.database).Inc()
		return Snapshot{}, fmt.Errorf("%w: publish rename: %v", ErrDumpFailed, err)
	}

	info, err := os.Stat(canonicalPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("published snapshot vanished: %w", err)
	}

	snap := Snapshot{
		Path:      canonicalPath,
		Database:  p.database,
		Stamp:     start.Format(stampLayout),
		CreatedAt: info.ModTime(),
		Size:      info.Size(),
	}

	metrics.BackupDuration.WithLabelValues(p.database).Observe(p.now().Sub(start).Seconds())
	metrics.BackupLastSuccess.WithLabelValues(p.database).SetToCurrentTime()
	metrics.SnapshotSize.WithLabelValues(p.database).Observe(float64(snap.Size))

	logging.Info().
		Str("database", p.database).
		Str("path", canonicalPath).
		Int64("bytes", snap.Size).
		Dur("elapsed", p.now().Sub(start)).
		Msg("Snapshot published")

	return snap, nil
}

// CleanOrphans removes leftover temp files from dumps that were killed
// mid-write. Safe to call any time; canonical snapshots are never touched.
func (p *Producer) CleanOrphans() int {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isTempFile(p.database, entry.Name()) {
			continue
		}
		path := filepath.Join(p.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Failed to remove orphaned temp file")
			continue
		}
		removed++
		logging.Info().Str("path", path).Msg("Orphaned temp file removed")
	}
	return removed
}
