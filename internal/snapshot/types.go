// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy. Callers discriminate with errors.Is; everything else is
// wrapped detail.
var (
	// ErrDumpFailed means the export tool returned failure. Recoverable:
	// the next scheduled cycle retries, prior snapshots are untouched.
	ErrDumpFailed = errors.New("dump failed")

	// ErrPruneFailed means the snapshot directory could not be listed.
	// Individual file deletion failures are logged, not returned.
	ErrPruneFailed = errors.New("prune failed")

	// ErrRestoreLoadFailed means the import of the selected snapshot
	// failed. Fatal for the instance's startup.
	ErrRestoreLoadFailed = errors.New("restore load failed")

	// ErrNoCredential means the secret file was unreadable. Fatal; no
	// dump or restore is attempted.
	ErrNoCredential = errors.New("credential unreadable")
)

// Snapshot is one complete, compressed dump of a database at a point in
// time, addressed by its canonical filename. Snapshots are created by the
// Producer, read by the Selector, deleted by Prune, and never mutated.
type Snapshot struct {
	// Path is the canonical filesystem location.
	Path string `json:"path"`
	// Database is the database name encoded in the filename.
	Database string `json:"database"`
	// Stamp is the date encoded in the filename (YYYY-MM-DD).
	Stamp string `json:"stamp"`
	// CreatedAt is the file modification time.
	CreatedAt time.Time `json:"created_at"`
	// Size is the compressed size in bytes.
	Size int64 `json:"size"`
}

// Dumper streams the full logical contents of the database, compressed,
// into the file at path. Implementations must not create the canonical
// name themselves; the Producer owns the publish step.
type Dumper interface {
	Dump(ctx context.Context, path string) error
}

// Loader streams the snapshot at path into the database engine's load
// facility.
type Loader interface {
	Load(ctx context.Context, path string) error
}

// Prober reports whether the live database already contains expected
// data. A failed probe (missing table, connection refused) means "not yet
// initialized" and must be reported as initialized=false with a nil
// error; only credential problems are returned as errors.
type Prober interface {
	Probe(ctx context.Context) (initialized bool, err error)
}
