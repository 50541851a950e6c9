// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"context"
	"fmt"

	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/metrics"
)

// State is the restore selector's position in its lifecycle. The
// transition graph is:
//
//	Uninitialized -> Checking -> Ready            (already initialized, or nothing to restore)
//	                          -> Restoring -> Ready
//	                                       -> Failed
type State int

// Selector states.
const (
	StateUninitialized State = iota
	StateChecking
	StateRestoring
	StateReady
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateRestoring:
		return "restoring"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a restore attempt.
type Outcome int

// Restore outcomes.
const (
	// OutcomeAlreadyInitialized: the database holds data; nothing was done.
	OutcomeAlreadyInitialized Outcome = iota
	// OutcomeRestored: the most recent snapshot was loaded.
	OutcomeRestored
	// OutcomeNoBackupFound: the database is empty and no snapshot exists.
	// A valid terminal state on first deployment, not an error.
	OutcomeNoBackupFound
	// OutcomeFailed: the load (or credential read) failed. The caller
	// must surface this as a startup failure.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyInitialized:
		return "already_initialized"
	case OutcomeRestored:
		return "restored"
	case OutcomeNoBackupFound:
		return "no_backup_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a restore attempt terminated with. Snapshot is non-nil
// only for OutcomeRestored; Err is non-nil only for OutcomeFailed.
type Result struct {
	Outcome  Outcome
	Snapshot *Snapshot
	Err      error
}

// Selector decides, once per fresh database lifetime, whether the
// database needs to be initialized from the most recent snapshot. It must
// run strictly before the dependent application starts; that ordering is
// the caller's dependency-graph guarantee.
type Selector struct {
	prober   Prober
	loader   Loader
	dir      string
	database string

	state State
}

// NewSelector returns a Selector for database using snapshots from dir.
func NewSelector(prober Prober, loader Loader, dir, database string) *Selector {
	return &Selector{
		prober:   prober,
		loader:   loader,
		dir:      dir,
		database: database,
		state:    StateUninitialized,
	}
}

// State returns the selector's current lifecycle state.
func (s *Selector) State() State {
	return s.state
}

// MaybeRestore probes the live database and, if it is empty, loads the
// most recent snapshot. Running it against an already-populated database
// is a safe no-op, never a duplicate load.
func (s *Selector) MaybeRestore(ctx context.Context) Result {
	s.state = StateChecking

	initialized, err := s.prober.Probe(ctx)
	if err != nil {
		// Only credential problems surface here; an unreachable or
		// empty database is initialized=false with a nil error.
		return s.fail(fmt.Errorf("probe: %w", err))
	}
	if initialized {
		s.state = StateReady
		logging.Info().Str("database", s.database).Msg("Database already initialized, restore skipped")
		return s.finish(Result{Outcome: OutcomeAlreadyInitialized})
	}

	snaps, err := List(s.dir, s.database)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %v", ErrRestoreLoadFailed, err))
	}
	if len(snaps) == 0 {
		s.state = StateReady
		logging.Info().
			Str("database", s.database).
			Str("dir", s.dir).
			Msg("No snapshot found, database starts empty")
		return s.finish(Result{Outcome: OutcomeNoBackupFound})
	}

	newest := snaps[0]
	s.state = StateRestoring
	logging.Info().
		Str("database", s.database).
		Str("path", newest.Path).
		Str("stamp", newest.Stamp).
		Msg("Restoring most recent snapshot")

	if err := s.loader.Load(ctx, newest.Path); err != nil {
		return s.fail(fmt.Errorf("%w: %v", ErrRestoreLoadFailed, err))
	}

	s.state = StateReady
	logging.Info().Str("database", s.database).Str("path", newest.Path).Msg("Restore complete")
	return s.finish(Result{Outcome: OutcomeRestored, Snapshot: &newest})
}

// fail records a terminal failure. Restore failures are never absorbed:
// the caller must exit non-zero so a supervising process does not mark
// the service healthy with a half-loaded dataset.
func (s *Selector) fail(err error) Result {
	s.state = StateFailed
	logging.Error().Err(err).Str("database", s.database).Msg("Restore failed")
	return s.finish(Result{Outcome: OutcomeFailed, Err: err})
}

func (s *Selector) finish(r Result) Result {
	metrics.RestoreOutcomes.WithLabelValues(s.database, r.Outcome.String()).Inc()
	return r
}
