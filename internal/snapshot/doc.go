// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package snapshot implements the snapshot lifecycle: producing full
// compressed database dumps, pruning old ones under a retention ceiling,
// and restoring the most recent one into a freshly provisioned database.
//
// The three components are designed as short-lived single-threaded
// invocations. Cross-process safety comes from the atomic publish
// discipline, not from locks: a dump is written to a uniquely named
// dot-prefixed temp file in the destination directory and renamed to its
// canonical name only after the dump succeeded. The canonical pattern
// never matches a temp file, so a concurrent reader never observes a
// partially written snapshot.
//
// Canonical naming convention (the per-database dated form is the only
// one supported):
//
//	<database>_<YYYY-MM-DD>.xz
//
// The database engine itself is an external collaborator reached through
// the Dumper, Loader, and Prober interfaces; see internal/mariadb for the
// production implementation.
package snapshot
