// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for the probe connection

	"github.com/tomtom215/snapkeeper/internal/logging"
)

// probeTimeout bounds the existence check; a fresh container either
// answers quickly or is not initialized.
const probeTimeout = 10 * time.Second

// Probe implements snapshot.Prober: it counts rows of the well-known
// table to decide whether the database already holds data.
//
// Any query or connection failure means "not yet initialized" and is
// reported as (false, nil) - that is how first boot is distinguished from
// steady state. Only an unreadable credential file is a real error.
func (e *Engine) Probe(ctx context.Context) (bool, error) {
	password, err := ReadPassword(e.opts.PasswordFile)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	db, err := sql.Open("mysql", e.dsn(password))
	if err != nil {
		logging.Debug().Err(err).Msg("Probe connection setup failed, treating as uninitialized")
		return false, nil
	}
	defer db.Close() //nolint:errcheck // Probe connection is short-lived

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(e.opts.ProbeTable))

	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		logging.Debug().
			Err(err).
			Str("table", e.opts.ProbeTable).
			Msg("Probe query failed, treating as uninitialized")
		return false, nil
	}

	logging.Debug().
		Str("table", e.opts.ProbeTable).
		Int64("rows", count).
		Msg("Probe succeeded, database initialized")
	return true, nil
}
