// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package mariadb implements the snapshot package's Dumper, Loader, and
// Prober interfaces against a MariaDB/MySQL server.
//
// Export and import go through the engine's own tooling (mysqldump and
// the mysql client) with xz as the compression filter, exactly as an
// operator would run them by hand. The initialization probe uses a direct
// SQL connection instead, because "table missing" and "connection
// refused" must be distinguishable from a tool's opaque exit code.
//
// Credentials are never inlined: the password is read per invocation from
// a secret file and handed to the child processes via MYSQL_PWD so it
// shows up in neither argv nor the config file.
package mariadb
