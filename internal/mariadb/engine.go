// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package mariadb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Options describes how to reach the MariaDB server and what to snapshot.
type Options struct {
	Host string
	Port int
	User string
	// PasswordFile is the secret file read per invocation.
	PasswordFile string
	// Database is the target database. Empty means the whole server
	// (--all-databases).
	Database string
	// ProbeTable is the well-known table whose row count marks the
	// database as initialized. May be schema-qualified ("db.table");
	// required when Database is empty.
	ProbeTable string
}

// Engine implements snapshot.Dumper, snapshot.Loader, and
// snapshot.Prober for one MariaDB server.
type Engine struct {
	opts Options
}

// NewEngine returns an Engine for the given connection options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// dsn builds the go-sql-driver DSN for the probe connection.
func (e *Engine) dsn(password string) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", e.opts.Host, e.opts.Port)
	cfg.User = e.opts.User
	cfg.Passwd = password
	cfg.DBName = e.opts.Database
	return cfg.FormatDSN()
}

// quoteIdent backtick-quotes a possibly schema-qualified identifier so it
// can be spliced into a query (identifiers cannot be bound parameters).
func quoteIdent(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}

// hostArgs are the connection flags shared by mysqldump and mysql.
func (e *Engine) hostArgs() []string {
	return []string{
		"--host", e.opts.Host,
		"--port", strconv.Itoa(e.opts.Port),
		"--user", e.opts.User,
	}
}
