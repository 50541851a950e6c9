// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package config loads and validates Snapkeeper configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (SNAPKEEPER_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
package config

import "fmt"

// ServerWideName is the database name used for server-wide dumps
// (--all-databases). It is reserved: a per-database target may not use it.
const ServerWideName = "all-databases"

// Config is the root configuration for all Snapkeeper subcommands.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Snapshot SnapshotConfig `koanf:"snapshot"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig describes the MariaDB instance being snapshotted.
type DatabaseConfig struct {
	// Name is the target database. Must be empty when All is set.
	Name string `koanf:"name"`
	// All dumps the whole server (--all-databases) instead of one database.
	All          bool   `koanf:"all"`
	Host         string `koanf:"host" validate:"required"`
	Port         int    `koanf:"port" validate:"min=1,max=65535"`
	User         string `koanf:"user" validate:"required"`
	PasswordFile string `koanf:"password_file" validate:"required"`
	// ProbeTable is the well-known table whose existence marks the
	// database as already initialized.
	ProbeTable string `koanf:"probe_table" validate:"required"`
}

// SnapshotConfig describes where snapshots live and how many to keep.
type SnapshotConfig struct {
	Dir string `koanf:"dir" validate:"required"`
	// MaxBackups is the retention ceiling per database name.
	MaxBackups int `koanf:"max_backups" validate:"min=0"`
}

// ScheduleConfig configures the daemon-mode backup trigger.
type ScheduleConfig struct {
	// Cron is a standard 5-field cron expression.
	Cron string `koanf:"cron"`
}

// ServerConfig configures the daemon admin HTTP endpoint.
type ServerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port" validate:"min=1,max=65535"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns a Config with all defaults applied. These are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Name:         "",
			All:          false,
			Host:         "127.0.0.1",
			Port:         3306,
			User:         "root",
			PasswordFile: "/run/secrets/root-password",
			ProbeTable:   "stock_info",
		},
		Snapshot: SnapshotConfig{
			Dir:        "/backup",
			MaxBackups: 7,
		},
		Schedule: ScheduleConfig{
			Cron: "0 3 * * *",
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    9723,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DatabaseName returns the effective name used in canonical snapshot
// filenames: the configured database, or ServerWideName for whole-server
// dumps.
func (c *Config) DatabaseName() string {
	if c.Database.All {
		return ServerWideName
	}
	return c.Database.Name
}

// TargetDatabase returns the database handed to the engine: the
// configured name, or empty for whole-server dumps (the engine treats an
// empty target as --all-databases).
func (c *Config) TargetDatabase() string {
	if c.Database.All {
		return ""
	}
	return c.Database.Name
}

// Addr returns the host:port the admin server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
