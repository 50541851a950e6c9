// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package main is the Snapkeeper entry point.
//
// Snapkeeper manages the lifecycle of periodic full-database snapshots
// for a MariaDB instance: producing them safely, retiring old ones under
// a retention ceiling, and restoring from the most recent one when a
// fresh database boots empty.
//
// # Subcommands
//
//	snapkeeper backup   Run one backup cycle (prune, dump, publish)
//	snapkeeper prune    Apply the retention policy without dumping
//	snapkeeper restore  Initialize an empty database from the newest snapshot
//	snapkeeper daemon   Run the cron scheduler and admin endpoint
//	snapkeeper version  Print the version
//
// backup, prune, and restore are one-shot: they report success or failure
// through the process exit code and nothing else, so they compose with
// host cron, Kubernetes CronJobs, and container entrypoint hooks.
// A restore failure exits non-zero so a supervising process never marks
// the service healthy with a half-loaded dataset.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): SNAPKEEPER_-prefixed environment variables, a YAML
// config file (-config flag, SNAPKEEPER_CONFIG, or the default search
// paths), and built-in defaults. See internal/config.
//
// # Example
//
//	export SNAPKEEPER_DATABASE_NAME=taiwan_stock_analysis
//	export SNAPKEEPER_DATABASE_PASSWORD_FILE=/run/secrets/root-password
//	export SNAPKEEPER_SNAPSHOT_DIR=/backup
//	export SNAPKEEPER_SNAPSHOT_MAX_BACKUPS=7
//	snapkeeper backup
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/snapkeeper/internal/config"
	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/mariadb"
	"github.com/tomtom215/snapkeeper/internal/scheduler"
	"github.com/tomtom215/snapkeeper/internal/server"
	"github.com/tomtom215/snapkeeper/internal/snapshot"
	"github.com/tomtom215/snapkeeper/internal/supervisor"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usageText = `Usage: snapkeeper <command> [-config path]

Commands:
  backup    Run one backup cycle (prune, dump, publish)
  prune     Apply the retention policy without dumping
  restore   Initialize an empty database from the newest snapshot
  daemon    Run the cron scheduler and admin endpoint
  version   Print the version
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}

	command := args[0]
	if command == "version" {
		fmt.Printf("snapkeeper %s\n", Version)
		return 0
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapkeeper: %v\n", err)
		return 2
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	engine := mariadb.NewEngine(mariadb.Options{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		PasswordFile: cfg.Database.PasswordFile,
		Database:     cfg.TargetDatabase(),
		ProbeTable:   cfg.Database.ProbeTable,
	})

	switch command {
	case "backup":
		return runBackup(cfg, engine)
	case "prune":
		return runPrune(cfg)
	case "restore":
		return runRestore(cfg, engine)
	case "daemon":
		return runDaemon(cfg, engine)
	default:
		fmt.Fprintf(os.Stderr, "snapkeeper: unknown command %q\n\n%s", command, usageText)
		return 2
	}
}

// newProducer wires the producer for the configured target.
func newProducer(cfg *config.Config, engine *mariadb.Engine) *snapshot.Producer {
	return snapshot.NewProducer(engine, cfg.Snapshot.Dir, cfg.DatabaseName(), cfg.Snapshot.MaxBackups)
}

func runBackup(cfg *config.Config, engine *mariadb.Engine) int {
	producer := newProducer(cfg, engine)
	producer.CleanOrphans()

	if _, err := producer.Produce(context.Background()); err != nil {
		logging.Error().Err(err).Msg("Backup cycle failed")
		return 1
	}
	return 0
}

func runPrune(cfg *config.Config) int {
	removed, err := snapshot.Prune(cfg.Snapshot.Dir, cfg.DatabaseName(), cfg.Snapshot.MaxBackups, 0)
	if err != nil {
		logging.Error().Err(err).Msg("Prune failed")
		return 1
	}
	logging.Info().Int("removed", removed).Msg("Prune complete")
	return 0
}

func runRestore(cfg *config.Config, engine *mariadb.Engine) int {
	selector := snapshot.NewSelector(engine, engine, cfg.Snapshot.Dir, cfg.DatabaseName())

	result := selector.MaybeRestore(context.Background())
	if result.Outcome == snapshot.OutcomeFailed {
		// Already logged by the selector; the exit code is the contract.
		return 1
	}
	return 0
}

func runDaemon(cfg *config.Config, engine *mariadb.Engine) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.New(cfg.Schedule.Cron, newProducer(cfg, engine))
	if err != nil {
		logging.Error().Err(err).Msg("Invalid schedule configuration")
		return 2
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(sched)
	if cfg.Server.Enabled {
		tree.Add(server.New(cfg.Server.Addr(), cfg.Snapshot.Dir, cfg.DatabaseName()))
	}

	logging.Info().
		Str("version", Version).
		Str("database", cfg.DatabaseName()).
		Str("dir", cfg.Snapshot.Dir).
		Msg("Snapkeeper daemon starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor terminated with error")
		return 1
	}

	logging.Info().Msg("Snapkeeper daemon stopped")
	return 0
}
