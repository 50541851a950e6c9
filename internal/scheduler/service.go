// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package scheduler runs backup cycles on a cron schedule in daemon mode.
// The snapshot components themselves stay one-shot; this package only
// embeds the external scheduler's role for operators who prefer a single
// long-running process over a host cron entry.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/snapshot"
)

// Runner produces one snapshot per call. Satisfied by *snapshot.Producer.
type Runner interface {
	Produce(ctx context.Context) (snapshot.Snapshot, error)
}

// Service triggers backup cycles on a cron schedule. It implements
// suture.Service; cycle failures are logged and absorbed (the next tick
// retries), they never crash the service.
type Service struct {
	spec   string
	runner Runner
}

// New validates the cron expression and returns the service.
func New(spec string, runner Runner) (*Service, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return &Service{spec: spec, runner: runner}, nil
}

// Serve implements suture.Service: it runs the cron loop until the
// context is canceled.
func (s *Service) Serve(ctx context.Context) error {
	c := cron.New()

	// Cycles run on a context detached from the shutdown signal: the
	// first SIGTERM stops scheduling new cycles but must not kill an
	// in-flight dump, whose publish step the signal shield protects.
	cycleCtx := context.WithoutCancel(ctx)

	_, err := c.AddFunc(s.spec, func() {
		if _, err := s.runner.Produce(cycleCtx); err != nil {
			// Absorbed per the propagation policy: a failed cycle is
			// retried on the next tick, prior snapshots are untouched.
			logging.Error().Err(err).Msg("Scheduled backup cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup cycle: %w", err)
	}

	c.Start()
	logging.Info().Str("cron", s.spec).Msg("Backup scheduler started")

	<-ctx.Done()

	stopCtx := c.Stop()
	// Wait for an in-flight cycle to finish. The container's grace
	// period bounds how long this may take before forced termination.
	<-stopCtx.Done()

	logging.Info().Msg("Backup scheduler stopped")
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "backup-scheduler"
}
