// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

// Package server provides the daemon's admin HTTP endpoint: health for
// container gating, Prometheus metrics, and a read-only snapshot listing.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/snapkeeper/internal/logging"
	"github.com/tomtom215/snapkeeper/internal/snapshot"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server is the admin HTTP endpoint, supervised as a suture service in
// daemon mode.
type Server struct {
	addr     string
	dir      string
	database string
}

// New returns a Server listing snapshots of database from dir.
func New(addr, dir, database string) *Server {
	return &Server{addr: addr, dir: dir, database: database}
}

// Routes builds the admin router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/v1/snapshots", s.handleListSnapshots)

	return r
}

// Serve implements suture.Service.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logging.Info().Str("addr", s.addr).Msg("Admin server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("admin server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin server shutdown: %w", err)
		}
		return ctx.Err()
	}
}

// String names the service in supervisor logs.
func (s *Server) String() string {
	return "admin-server"
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // Nothing to do if the client went away
}

// snapshotsResponse is the /v1/snapshots payload.
type snapshotsResponse struct {
	Database  string              `json:"database"`
	Count     int                 `json:"count"`
	Snapshots []snapshot.Snapshot `json:"snapshots"`
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, _ *http.Request) {
	snaps, err := snapshot.List(s.dir, s.database)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list snapshots")
		http.Error(w, `{"error":"failed to list snapshots"}`, http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []snapshot.Snapshot{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshotsResponse{
		Database:  s.database,
		Count:     len(snaps),
		Snapshots: snaps,
	}); err != nil {
		logging.Error().Err(err).Msg("Failed to encode snapshot listing")
	}
}
