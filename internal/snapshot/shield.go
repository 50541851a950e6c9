// Snapkeeper - MariaDB Snapshot Lifecycle Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/snapkeeper

package snapshot

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tomtom215/snapkeeper/internal/logging"
)

// Shield defers termination signals around an uninterruptible critical
// section. Signals delivered between Enter and Exit are queued; Exit
// re-delivers them to the process so the normal termination path runs
// after the critical section has either published or cleaned up.
//
// A dump that is killed anyway (SIGKILL, power loss) leaves at most an
// orphaned temp file, never a corrupted canonical snapshot.
type Shield struct {
	signals []os.Signal

	mu      sync.Mutex
	ch      chan os.Signal
	done    chan struct{}
	pending []os.Signal
}

// NewShield creates a Shield for the given signals, defaulting to SIGINT
// and SIGTERM.
func NewShield(signals ...os.Signal) *Shield {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	return &Shield{signals: signals}
}

// Enter begins deferring signals. Calls must be paired with Exit.
func (s *Shield) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		return
	}

	s.ch = make(chan os.Signal, 4)
	s.done = make(chan struct{})
	signal.Notify(s.ch, s.signals...)

	go func(ch chan os.Signal, done chan struct{}) {
		for {
			select {
			case sig := <-ch:
				s.mu.Lock()
				s.pending = append(s.pending, sig)
				s.mu.Unlock()
				logging.Warn().Str("signal", sig.String()).Msg("Termination deferred until snapshot publish completes")
			case <-done:
				return
			}
		}
	}(s.ch, s.done)
}

// Exit stops deferring and re-delivers any queued signals to the process.
func (s *Shield) Exit() {
	s.mu.Lock()
	if s.ch == nil {
		s.mu.Unlock()
		return
	}

	signal.Stop(s.ch)
	close(s.done)

	// Collect anything buffered but not yet drained by the goroutine.
	for {
		select {
		case sig := <-s.ch:
			s.pending = append(s.pending, sig)
			continue
		default:
		}
		break
	}

	pending := s.pending
	s.ch = nil
	s.done = nil
	s.pending = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		return
	}
	for _, sig := range pending {
		logging.Info().Str("signal", sig.String()).Msg("Re-delivering deferred termination signal")
		proc.Signal(sig) //nolint:errcheck // Best effort re-delivery
	}
}

// Deferred returns how many signals are currently queued. Exposed for
// tests and for callers that want to skip follow-up work when shutdown
// was requested mid-cycle.
func (s *Shield) Deferred() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
