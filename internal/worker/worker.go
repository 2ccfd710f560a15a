// Copyright 2026 The PDB Authors
// This file is part of pdb.
//
// pdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pdb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with pdb. If not, see <http://www.gnu.org/licenses/>.

// Package worker is the manager process of spec.md §5: it spawns the
// configured number of single-threaded worker processes, restarts a
// worker that crashes subject to a sliding-window rate guard, and
// forwards shutdown signals to the whole fleet.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Spawn starts one worker instance and blocks until it exits, returning
// the error (if any) it exited with. A Manager calls this once per slot
// and again on every permitted restart.
type Spawn func(ctx context.Context) error

// Manager supervises a fleet of worker slots, each running Spawn
// repeatedly until its context is cancelled or its restart budget (spec.md
// §5: "at most RestartLimit restarts within RestartWindow") is spent.
type Manager struct {
	Spawn         Spawn
	Logger        *zap.Logger
	RestartLimit  int
	RestartWindow time.Duration
}

// NewManager returns a Manager with spec.md §5's default restart guard (at
// most 3 restarts within 5 minutes) unless overridden by the caller.
func NewManager(spawn Spawn, logger *zap.Logger) *Manager {
	return &Manager{
		Spawn:         spawn,
		Logger:        logger,
		RestartLimit:  3,
		RestartWindow: 5 * time.Minute,
	}
}

// ErrRestartBudgetExhausted is returned by a slot's Run when it crashed
// more than RestartLimit times within RestartWindow; the caller (cmd/pdbd)
// exits with exitcode.Software rather than looping forever on a
// crash-looping worker.
type ErrRestartBudgetExhausted struct {
	Restarts int
	Window   time.Duration
}

func (e *ErrRestartBudgetExhausted) Error() string {
	return "worker: exceeded restart budget (crash-loop guard tripped)"
}

// Run spawns n worker slots concurrently and blocks until ctx is
// cancelled or any slot exhausts its restart budget, whichever comes
// first; errgroup.WithContext cancels every other slot's context the
// moment one slot returns an error, matching spec.md §5's "terminates the
// fleet on configured signals" for the crash-loop case too.
func (m *Manager) Run(ctx context.Context, n int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		slot := i
		g.Go(func() error {
			return m.runSlot(gctx, slot)
		})
	}
	return g.Wait()
}

// runSlot restarts Spawn until gctx is cancelled (clean shutdown) or the
// restart-rate guard trips.
func (m *Manager) runSlot(gctx context.Context, slot int) error {
	guard := newRestartGuard(m.RestartLimit, m.RestartWindow)
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	for {
		err := m.Spawn(gctx)
		if gctx.Err() != nil {
			return nil // clean shutdown: context cancellation isn't a crash
		}
		if err == nil {
			// A worker that exits 0 on its own (e.g. `-z` stop) ends its
			// slot rather than being restarted.
			return nil
		}
		if m.Logger != nil {
			m.Logger.Warn("worker slot crashed, considering restart",
				zap.Int("slot", slot), zap.Error(err))
		}
		if !guard.allow() {
			return &ErrRestartBudgetExhausted{Restarts: m.RestartLimit, Window: m.RestartWindow}
		}
		select {
		case <-gctx.Done():
			return nil
		case <-time.After(bo.NextBackOff()):
		}
	}
}

// restartGuard tracks restart timestamps in a sliding window, the part a
// bare exponential backoff delay doesn't enforce on its own: backoff only
// spaces restarts out, it never caps how many happen in total over a
// window.
type restartGuard struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	times  []time.Time
}

func newRestartGuard(limit int, window time.Duration) *restartGuard {
	return &restartGuard{limit: limit, window: window}
}

// allow records a restart attempt now and reports whether it's still
// within budget.
func (g *restartGuard) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-g.window)
	kept := g.times[:0]
	for _, t := range g.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.times = append(kept, now)
	return len(g.times) <= g.limit
}
