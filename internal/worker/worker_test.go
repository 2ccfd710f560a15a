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

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunStopsCleanlyOnContextCancel(t *testing.T) {
	var calls int32
	spawn := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return nil
	}
	m := NewManager(spawn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 3) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestRunRestartsCrashedSlotWithinBudget(t *testing.T) {
	var calls int32
	spawn := func(ctx context.Context) error {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return errors.New("boom")
		}
		<-ctx.Done()
		return nil
	}
	m := NewManager(spawn, nil)
	m.RestartLimit = 5
	m.RestartWindow = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 1) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestRunTripsRestartBudgetGuard(t *testing.T) {
	spawn := func(ctx context.Context) error {
		return errors.New("boom")
	}
	m := NewManager(spawn, nil)
	m.RestartLimit = 2
	m.RestartWindow = time.Minute

	err := m.Run(context.Background(), 1)
	var budgetErr *ErrRestartBudgetExhausted
	require.ErrorAs(t, err, &budgetErr)
	require.Equal(t, 2, budgetErr.Restarts)
}

func TestRestartGuardSlidesWindow(t *testing.T) {
	g := newRestartGuard(2, 30*time.Millisecond)
	require.True(t, g.allow())
	require.True(t, g.allow())
	require.False(t, g.allow())

	time.Sleep(40 * time.Millisecond)
	require.True(t, g.allow())
}
