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

package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSharedCohortRunsTogether(t *testing.T) {
	m := NewManager()
	a := m.GetShared(nil, nil)
	b := m.GetShared(nil, nil)
	require.Equal(t, a.Number(), b.Number())
	require.True(t, m.IsRunning(a))
	require.True(t, m.IsRunning(b))
}

func TestExclusiveIsolatesNumber(t *testing.T) {
	m := NewManager()
	s := m.GetShared(nil, nil)
	x := m.GetExclusive(nil, nil)
	s2 := m.GetShared(nil, nil)

	require.NotEqual(t, s.Number(), x.Number())
	require.Greater(t, x.Number(), s.Number())
	require.Greater(t, s2.Number(), x.Number())
}

func TestHeadAlwaysSmallest(t *testing.T) {
	m := NewManager()
	a := m.GetShared(nil, nil)
	x := m.GetExclusive(nil, nil)

	require.True(t, m.IsRunning(a))
	require.False(t, m.IsRunning(x))

	m.Delete(a)
	require.True(t, m.IsRunning(x))
}

func TestDeleteNotifiesNewlyRunnable(t *testing.T) {
	m := NewManager()
	a := m.GetShared(nil, nil)

	var notified bool
	x := m.GetExclusive(func(t *Ticket) { notified = true }, nil)
	require.False(t, notified)

	m.Delete(a)
	require.True(t, notified)
	require.True(t, m.IsRunning(x))
}

func TestGetAlreadyRunnableNotifiesInline(t *testing.T) {
	m := NewManager()
	var notified bool
	a := m.GetShared(func(t *Ticket) { notified = true }, nil)
	require.True(t, notified)
	require.True(t, m.IsRunning(a))
}

func TestReissueReordersAtTail(t *testing.T) {
	m := NewManager()
	a := m.GetShared(nil, nil)
	b := m.GetExclusive(nil, nil)

	a2 := m.Reissue(a, Exclusive)
	require.Greater(t, a2.Number(), b.Number())
	require.False(t, m.IsRunning(a2))

	m.Delete(b)
	require.True(t, m.IsRunning(a2))
}

func TestWaitTurnSerializesExclusiveHolders(t *testing.T) {
	m := NewManager()
	x1 := m.GetExclusive(nil, nil)
	x2 := m.GetExclusive(nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, x1.WaitTurn(ctx))

	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	require.Error(t, x2.WaitTurn(ctx2))

	x1.Release()
	require.NoError(t, x2.WaitTurn(context.Background()))
	x2.Release()
}

func TestSharedWaitTurnIsNoop(t *testing.T) {
	m := NewManager()
	s := m.GetShared(nil, nil)
	require.NoError(t, s.WaitTurn(context.Background()))
	s.Release()
}
