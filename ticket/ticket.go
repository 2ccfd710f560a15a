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

// Package ticket implements the Exclusion Tickets scheduling gate (spec.md
// §4.7): a global monotone ticket printer whose callers take either a
// shared or an exclusive ticket, then ask whether their ticket is the one
// currently running. Writes take an exclusive ticket; reads take a shared
// one; background checkpoint/snapshot work takes an exclusive one.
package ticket

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kind distinguishes a shared ticket (many holders may run together) from
// an exclusive one (its holder runs alone for its number).
type Kind int

const (
	Shared Kind = iota
	Exclusive
)

func (k Kind) String() string {
	if k == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// Callback is invoked at most once, when a ticket transitions from waiting
// to running because the head of the list advanced to (or past) its
// number. Get* calls whose ticket is already runnable at issue time invoke
// cb synchronously, inline, before returning.
type Callback func(t *Ticket)

// Ticket is one entry in the printer's doubly linked, non-decreasing list.
type Ticket struct {
	number int64
	kind   Kind
	cb     Callback
	data   any

	notified bool
	held     bool
	prev     *Ticket
	next     *Ticket

	mgr *Manager
}

// Number is this ticket's position in the global, strictly monotone
// sequence (shared tickets may share a number; each exclusive ticket owns
// one exclusively).
func (t *Ticket) Number() int64 { return t.number }

// Kind reports whether t is shared or exclusive.
func (t *Ticket) Kind() Kind { return t.kind }

// Data returns the opaque value passed to Get{Shared,Exclusive}.
func (t *Ticket) Data() any { return t.data }

// Manager owns the ticket printer's counter and list. The zero value is
// not usable; use NewManager.
type Manager struct {
	mu      sync.Mutex
	counter int64
	head    *Ticket
	tail    *Ticket

	// excl enforces real mutual exclusion between exclusive tickets at the
	// goroutine level: WaitTurn on an exclusive ticket blocks until it can
	// acquire this single permit, and semaphore.Weighted serves blocked
	// Acquire calls in FIFO order. The permit does not consult the ticket
	// list; list order is what IsRunning and the callbacks report.
	excl *semaphore.Weighted
}

// NewManager returns an empty ticket printer with its counter at zero.
func NewManager() *Manager {
	return &Manager{excl: semaphore.NewWeighted(1)}
}

// Stats is a snapshot of a Manager's queue depth, for the admin surface's
// /stats endpoint.
type Stats struct {
	// Outstanding is the number of tickets currently in the list (issued
	// but not yet Deleted).
	Outstanding int
	// HeadNumber is the running ticket's number, or -1 if the list is
	// empty.
	HeadNumber int64
}

// Stats reports m's current queue depth and head position.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{HeadNumber: -1}
	if m.head != nil {
		s.HeadNumber = m.head.number
	}
	for n := m.head; n != nil; n = n.next {
		s.Outstanding++
	}
	return s
}

// GetShared issues a ticket at the current counter value without bumping
// it, so every concurrent shared caller at this instant shares one number.
func (m *Manager) GetShared(cb Callback, data any) *Ticket {
	m.mu.Lock()
	t := &Ticket{number: m.counter, kind: Shared, cb: cb, data: data, mgr: m}
	m.append(t)
	runnable := m.isRunningLocked(t)
	m.mu.Unlock()
	if runnable {
		t.notify()
	}
	return t
}

// GetExclusive bumps the counter, takes the bumped value, then bumps again
// so no later shared ticket can ever coincide with this number.
func (m *Manager) GetExclusive(cb Callback, data any) *Ticket {
	m.mu.Lock()
	m.counter++
	t := &Ticket{number: m.counter, kind: Exclusive, cb: cb, data: data, mgr: m}
	m.counter++
	m.append(t)
	runnable := m.isRunningLocked(t)
	m.mu.Unlock()
	if runnable {
		t.notify()
	}
	return t
}

func (m *Manager) append(t *Ticket) {
	if m.tail == nil {
		m.head, m.tail = t, t
		return
	}
	t.prev = m.tail
	m.tail.next = t
	m.tail = t
}

// IsRunning reports whether t's number has reached the head of the list,
// i.e. every ticket ahead of it has been deleted.
func (m *Manager) IsRunning(t *Ticket) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunningLocked(t)
}

func (m *Manager) isRunningLocked(t *Ticket) bool {
	return m.head != nil && t.number <= m.head.number
}

func (t *Ticket) notify() {
	if t.notified {
		return
	}
	t.notified = true
	if t.cb != nil {
		t.cb(t)
	}
}

// Delete removes t from the list. If the head advances as a result, every
// ticket that becomes runnable is notified via its callback exactly once.
func (m *Manager) Delete(t *Ticket) {
	m.mu.Lock()
	m.remove(t)
	newly := m.advanceLocked()
	m.mu.Unlock()
	for _, n := range newly {
		n.notify()
	}
}

func (m *Manager) remove(t *Ticket) {
	if t.prev != nil {
		t.prev.next = t.next
	} else if m.head == t {
		m.head = t.next
	}
	if t.next != nil {
		t.next.prev = t.prev
	} else if m.tail == t {
		m.tail = t.prev
	}
	t.prev, t.next = nil, nil
}

// advanceLocked returns every still-listed ticket that is newly runnable
// after a deletion, in list order (== number order, since the list is
// non-decreasing).
func (m *Manager) advanceLocked() []*Ticket {
	var newly []*Ticket
	for n := m.head; n != nil; n = n.next {
		if n.notified {
			continue
		}
		if n.number > m.head.number {
			break
		}
		newly = append(newly, n)
	}
	return newly
}

// Reissue atomically re-queues t under kind, as if t had been deleted and a
// fresh Get{Shared,Exclusive} issued in a single step: no other ticket can
// be inserted between the two halves of the operation. The returned ticket
// replaces t; t itself is no longer valid.
func (m *Manager) Reissue(t *Ticket, kind Kind) *Ticket {
	m.mu.Lock()
	m.remove(t)
	var nt *Ticket
	if kind == Exclusive {
		m.counter++
		nt = &Ticket{number: m.counter, kind: Exclusive, cb: t.cb, data: t.data, mgr: m}
		m.counter++
	} else {
		nt = &Ticket{number: m.counter, kind: Shared, cb: t.cb, data: t.data, mgr: m}
	}
	m.append(nt)
	newly := m.advanceLocked()
	runnable := m.isRunningLocked(nt)
	m.mu.Unlock()
	for _, n := range newly {
		n.notify()
	}
	if runnable {
		nt.notify()
	}
	return nt
}

// WaitTurn blocks until t, if exclusive, holds the manager's single
// mutual-exclusion permit, a real guarantee beneath the cooperative
// IsRunning/Callback model above: two goroutines holding exclusive tickets
// can never both be past WaitTurn at once. It does not wait for t to reach
// the head of the list. Shared tickets do not need this — their cohort is
// meant to run together — so calling it on a shared ticket always returns
// immediately.
func (t *Ticket) WaitTurn(ctx context.Context) error {
	if t.kind != Exclusive {
		return nil
	}
	if err := t.mgr.excl.Acquire(ctx, 1); err != nil {
		return err
	}
	t.held = true
	return nil
}

// Release gives up the mutual-exclusion permit WaitTurn acquired. Callers
// that took WaitTurn must call Release before Delete; Release on a shared
// ticket, or one that never called WaitTurn, is a no-op.
func (t *Ticket) Release() {
	if t.kind != Exclusive || !t.held {
		return
	}
	t.held = false
	t.mgr.excl.Release(1)
}
