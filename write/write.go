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

// Package write implements the Write Engine (C6): validity checking and
// the six-phase commit pipeline of spec.md §4.6 over a Write Constraint
// Tree (pdb/constraint.WriteNode).
package write

import (
	"context"
	"time"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/stack"
	"github.com/erigontech/pdb/store"
	"github.com/erigontech/pdb/ticket"

	"github.com/erigontech/pdb/id"
)

const defaultSlice = 1 << 16

// Commit runs the full Write Engine pipeline against root: validity, then
// the six annotate/check/commit/prune phases of spec.md §4.6.2. It takes
// an exclusive ticket before phase 1 and releases it only once the
// request's stack has fully drained, matching spec.md §4.6/§4.7.
func Commit(tm *ticket.Manager, st store.Store, root *constraint.WriteNode, deadline time.Time) (*Result, error) {
	if err := validate(st, root); err != nil {
		return nil, err
	}

	t := tm.GetExclusive(nil, nil)
	if err := t.WaitTurn(context.Background()); err != nil {
		tm.Delete(t)
		return nil, pdb.WrapError(pdb.IO, err, "write: acquiring exclusive ticket")
	}
	defer func() {
		t.Release()
		tm.Delete(t)
	}()

	cc := newCommitContext(st, root)
	s := stack.New()
	s.Push(cc)
	b := pdb.NewBudget(defaultSlice)
	for {
		o, err := s.RunUntilDeadline(b, deadline)
		if err != nil {
			return nil, err
		}
		if o == stack.Done {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, pdb.NewError(pdb.TOO_HARD, "write: soft timeout")
		}
		b.Refill(defaultSlice)
	}
	if cc.err != nil {
		return nil, cc.err
	}
	return cc.result, nil
}

// commitPhase names one of the six pipeline stages of spec.md §4.6.2, plus
// phaseDone. The validity check is not one of these phases: Commit runs it
// up front, before the ticket is taken and the stack is built.
type commitPhase int

const (
	phaseAnchor commitPhase = iota
	phaseKey
	phasePointed
	phaseUnique
	phaseCommit
	phasePrune
	phaseDone
)

// CommitContext drives root through the write pipeline as a single
// Execution Stack frame. Phases 1-4 (anchor/key/pointed/unique) are pure,
// idempotent tree walks re-run wholesale on resume after a budget
// exhaustion; phase 5 (commit) is the one phase with external side
// effects, so it runs to completion in a single slice rather than
// resuming mid-write — spec.md §4.6's "time-limited" phase 5 is enforced
// by Commit's outer RunUntilDeadline loop, not by suspending mid-commit.
type CommitContext struct {
	stack.BaseContext

	store store.Store
	root  *constraint.WriteNode

	phase commitPhase
	err   error

	result *Result
}

func newCommitContext(st store.Store, root *constraint.WriteNode) *CommitContext {
	return &CommitContext{store: st, root: root}
}

// Run advances the pipeline by exactly one phase per call, charging a
// budget cost proportional to the tree's size so a pathologically large
// write tree still yields control between phases.
func (c *CommitContext) Run(b *pdb.Budget) (stack.Signal, error) {
	cost := int64(countNodes(c.root))
	if cost < 1 {
		cost = 1
	}
	if !b.Charge(cost) {
		return stack.Signal{More: true}, nil
	}

	switch c.phase {
	case phaseAnchor:
		c.err = anchorAnnotate(c.store, c.root)
		c.phase = phaseKey
	case phaseKey:
		keyAnnotate(c.root)
		c.phase = phasePointed
	case phasePointed:
		c.err = pointedAnnotate(c.store, c.root)
		c.phase = phaseUnique
	case phaseUnique:
		c.err = uniqueCheck(c.store, id.Null, c.root)
		c.phase = phaseCommit
	case phaseCommit:
		raw, err := commitAll(c.store, c.root)
		if err != nil {
			c.err = err
		} else {
			c.phase = phasePrune
			result := pruneResult(raw)
			c.result = &result
		}
		if c.err != nil {
			c.phase = phaseDone
		}
	case phasePrune:
		c.phase = phaseDone
	}

	if c.phase == phaseDone || c.err != nil {
		return stack.Signal{Pop: true}, nil
	}
	return stack.Signal{}, nil
}

func (c *CommitContext) Suspend() any           { return nil }
func (c *CommitContext) Unsuspend(state any) error { return nil }
func (c *CommitContext) Free() error            { return nil }

func countNodes(n *constraint.WriteNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}
