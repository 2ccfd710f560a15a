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

// Package read implements the Read Engine (C5): the Read-Set Context state
// machine that drives an Iterator against a Constraint Node, matches,
// samples, sorts, paginates and produces result values, per spec.md §4.5.
package read

import (
	"time"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/stack"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// defaultSlice is the per-Run budget handed to the stack between
// RunUntilDeadline calls; small enough that a single slow child iterator
// can't starve the deadline check, generous enough that a typical page of
// matches resolves in one or two slices.
const defaultSlice = 1 << 16

// Execute builds a Read-Set Context for node over it and drives it to
// completion or to deadline, returning the RSC (whose Matches/Cursor fields
// hold the outcome) and an error only for a genuine failure (not a soft
// timeout, which is reported via RSC.Cursor being non-empty on return).
func Execute(st store.Store, node *constraint.Node, it iter.Iterator, parentID id.ID, parentGUID id.GUID, deadline time.Time) (*RSC, error) {
	rsc := NewRSC(node, st, it, parentID, parentGUID)
	s := stack.New()
	s.Push(rsc)
	b := pdb.NewBudget(defaultSlice)
	for {
		o, err := s.RunUntilDeadline(b, deadline)
		if err != nil {
			return rsc, err
		}
		if o == stack.Done {
			return rsc, nil
		}
		if !time.Now().Before(deadline) {
			return rsc, pdb.NewError(pdb.TOO_HARD, "read: soft timeout")
		}
		b.Refill(defaultSlice)
	}
}
