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

package read

import (
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/stack"

	"github.com/erigontech/pdb/id"
)

// ReadOneContext is the Read-One Context of spec.md §4.5.1: for one
// candidate primitive, it iterates each subconstraint in turn, pushing a
// child RSC for each one and collecting the result into the parent's frame.
// It implements stack.StackContext so the Execution Stack can run it
// depth-first, one subconstraint at a time.
type ReadOneContext struct {
	stack.BaseContext

	parent    *RSC
	candidate id.ID
	primitive id.Primitive

	idx   int
	child *RSC

	collected map[string]any
	ok        bool
}

func newReadOneContext(parent *RSC, candidate id.ID, p id.Primitive) *ReadOneContext {
	return &ReadOneContext{
		parent:    parent,
		candidate: candidate,
		primitive: p,
		ok:        true,
		collected: extractFrame(p, parent.Node.Result.Fields),
	}
}

// Run pushes one child RSC per subconstraint, collecting each one's result
// once it pops, then pops itself once every subconstraint has decided.
func (r *ReadOneContext) Run(b *pdb.Budget) (stack.Signal, error) {
	if r.child != nil {
		r.collectChild()
		r.child = nil
		r.idx++
	}
	if r.idx >= len(r.parent.Node.Children) {
		return stack.Signal{Pop: true}, nil
	}

	childNode := r.parent.Node.Children[r.idx]
	candidateGUID, _ := r.parent.Store.GUIDFromID(r.candidate)
	sub, err := buildSubIterator(r.parent.Store, r.primitive, candidateGUID, childNode)
	if err != nil {
		return stack.Signal{}, err
	}
	childRSC := NewRSC(childNode, r.parent.Store, sub, r.candidate, candidateGUID)
	r.child = childRSC
	return stack.Signal{Push: childRSC}, nil
}

// collectChild folds the just-finished child's first match into this
// candidate's frame and records whether the subconstraint was satisfied at
// all, feeding back into the parent's OR-state map (spec.md §4.5.1).
func (r *ReadOneContext) collectChild() {
	c := r.child
	if len(c.Matches) == 0 {
		r.ok = false
		r.parent.orState[r.idx] = false
		return
	}
	r.parent.orState[r.idx] = true
	for k, v := range c.Matches[0].Frame {
		r.collected[k] = v
	}
}

func (r *ReadOneContext) Suspend() any          { return nil }
func (r *ReadOneContext) Unsuspend(s any) error { return nil }
func (r *ReadOneContext) Free() error           { return nil }
