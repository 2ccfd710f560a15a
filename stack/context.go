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

// Package stack implements the Execution Stack (C4): a cooperative,
// budget-bounded, suspend/resume call stack driving one request, named in
// spec.md §4.4.
package stack

import "github.com/erigontech/pdb"

// ContextID identifies a StackContext for removal and resource-manager
// bookkeeping; assigned by Stack.Push, never reused within one Stack.
type ContextID uint64

// StackContext is one frame of a request's execution stack: the Read and
// Write engines' RSC/commit-phase state machines each implement it.
type StackContext interface {
	// ID reports this context's assigned ContextID (0 before Push).
	ID() ContextID
	// SetID is called once by Stack.Push to assign the context's ID.
	SetID(ContextID)

	// Run executes one cooperative slice of work against budget b and
	// reports what the stack should do next via Signal.
	Run(b *pdb.Budget) (Signal, error)

	// Suspend serialises the context's mutable state to an opaque value
	// the caller can hold in memory (e.g. across a request yield) and
	// later hand back to Unsuspend.
	Suspend() any

	// Unsuspend restores state previously returned by Suspend.
	Unsuspend(state any) error

	// Free releases any resources this context holds. The resource
	// manager guarantees Free runs exactly once per context, whether the
	// stack unwinds normally or the request is torn down abnormally.
	Free() error
}

// Signal is what a StackContext's Run asks the owning Stack to do next.
type Signal struct {
	// Push, if non-nil, is a child context to run depth-first before this
	// context runs again.
	Push StackContext
	// Pop, if true, returns control to this context's caller (its Free is
	// called and it is removed from the stack).
	Pop bool
	// Remove, if non-zero, asks the stack to drop the context with this
	// ID wherever it sits in the stack (not necessarily the top),
	// matching spec.md §4.4's "remove themselves anywhere in the stack".
	Remove ContextID
	// More signals the context ran out of budget mid-Run and should be
	// re-run (not popped) once the stack has a fresh budget.
	More bool
}

// BaseContext is an embeddable helper giving StackContext implementations
// ID()/SetID() for free, the way erigon-lib's smaller interfaces are
// usually implemented via a small embedded struct rather than repeated
// boilerplate per concrete type.
type BaseContext struct{ id ContextID }

func (c *BaseContext) ID() ContextID    { return c.id }
func (c *BaseContext) SetID(id ContextID) { c.id = id }
