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

package write

import (
	"fmt"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// RollbackError wraps a commit failure together with the rollback outcome,
// so a caller (the worker's epitaph path, spec.md §4.6/§7) can tell
// "rolled back cleanly, request failed" from "rollback itself failed,
// process must exit" by checking RollbackCause.
type RollbackError struct {
	Horizon       int64
	Cause         error
	RollbackCause error
}

func (e *RollbackError) Error() string {
	if e.RollbackCause != nil {
		return fmt.Sprintf("write: commit failed (%v) and rollback to horizon %d also failed: %v", e.Cause, e.Horizon, e.RollbackCause)
	}
	return fmt.Sprintf("write: commit failed (%v), rolled back to horizon %d", e.Cause, e.Horizon)
}

func (e *RollbackError) Unwrap() error { return e.Cause }

// Fatal reports whether the process must exit rather than merely fail the
// request: true when rollback itself failed, leaving the store's state
// beyond the horizon undefined.
func (e *RollbackError) Fatal() bool { return e.RollbackCause != nil }

// commitAll is pipeline phase 5 (spec.md §4.6.2): record a rollback
// horizon, write every unbound node's primitive in parent-before-child
// order, and roll back to the horizon on any failure.
func commitAll(st store.Store, root *constraint.WriteNode) (rawResult, error) {
	horizon := st.PrimitiveN()
	guids := make(map[*constraint.WriteNode]id.GUID)
	assignGUIDs(st, root, guids)

	raw, err := commitNode(st, guids, root, id.Null)
	if err != nil {
		if rerr := st.CheckpointRollback(horizon); rerr != nil {
			return rawResult{}, &RollbackError{Horizon: horizon, Cause: err, RollbackCause: rerr}
		}
		return rawResult{}, &RollbackError{Horizon: horizon, Cause: err}
	}
	st.CheckpointOptional()
	return raw, nil
}

// assignGUIDs resolves the GUID every node will carry, before any store
// write happens: bound nodes reuse their resolved GUID, unbound nodes mint
// a fresh one. Doing this as a separate pure pass lets an i-am-kind child's
// GUID be known in time for its parent's own primitive (written first) to
// embed it, without changing commit's parent-before-child write order.
func assignGUIDs(st store.Store, n *constraint.WriteNode, out map[*constraint.WriteNode]id.GUID) {
	if n.Bound != nil {
		out[n] = *n.Bound
	} else {
		out[n] = st.MintGUID()
	}
	for _, c := range n.Children {
		assignGUIDs(st, c, out)
	}
}

// commitNode writes n's primitive (unless it is bound to an existing
// record) and recurses into its children, returning the raw result tree
// for pruneResult. parentGUID is n's own parent's resolved GUID, used to
// fill a my-kind endpoint on n itself.
func commitNode(st store.Store, guids map[*constraint.WriteNode]id.GUID, n *constraint.WriteNode, parentGUID id.GUID) (rawResult, error) {
	guid := guids[n]

	if n.Bound == nil {
		p, err := buildPrimitive(st, guids, n, guid, parentGUID)
		if err != nil {
			return rawResult{}, err
		}
		if _, err := st.WritePrimitive(p); err != nil {
			return rawResult{}, err
		}
	}

	raw := rawResult{node: n, guid: guid}
	for _, c := range n.Children {
		childRaw, err := commitNode(st, guids, c, guid)
		if err != nil {
			return rawResult{}, err
		}
		raw.children = append(raw.children, childRaw)
	}
	return raw, nil
}

// buildPrimitive assembles the id.Primitive a fresh node commits as: its
// own fields, a my-kind endpoint pointing at parentGUID, and an
// i-am-kind endpoint per child pointing down at that child's own resolved
// GUID (set here, on the parent, since primitives are immutable once
// written and an i-am-kind child cannot retroactively update its parent).
func buildPrimitive(st store.Store, guids map[*constraint.WriteNode]id.GUID, n *constraint.WriteNode, guid, parentGUID id.GUID) (id.Primitive, error) {
	p := id.Primitive{GUID: guid}
	if n.Name != nil {
		p.Name = *n.Name
	}
	if n.Value != nil {
		p.Value = *n.Value
	}
	switch {
	case n.Typeguid != nil:
		p.Typeguid = *n.Typeguid
	case n.Type != nil:
		tg, err := resolveTypeGUID(st, *n.Type)
		if err != nil {
			return id.Primitive{}, err
		}
		p.Typeguid = tg
	}
	if n.Live != nil {
		p.Live = *n.Live
	} else {
		p.Live = true
	}
	if n.Archival != nil {
		p.Archival = *n.Archival
	}
	for which, g := range n.LinkageGUIDs {
		p.SetLinkage(which, g)
	}
	if n.ParentLinkage.Kind == constraint.LinkageMy && !parentGUID.IsNull() {
		p.SetLinkage(n.ParentLinkage.Which, parentGUID)
	}
	for _, c := range n.Children {
		if c.ParentLinkage.Kind == constraint.LinkageIAm {
			p.SetLinkage(c.ParentLinkage.Which, guids[c])
		}
	}
	return p, nil
}

// resolveTypeGUID finds the type record named typeName, the store lookup
// a type= (as opposed to typeguid=) declaration needs before a primitive
// can be written.
func resolveTypeGUID(st store.Store, typeName string) (id.GUID, error) {
	it, err := st.WordIterator(typeName, id.Forward)
	if err != nil {
		return id.Null, err
	}
	b := pdb.NewBudget(1 << 20)
	for {
		v, o, err := it.Next(b)
		if err != nil {
			return id.Null, err
		}
		if o == iter.More {
			b.Refill(1 << 20)
			continue
		}
		if o == iter.End {
			return id.Null, pdb.NewError(pdb.SEMANTICS, "write: type %q not found", typeName)
		}
		if p, ok := st.PrimitiveRead(v); ok && p.Name == typeName {
			return p.GUID, nil
		}
	}
}
