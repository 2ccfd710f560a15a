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
	"time"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/read"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// uniqueCheckDeadline bounds each synthesised uniqueness query; these are
// narrow, index-backed lookups, never full scans, so a short budget is
// ample and keeps a pathological key declaration from stalling commit.
const uniqueCheckDeadline = 2 * time.Second

// uniqueCheck is pipeline phase 4 (spec.md §4.6.2): for every key-bearing
// node that phases 1-3 left unbound, synthesise a read query from its
// declared key columns and fail the write with EXISTS if it already
// matches a record in the store.
func uniqueCheck(st store.Store, parentGUID id.GUID, n *constraint.WriteNode) error {
	if n.Key != nil && n.Bound == nil {
		q := buildKeyQuery(n, parentGUID)
		it := iter.NewAll(st.PrimitiveN, id.Forward)
		rsc, err := read.Execute(st, q, it, id.NONE, id.Null, time.Now().Add(uniqueCheckDeadline))
		if err != nil {
			return err
		}
		if rsc.Count() > 0 {
			return pdb.NewError(pdb.EXISTS, "write: key columns %v already match an existing record", n.Key.Columns)
		}
	}
	nextParent := parentGUID
	if n.Bound != nil {
		nextParent = *n.Bound
	}
	for _, c := range n.Children {
		if err := uniqueCheck(st, nextParent, c); err != nil {
			return err
		}
	}
	return nil
}

// buildKeyQuery turns n's declared key columns into a count-only
// constraint.Node: name/value equality for the "name"/"value" columns, a
// GUID restriction for each linkage column, using parentGUID as the
// endpoint value when that linkage is how n attaches to its own parent.
func buildKeyQuery(n *constraint.WriteNode, parentGUID id.GUID) *constraint.Node {
	q := &constraint.Node{Linkages: make(map[id.Linkage]constraint.GUIDSet)}
	for _, col := range n.Key.Columns {
		switch col {
		case "name":
			if n.Name != nil {
				q.Name = &constraint.StringConstraint{Op: constraint.OpEqual, Value: *n.Name}
			}
		case "value":
			if n.Value != nil {
				q.Value = &constraint.StringConstraint{Op: constraint.OpEqual, Value: *n.Value}
			}
		default:
			which, err := id.ParseLinkage(col)
			if err != nil {
				continue
			}
			if g, ok := n.LinkageGUIDs[which]; ok {
				q.Linkages[which] = constraint.GUIDSet{Include: []id.GUID{g}}
			} else if n.ParentLinkage.Kind == constraint.LinkageMy && n.ParentLinkage.Which == which && !parentGUID.IsNull() {
				q.Linkages[which] = constraint.GUIDSet{Include: []id.GUID{parentGUID}}
			}
		}
	}
	if n.Typeguid != nil {
		q.Linkages[id.LinkageTypeguid] = constraint.GUIDSet{Include: []id.GUID{*n.Typeguid}}
	}
	return q
}
