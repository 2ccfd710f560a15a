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
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// anchorAnnotate is pipeline phase 1 (spec.md §4.6.2): for each node
// bearing anchor clauses, search the store for an existing primitive whose
// endpoints and intrinsic fields structurally match this write, and
// annotate the node with its GUID if found.
func anchorAnnotate(st store.Store, n *constraint.WriteNode) error {
	if len(n.Anchors) > 0 {
		g, found, err := findAnchor(st, n)
		if err != nil {
			return err
		}
		if found {
			n.AnchorGUID = &g
		}
	}
	for _, c := range n.Children {
		if err := anchorAnnotate(st, c); err != nil {
			return err
		}
	}
	return nil
}

// findAnchor intersects the fan-in sets named by every anchor clause, then
// filters the survivors by n's own name/value/type, returning the first
// remaining candidate (anchor clauses are expected to narrow to at most
// one structural match; ties are resolved by store iteration order).
func findAnchor(st store.Store, n *constraint.WriteNode) (id.GUID, bool, error) {
	var candidates map[id.ID]bool
	for i, clause := range n.Anchors {
		hasType, typeguid := false, id.Null
		if n.Typeguid != nil {
			hasType, typeguid = true, *n.Typeguid
		}
		ids, err := st.VIPFanIn(clause.Linkage, clause.Value, hasType, typeguid)
		if err != nil {
			return id.Null, false, err
		}
		set := make(map[id.ID]bool, len(ids))
		for _, v := range ids {
			set[v] = true
		}
		if i == 0 {
			candidates = set
			continue
		}
		for v := range candidates {
			if !set[v] {
				delete(candidates, v)
			}
		}
	}
	for v := range candidates {
		p, ok := st.PrimitiveRead(v)
		if !ok {
			continue
		}
		if n.Name != nil && p.Name != *n.Name {
			continue
		}
		if n.Value != nil && p.Value != *n.Value {
			continue
		}
		return p.GUID, true, nil
	}
	return id.Null, false, nil
}
