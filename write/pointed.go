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

// pointedAnnotate is pipeline phase 3 (spec.md §4.6.2): propagate
// key-bound GUIDs across non-keyed pointer sub-trees, so a pointer
// cluster reached only via an already-matched ancestor is itself
// considered bound rather than re-created.
func pointedAnnotate(st store.Store, n *constraint.WriteNode) error {
	for _, c := range n.Children {
		if c.Bound == nil && c.Key == nil && n.Bound != nil {
			g, found, err := resolvePointed(st, *n.Bound, c)
			if err != nil {
				return err
			}
			if found {
				c.Bound = &g
			}
		}
		if err := pointedAnnotate(st, c); err != nil {
			return err
		}
	}
	return nil
}

// resolvePointed looks up child's structural match given that its parent
// is now known to be parentGUID, following child's own ParentLinkage kind.
func resolvePointed(st store.Store, parentGUID id.GUID, child *constraint.WriteNode) (id.GUID, bool, error) {
	switch child.ParentLinkage.Kind {
	case constraint.LinkageMy:
		hasType, typeguid := false, id.Null
		if child.Typeguid != nil {
			hasType, typeguid = true, *child.Typeguid
		}
		ids, err := st.VIPFanIn(child.ParentLinkage.Which, parentGUID, hasType, typeguid)
		if err != nil {
			return id.Null, false, err
		}
		for _, v := range ids {
			p, ok := st.PrimitiveRead(v)
			if !ok {
				continue
			}
			if !matchesIntrinsic(child, p) {
				continue
			}
			return p.GUID, true, nil
		}
		return id.Null, false, nil

	case constraint.LinkageIAm:
		parent, ok := st.PrimitiveByGUID(parentGUID)
		if !ok {
			return id.Null, false, nil
		}
		g, ok := parent.Linkage(child.ParentLinkage.Which)
		if !ok {
			return id.Null, false, nil
		}
		p, ok := st.PrimitiveByGUID(g)
		if !ok || !matchesIntrinsic(child, p) {
			return id.Null, false, nil
		}
		return p.GUID, true, nil

	default:
		return id.Null, false, nil
	}
}

// matchesIntrinsic reports whether p is a plausible structural match for
// child's own declared name/value (type/typeguid are already folded into
// the fan-in restriction itself where applicable).
func matchesIntrinsic(child *constraint.WriteNode, p id.Primitive) bool {
	if child.Name != nil && p.Name != *child.Name {
		return false
	}
	if child.Value != nil && p.Value != *child.Value {
		return false
	}
	return true
}
