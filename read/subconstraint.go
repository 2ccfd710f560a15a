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
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// buildSubIterator constructs the iterator a subconstraint should be driven
// by, per spec.md §4.5.4. parentPrimitive/parentGUID describe the candidate
// primitive the subconstraint is being evaluated under (the "parent" from
// the subconstraint's point of view, i.e. the ReadOneContext's current
// candidate, not the RSC's own ParentID).
func buildSubIterator(st store.Store, parentPrimitive id.Primitive, parentGUID id.GUID, child *constraint.Node) (iter.Iterator, error) {
	switch child.ParentLinkage.Kind {
	case constraint.LinkageIAm:
		g, ok := parentPrimitive.Linkage(child.ParentLinkage.Which)
		if !ok {
			return iter.NewNull(child.Direction), nil
		}
		pid, ok := st.IDFromGUID(g)
		if !ok {
			return iter.NewNull(child.Direction), nil
		}
		return iter.NewFixed([]id.ID{pid}, child.Direction), nil

	case constraint.LinkageMy:
		which := child.ParentLinkage.Which
		hasType, typeguid := singleTypeguid(child)
		vip := iter.NewVIP(st, which, parentGUID, hasType, typeguid, child.Direction)

		base, err := baseIteratorFor(st, child)
		if err != nil {
			return nil, err
		}
		if base.Variant() == iter.VariantAll {
			return vip, nil
		}
		if sum, ok := vip.PrimitiveSummary(); ok {
			restricted, outcome, err := base.Restrict(sum)
			if err != nil {
				return nil, err
			}
			if outcome == iter.No {
				return iter.NewNull(child.Direction), nil
			}
			base = restricted
		}
		return iter.NewAnd([]iter.Iterator{vip, base}, child.Direction), nil

	default:
		return baseIteratorFor(st, child)
	}
}

// singleTypeguid reports child's own typeguid restriction, if it declares
// exactly one, for use as the "@parent_id restricted to the child's
// typeguid" clause of a my-linkage VIP.
func singleTypeguid(child *constraint.Node) (bool, id.GUID) {
	gs, ok := child.Linkages[id.LinkageTypeguid]
	if !ok || len(gs.Include) != 1 {
		return false, id.GUID{}
	}
	return true, gs.Include[0]
}

// baseIteratorFor builds the iterator a constraint node would use on its
// own terms, absent any structural linkage to a parent: a fixed set from an
// explicit GUID include list, a word lookup from an equality name/value
// constraint, or the universe.
func baseIteratorFor(st store.Store, node *constraint.Node) (iter.Iterator, error) {
	if len(node.GUIDs.Include) > 0 {
		ids := make([]id.ID, 0, len(node.GUIDs.Include))
		for _, g := range node.GUIDs.Include {
			if pid, ok := st.IDFromGUID(g); ok {
				ids = append(ids, pid)
			}
		}
		return iter.NewFixed(ids, node.Direction), nil
	}
	if node.Name != nil && node.Name.Op == constraint.OpEqual {
		return st.WordIterator(node.Name.Value, node.Direction)
	}
	if node.Value != nil && node.Value.Op == constraint.OpEqual {
		return st.WordIterator(node.Value.Value, node.Direction)
	}
	return iter.NewAll(st.PrimitiveN, node.Direction), nil
}
