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
	"github.com/erigontech/pdb/cmp"
	"github.com/erigontech/pdb/constraint"

	"github.com/erigontech/pdb/id"
)

// matchIntrinsic evaluates node's intrinsic predicates (everything but its
// subconstraints) against p: GUID set, per-linkage GUID sets, name/value
// string constraints, value datatype, and live/archival tri-states. OR
// branches are evaluated recursively; at least one must match.
func matchIntrinsic(n *constraint.Node, p id.Primitive) bool {
	if !n.IsSatisfiable() {
		return false
	}
	if !matchGUIDSet(n.GUIDs, p.GUID) {
		return false
	}
	for which, gs := range n.Linkages {
		g, ok := p.Linkage(which)
		if !ok {
			if !gs.Empty() {
				return false
			}
			continue
		}
		if !matchGUIDSet(gs, g) {
			return false
		}
	}
	if n.Name != nil && !matchStringConstraint(*n.Name, p.Name) {
		return false
	}
	if n.Value != nil && !matchStringConstraint(*n.Value, p.Value) {
		return false
	}
	if n.ValueDatatype != nil && p.ValueDatatype != *n.ValueDatatype {
		return false
	}
	if n.Live == constraint.TriRequire && !p.Live {
		return false
	}
	if n.Live == constraint.TriExclude && p.Live {
		return false
	}
	if n.Archival == constraint.TriRequire && !p.Archival {
		return false
	}
	if n.Archival == constraint.TriExclude && p.Archival {
		return false
	}
	if len(n.Or) > 0 {
		matched := false
		for _, branch := range n.Or {
			if matchIntrinsic(branch, p) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func matchGUIDSet(gs constraint.GUIDSet, g id.GUID) bool {
	if len(gs.Include) > 0 && !containsGUID(gs.Include, g) {
		return false
	}
	if containsGUID(gs.Exclude, g) {
		return false
	}
	if len(gs.Match) > 0 && !containsGUID(gs.Match, g) {
		return false
	}
	return true
}

func containsGUID(set []id.GUID, g id.GUID) bool {
	for _, want := range set {
		if want == g {
			return true
		}
	}
	return false
}

func matchStringConstraint(c constraint.StringConstraint, value string) bool {
	if c.Comparator != "" {
		if comparator, err := cmp.Lookup(c.Comparator); err == nil {
			return matchWithComparator(comparator, c, value)
		}
	}
	switch c.Op {
	case constraint.OpEqual:
		return value == c.Value
	case constraint.OpNotEqual:
		return value != c.Value
	case constraint.OpLess:
		return value < c.Value
	case constraint.OpLessEqual:
		return value <= c.Value
	case constraint.OpGreater:
		return value > c.Value
	case constraint.OpGreaterEqual:
		return value >= c.Value
	default:
		// OpGlob/OpMatch need a comparator's GlobMatch; without one
		// registered, such a constraint can never be satisfied.
		return false
	}
}

func matchWithComparator(c cmp.Comparator, sc constraint.StringConstraint, value string) bool {
	switch sc.Op {
	case constraint.OpEqual:
		return c.SortCompare(value, sc.Value) == 0
	case constraint.OpNotEqual:
		return c.SortCompare(value, sc.Value) != 0
	case constraint.OpLess:
		return c.SortCompare(value, sc.Value) < 0
	case constraint.OpLessEqual:
		return c.SortCompare(value, sc.Value) <= 0
	case constraint.OpGreater:
		return c.SortCompare(value, sc.Value) > 0
	case constraint.OpGreaterEqual:
		return c.SortCompare(value, sc.Value) >= 0
	case constraint.OpGlob, constraint.OpMatch:
		ok, err := c.GlobMatch(value, sc.Value)
		return err == nil && ok
	default:
		return false
	}
}
