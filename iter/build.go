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

package iter

import (
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// SmallSetThreshold is the cardinality at or below which BuildAnd and BuildOr
// materialise a result into a Fixed rather than keeping the composite node
// alive, mirroring spec.md §4.2's become_small_set rewrite: once an
// intersection or union is known (from Statistics) to produce few enough
// IDs, walking it once and handing callers a roaring64-backed Fixed is
// cheaper than re-running the composite's Next on every future pass (e.g.
// across OR's sorted re-merges or a cursor thaw/rebuild).
const SmallSetThreshold = 64

// BuildAnd constructs an intersection, applying become_small_set once
// Statistics has resolved a small exact cardinality.
func BuildAnd(b *pdb.Budget, children []Iterator, dir id.Direction) (Iterator, error) {
	return becomeSmallSet(b, NewAnd(children, dir))
}

// BuildOr constructs a union via NewOr's empty/singleton rewrites, then
// applies become_small_set the same way BuildAnd does.
func BuildOr(b *pdb.Budget, children []Iterator, dir id.Direction) (Iterator, error) {
	return becomeSmallSet(b, NewOr(children, dir))
}

func becomeSmallSet(b *pdb.Budget, it Iterator) (Iterator, error) {
	switch it.(type) {
	case *Null:
		return it, nil
	}
	for {
		out, err := it.Statistics(b)
		if err != nil {
			return it, err
		}
		if out != More {
			break
		}
	}
	st := it.Stats()
	if !st.NIsExact || st.N < 0 || st.N > SmallSetThreshold {
		return it, nil
	}
	ids := make([]id.ID, 0, st.N)
	for {
		v, out, err := it.Next(b)
		if err != nil {
			return it, err
		}
		if out == More {
			// Budget exhausted mid-materialisation: give up on the rewrite
			// and hand back the live composite, which still answers
			// correctly, just without the Fixed shortcut.
			return it, nil
		}
		if out == End {
			break
		}
		ids = append(ids, v)
	}
	f := NewFixed(ids, it.Direction())
	if sum, ok := it.PrimitiveSummary(); ok {
		f.SetPrimitiveSummary(sum)
	}
	return f, nil
}
