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

// All iterates the Primitive Store's entire id-space, driven by its
// PrimitiveN() and a plain counting cursor. It is the universe iterator
// every VIP-restricted AND implicitly intersects against when no other
// index narrows the subconstraint (spec.md §4.5.4).
type All struct {
	n   func() int64 // backend's PrimitiveN, deferred so All is cheap to build before any store call
	dir id.Direction
	cur int64 // 0 = before start (forward); n+1 = before start (backward)
	est int64
}

// NewAll returns the universe iterator, reading the current primitive
// count lazily from primitiveN on first Statistics/Next call.
func NewAll(primitiveN func() int64, dir id.Direction) *All {
	return &All{n: primitiveN, dir: dir, est: -1}
}

func (a *All) Variant() Variant { return VariantAll }

func (a *All) Statistics(b *pdb.Budget) (Outcome, error) {
	if !b.Charge(1) {
		return More, nil
	}
	a.est = a.n()
	if a.dir == id.Forward {
		a.cur = 0
	} else {
		a.cur = a.est + 1
	}
	return Done, nil
}

func (a *All) Stats() Stats {
	n := a.est
	if n < 0 {
		n = a.n()
	}
	return Stats{CheckCost: 1, NextCost: 1, FindCost: 1, N: n, NIsExact: true, Sorted: true}
}

func (a *All) Next(b *pdb.Budget) (id.ID, Outcome, error) {
	if !b.Charge(perElementCost) {
		return id.NONE, More, nil
	}
	n := a.total()
	if a.dir == id.Forward {
		if a.cur+1 > n {
			return id.NONE, End, nil
		}
		a.cur++
		return id.ID(a.cur), Done, nil
	}
	if a.cur-1 < 1 {
		return id.NONE, End, nil
	}
	a.cur--
	return id.ID(a.cur), Done, nil
}

func (a *All) total() int64 {
	if a.est < 0 {
		a.est = a.n()
	}
	return a.est
}

func (a *All) Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	if !b.Charge(perElementCost) {
		return id.NONE, More, nil
	}
	n := a.total()
	t := int64(target)
	if a.dir == id.Forward {
		if t < 1 {
			t = 1
		}
		if t > n {
			a.cur = n + 1
			return id.NONE, End, nil
		}
		a.cur = t
		return id.ID(t), Done, nil
	}
	if t > n {
		t = n
	}
	if t < 1 {
		a.cur = 0
		return id.NONE, End, nil
	}
	a.cur = t
	return id.ID(t), Done, nil
}

func (a *All) Check(target id.ID, b *pdb.Budget) (Outcome, error) {
	if !b.Charge(perElementCost) {
		return More, nil
	}
	if target.Valid() && int64(target) <= a.total() {
		return Yes, nil
	}
	return No, nil
}

func (a *All) Clone() Iterator {
	return &All{n: a.n, dir: a.dir, cur: func() int64 {
		if a.dir == id.Forward {
			return 0
		}
		return a.total() + 1
	}(), est: a.est}
}

func (a *All) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString("all:")
		if a.dir == id.Backward {
			buf.WriteByte('b')
		} else {
			buf.WriteByte('f')
		}
	}
	if flags.Position {
		buf.WriteByte('/')
		buf.WriteString(id.ID(a.cur).String())
	}
	return nil
}

func (a *All) Reset() {
	if a.dir == id.Forward {
		a.cur = 0
	} else {
		a.cur = a.total() + 1
	}
}

func (a *All) PrimitiveSummary() (PSum, bool) { return PSum{}, false }

func (a *All) Beyond(value id.ID) bool {
	if a.dir == id.Forward {
		return id.ID(a.cur) > value
	}
	return a.cur > 0 && id.ID(a.cur) < value
}

func (a *All) RangeEstimate() Range {
	n := a.total()
	return Range{Low: id.ID(1), High: id.ID(n + 1), NExact: n, NMax: n}
}

func (a *All) Restrict(sum PSum) (Iterator, Outcome, error) {
	// All carries no summary of its own; restricting it to sum is exactly
	// what a VIP iterator already is, so callers build a VIP instead of
	// asking All to narrow itself. Report Already: no narrower iterator
	// can be derived from All alone.
	return a, Already, nil
}

func (a *All) Direction() id.Direction { return a.dir }
