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
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// Fixed is a small materialised set of IDs, stored as a roaring64 bitmap
// whatever way the set was assembled (literal GUID list, OR's
// become_small_set rewrite, AND's cheapest-producer pick). Membership is a
// bitmap lookup; positional access (At, FloorIndex) walks the bitmap from
// the start and is O(n) per call.
type Fixed struct {
	bm  *roaring64.Bitmap
	dir id.Direction
	cur cursor
	sum *PSum
}

// NewFixed builds a Fixed iterator over the given IDs (order irrelevant;
// the bitmap normalises to ascending).
func NewFixed(ids []id.ID, dir id.Direction) *Fixed {
	bm := roaring64.New()
	for _, v := range ids {
		bm.Add(uint64(v))
	}
	f := &Fixed{bm: bm, dir: dir}
	f.cur = newCursor(dir, int(bm.GetCardinality()))
	return f
}

func newFixedFromBitmap(bm *roaring64.Bitmap, dir id.Direction) *Fixed {
	f := &Fixed{bm: bm, dir: dir}
	f.cur = newCursor(dir, int(bm.GetCardinality()))
	return f
}

func (f *Fixed) Variant() Variant { return VariantFixed }

func (f *Fixed) source() orderedSource { return roaringSource{f.bm} }

func (f *Fixed) Statistics(b *pdb.Budget) (Outcome, error) { return Done, nil }

func (f *Fixed) Stats() Stats {
	n := int64(f.bm.GetCardinality())
	return Stats{CheckCost: 1, NextCost: 1, FindCost: 1, N: n, NIsExact: true, Sorted: true}
}

func (f *Fixed) Next(b *pdb.Budget) (id.ID, Outcome, error) {
	return sortedNext(f.source(), f.dir, &f.cur, b)
}

func (f *Fixed) Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	return sortedFind(f.source(), f.dir, &f.cur, target, b)
}

func (f *Fixed) Check(target id.ID, b *pdb.Budget) (Outcome, error) {
	if !b.Charge(perElementCost) {
		return More, nil
	}
	if f.bm.Contains(uint64(target)) {
		return Yes, nil
	}
	return No, nil
}

func (f *Fixed) Clone() Iterator {
	c := &Fixed{bm: f.bm.Clone(), dir: f.dir, sum: f.sum}
	c.cur = newCursor(f.dir, int(c.bm.GetCardinality()))
	return c
}

func (f *Fixed) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString("fixed:")
		if f.dir == id.Backward {
			buf.WriteByte('b')
		} else {
			buf.WriteByte('f')
		}
		buf.WriteByte(':')
		it := f.bm.Iterator()
		first := true
		for it.HasNext() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteString(strconv.FormatUint(it.Next(), 16))
		}
	}
	if flags.Position {
		buf.WriteByte('/')
		buf.WriteString(strconv.Itoa(f.cur.pos))
	}
	if flags.State {
		buf.WriteByte('/')
		buf.WriteString("stats:exact")
	}
	return nil
}

// ThawFixed parses the "set" slice produced by Freeze (without the leading
// "fixed:" token, already consumed by the dispatcher).
func ThawFixed(setSlice string) (*Fixed, error) {
	parts := strings.SplitN(setSlice, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("fixed cursor %q: missing direction", setSlice)
	}
	dir := id.Forward
	if parts[0] == "b" {
		dir = id.Backward
	}
	bm := roaring64.New()
	if parts[1] != "" {
		for _, tok := range strings.Split(parts[1], ",") {
			v, err := strconv.ParseUint(tok, 16, 64)
			if err != nil {
				return nil, fmt.Errorf("fixed cursor %q: %w", setSlice, err)
			}
			bm.Add(v)
		}
	}
	return newFixedFromBitmap(bm, dir), nil
}

func (f *Fixed) Reset() { f.cur = newCursor(f.dir, int(f.bm.GetCardinality())) }

func (f *Fixed) PrimitiveSummary() (PSum, bool) {
	if f.sum == nil {
		return PSum{}, false
	}
	return *f.sum, true
}

// SetPrimitiveSummary attaches a known restriction to this Fixed set, e.g.
// when it was produced by Restrict and every member is already known to
// satisfy sum.
func (f *Fixed) SetPrimitiveSummary(sum PSum) { f.sum = &sum }

func (f *Fixed) Beyond(value id.ID) bool { return sortedBeyond(f.source(), f.dir, &f.cur, value) }

func (f *Fixed) RangeEstimate() Range { return sortedRangeEstimate(f.source()) }

func (f *Fixed) Restrict(sum PSum) (Iterator, Outcome, error) {
	if f.sum != nil && f.sum.Equal(sum) {
		return f, Already, nil
	}
	// Fixed carries no per-primitive metadata to check sum against beyond
	// membership; restriction is a caller responsibility (they intersect
	// with a VIP/type-restricted iterator instead). Report "no change"
	// rather than silently lying about containment.
	return f, Already, nil
}

func (f *Fixed) Direction() id.Direction { return f.dir }

type roaringSource struct{ bm *roaring64.Bitmap }

func (s roaringSource) Len() int { return int(s.bm.GetCardinality()) }
func (s roaringSource) At(i int) id.ID {
	// Walks the bitmap's iterator from the start on every call; nothing is
	// cached. For the Fixed sizes this engine deals in (small materialised sets,
	// per spec.md §4.2 "become_small_set"), an O(n) walk per At is
	// acceptable and keeps the bitmap the single source of truth.
	it := s.bm.Iterator()
	var v uint64
	for k := 0; k <= i; k++ {
		v = it.Next()
	}
	return id.ID(v)
}
func (s roaringSource) FloorIndex(v id.ID) int {
	idx := 0
	it := s.bm.Iterator()
	for it.HasNext() {
		cur := it.Next()
		if cur >= uint64(v) {
			return idx
		}
		idx++
	}
	return idx
}
