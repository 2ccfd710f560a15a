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

// orderedSource is the minimal random-access view every sorted, slice- or
// bitmap-backed variant (Fixed, VIP, Word, Prefix, Hash, Bin) exposes so
// that Next/Find/Check/Beyond/RangeEstimate can share one implementation
// instead of six near-identical copies.
type orderedSource interface {
	Len() int
	At(i int) id.ID
	// FloorIndex returns the index of the first element >= v (forward
	// sense); callers invert the sense themselves for Backward iterators.
	FloorIndex(v id.ID) int
}

// cursor is the position/call-state shared by every orderedSource-backed
// variant: the index into the source of the most recently produced element.
type cursor struct {
	pos     int  // -1 = before start (forward) / Len() = before start (backward)
	started bool
}

func newCursor(dir id.Direction, n int) cursor {
	if dir == id.Backward {
		return cursor{pos: n}
	}
	return cursor{pos: -1}
}

const perElementCost int64 = 1

func sortedNext(src orderedSource, dir id.Direction, c *cursor, b *pdb.Budget) (id.ID, Outcome, error) {
	if !b.Charge(perElementCost) {
		return id.NONE, More, nil
	}
	if dir == id.Forward {
		if c.pos+1 >= src.Len() {
			return id.NONE, End, nil
		}
		c.pos++
	} else {
		if c.pos-1 < 0 {
			return id.NONE, End, nil
		}
		c.pos--
	}
	return src.At(c.pos), Done, nil
}

func sortedFind(src orderedSource, dir id.Direction, c *cursor, target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	if !b.Charge(perElementCost) {
		return id.NONE, More, nil
	}
	n := src.Len()
	if n == 0 {
		return id.NONE, End, nil
	}
	if dir == id.Forward {
		idx := src.FloorIndex(target)
		if idx >= n {
			c.pos = n
			return id.NONE, End, nil
		}
		c.pos = idx
		return src.At(idx), Done, nil
	}
	// Backward: want the last element <= target, i.e. ceilIndex(target)-1.
	idx := src.FloorIndex(target + 1)
	if idx == 0 {
		c.pos = -1
		return id.NONE, End, nil
	}
	c.pos = idx - 1
	return src.At(c.pos), Done, nil
}

func sortedCheck(src orderedSource, target id.ID, b *pdb.Budget) (Outcome, error) {
	if !b.Charge(perElementCost) {
		return More, nil
	}
	idx := src.FloorIndex(target)
	if idx < src.Len() && src.At(idx) == target {
		return Yes, nil
	}
	return No, nil
}

func sortedBeyond(src orderedSource, dir id.Direction, c *cursor, value id.ID) bool {
	if src.Len() == 0 {
		return true
	}
	if dir == id.Forward {
		return c.pos >= 0 && src.At(minInt(c.pos, src.Len()-1)) > value
	}
	return c.pos < src.Len() && c.pos >= 0 && src.At(c.pos) < value
}

func sortedRangeEstimate(src orderedSource) Range {
	n := src.Len()
	if n == 0 {
		return Range{Low: id.NONE, High: id.NONE, NExact: 0, NMax: 0}
	}
	return Range{Low: src.At(0), High: src.At(n-1) + 1, NExact: int64(n), NMax: int64(n)}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sliceSource is an orderedSource backed by a plain sorted []id.ID, used by
// VIP/Word/Prefix/Hash/Bin/ISA, each of which obtains its membership from a
// single Backend lookup and never needs Fixed's roaring-bitmap-backed
// incremental construction.
type sliceSource []id.ID

func (s sliceSource) Len() int      { return len(s) }
func (s sliceSource) At(i int) id.ID { return s[i] }
func (s sliceSource) FloorIndex(v id.ID) int {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid] < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
