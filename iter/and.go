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
	"sort"
	"strconv"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// And is the intersection of its children (spec.md §4.2 "AND"). It runs
// `statistics` on every child to pick the cheapest producer, then either
// drives the producer with per-ID `check` calls against the rest in
// ascending check-cost order, or - when every child is sorted - switches
// to a parallel head-aligned merge driven by `find`.
type And struct {
	children []Iterator
	dir      id.Direction

	statIdx    int
	statsDone  bool
	producer   int
	checkOrder []int
	mergeMode  bool

	// Unsorted-producer resume state: a pending candidate mid-check.
	havePending bool
	pendingID   id.ID
	checkIdx    int

	// Merge-mode resume state: per-child current head.
	heads      []id.ID
	headValid  []bool
	headInit   bool
}

// NewAnd builds the intersection of children. The VIP+restricted-clone
// pairing described in spec.md §4.5.4 is the dominant two-child shape, but
// And accepts any number of children.
func NewAnd(children []Iterator, dir id.Direction) *And {
	return &And{children: children, dir: dir}
}

func (a *And) Variant() Variant { return VariantAnd }

func (a *And) Statistics(b *pdb.Budget) (Outcome, error) {
	if a.statsDone {
		return Done, nil
	}
	for ; a.statIdx < len(a.children); a.statIdx++ {
		o, err := a.children[a.statIdx].Statistics(b)
		if o == More || err != nil {
			return o, err
		}
	}
	a.pickProducer()
	a.statsDone = true
	return Done, nil
}

func (a *And) pickProducer() {
	if len(a.children) == 0 {
		return
	}
	best, bestN := 0, int64(-1)
	allSorted := true
	for i, c := range a.children {
		st := c.Stats()
		if !st.Sorted {
			allSorted = false
		}
		n := st.N
		if n < 0 {
			n = 1 << 30
		}
		if bestN < 0 || n < bestN {
			best, bestN = i, n
		}
	}
	a.producer = best
	order := make([]int, 0, len(a.children)-1)
	for i := range a.children {
		if i != a.producer {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return a.children[order[i]].Stats().CheckCost < a.children[order[j]].Stats().CheckCost
	})
	a.checkOrder = order
	// Parallel merge is used whenever every child is sorted and there is at
	// least one child besides the producer; otherwise the ordered
	// check-loop above drives the intersection.
	a.mergeMode = allSorted && len(a.children) > 1
}

func (a *And) Stats() Stats {
	var n int64 = -1
	var checkCost, nextCost int64
	for i, c := range a.children {
		st := c.Stats()
		if st.N >= 0 && (n < 0 || st.N < n) {
			n = st.N
		}
		checkCost += st.CheckCost
		if i == a.producer {
			nextCost += st.NextCost
		}
	}
	return Stats{CheckCost: checkCost, NextCost: nextCost + checkCost, FindCost: checkCost, N: n, Sorted: a.allSorted()}
}

func (a *And) allSorted() bool {
	for _, c := range a.children {
		if !c.Stats().Sorted {
			return false
		}
	}
	return true
}

func (a *And) Next(b *pdb.Budget) (id.ID, Outcome, error) {
	if o, err := a.Statistics(b); o != Done {
		return id.NONE, o, err
	}
	if len(a.children) == 0 {
		return id.NONE, End, nil
	}
	if a.mergeMode {
		return a.nextMerge(b)
	}
	return a.nextCheckLoop(b)
}

func (a *And) nextCheckLoop(b *pdb.Budget) (id.ID, Outcome, error) {
	for {
		if !a.havePending {
			v, o, err := a.children[a.producer].Next(b)
			if o != Done {
				return id.NONE, o, err
			}
			a.pendingID, a.havePending, a.checkIdx = v, true, 0
		}
		ok := true
		for ; a.checkIdx < len(a.checkOrder); a.checkIdx++ {
			ci := a.checkOrder[a.checkIdx]
			o, err := a.children[ci].Check(a.pendingID, b)
			if o == More {
				return id.NONE, More, err
			}
			if err != nil {
				return id.NONE, o, err
			}
			if o == No {
				ok = false
				a.checkIdx++
				break
			}
		}
		if ok {
			result := a.pendingID
			a.havePending = false
			return result, Done, nil
		}
		a.havePending = false
	}
}

func (a *And) nextMerge(b *pdb.Budget) (id.ID, Outcome, error) {
	if !a.headInit {
		a.heads = make([]id.ID, len(a.children))
		a.headValid = make([]bool, len(a.children))
		a.headInit = true
	}
	for {
		// Fill any missing heads.
		for i := range a.children {
			if a.headValid[i] {
				continue
			}
			v, o, err := a.children[i].Next(b)
			if o == More {
				return id.NONE, More, err
			}
			if err != nil {
				return id.NONE, o, err
			}
			if o == End {
				return id.NONE, End, nil
			}
			a.heads[i], a.headValid[i] = v, true
		}
		// Find the extreme head (max for forward, min for backward): that
		// is the value every other child must catch up to.
		extreme := a.heads[0]
		for _, h := range a.heads[1:] {
			if a.dir == id.Forward {
				if h > extreme {
					extreme = h
				}
			} else if h < extreme {
				extreme = h
			}
		}
		allEqual := true
		for i, h := range a.heads {
			if h == extreme {
				continue
			}
			allEqual = false
			v, o, err := a.children[i].Find(extreme, b)
			if o == More {
				return id.NONE, More, err
			}
			if err != nil {
				return id.NONE, o, err
			}
			if o == End {
				return id.NONE, End, nil
			}
			a.heads[i] = v
		}
		if allEqual {
			result := extreme
			for i := range a.heads {
				a.headValid[i] = false
			}
			return result, Done, nil
		}
	}
}

func (a *And) Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	if o, err := a.Statistics(b); o != Done {
		return id.NONE, o, err
	}
	// Position the producer (or, in merge mode, every child) at-or-after
	// target, then let Next's check/merge logic confirm membership.
	if a.mergeMode {
		if !a.headInit {
			a.heads = make([]id.ID, len(a.children))
			a.headValid = make([]bool, len(a.children))
			a.headInit = true
		}
		for i, c := range a.children {
			v, o, err := c.Find(target, b)
			if o == More {
				return id.NONE, More, err
			}
			if err != nil {
				return id.NONE, o, err
			}
			if o == End {
				return id.NONE, End, nil
			}
			a.heads[i], a.headValid[i] = v, true
		}
		return a.nextMerge(b)
	}
	v, o, err := a.children[a.producer].Find(target, b)
	if o != Done {
		return id.NONE, o, err
	}
	a.pendingID, a.havePending, a.checkIdx = v, true, 0
	return a.nextCheckLoop(b)
}

func (a *And) Check(target id.ID, b *pdb.Budget) (Outcome, error) {
	for _, c := range a.children {
		o, err := c.Check(target, b)
		if o != Yes {
			return o, err
		}
	}
	return Yes, nil
}

func (a *And) Clone() Iterator {
	children := make([]Iterator, len(a.children))
	for i, c := range a.children {
		children[i] = c.Clone()
	}
	return NewAnd(children, a.dir)
}

func (a *And) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString("and:")
		buf.WriteString(strconv.Itoa(len(a.children)))
	}
	for _, c := range a.children {
		if err := c.Freeze(flags, buf); err != nil {
			return err
		}
		buf.WriteByte(';')
	}
	return nil
}

func (a *And) Reset() {
	for _, c := range a.children {
		c.Reset()
	}
	a.havePending, a.headInit = false, false
}

func (a *And) PrimitiveSummary() (PSum, bool) {
	for _, c := range a.children {
		if sum, ok := c.PrimitiveSummary(); ok {
			return sum, true
		}
	}
	return PSum{}, false
}

func (a *And) Beyond(value id.ID) bool {
	for _, c := range a.children {
		if c.Beyond(value) {
			return true
		}
	}
	return false
}

func (a *And) RangeEstimate() Range {
	r := Range{Low: id.NONE, High: id.NONE, NExact: -1, NMax: 1 << 62}
	for i, c := range a.children {
		cr := c.RangeEstimate()
		if i == 0 {
			r = cr
			continue
		}
		if cr.Low > r.Low {
			r.Low = cr.Low
		}
		if cr.High < r.High {
			r.High = cr.High
		}
		if cr.NMax < r.NMax {
			r.NMax = cr.NMax
		}
		r.NExact = -1
	}
	return r
}

func (a *And) Restrict(sum PSum) (Iterator, Outcome, error) {
	if existing, ok := a.PrimitiveSummary(); ok && existing.Equal(sum) {
		return a, Already, nil
	}
	children := make([]Iterator, len(a.children))
	changed := false
	for i, c := range a.children {
		nc, o, err := c.Restrict(sum)
		if err != nil {
			return a, o, err
		}
		if o == New {
			changed = true
		}
		children[i] = nc
	}
	if !changed {
		return a, Already, nil
	}
	return NewAnd(children, a.dir), New, nil
}

func (a *And) Direction() id.Direction { return a.dir }
