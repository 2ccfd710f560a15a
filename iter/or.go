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
	"strconv"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// Or is the union of its children (spec.md §4.2 "OR"). When every child is
// sorted it keeps one head per child plus an EOF flag, scanning all heads
// on every call for the smallest (largest, backward) and re-pulling every
// head equal to it, so each ID is delivered once; the heads are not kept in
// sorted order between calls. When any child is unsorted it falls back to
// round-robin polling, remembering every ID it has delivered so a value
// produced by more than one child is delivered only once.
type Or struct {
	children []Iterator
	dir      id.Direction

	statIdx   int
	statsDone bool
	sorted    bool

	// Sorted-chain mode.
	heads      []id.ID
	headValid  []bool
	headEOF    []bool
	chainBuilt bool

	// Unsorted round-robin mode.
	rrNext    int
	eof       []bool
	delivered map[id.ID]bool
}

// NewOr applies the construction-time rewrites of spec.md §4.2 ("during
// create_commit"): nil and Null children are dropped, an empty disjunction
// collapses to Null, a single-child disjunction collapses to that child
// unchanged, and otherwise an *Or is built over the (already individually
// rewritten) children. Callers building a constraint tree should call NewOr
// rather than constructing &Or{} directly so these rewrites always apply.
func NewOr(children []Iterator, dir id.Direction) Iterator {
	live := make([]Iterator, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		if _, isNull := c.(*Null); isNull {
			continue
		}
		live = append(live, c)
	}
	switch len(live) {
	case 0:
		return NewNull(dir)
	case 1:
		return live[0]
	default:
		return &Or{children: live, dir: dir}
	}
}

func (o *Or) Variant() Variant { return VariantOr }

func (o *Or) Statistics(b *pdb.Budget) (Outcome, error) {
	if o.statsDone {
		return Done, nil
	}
	for ; o.statIdx < len(o.children); o.statIdx++ {
		out, err := o.children[o.statIdx].Statistics(b)
		if out == More || err != nil {
			return out, err
		}
	}
	o.sorted = true
	for _, c := range o.children {
		if !c.Stats().Sorted {
			o.sorted = false
			break
		}
	}
	o.statsDone = true
	return Done, nil
}

func (o *Or) Stats() Stats {
	var n, nextCost, checkCost int64
	nKnown := true
	for _, c := range o.children {
		st := c.Stats()
		if st.N < 0 {
			nKnown = false
		} else {
			n += st.N
		}
		nextCost += st.NextCost
		checkCost += st.CheckCost
	}
	if !nKnown {
		n = -1
	}
	avgNext := int64(0)
	if len(o.children) > 0 {
		avgNext = nextCost / int64(len(o.children))
	}
	return Stats{CheckCost: checkCost, NextCost: avgNext + int64(len(o.children)), FindCost: avgNext, N: n, Sorted: o.sorted}
}

func (o *Or) Next(b *pdb.Budget) (id.ID, Outcome, error) {
	if out, err := o.Statistics(b); out != Done {
		return id.NONE, out, err
	}
	if o.sorted {
		return o.nextSorted(b)
	}
	return o.nextRoundRobin(b)
}

// nextSorted maintains one head per child, always emitting the extreme
// (min forward / max backward) and re-pulling every head that matched it so
// no duplicate is ever returned for primitives present in more than one
// child's underlying set.
func (o *Or) nextSorted(b *pdb.Budget) (id.ID, Outcome, error) {
	if !o.chainBuilt {
		o.heads = make([]id.ID, len(o.children))
		o.headValid = make([]bool, len(o.children))
		o.headEOF = make([]bool, len(o.children))
		o.chainBuilt = true
	}
	for i, c := range o.children {
		if o.headValid[i] || o.headEOF[i] {
			continue
		}
		v, out, err := c.Next(b)
		if out == More {
			return id.NONE, More, err
		}
		if err != nil {
			return id.NONE, out, err
		}
		if out == End {
			o.headEOF[i] = true
			continue
		}
		o.heads[i], o.headValid[i] = v, true
	}
	best, bestIdx := id.NONE, -1
	for i := range o.children {
		if !o.headValid[i] {
			continue
		}
		if bestIdx < 0 ||
			(o.dir == id.Forward && o.heads[i] < best) ||
			(o.dir == id.Backward && o.heads[i] > best) {
			best, bestIdx = o.heads[i], i
		}
	}
	if bestIdx < 0 {
		return id.NONE, End, nil
	}
	for i := range o.children {
		if o.headValid[i] && o.heads[i] == best {
			o.headValid[i] = false
		}
	}
	return best, Done, nil
}

// nextRoundRobin cycles through children in order, skipping any already at
// EOF, and drops any value this Or has already delivered through another
// child. It keeps no resume ID and calls no Find; a thawed cursor resumes
// by replaying Next (see package cursor).
func (o *Or) nextRoundRobin(b *pdb.Budget) (id.ID, Outcome, error) {
	if o.eof == nil {
		o.eof = make([]bool, len(o.children))
	}
	for {
		allEOF := true
		for range o.children {
			allEOF = allEOF && o.eof[o.rrNext%len(o.children)]
			i := o.rrNext % len(o.children)
			o.rrNext++
			if o.eof[i] {
				continue
			}
			allEOF = false
			v, out, err := o.children[i].Next(b)
			if out == More {
				return id.NONE, More, err
			}
			if err != nil {
				return id.NONE, out, err
			}
			if out == End {
				o.eof[i] = true
				continue
			}
			if o.delivered[v] {
				continue
			}
			if o.delivered == nil {
				o.delivered = make(map[id.ID]bool)
			}
			o.delivered[v] = true
			return v, Done, nil
		}
		if allEOF {
			return id.NONE, End, nil
		}
	}
}

func (o *Or) Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	if out, err := o.Statistics(b); out != Done {
		return id.NONE, out, err
	}
	if !o.sorted {
		// Unsorted fallback: degrade to scanning Next and comparing, as
		// spec.md §4.2 allows for variants without a meaningful find.
		for {
			v, out, err := o.Next(b)
			if out != Done {
				return v, out, err
			}
			if o.dir == id.Forward && v >= target {
				return v, Done, nil
			}
			if o.dir == id.Backward && v <= target {
				return v, Done, nil
			}
		}
	}
	if !o.chainBuilt {
		o.heads = make([]id.ID, len(o.children))
		o.headValid = make([]bool, len(o.children))
		o.headEOF = make([]bool, len(o.children))
		o.chainBuilt = true
	}
	for i, c := range o.children {
		if o.headEOF[i] {
			continue
		}
		v, out, err := c.Find(target, b)
		if out == More {
			return id.NONE, More, err
		}
		if err != nil {
			return id.NONE, out, err
		}
		if out == End {
			o.headEOF[i] = true
			o.headValid[i] = false
			continue
		}
		o.heads[i], o.headValid[i] = v, true
	}
	return o.nextSorted(b)
}

func (o *Or) Check(target id.ID, b *pdb.Budget) (Outcome, error) {
	for _, c := range o.children {
		out, err := c.Check(target, b)
		if out == More || err != nil {
			return out, err
		}
		if out == Yes {
			return Yes, nil
		}
	}
	return No, nil
}

func (o *Or) Clone() Iterator {
	children := make([]Iterator, len(o.children))
	for i, c := range o.children {
		children[i] = c.Clone()
	}
	return &Or{children: children, dir: o.dir}
}

func (o *Or) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString("or:")
		buf.WriteString(strconv.Itoa(len(o.children)))
	}
	for _, c := range o.children {
		if err := c.Freeze(flags, buf); err != nil {
			return err
		}
		buf.WriteByte(';')
	}
	return nil
}

func (o *Or) Reset() {
	for _, c := range o.children {
		c.Reset()
	}
	o.chainBuilt, o.delivered = false, nil
	o.rrNext = 0
	o.eof = nil
}

func (o *Or) PrimitiveSummary() (PSum, bool) { return PSum{}, false }

func (o *Or) Beyond(value id.ID) bool {
	for _, c := range o.children {
		if !c.Beyond(value) {
			return false
		}
	}
	return true
}

func (o *Or) RangeEstimate() Range {
	r := Range{NExact: 0, NMax: 0}
	for i, c := range o.children {
		cr := c.RangeEstimate()
		if i == 0 || cr.Low < r.Low {
			r.Low = cr.Low
		}
		if i == 0 || cr.High > r.High {
			r.High = cr.High
		}
		r.NMax += cr.NMax
		if cr.NExact < 0 {
			r.NExact = -1
		} else if r.NExact >= 0 {
			r.NExact += cr.NExact
		}
	}
	return r
}

func (o *Or) Restrict(sum PSum) (Iterator, Outcome, error) {
	children := make([]Iterator, len(o.children))
	changed := false
	for i, c := range o.children {
		nc, out, err := c.Restrict(sum)
		if err != nil {
			return o, out, err
		}
		if out == New {
			changed = true
		}
		children[i] = nc
	}
	if !changed {
		return o, Already, nil
	}
	return NewOr(children, o.dir), New, nil
}

func (o *Or) Direction() id.Direction { return o.dir }
