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
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/cursor"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/stack"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// Phase names one of the five pipeline states of spec.md §4.5.
type Phase int

const (
	PhaseStatistics Phase = iota
	PhaseAreWeDone
	PhaseNext
	PhaseOnePush
	PhaseOneDeliver
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseStatistics:
		return "statistics"
	case PhaseAreWeDone:
		return "are_we_done?"
	case PhaseNext:
		return "next"
	case PhaseOnePush:
		return "one_push"
	case PhaseOneDeliver:
		return "one_deliver"
	default:
		return "done"
	}
}

// ResultMode is the four result-mode flags of spec.md §4.5's RSC.
type ResultMode struct {
	Verify          bool
	Evaluated       bool
	Sampling        bool
	DeferredSamples bool
}

// Match is one accepted primitive's contribution to the node's result page.
type Match struct {
	ID        id.ID
	Primitive id.Primitive
	Frame     map[string]any
}

type primitiveCache struct {
	id id.ID
	p  id.Primitive
	ok bool
}

// RSC is a Read-Set Context: the per-node state driving node's iterator
// through the five-state pipeline. It implements stack.StackContext so it
// can be pushed onto a request's Execution Stack (C4), either as the root of
// a read request or as a child pushed by a ReadOneContext evaluating a
// subconstraint (§4.5.1).
type RSC struct {
	stack.BaseContext

	Node  *constraint.Node
	Store store.Store
	It    iter.Iterator

	ParentID   id.ID
	ParentGUID id.GUID

	Mode ResultMode

	cache    primitiveCache
	badCache map[id.ID]bool

	sort  *SortContext
	frame *Frame

	// orState records, for the primitive currently under evaluation, whether
	// each subconstraint (keyed by its index in Node.Children) was satisfied
	// (spec.md §4.5's "OR-state map").
	orState map[int]bool

	count   int64 // absolute accepted-match count
	running int64 // running count towards the page window
	fastCounted bool

	current      id.ID
	oneCtx       *ReadOneContext
	pendingFrame map[string]any

	phase Phase

	Matches []Match
	Cursor  string
}

// NewRSC builds a Read-Set Context for node, driven by it, under parent
// (ParentID/ParentGUID are the zero value at the root).
func NewRSC(node *constraint.Node, st store.Store, it iter.Iterator, parentID id.ID, parentGUID id.GUID) *RSC {
	return &RSC{
		Node:       node,
		Store:      st,
		It:         it,
		ParentID:   parentID,
		ParentGUID: parentGUID,
		badCache:   make(map[id.ID]bool),
		orState:    make(map[int]bool),
		frame:      newFrame(node),
	}
}

// Run drives the pipeline forward against budget b, consuming phases until
// either the budget is exhausted (More), a subconstraint needs to be pushed
// (Push), or the node's result is fully decided (Pop).
func (r *RSC) Run(b *pdb.Budget) (stack.Signal, error) {
	for {
		switch r.phase {
		case PhaseStatistics:
			o, err := r.It.Statistics(b)
			if err != nil {
				return stack.Signal{}, err
			}
			if o == iter.More {
				return stack.Signal{More: true}, nil
			}
			r.afterStatistics()
			r.phase = PhaseAreWeDone

		case PhaseAreWeDone:
			done, exceeded := r.areWeDone()
			if exceeded {
				r.phase = PhaseDone
				return stack.Signal{Pop: true}, pdb.NewError(pdb.NO, "read: count exceeded max")
			}
			if done {
				r.phase = PhaseDone
				return stack.Signal{Pop: true}, nil
			}
			r.phase = PhaseNext

		case PhaseNext:
			outcome, err := r.runNext(b)
			if err != nil {
				return stack.Signal{}, err
			}
			switch outcome {
			case nextMore:
				return stack.Signal{More: true}, nil
			case nextEnd:
				r.phase = PhaseDone
				return stack.Signal{Pop: true}, nil
			case nextReject:
				r.phase = PhaseAreWeDone
			case nextAccept:
				r.phase = PhaseOnePush
			}

		case PhaseOnePush:
			if r.oneCtx == nil {
				r.oneCtx = newReadOneContext(r, r.current, r.cache.p)
				return stack.Signal{Push: r.oneCtx}, nil
			}
			ctx := r.oneCtx
			r.oneCtx = nil
			if !ctx.ok {
				r.badCache[r.current] = true
				r.phase = PhaseAreWeDone
				continue
			}
			r.pendingFrame = ctx.collected
			r.phase = PhaseOneDeliver

		case PhaseOneDeliver:
			if err := r.runOneDeliver(); err != nil {
				return stack.Signal{}, err
			}
			r.phase = PhaseAreWeDone

		default: // PhaseDone
			return stack.Signal{Pop: true}, nil
		}
	}
}

// afterStatistics initialises sort (§4.5.2) and resolves the fast-count
// shortcut of pipeline state 1.
func (r *RSC) afterStatistics() {
	if r.sortNeeded() {
		r.sort = newSortContext(r.Node, r.It)
	}
	// The shortcut answers a bare count; a request that also wants paginated
	// or sorted results, or per-match fields, still has to scan for those,
	// so it's only taken when nothing beyond the count was asked for.
	wantsOnlyCount := len(r.Node.Result.Fields) == 0 && r.Node.Page.PageSize == 0 && r.Node.Sort == nil
	if wantsOnlyCount && r.Node.FastCountEligible() {
		st := r.It.Stats()
		if st.NIsExact {
			r.count = st.N
			r.fastCounted = true
		}
	}
}

func (r *RSC) sortNeeded() bool {
	return r.Node.Sort != nil && r.Node.Page.PageSize > 0 && !r.It.Stats().Sorted
}

// areWeDone implements the termination check of spec.md §4.5: done reports
// whether the RSC has fully decided its result; exceeded reports the
// declared-max overflow case, which terminates with a NO-category error.
func (r *RSC) areWeDone() (done, exceeded bool) {
	if r.Node.CountMax != nil && r.count > *r.Node.CountMax {
		return false, true
	}
	if r.fastCounted {
		return true, false
	}
	if r.Mode.Verify && r.count >= r.Node.CountMin && r.Node.CountMax == nil {
		return true, false
	}
	if r.sort != nil && r.sort.Ended() && !r.stillCounting() {
		return true, false
	}
	if r.pageFull() && !r.samplingNeeded() && r.countingSatisfied() {
		return true, false
	}
	if !r.samplingNeeded() && !r.stillCounting() && len(r.Node.Result.Fields) == 0 {
		return true, false
	}
	return false, false
}

func (r *RSC) stillCounting() bool {
	return r.Node.CountMax == nil || r.count <= *r.Node.CountMax
}

func (r *RSC) countingSatisfied() bool { return r.count >= r.Node.CountMin }

func (r *RSC) pageFull() bool {
	if r.Node.Page.PageSize <= 0 {
		return false
	}
	want := r.Node.Page.PageSize
	if r.wantsCursor() {
		want++
	}
	return r.running >= want
}

func (r *RSC) wantsCursor() bool { return r.Node.Page.PageSize > 0 }

func (r *RSC) samplingNeeded() bool {
	return r.Mode.Sampling && len(r.frame.SampleMarks) > len(r.frame.Set)
}

type nextOutcome int

const (
	nextMore nextOutcome = iota
	nextEnd
	nextAccept
	nextReject
)

// runNext is pipeline state 3: pull one ID, consult the bad-cache, load the
// primitive, initialise the OR map and run intrinsic match.
func (r *RSC) runNext(b *pdb.Budget) (nextOutcome, error) {
	for {
		v, o, err := r.It.Next(b)
		if err != nil {
			return nextMore, err
		}
		if o == iter.More {
			return nextMore, nil
		}
		if o == iter.End {
			return nextEnd, nil
		}
		if r.badCache[v] {
			continue
		}
		p, ok := r.Store.PrimitiveRead(v)
		if !ok {
			r.badCache[v] = true
			continue
		}
		r.cache = primitiveCache{id: v, p: p, ok: true}
		r.current = v
		r.orState = make(map[int]bool)
		if !matchIntrinsic(r.Node, p) {
			r.badCache[v] = true
			continue
		}
		return nextAccept, nil
	}
}

// runOneDeliver is pipeline state 5: samples, frame acceptance, count
// increment, and cursor-at-page-boundary capture.
func (r *RSC) runOneDeliver() error {
	r.frame.sampleInto(r.pendingFrame)
	if err := r.frame.evaluateDeferredSamples(); err != nil {
		return err
	}

	if r.withinPage() {
		r.Matches = append(r.Matches, Match{ID: r.current, Primitive: r.cache.p, Frame: r.pendingFrame})
	}
	r.count++
	r.running++

	if r.wantsCursor() && r.running == r.Node.Page.Start+r.Node.Page.PageSize {
		r.freezeCursor()
	}
	return nil
}

func (r *RSC) withinPage() bool {
	if r.Node.Page.PageSize <= 0 {
		return true
	}
	return r.running >= r.Node.Page.Start && r.running < r.Node.Page.Start+r.Node.Page.PageSize
}

// freezeCursor captures a resumable cursor at the RSC's current position,
// used both at the page boundary (runOneDeliver) and on soft timeout.
func (r *RSC) freezeCursor() {
	if text, err := cursor.Freeze(r.It, r.running); err == nil {
		r.Cursor = text
	}
}

// Count reports the node's absolute accepted-match count (exact once the
// fast-count shortcut or a full scan has run to completion).
func (r *RSC) Count() int64 { return r.count }

func (r *RSC) Suspend() any { return nil }

func (r *RSC) Unsuspend(state any) error { return nil }

func (r *RSC) Free() error { return nil }
