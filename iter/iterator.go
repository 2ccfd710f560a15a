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

// Package iter implements the Iterator Algebra (C2): composable, lazy,
// cost-aware ID streams over the Primitive Store, plus the AND/OR/Fixed/
// VIP/Bin/Word/Prefix/Hash/Null/All/ISA variants named in spec.md §3/§4.2.
package iter

import (
	"fmt"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// Outcome is the shared result tag for every Iterator capability call. Not
// every value is valid for every method; each method's doc comment says
// which subset it returns.
type Outcome int

const (
	// Done marks successful completion of a call (Statistics finished;
	// Next/Find produced a value, check out-param is meaningful).
	Done Outcome = iota
	// More is the cooperative-yield signal: call again with a fresh budget.
	More
	// Yes is Check's positive answer.
	Yes
	// No is Check's negative answer, or Restrict's "narrowed to nothing".
	No
	// End marks stream exhaustion for Next/Find.
	End
	// Already marks an idempotent Restrict that changed nothing.
	Already
	// New marks a Restrict that produced a genuinely new iterator.
	New
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case More:
		return "more"
	case Yes:
		return "yes"
	case No:
		return "no"
	case End:
		return "end"
	case Already:
		return "already"
	case New:
		return "new"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Stats holds an iterator's self-reported cost model, refined incrementally
// by Statistics.
type Stats struct {
	CheckCost   int64
	NextCost    int64
	FindCost    int64
	N           int64 // -1 if unknown
	NIsExact    bool
	Sorted      bool
	computed    bool
}

// Range is a conservative [Low, High) bound plus an exact-or-maximum count,
// as returned by RangeEstimate.
type Range struct {
	Low, High id.ID
	NExact    int64 // -1 if not known exactly
	NMax      int64
}

// PSum ("primitive summary") is the fixed linkage/type constraint that
// every primitive produced by an iterator is guaranteed to satisfy, used by
// AND to restrict one child against another without re-scanning it.
type PSum struct {
	Linkage  id.Linkage
	Endpoint id.GUID
	Typeguid id.GUID
	HasType  bool
}

// Equal reports whether two summaries describe the same restriction.
func (p PSum) Equal(o PSum) bool {
	return p.Linkage == o.Linkage && p.Endpoint == o.Endpoint &&
		p.HasType == o.HasType && (!p.HasType || p.Typeguid == o.Typeguid)
}

// FreezeFlags selects which of an iterator's three independent slices
// Freeze should append to the buffer (spec.md §4.8).
type FreezeFlags struct {
	Set      bool
	Position bool
	State    bool
}

// Any reports whether at least one slice was requested.
func (f FreezeFlags) Any() bool { return f.Set || f.Position || f.State }

// Variant names the closed set of iterator kinds (spec.md §3 "Variants").
// The cursor codec's leading grammar token is exactly this name.
type Variant string

const (
	VariantNull   Variant = "null"
	VariantAll    Variant = "all"
	VariantFixed  Variant = "fixed"
	VariantWord   Variant = "word"
	VariantPrefix Variant = "prefix"
	VariantHash   Variant = "hash"
	VariantVIP    Variant = "vip"
	VariantAnd    Variant = "and"
	VariantOr     Variant = "or"
	VariantBin    Variant = "bin"
	VariantIsa    Variant = "isa"
)

// Iterator is the polymorphic capability set of spec.md §3/§4.2. Every
// concrete variant in this package implements it.
type Iterator interface {
	// Variant names the concrete kind, used by the cursor codec's leading
	// grammar token and by cost-model dispatch.
	Variant() Variant

	// Statistics computes or refines Stats()'s contents and may suspend
	// (More) leaving enough state to resume with a fresh budget.
	Statistics(b *pdb.Budget) (Outcome, error)

	// Stats returns the most recently computed statistics; valid only
	// after Statistics has returned Done at least once.
	Stats() Stats

	// Next returns the iterator's next ID in its natural order. Returns
	// (id, Done) on success, (NONE, End) at exhaustion, (NONE, More) to
	// yield.
	Next(b *pdb.Budget) (id.ID, Outcome, error)

	// Find positions a sorted iterator at the first ID at-or-after target
	// (at-or-before, if Direction() is Backward). The returned ID may
	// exceed target. Only valid when Stats().Sorted is true.
	Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error)

	// Check is a membership test: Yes, No, or More.
	Check(target id.ID, b *pdb.Budget) (Outcome, error)

	// Clone returns an independent position/call-state instance sharing
	// this iterator's underlying set (the "original").
	Clone() Iterator

	// Freeze appends a textual representation of the requested slices.
	Freeze(flags FreezeFlags, buf *Buffer) error

	// Reset rewinds to the iterator's start.
	Reset()

	// PrimitiveSummary reports the fixed restriction every produced
	// primitive satisfies, if any.
	PrimitiveSummary() (PSum, bool)

	// Beyond reports whether an ordered iterator has already passed value
	// in its current direction (used by sort-window termination).
	Beyond(value id.ID) bool

	// RangeEstimate returns conservative [low,high) bounds plus a count.
	RangeEstimate() Range

	// Restrict produces an iterator limited to primitives satisfying sum,
	// or Already if that restriction changes nothing, or No if it would
	// produce the empty set.
	Restrict(sum PSum) (Iterator, Outcome, error)

	// Direction reports the iterator's natural traversal order.
	Direction() id.Direction
}

// Buffer is the append-only text sink Freeze writes into; a thin alias so
// call sites don't need to import strings directly for this one purpose.
type Buffer struct {
	s []byte
}

func (b *Buffer) WriteString(s string) { b.s = append(b.s, s...) }
func (b *Buffer) WriteByte(c byte)      { b.s = append(b.s, c) }
func (b *Buffer) String() string       { return string(b.s) }
func (b *Buffer) Len() int              { return len(b.s) }
