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

// Package constraint defines the Constraint Node and Write Constraint Node
// tree types shared by the Read Engine (C5) and Write Engine (C6), per
// spec.md §3's Data Model.
package constraint

import "github.com/erigontech/pdb/id"

// StringOp is a string/value comparison operator usable against name and
// value constraints.
type StringOp int

const (
	OpEqual StringOp = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpGlob     // ~=
	OpMatch    // match-pattern
)

// Linkage ties a constraint node to its parent under a named endpoint
// (Which): either the parent's endpoint points at the node (i-am), the
// node's own endpoint points at the parent (my), or there is no structural
// linkage at all (the node is the root, or a free-standing OR branch).
type Linkage struct {
	Kind  LinkageKind
	Which id.Linkage // meaningful when Kind is IAm or My
}

type LinkageKind int

const (
	LinkageNone LinkageKind = iota
	LinkageIAm
	LinkageMy
)

// GUIDSet is an include/exclude/match restriction on a GUID-valued slot.
type GUIDSet struct {
	Include []id.GUID
	Exclude []id.GUID
	Match   []id.GUID // match-any-of, distinct from Include's AND semantics at the caller's discretion
}

// Empty reports whether the set carries no restriction at all.
func (s GUIDSet) Empty() bool { return len(s.Include) == 0 && len(s.Exclude) == 0 && len(s.Match) == 0 }

// StringConstraint restricts name or value under an operator and a
// comparator selector (e.g. "datetime", "text").
type StringConstraint struct {
	Op         StringOp
	Value      string
	Comparator string
}

// PageWindow is the (start, pagesize) pagination window of spec.md §3.
type PageWindow struct {
	Start    int64
	PageSize int64 // 0 means unbounded
}

// SortPattern names the field(s) a result set sorts by and the "sort root"
// node the sort window is measured against.
type SortPattern struct {
	Fields   []string
	SortRoot string
}

// GenerationFilter is the newest/oldest tri-state generational filter.
type GenerationFilter int

const (
	GenerationAny GenerationFilter = iota
	GenerationNewest
	GenerationOldest
)

// TriState is a three-valued live/archival restriction: unset, require, or
// exclude.
type TriState int

const (
	TriUnset TriState = iota
	TriRequire
	TriExclude
)

// ResultPattern shapes what a match contributes to its parent's result
// frame. PFOne is the per-id pattern, PFSet the per-set pattern; fields
// named in Sample are marked for sample-copy during counting (spec.md
// §4.5.3).
type ResultPattern struct {
	Fields []string
	Sample map[string]bool
}

// Node is a Constraint Node (spec.md §3): a tree node describing what to
// read. The zero value is the always-true, no-restriction node ("all").
type Node struct {
	GUIDs GUIDSet

	// Linkages holds per-linkage sub-constraints on the four endpoint
	// GUIDs (left, right, typeguid, scope), keyed by id.Linkage.
	Linkages map[id.Linkage]GUIDSet

	Name  *StringConstraint
	Value *StringConstraint

	Comparator string

	CountMin int64
	CountMax *int64 // nil = no max

	Page PageWindow
	Sort *SortPattern

	Generation GenerationFilter
	Live       TriState
	Archival   TriState

	ValueDatatype *id.Datatype

	Or []*Node // OR branches; each is evaluated against the same candidate

	Result ResultPattern

	ParentLinkage Linkage

	Children []*Node

	// False marks a constraint proven unsatisfiable at parse/bind time
	// (short-circuit fail, spec.md §3's Invariants).
	False bool

	Direction id.Direction
}

// IsSatisfiable reports whether this node hasn't been short-circuited.
func (n *Node) IsSatisfiable() bool { return n != nil && !n.False }

// FastCountEligible reports whether spec.md §4.5 pipeline state 1's fast
// count shortcut applies: no subconstraints, no generational/live/
// archival/value-type/GUID restrictions, empty name/value, and at most one
// "approach" index in use (approximated here as: at most one of
// {GUID include, a single linkage restriction, name, value} is set,
// since each of those independently drives iterator construction).
func (n *Node) FastCountEligible() bool {
	if n == nil || len(n.Children) > 0 {
		return false
	}
	if n.Generation != GenerationAny || n.Live != TriUnset || n.Archival != TriUnset {
		return false
	}
	if n.ValueDatatype != nil {
		return false
	}
	if n.Name != nil || n.Value != nil {
		return false
	}
	approaches := 0
	if !n.GUIDs.Empty() {
		approaches++
	}
	for _, gs := range n.Linkages {
		if !gs.Empty() {
			approaches++
		}
	}
	return approaches <= 1
}
