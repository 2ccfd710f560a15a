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
	"github.com/erigontech/pdb/iter"
)

// SortContext is created only when a sort pattern exists, a page size
// exists, and the driving iterator's natural order doesn't already satisfy
// it (spec.md §4.5.2). It tracks the sort window's high-water mark under
// the node's comparator (falling back to byte-lexical order when the node
// names none) and reports when the window has provably closed.
type SortContext struct {
	node       *constraint.Node
	comparator cmp.Comparator

	haveLast bool
	lastKey  string
	ended    bool
}

func newSortContext(node *constraint.Node, it iter.Iterator) *SortContext {
	var c cmp.Comparator
	if node.Comparator != "" {
		c, _ = cmp.Lookup(node.Comparator)
	}
	return &SortContext{node: node, comparator: c}
}

// AcceptPrefilter is the cheap gate using just the sort key: reports whether
// value keeps the current window open without needing the full primitive.
func (s *SortContext) AcceptPrefilter(value string) bool {
	if s == nil || !s.haveLast {
		return true
	}
	return s.compare(value, s.lastKey) >= 0
}

// Accept records value as the sort context's new high-water mark.
func (s *SortContext) Accept(value string) {
	if s == nil {
		return
	}
	s.lastKey = value
	s.haveLast = true
}

// AcceptEnded marks the sort window provably closed (a later value could
// never re-enter it in the iterator's current direction).
func (s *SortContext) AcceptEnded() {
	if s != nil {
		s.ended = true
	}
}

// Ended reports whether the sort window has closed.
func (s *SortContext) Ended() bool { return s != nil && s.ended }

// Finish is a no-op hook kept for symmetry with Freeze/Thaw/suspend-unsuspend
// call sites that treat every SortContext method uniformly.
func (s *SortContext) Finish() {}

// Freeze renders the sort window's high-water mark for the cursor codec's
// state slice.
func (s *SortContext) Freeze() string {
	if s == nil || !s.haveLast {
		return ""
	}
	return s.lastKey
}

// Thaw restores a high-water mark previously produced by Freeze.
func (s *SortContext) Thaw(frozen string) {
	if s == nil || frozen == "" {
		return
	}
	s.lastKey = frozen
	s.haveLast = true
}

func (s *SortContext) compare(a, b string) int {
	if s.comparator != nil {
		return s.comparator.SortCompare(a, b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
