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

package cmp

import (
	"fmt"
	"path"
	"strings"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// Text is a plain string comparator: lexical ordering, shell-glob matching,
// equality via the Primitive Store's value hash, and no range support. It
// exercises spec.md §4.3's "comparator without range" fallback path, and
// gives the word/prefix iterator variants a comparator that actually calls
// them (via its word/prefix-driven siblings in pdb/read).
type Text struct{}

func NewText() *Text { return &Text{} }

func (t *Text) Name() string { return "text" }

func (t *Text) SyntaxValidate(value string) error { return nil }

func (t *Text) SortCompare(a, b string) int { return strings.Compare(a, b) }

func (t *Text) EqualityIterator(backend Backend, value string, dir id.Direction) (iter.Iterator, error) {
	ids, err := backend.HashLookup(iter.HashValue, []byte(value))
	if err != nil {
		return nil, err
	}
	return iter.NewIsa(ids, dir), nil
}

func (t *Text) HasRange() bool { return false }

func (t *Text) RangeIterator(backend Backend, low, high string, dir id.Direction) (iter.Iterator, error) {
	return nil, fmt.Errorf("cmp/text: comparator has no range support, fall back to full scan")
}

func (t *Text) RangeStatistics(backend Backend, low, high string) (RangeStats, error) {
	return RangeStats{}, fmt.Errorf("cmp/text: comparator has no range support")
}

func (t *Text) GlobMatch(value, pattern string) (bool, error) {
	return path.Match(pattern, value)
}
