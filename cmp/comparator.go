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

// Package cmp implements the Comparator Plane (C3): pluggable ordering,
// equality and range predicates over typed values, named in spec.md §4.3.
package cmp

import (
	"fmt"
	"sync"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// Backend is the slice of the Primitive Store a comparator's range
// iterator needs: the ordered string-bin space lookups of spec.md §4.3
// (`bin_lookup`, `bin_value`) plus whatever iter.Backend already offers for
// equality (hash index) and membership (bin contents).
type Backend interface {
	iter.Backend

	// BinLookup returns the bin containing or immediately following s.
	BinLookup(s string) (int, error)

	// BinValue returns the representative string stored at bin.
	BinValue(bin int) (string, error)

	// BinBounds reports the backend's [min,max] bin index range.
	BinBounds() (min, max int)
}

// Comparator is the polymorphic table of functions spec.md §4.3 describes:
// syntax validation, equality/range iterator construction, glob matching
// and sort order, plus a capability flag for the range bundle.
type Comparator interface {
	Name() string

	// SyntaxValidate rejects malformed values before they reach storage.
	SyntaxValidate(value string) error

	// EqualityIterator returns every primitive whose value equals value.
	EqualityIterator(backend Backend, value string, dir id.Direction) (iter.Iterator, error)

	// HasRange reports whether RangeIterator/RangeStatistics are
	// implemented. A comparator without range support forces the read
	// engine to fall back to a full-scan producer with per-ID SortCompare
	// callbacks (spec.md §4.3).
	HasRange() bool

	// RangeIterator returns every primitive whose value lies in [low,
	// high) according to SortCompare. Only valid when HasRange() is true.
	RangeIterator(backend Backend, low, high string, dir id.Direction) (iter.Iterator, error)

	// RangeStatistics estimates the number of primitives in [low, high)
	// without materialising the range (spec.md §4.3's "statistics"
	// formula). Only valid when HasRange() is true.
	RangeStatistics(backend Backend, low, high string) (RangeStats, error)

	// GlobMatch reports whether value matches pattern under this
	// comparator's glob semantics (`~=`); comparators that don't support
	// glob return an error.
	GlobMatch(value, pattern string) (bool, error)

	// SortCompare orders two values: negative if a<b, zero if equal,
	// positive if a>b.
	SortCompare(a, b string) int
}

// RangeStats is the estimate RangeStatistics returns.
type RangeStats struct {
	NMax int64
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Comparator{}
)

// Register adds a comparator under name, overwriting any previous entry of
// the same name. Called from init() by the comparators this package ships
// (datetime, text); callers wiring a custom comparator may call it too.
func Register(c Comparator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// Lookup returns the comparator registered under name.
func Lookup(name string) (Comparator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("cmp: no comparator registered as %q", name)
	}
	return c, nil
}

func init() {
	Register(NewDatetime())
	Register(NewText())
}
