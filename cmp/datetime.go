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
	"strconv"
	"strings"
	"sync"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// Mode classifies a datetime value's bracket in the Primitive Store's
// ordered string-bin space (spec.md §4.3): negative year, positive year, or
// bare time-of-day.
type Mode int

const (
	Neg Mode = iota
	Pos
	Time
)

func (m Mode) String() string {
	switch m {
	case Neg:
		return "NEG"
	case Pos:
		return "POS"
	case Time:
		return "TIME"
	default:
		return "?"
	}
}

// boundaries are the six bin indices bracketing "-0", "-9999", "0", "9999",
// "T00", "T24", computed once per Datetime comparator (sync.Once) from the
// first Backend it touches and reused for every later call.
type boundaries struct {
	negLow, negHigh   int
	posLow, posHigh   int
	timeLow, timeHigh int
}

// Datetime implements spec.md §4.3's representative comparator in full:
// NEG/POS/TIME bracket classification, reverse-magnitude BCE ordering, the
// six-boundary bin index cache, and the skip pruning / statistics formulas.
type Datetime struct {
	once   sync.Once
	bounds boundaries
	err    error
}

// NewDatetime returns a fresh Datetime comparator instance. Each instance
// computes its own boundary cache once (rather than sharing one process-
// global cache across unrelated Backends, which would make tests that spin
// up independent stores interfere with each other); within the lifetime of
// one instance bound to one backend this is exactly the "once per process"
// amortisation spec.md §4.3 asks for.
func NewDatetime() *Datetime { return &Datetime{} }

func (d *Datetime) Name() string { return "datetime" }

func classify(s string) (Mode, bool) {
	switch {
	case s == "":
		return Pos, true
	case strings.HasPrefix(s, "-"):
		return Neg, true
	case strings.HasPrefix(s, "T"):
		return Time, true
	case s[0] >= '0' && s[0] <= '9':
		return Pos, true
	default:
		return Pos, false
	}
}

func (d *Datetime) SyntaxValidate(value string) error {
	mode, ok := classify(value)
	if !ok {
		return fmt.Errorf("cmp/datetime: %q is not negative-year, positive-year, or time-of-day", value)
	}
	body := value
	if mode == Neg {
		body = value[1:]
	} else if mode == Time {
		body = value[1:]
	}
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return nil // allow trailing non-digit structure (e.g. "-1999-06-01"); only the leading run must parse
		}
	}
	return nil
}

// magnitude extracts the leading decimal run of s (after any sign/mode
// prefix) as an int64, plus the unconsumed remainder for tie-break
// comparison.
func magnitude(body string) (int64, string) {
	i := 0
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}
	n, _ := strconv.ParseInt(body[:i], 10, 64)
	return n, body[i:]
}

func (d *Datetime) SortCompare(a, b string) int {
	ma, _ := classify(a)
	mb, _ := classify(b)
	if ma != mb {
		return int(ma) - int(mb)
	}
	switch ma {
	case Neg:
		na, ra := magnitude(a[1:])
		nb, rb := magnitude(b[1:])
		if na != nb {
			// Larger magnitude BCE year is chronologically earlier.
			if na > nb {
				return -1
			}
			return 1
		}
		return strings.Compare(ra, rb)
	case Time:
		na, ra := magnitude(a[1:])
		nb, rb := magnitude(b[1:])
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return strings.Compare(ra, rb)
	default: // Pos
		na, ra := magnitude(a)
		nb, rb := magnitude(b)
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		return strings.Compare(ra, rb)
	}
}

func (d *Datetime) ensureBoundaries(backend Backend) error {
	d.once.Do(func() {
		lookup := func(s string) int {
			if d.err != nil {
				return 0
			}
			bin, err := backend.BinLookup(s)
			if err != nil {
				d.err = err
				return 0
			}
			return bin
		}
		d.bounds = boundaries{
			negHigh:  lookup("-0"),
			negLow:   lookup("-9999"),
			posLow:   lookup("0"),
			posHigh:  lookup("9999"),
			timeLow:  lookup("T00"),
			timeHigh: lookup("T24"),
		}
	})
	return d.err
}

func (d *Datetime) HasRange() bool { return true }

// skip reports whether bin's representative string cannot possibly contain
// a valid datetime value (its leading byte is none of '-', a digit, or
// 'T'), letting RangeIterator prune it from the walked bin list without a
// full fetch-and-decode of its contents. This is a conservative
// approximation of spec.md §4.3's window-prefix test: the reference
// Backend only exposes one representative string per bin (BinValue), not
// the bin's [first,last) window endpoints, so the check degrades to
// classifying that single string rather than proving no 4-digit prefix
// falls inside the window.
func (d *Datetime) skip(backend Backend, bin int) bool {
	v, err := backend.BinValue(bin)
	if err != nil || v == "" {
		return false
	}
	_, ok := classify(v)
	return !ok
}

func (d *Datetime) RangeIterator(backend Backend, low, high string, dir id.Direction) (iter.Iterator, error) {
	if err := d.ensureBoundaries(backend); err != nil {
		return nil, err
	}
	loBin, err := backend.BinLookup(low)
	if err != nil {
		return nil, err
	}
	hiBin, err := backend.BinLookup(high)
	if err != nil {
		return nil, err
	}
	if hiBin < loBin {
		loBin, hiBin = hiBin, loBin
	}
	bins := make([]int, 0, hiBin-loBin+1)
	for b := loBin; b <= hiBin; b++ {
		if d.skip(backend, b) {
			continue
		}
		v, err := backend.BinValue(b)
		if err != nil {
			return nil, err
		}
		if !d.ValueInRange(v, low, high) {
			continue
		}
		bins = append(bins, b)
	}
	if dir == id.Backward {
		for i, j := 0, len(bins)-1; i < j; i, j = i+1, j-1 {
			bins[i], bins[j] = bins[j], bins[i]
		}
	}
	return iter.NewBin(backend, bins, dir), nil
}

func (d *Datetime) RangeStatistics(backend Backend, low, high string) (RangeStats, error) {
	if err := d.ensureBoundaries(backend); err != nil {
		return RangeStats{}, err
	}
	loBin, err := backend.BinLookup(low)
	if err != nil {
		return RangeStats{}, err
	}
	hiBin, err := backend.BinLookup(high)
	if err != nil {
		return RangeStats{}, err
	}
	if hiBin < loBin {
		loBin, hiBin = hiBin, loBin
	}
	negSpan := d.bounds.negHigh - d.bounds.negLow
	posSpan := d.bounds.posHigh - d.bounds.posLow
	timeSpan := d.bounds.timeHigh - d.bounds.timeLow
	total := negSpan + posSpan + timeSpan
	if total <= 0 {
		total = 1
	}
	span := hiBin - loBin + 1
	if span > total {
		span = total
	}
	minBin, maxBin := backend.BinBounds()
	binCount := maxBin - minBin + 1
	if binCount <= 0 {
		binCount = 1
	}
	avgPerBin := backend.PrimitiveN() / int64(binCount)
	if avgPerBin <= 0 {
		avgPerBin = 1
	}
	return RangeStats{NMax: int64(span) * avgPerBin}, nil
}

func (d *Datetime) EqualityIterator(backend Backend, value string, dir id.Direction) (iter.Iterator, error) {
	ids, err := backend.HashLookup(iter.HashValue, []byte(value))
	if err != nil {
		return nil, err
	}
	return iter.NewIsa(ids, dir), nil
}

func (d *Datetime) GlobMatch(value, pattern string) (bool, error) {
	return false, fmt.Errorf("cmp/datetime: glob match is not supported")
}

// inc advances a {mode, bin} cursor one bin forward, crossing NEG->POS->TIME
// at the cached boundaries.
func (d *Datetime) inc(mode Mode, bin int) (Mode, int, bool) {
	switch mode {
	case Neg:
		if bin < d.bounds.negHigh {
			return Neg, bin + 1, true
		}
		return Pos, d.bounds.posLow, true
	case Pos:
		if bin < d.bounds.posHigh {
			return Pos, bin + 1, true
		}
		return Time, d.bounds.timeLow, true
	default: // Time
		if bin < d.bounds.timeHigh {
			return Time, bin + 1, true
		}
		return Time, bin, false
	}
}

// dec is inc's inverse, crossing TIME->POS->NEG.
func (d *Datetime) dec(mode Mode, bin int) (Mode, int, bool) {
	switch mode {
	case Time:
		if bin > d.bounds.timeLow {
			return Time, bin - 1, true
		}
		return Pos, d.bounds.posHigh, true
	case Pos:
		if bin > d.bounds.posLow {
			return Pos, bin - 1, true
		}
		return Neg, d.bounds.negHigh, true
	default: // Neg
		if bin > d.bounds.negLow {
			return Neg, bin - 1, true
		}
		return Neg, bin, false
	}
}

// ValueInRange bounds-checks s against [low, high) using SortCompare, as
// spec.md §4.3's value_in_range.
func (d *Datetime) ValueInRange(s, low, high string) bool {
	return d.SortCompare(s, low) >= 0 && d.SortCompare(s, high) < 0
}
