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

import "testing"

// spec.md §8 law 9: on values of the form "-YYYY" the sort order is
// strcmp-reversed (larger magnitude BCE year sorts earlier); for every
// other mixture (POS/TIME, or comparisons spanning two different modes)
// it behaves like strcasecmp over the decimal magnitude.
func TestSortCompareNegativeYearsReversed(t *testing.T) {
	d := NewDatetime()
	if d.SortCompare("-9999", "-2000") >= 0 {
		t.Fatalf("-9999 should sort before -2000 (larger BCE magnitude is earlier)")
	}
	if d.SortCompare("-2000", "-9999") <= 0 {
		t.Fatalf("-2000 should sort after -9999")
	}
	if d.SortCompare("-2000", "-2000") != 0 {
		t.Fatalf("identical negative years must compare equal")
	}
}

func TestSortComparePositiveYearsAscending(t *testing.T) {
	d := NewDatetime()
	if d.SortCompare("2000", "2003") >= 0 {
		t.Fatalf("2000 should sort before 2003")
	}
	if d.SortCompare("2003", "2000") <= 0 {
		t.Fatalf("2003 should sort after 2000")
	}
}

func TestSortCompareTimeOfDayAscending(t *testing.T) {
	d := NewDatetime()
	if d.SortCompare("T08", "T17") >= 0 {
		t.Fatalf("T08 should sort before T17")
	}
}

// Mode ordering: every Neg value sorts before every Pos value, which
// sorts before every Time value (spec.md §4.3's three brackets).
func TestSortCompareModeOrdering(t *testing.T) {
	d := NewDatetime()
	if d.SortCompare("-0001", "2000") >= 0 {
		t.Fatalf("any negative year must sort before any positive year")
	}
	if d.SortCompare("2000", "T00") >= 0 {
		t.Fatalf("any positive year must sort before any time-of-day value")
	}
}

func TestClassifyModes(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", Pos, true},
		{"2000", Pos, true},
		{"-2000", Neg, true},
		{"T08", Time, true},
		{"x2000", Pos, false},
	}
	for _, c := range cases {
		got, ok := classify(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("classify(%q) = (%v,%v), want (%v,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

// S1 from spec.md §8: range ["2000","2003") over bins 1999/2000/2001/
// 2002/2003/2004 should bound to exactly 2000, 2001, 2002 under
// ValueInRange, the same predicate RangeIterator's bin walk relies on.
func TestValueInRangeMatchesDatetimeRangeScenario(t *testing.T) {
	d := NewDatetime()
	years := []string{"1999", "2000", "2001", "2002", "2003", "2004"}
	var inRange []string
	for _, y := range years {
		if d.ValueInRange(y, "2000", "2003") {
			inRange = append(inRange, y)
		}
	}
	want := []string{"2000", "2001", "2002"}
	if len(inRange) != len(want) {
		t.Fatalf("ValueInRange selected %v, want %v", inRange, want)
	}
	for i := range want {
		if inRange[i] != want[i] {
			t.Fatalf("ValueInRange selected %v, want %v", inRange, want)
		}
	}
}
