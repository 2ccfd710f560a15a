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

func TestTextSortCompareIsLexical(t *testing.T) {
	txt := NewText()
	if txt.SortCompare("alpha", "beta") >= 0 {
		t.Fatalf("alpha should sort before beta")
	}
	if txt.SortCompare("beta", "alpha") <= 0 {
		t.Fatalf("beta should sort after alpha")
	}
	if txt.SortCompare("same", "same") != 0 {
		t.Fatalf("identical strings must compare equal")
	}
}

func TestTextHasNoRangeSupport(t *testing.T) {
	txt := NewText()
	if txt.HasRange() {
		t.Fatalf("text comparator must declare no range support")
	}
	if _, err := txt.RangeIterator(nil, "a", "z", 0); err == nil {
		t.Fatalf("RangeIterator must fail for a comparator with no range support")
	}
	if _, err := txt.RangeStatistics(nil, "a", "z"); err == nil {
		t.Fatalf("RangeStatistics must fail for a comparator with no range support")
	}
}

func TestTextGlobMatch(t *testing.T) {
	txt := NewText()
	ok, err := txt.GlobMatch("hello.go", "*.go")
	if err != nil || !ok {
		t.Fatalf("GlobMatch(hello.go, *.go) = (%v,%v), want (true,nil)", ok, err)
	}
	ok, err = txt.GlobMatch("hello.txt", "*.go")
	if err != nil || ok {
		t.Fatalf("GlobMatch(hello.txt, *.go) = (%v,%v), want (false,nil)", ok, err)
	}
}
