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

// Property tests for the iterator laws of spec.md §8: check/stream
// agreement (1), sortedness (2), find-is-first-at-or-after (3), clone
// independence (5), restrict narrowing (6), and AND/OR set semantics (7,
// 8). Freeze/thaw fidelity (4) is covered by package cursor's round-trip
// tests, not here.
package iter

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

func drain(t *rapid.T, it Iterator, dir id.Direction) []id.ID {
	var got []id.ID
	b := pdb.NewBudget(1 << 20)
	for {
		v, o, err := it.Next(b)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if o == End {
			break
		}
		if o != Done {
			t.Fatalf("Next: unexpected outcome %v", o)
		}
		got = append(got, v)
		if len(got) > 10000 {
			t.Fatal("stream did not terminate")
		}
	}
	return got
}

func genIDSet(t *rapid.T) []id.ID {
	n := rapid.IntRange(0, 12).Draw(t, "n")
	seen := map[id.ID]bool{}
	var ids []id.ID
	for i := 0; i < n; i++ {
		v := id.ID(rapid.Int64Range(1, 200).Draw(t, "v"))
		if seen[v] {
			continue
		}
		seen[v] = true
		ids = append(ids, v)
	}
	return ids
}

// Law 1: check(id) == yes iff id is in the stream.
func TestLawCheckAgreesWithStream(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}
		it := NewFixed(ids, dir)
		stream := drain(t, it, dir)
		inStream := map[id.ID]bool{}
		for _, v := range stream {
			inStream[v] = true
		}

		probe := id.ID(rapid.Int64Range(0, 210).Draw(t, "probe"))
		b := pdb.NewBudget(1 << 20)
		out, err := it.Clone().Check(probe, b)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		want := No
		if inStream[probe] {
			want = Yes
		}
		if out != want {
			t.Fatalf("Check(%d) = %v, want %v (stream=%v)", probe, out, want, stream)
		}
	})
}

// Law 2: a sorted iterator's Next sequence is monotone in its direction.
func TestLawSortedNextIsMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}
		it := NewFixed(ids, dir)
		stream := drain(t, it, dir)
		for i := 1; i < len(stream); i++ {
			if dir == id.Forward && stream[i] <= stream[i-1] {
				t.Fatalf("not strictly increasing at %d: %v", i, stream)
			}
			if dir == id.Backward && stream[i] >= stream[i-1] {
				t.Fatalf("not strictly decreasing at %d: %v", i, stream)
			}
		}
	})
}

// Law 3: find(target) returns the first id >= target (<= for backward), or end.
func TestLawFindIsFirstAtOrAfterTarget(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}
		full := NewFixed(ids, dir)
		stream := drain(t, full, dir)

		target := id.ID(rapid.Int64Range(0, 210).Draw(t, "target"))
		it := NewFixed(ids, dir)
		b := pdb.NewBudget(1 << 20)
		got, out, err := it.Find(target, b)
		if err != nil {
			t.Fatalf("Find: %v", err)
		}

		var want id.ID
		wantEnd := true
		for _, v := range stream {
			if (dir == id.Forward && v >= target) || (dir == id.Backward && v <= target) {
				want = v
				wantEnd = false
				break
			}
		}
		if wantEnd {
			if out != End {
				t.Fatalf("Find(%d) = %v, want end (stream=%v)", target, out, stream)
			}
			return
		}
		if out != Done || got != want {
			t.Fatalf("Find(%d) = (%d,%v), want (%d,done) (stream=%v)", target, got, out, want, stream)
		}
	})
}

// Law 5: Clone has independent position.
func TestLawCloneIsIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := genIDSet(t)
		if len(ids) == 0 {
			return
		}
		it := NewFixed(ids, id.Forward)
		b := pdb.NewBudget(1 << 20)
		if _, o, err := it.Next(b); err != nil || o != Done {
			return
		}

		clone := it.Clone()
		// Advance the clone only; the original's next value must be
		// unaffected.
		cloneStream := drain(t, clone, id.Forward)

		want := drain(t, NewFixed(ids, id.Forward), id.Forward)[1:]
		origRest := drain(t, it, id.Forward)
		if len(origRest) != len(want) {
			t.Fatalf("original diverged in length after draining its clone %v: got %v, want %v", cloneStream, origRest, want)
		}
		for i := range want {
			if origRest[i] != want[i] {
				t.Fatalf("original's stream changed after draining its clone %v: got %v, want %v", cloneStream, origRest, want)
			}
		}
	})
}

// Law 7: stream(and(a,b)) = stream(a) ∩ stream(b).
func TestLawAndIsIntersection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genIDSet(t)
		bSet := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}

		and := NewAnd([]Iterator{NewFixed(a, dir), NewFixed(bSet, dir)}, dir)
		got := drain(t, and, dir)

		inB := map[id.ID]bool{}
		for _, v := range bSet {
			inB[v] = true
		}
		var want []id.ID
		for _, v := range a {
			if inB[v] {
				want = append(want, v)
			}
		}
		if !sameSet(got, want) {
			t.Fatalf("and(%v,%v) = %v, want set %v", a, bSet, got, want)
		}
	})
}

// Law 8: stream(or(a,b)) = stream(a) ∪ stream(b), no duplicates.
func TestLawOrIsUnion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genIDSet(t)
		bSet := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}

		or := NewOr([]Iterator{NewFixed(a, dir), NewFixed(bSet, dir)}, dir)
		got := drain(t, or, dir)

		union := map[id.ID]bool{}
		for _, v := range a {
			union[v] = true
		}
		for _, v := range bSet {
			union[v] = true
		}
		var want []id.ID
		for v := range union {
			want = append(want, v)
		}
		if !sameSet(got, want) {
			t.Fatalf("or(%v,%v) = %v, want set %v", a, bSet, got, want)
		}

		seen := map[id.ID]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("or produced duplicate %d: %v", v, got)
			}
			seen[v] = true
		}
	})
}

// Law 6: restrict(psum) narrows an iterator's stream to a subset of its
// original stream; every concrete variant here (Fixed, And, Or over Fixed
// children) carries no per-primitive metadata to check a PSum against, so
// Restrict always reports Already and must then leave the stream as the
// full original set, never a proper subset.
func TestLawRestrictIsSubsetAndAlreadyMeansFullSet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genIDSet(t)
		bSet := genIDSet(t)
		dir := id.Forward
		if rapid.Bool().Draw(t, "backward") {
			dir = id.Backward
		}

		var it Iterator
		switch rapid.IntRange(0, 2).Draw(t, "shape") {
		case 0:
			it = NewFixed(a, dir)
		case 1:
			it = NewAnd([]Iterator{NewFixed(a, dir), NewFixed(bSet, dir)}, dir)
		default:
			it = NewOr([]Iterator{NewFixed(a, dir), NewFixed(bSet, dir)}, dir)
		}
		full := drain(t, it.Clone(), dir)

		sum := PSum{Linkage: id.LinkageRight, Endpoint: id.GUID{DBID: uint64(rapid.Int64Range(1, 100).Draw(t, "dbid"))}}
		restricted, outcome, err := it.Restrict(sum)
		if err != nil {
			t.Fatalf("Restrict: %v", err)
		}
		got := drain(t, restricted.Clone(), dir)

		fullSet := map[id.ID]bool{}
		for _, v := range full {
			fullSet[v] = true
		}
		for _, v := range got {
			if !fullSet[v] {
				t.Fatalf("restrict produced %d not present in the original stream %v", v, full)
			}
		}
		if outcome == Already && !sameSet(got, full) {
			t.Fatalf("Already must mean the full set: got %v, want %v", got, full)
		}
	})
}

func sameSet(got, want []id.ID) bool {
	if len(got) != len(want) {
		return false
	}
	gm := map[id.ID]int{}
	for _, v := range got {
		gm[v]++
	}
	for _, v := range want {
		gm[v]--
	}
	for _, c := range gm {
		if c != 0 {
			return false
		}
	}
	return true
}
