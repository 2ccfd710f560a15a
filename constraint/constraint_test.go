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

package constraint

import (
	"testing"

	"github.com/erigontech/pdb/id"
)

func TestGUIDSetEmpty(t *testing.T) {
	var s GUIDSet
	if !s.Empty() {
		t.Fatalf("zero-value GUIDSet must be Empty")
	}
	s.Include = []id.GUID{{DBID: 1, Local: 1, Serial: 1}}
	if s.Empty() {
		t.Fatalf("a GUIDSet with an Include entry must not be Empty")
	}
}

func TestNodeIsSatisfiable(t *testing.T) {
	var n *Node
	if n.IsSatisfiable() {
		t.Fatalf("a nil *Node must not be satisfiable")
	}
	n = &Node{}
	if !n.IsSatisfiable() {
		t.Fatalf("a zero-value Node must be satisfiable")
	}
	n.False = true
	if n.IsSatisfiable() {
		t.Fatalf("a node marked False must not be satisfiable")
	}
}

func TestFastCountEligibleBareNode(t *testing.T) {
	n := &Node{}
	if !n.FastCountEligible() {
		t.Fatalf("a bare all-wildcard node should be fast-count eligible")
	}
}

func TestFastCountEligibleRejectsChildren(t *testing.T) {
	n := &Node{Children: []*Node{{}}}
	if n.FastCountEligible() {
		t.Fatalf("a node with subconstraints must not be fast-count eligible")
	}
}

func TestFastCountEligibleRejectsGenerationLiveArchival(t *testing.T) {
	cases := []*Node{
		{Generation: GenerationNewest},
		{Live: TriRequire},
		{Archival: TriExclude},
	}
	for _, n := range cases {
		if n.FastCountEligible() {
			t.Fatalf("node %+v should not be fast-count eligible", n)
		}
	}
}

func TestFastCountEligibleRejectsValueDatatypeOrNameValue(t *testing.T) {
	dt := id.DatatypeString
	cases := []*Node{
		{ValueDatatype: &dt},
		{Name: &StringConstraint{Op: OpEqual, Value: "x"}},
		{Value: &StringConstraint{Op: OpEqual, Value: "x"}},
	}
	for _, n := range cases {
		if n.FastCountEligible() {
			t.Fatalf("node %+v should not be fast-count eligible", n)
		}
	}
}

func TestFastCountEligibleSingleApproach(t *testing.T) {
	n := &Node{GUIDs: GUIDSet{Include: []id.GUID{{DBID: 1, Local: 1, Serial: 1}}}}
	if !n.FastCountEligible() {
		t.Fatalf("a single GUID-include restriction should still be eligible")
	}
}

func TestFastCountEligibleTwoApproachesDisqualify(t *testing.T) {
	n := &Node{
		GUIDs: GUIDSet{Include: []id.GUID{{DBID: 1, Local: 1, Serial: 1}}},
		Linkages: map[id.Linkage]GUIDSet{
			id.LinkageRight: {Include: []id.GUID{{DBID: 2, Local: 1, Serial: 1}}},
		},
	}
	if n.FastCountEligible() {
		t.Fatalf("two simultaneous restrictions should disqualify the fast-count shortcut")
	}
}

func TestFastCountEligibleNilNode(t *testing.T) {
	var n *Node
	if n.FastCountEligible() {
		t.Fatalf("a nil *Node must not be fast-count eligible")
	}
}
