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

package id

import "testing"

func TestPrimitiveLinkageRoundTrip(t *testing.T) {
	var p Primitive
	g := GUID{DBID: 1, Local: 2, Serial: 1}

	if p.HasLinkage(LinkageRight) {
		t.Fatalf("a zero-value primitive must have no linkage set")
	}
	p.SetLinkage(LinkageRight, g)
	got, ok := p.Linkage(LinkageRight)
	if !ok || got != g {
		t.Fatalf("Linkage(Right) = (%+v,%v), want (%+v,true)", got, ok, g)
	}
	if p.HasLinkage(LinkageLeft) {
		t.Fatalf("setting Right must not set Left")
	}
}

func TestLinkageStringParseRoundTrip(t *testing.T) {
	for _, l := range []Linkage{LinkageLeft, LinkageRight, LinkageTypeguid, LinkageScope} {
		s := l.String()
		got, err := ParseLinkage(s)
		if err != nil || got != l {
			t.Fatalf("ParseLinkage(%q) = (%v,%v), want (%v,nil)", s, got, err, l)
		}
	}
}

func TestParseLinkageRejectsUnknown(t *testing.T) {
	if _, err := ParseLinkage("nonsense"); err == nil {
		t.Fatalf("ParseLinkage(\"nonsense\") should have failed")
	}
}

func TestDirectionOpposite(t *testing.T) {
	if Forward.Opposite() != Backward {
		t.Fatalf("Forward.Opposite() must be Backward")
	}
	if Backward.Opposite() != Forward {
		t.Fatalf("Backward.Opposite() must be Forward")
	}
}

func TestIDValidAndString(t *testing.T) {
	if NONE.Valid() {
		t.Fatalf("NONE must not be Valid")
	}
	if NONE.String() != "NONE" {
		t.Fatalf("NONE.String() = %q, want NONE", NONE.String())
	}
	v := ID(10)
	if !v.Valid() {
		t.Fatalf("a non-zero ID must be Valid")
	}
	if !ID(1).Less(ID(2)) {
		t.Fatalf("1 must be Less than 2")
	}
}
