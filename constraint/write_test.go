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

func TestSingleValuedAlwaysTrue(t *testing.T) {
	w := &WriteNode{}
	if !w.SingleValued() {
		t.Fatalf("SingleValued() must be true for any WriteNode shape")
	}
	name := "x"
	val := "y"
	w.Name, w.Value = &name, &val
	if !w.SingleValued() {
		t.Fatalf("SingleValued() must remain true once Name/Value are set")
	}
}

func TestTypeXorTypeguid(t *testing.T) {
	w := &WriteNode{}
	if !w.TypeXorTypeguid() {
		t.Fatalf("a node with neither Type nor Typeguid must satisfy the xor invariant")
	}

	typ := "person"
	w.Type = &typ
	if !w.TypeXorTypeguid() {
		t.Fatalf("a node with only Type set must satisfy the xor invariant")
	}

	w.Typeguid = &id.GUID{DBID: 1, Local: 1, Serial: 1}
	if w.TypeXorTypeguid() {
		t.Fatalf("a node with both Type and Typeguid set must violate the xor invariant")
	}

	w.Type = nil
	if !w.TypeXorTypeguid() {
		t.Fatalf("a node with only Typeguid set must satisfy the xor invariant")
	}
}

func TestWriteResultKinds(t *testing.T) {
	r := WriteResult{Kinds: []WriteResultKind{WriteResultGUID, WriteResultLiteral}, Literal: "x"}
	if len(r.Kinds) != 2 {
		t.Fatalf("expected 2 result kinds, got %d", len(r.Kinds))
	}
	if r.Kinds[1] != WriteResultLiteral || r.Literal != "x" {
		t.Fatalf("literal result kind should carry its string alongside it")
	}
}
