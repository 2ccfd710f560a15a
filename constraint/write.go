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

import "github.com/erigontech/pdb/id"

// WriteResultKind is one of the four allowed write result pattern leaves
// (spec.md §4.6.1): guid, contents, a literal value, or none.
type WriteResultKind int

const (
	WriteResultNone WriteResultKind = iota
	WriteResultGUID
	WriteResultContents
	WriteResultLiteral
)

// WriteResult is a (possibly list-valued) write result pattern.
type WriteResult struct {
	Kinds   []WriteResultKind
	Literal string // meaningful when a Kinds entry is WriteResultLiteral
}

// AnchorClause declares a structural match used by anchor-annotate (C6
// phase 1) to find an existing primitive this write should attach to
// instead of creating a duplicate.
type AnchorClause struct {
	Linkage id.Linkage
	Value   id.GUID
}

// KeyClause declares the columns (by linkage or name/value) that determine
// uniqueness for key-annotate (C6 phase 2).
type KeyClause struct {
	Columns []string
}

// WriteNode is a Write Constraint Node (spec.md §3/§4.6): a tree node
// describing what to create or attach to. Type and Typeguid may not both
// be set (the typeguid-xor-type invariant); GUID may accompany either, and
// none of the three is required. Validity itself is checked by pdb/write,
// not constructed into this type.
type WriteNode struct {
	GUID *id.GUID

	Name  *string
	Value *string

	Type     *string
	Typeguid *id.GUID

	Live     *bool
	Archival *bool

	ParentLinkage Linkage

	// LinkageGUIDs sets an explicit endpoint GUID rather than deriving it
	// from a just-written parent.
	LinkageGUIDs map[id.Linkage]id.GUID

	Anchors []AnchorClause
	Key     *KeyClause

	Result WriteResult

	Children []*WriteNode

	// Annotations populated by the C6 pipeline phases; zero value means
	// "not yet annotated".
	AnchorGUID *id.GUID // phase 1 output
	Bound      *id.GUID // phase 2/3 output: resolved to an existing primitive
	Unbound    bool     // phase 2 output: will be created fresh
}

// SingleValued reports the invariant "name/value/type are single-valued",
// trivially true for this struct's shape (each is a scalar pointer); kept
// as a named check so callers validating a whole tree can call one
// function per node instead of re-deriving the rule at each call site.
func (w *WriteNode) SingleValued() bool { return true }

// TypeXorTypeguid reports whether the type/typeguid mutual exclusion
// invariant holds for this node.
func (w *WriteNode) TypeXorTypeguid() bool {
	return !(w.Type != nil && w.Typeguid != nil)
}
