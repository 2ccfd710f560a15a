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

package write

import (
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/store"

	"github.com/erigontech/pdb/id"
)

// validate checks spec.md §4.6.1's validity invariants over the whole
// tree, returning the first violation found as a SEMANTICS-category error
// (or OUTDATED for the versioned-generation case specifically).
func validate(st store.Store, n *constraint.WriteNode) error {
	if !n.TypeXorTypeguid() {
		return pdb.NewError(pdb.SEMANTICS, "write: node declares both type and typeguid")
	}
	if err := validateResultPattern(n.Result); err != nil {
		return err
	}
	if n.GUID != nil {
		if _, ok := st.PrimitiveByGUID(*n.GUID); !ok {
			return pdb.NewError(pdb.SEMANTICS, "write: guid %s does not resolve in the store", n.GUID)
		}
		if newer, ok := newestGeneration(st, *n.GUID); ok && newer.Newer(*n.GUID) {
			return pdb.NewError(pdb.OUTDATED, "write: guid %s is not the newest generation", n.GUID)
		}
	}
	for which, g := range n.LinkageGUIDs {
		if _, ok := st.IDFromGUID(g); !ok {
			return pdb.NewError(pdb.SEMANTICS, "write: linkage %s endpoint %s does not resolve", which, g)
		}
	}
	if err := validateNoConflictingLinkage(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := validate(st, c); err != nil {
			return err
		}
	}
	return nil
}

// validateNoConflictingLinkage checks that a child's own linkage
// declaration (LinkageGUIDs) does not contradict the structural linkage
// already implied by its ParentLinkage, per spec.md §4.6.1's "no
// conflicting linkage on both parent and subconstraint sides".
func validateNoConflictingLinkage(n *constraint.WriteNode) error {
	for _, c := range n.Children {
		if c.ParentLinkage.Kind != constraint.LinkageMy {
			continue
		}
		if g, ok := c.LinkageGUIDs[c.ParentLinkage.Which]; ok {
			if n.GUID == nil || g != *n.GUID {
				return pdb.NewError(pdb.SEMANTICS, "write: conflicting %s linkage between parent and child", c.ParentLinkage.Which)
			}
		}
	}
	return nil
}

// validateResultPattern checks spec.md §4.6.1's closed set of result leaf
// kinds: guid, contents, literal=, none, or a list of these.
func validateResultPattern(r constraint.WriteResult) error {
	for _, k := range r.Kinds {
		switch k {
		case constraint.WriteResultNone, constraint.WriteResultGUID, constraint.WriteResultContents, constraint.WriteResultLiteral:
		default:
			return pdb.NewError(pdb.SEMANTICS, "write: invalid result pattern leaf %d", k)
		}
	}
	return nil
}

// newestGeneration reports the newest generation sharing guid's dbid/local
// prefix, per the store's own PrimitiveByGUID preference.
func newestGeneration(st store.Store, guid id.GUID) (id.GUID, bool) {
	p, ok := st.PrimitiveByGUID(guid)
	if !ok {
		return id.Null, false
	}
	return p.GUID, true
}
