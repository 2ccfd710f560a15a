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

import "github.com/erigontech/pdb/constraint"

// keyAnnotate is pipeline phase 2 (spec.md §4.6.2): for each key-bearing
// node, bind to the anchor-annotated GUID, if phase 1 found one, or mark
// the node unbound (it will be created fresh in phase 5).
func keyAnnotate(n *constraint.WriteNode) {
	if n.Key != nil {
		if n.AnchorGUID != nil {
			n.Bound = n.AnchorGUID
		} else {
			n.Unbound = true
		}
	} else if n.AnchorGUID != nil {
		// A bare anchor clause with no key declaration still identifies
		// reuse directly; there's nothing further to decide.
		n.Bound = n.AnchorGUID
	}
	for _, c := range n.Children {
		keyAnnotate(c)
	}
}
