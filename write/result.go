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
	"github.com/erigontech/pdb/constraint"

	"github.com/erigontech/pdb/id"
)

// rawResult is the full result tree commit produces for one node, before
// pruneResult reshapes it to that node's declared Result pattern. node is
// carried alongside so pruning can consult each level's own pattern.
type rawResult struct {
	node     *constraint.WriteNode
	guid     id.GUID
	children []rawResult
}

// Result is a write's pruned, client-facing outcome: the subset of
// guid/contents/literal spec.md §4.6.2 phase 6 asks for.
type Result struct {
	GUID        id.GUID
	HasGUID     bool
	Contents    []Result
	HasContents bool
	Literal     string
	HasLiteral  bool
}

// defaultResultKinds is the pattern spec.md §4.6.2 phase 6 falls back to
// when a write node declares no explicit result= pattern.
var defaultResultKinds = []constraint.WriteResultKind{constraint.WriteResultGUID, constraint.WriteResultContents}

// pruneResult reshapes raw to raw.node's declared Result pattern,
// recursing into Contents per each child's own pattern.
func pruneResult(raw rawResult) Result {
	kinds := raw.node.Result.Kinds
	if len(kinds) == 0 {
		kinds = defaultResultKinds
	}
	var out Result
	for _, k := range kinds {
		switch k {
		case constraint.WriteResultGUID:
			out.GUID = raw.guid
			out.HasGUID = true
		case constraint.WriteResultContents:
			out.HasContents = true
			out.Contents = make([]Result, len(raw.children))
			for i, c := range raw.children {
				out.Contents[i] = pruneResult(c)
			}
		case constraint.WriteResultLiteral:
			out.Literal = raw.node.Result.Literal
			out.HasLiteral = true
		case constraint.WriteResultNone:
			// contributes nothing
		}
	}
	return out
}
