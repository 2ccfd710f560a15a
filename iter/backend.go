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

package iter

import "github.com/erigontech/pdb/id"

// Backend is the slice of the Primitive Store contract (spec.md §6) that
// index-backed iterator variants need: fan-in lookup for VIP, and the
// three string/hash index lookups for Word/Prefix/Hash. Bin-space lookups
// are served by the comparator plane (pdb/cmp), not here, since bin
// semantics are comparator-specific.
//
// Index lookups here return whole sorted ID slices rather than cursors:
// this engine's indexes are expected to stay small enough to materialise
// (the on-disk tile layer behind Backend is out of this repository's
// scope per spec.md §1), matching spec.md §4.2's "fixed: stores a sorted
// ID array" treatment of materialised sets.
type Backend interface {
	// VIPFanIn returns, in ascending ID order, every primitive whose
	// linkage `which` points at endpoint, optionally restricted to
	// primitives whose Typeguid equals typeguid (hasType true).
	VIPFanIn(which id.Linkage, endpoint id.GUID, hasType bool, typeguid id.GUID) ([]id.ID, error)

	// WordLookup returns primitives whose name/value tokenises to word.
	WordLookup(word string) ([]id.ID, error)

	// PrefixLookup returns primitives with a name/value token matching the
	// given prefix.
	PrefixLookup(prefix string) ([]id.ID, error)

	// HashLookup returns primitives whose value (kind==Value) or key
	// (kind==Key) hashes to the given bytes.
	HashLookup(kind HashKind, key []byte) ([]id.ID, error)

	// PrimitiveN reports the current highest-assigned primitive ID, used
	// by All.
	PrimitiveN() int64

	// BinContents returns, in ascending ID order, every primitive indexed
	// under the given bin of the ordered string-bin space (spec.md §4.3's
	// bin_to_iterator). Used by Bin to materialise one bin at a time as it
	// walks a comparator-chosen sequence of bin indices.
	BinContents(bin int) ([]id.ID, error)
}

// HashKind selects which hash index HashLookup consults.
type HashKind int

const (
	HashValue HashKind = iota
	HashKey
)
