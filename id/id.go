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

// Package id implements the Identifier & Value Model (C1): primitive-ID
// arithmetic, GUID encode/decode, the value-datatype enum, and datelines.
package id

import "fmt"

// ID is an opaque 64-bit index into the Primitive Store.
type ID uint64

// NONE is the sentinel ID meaning "absent"; valid IDs start at 1 so that
// the zero value of ID is always NONE without an explicit initialiser.
const NONE ID = 0

// Valid reports whether id is a real, in-range primitive reference.
func (i ID) Valid() bool { return i != NONE }

// Less orders IDs as plain unsigned integers; iterators sorted in the
// forward direction produce IDs in this order.
func (i ID) Less(o ID) bool { return i < o }

func (i ID) String() string {
	if i == NONE {
		return "NONE"
	}
	return fmt.Sprintf("%x", uint64(i))
}

// Direction is the traversal order an iterator is asked to produce.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Opposite returns the reverse of d.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}
