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

import "fmt"

// Datatype is the closed enum of value kinds a Primitive's value may carry,
// plus an open range [1,255] of extension codes for forward compatibility
// with datatypes this binary does not know the name of.
type Datatype uint8

const (
	DatatypeNull Datatype = iota
	DatatypeString
	DatatypeInteger
	DatatypeFloat
	DatatypeGUID
	DatatypeTimestamp
	DatatypeURL
	DatatypeByteString
	DatatypeBoolean

	// datatypeFirstExtension is the smallest code accepted as an extension
	// datatype: every code from it up to 255 that is not one of the named
	// constants above is an unnamed extension.
	datatypeFirstExtension Datatype = 1
)

var datatypeNames = map[Datatype]string{
	DatatypeNull:       "null",
	DatatypeString:     "string",
	DatatypeInteger:    "integer",
	DatatypeFloat:      "float",
	DatatypeGUID:       "guid",
	DatatypeTimestamp:  "timestamp",
	DatatypeURL:        "url",
	DatatypeByteString: "bytestring",
	DatatypeBoolean:    "boolean",
}

var datatypeByName = func() map[string]Datatype {
	m := make(map[string]Datatype, len(datatypeNames))
	for code, name := range datatypeNames {
		m[name] = code
	}
	return m
}()

// Name renders d, falling back to "ext<N>" for extension codes 1-255 that
// carry no registered name.
func (d Datatype) Name() string {
	if name, ok := datatypeNames[d]; ok {
		return name
	}
	if d >= datatypeFirstExtension {
		return fmt.Sprintf("ext%d", uint8(d))
	}
	return fmt.Sprintf("invalid(%d)", uint8(d))
}

func (d Datatype) String() string { return d.Name() }

// Valid reports whether d is one of the named datatypes or a code in the
// accepted extension range.
func (d Datatype) Valid() bool {
	if _, ok := datatypeNames[d]; ok {
		return true
	}
	return d >= datatypeFirstExtension
}

// DatatypeByName resolves a name to its enum value, accepting both the
// named set and the synthetic "extNN" spelling produced by Name.
func DatatypeByName(name string) (Datatype, bool) {
	if d, ok := datatypeByName[name]; ok {
		return d, true
	}
	var n uint8
	if _, err := fmt.Sscanf(name, "ext%d", &n); err == nil {
		d := Datatype(n)
		if d.Valid() {
			return d, true
		}
	}
	return DatatypeNull, false
}
