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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// GUID is a globally unique identifier of three fields, 160 bits in all: a
// 64-bit database ID (dbid) that names the originating store partition, a
// 64-bit local record identity, and a 32-bit monotonic serial. Versions of
// a logical record share dbid and local and differ only in serial: the
// highest serial for a given (dbid, local) is the newest generation.
//
// Naming:
//
//	dbid   - which partition minted this GUID
//	local  - the record identity, stable across versions
//	serial - monotonically increasing per local; version discriminator
type GUID struct {
	DBID   uint64
	Local  uint64
	Serial uint32
}

// Null is the zero GUID, used as the "absent" sentinel for optional
// linkage fields.
var Null = GUID{}

// IsNull reports whether g is the absent sentinel.
func (g GUID) IsNull() bool { return g == Null }

// SameRecord reports whether g and o are versions of the same logical
// record (share dbid+local, may differ in serial).
func (g GUID) SameRecord(o GUID) bool { return g.DBID == o.DBID && g.Local == o.Local }

// Newer reports whether g is a later generation of the same record than o.
func (g GUID) Newer(o GUID) bool { return g.SameRecord(o) && g.Serial > o.Serial }

// String renders g in the readable dotted form "dbid.local.serial".
func (g GUID) String() string {
	if g.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%x.%x.%x", g.DBID, g.Local, g.Serial)
}

// ParseGUID decodes the dotted form produced by String. A malformed string
// is a SYNTAX-category condition at the caller (cursor/request decode), so
// ParseGUID itself returns a plain error and lets callers attach category.
func ParseGUID(s string) (GUID, error) {
	if s == "" || s == "null" {
		return Null, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Null, errors.Errorf("guid %q: want dbid.local.serial", s)
	}
	dbid, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return Null, errors.Wrapf(err, "guid %q: dbid", s)
	}
	local, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Null, errors.Wrapf(err, "guid %q: local", s)
	}
	serial, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil {
		return Null, errors.Wrapf(err, "guid %q: serial", s)
	}
	return GUID{DBID: dbid, Local: local, Serial: uint32(serial)}, nil
}
