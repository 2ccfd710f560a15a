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
	"time"

	"github.com/pkg/errors"
)

// Linkage names one of a primitive's four typed endpoint slots, plus the
// two parent-relationship modes a constraint node may declare against its
// parent's primitive.
type Linkage int

const (
	LinkageLeft Linkage = iota
	LinkageRight
	LinkageTypeguid
	LinkageScope
)

func (l Linkage) String() string {
	switch l {
	case LinkageLeft:
		return "left"
	case LinkageRight:
		return "right"
	case LinkageTypeguid:
		return "typeguid"
	case LinkageScope:
		return "scope"
	default:
		return "invalid"
	}
}

// ParseLinkage is the inverse of Linkage.String, used by the cursor codec
// to recover a vip iterator's endpoint linkage from its frozen token.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "left":
		return LinkageLeft, nil
	case "right":
		return LinkageRight, nil
	case "typeguid":
		return LinkageTypeguid, nil
	case "scope":
		return LinkageScope, nil
	default:
		return 0, errors.Errorf("invalid linkage %q", s)
	}
}

// Primitive is the immutable record carried by the store: an id, its GUID,
// four optional linkage GUIDs, an optional name/value pair with its
// datatype, a timestamp and liveness flags.
//
// Naming:
//
//	Left/Right   - the two directed endpoints of an edge-shaped primitive
//	Typeguid     - the GUID of this primitive's type record
//	Scope        - the GUID of the namespace/owner this primitive belongs to
type Primitive struct {
	ID   ID
	GUID GUID

	Left     GUID
	Right    GUID
	Typeguid GUID
	Scope    GUID

	Name  string
	Value string

	ValueDatatype Datatype

	Timestamp time.Time

	Live     bool
	Archival bool
}

// Linkage returns the GUID at the named endpoint and whether it is present
// (non-null).
func (p *Primitive) Linkage(which Linkage) (GUID, bool) {
	var g GUID
	switch which {
	case LinkageLeft:
		g = p.Left
	case LinkageRight:
		g = p.Right
	case LinkageTypeguid:
		g = p.Typeguid
	case LinkageScope:
		g = p.Scope
	}
	return g, !g.IsNull()
}

// HasLinkage reports whether the named endpoint is present.
func (p *Primitive) HasLinkage(which Linkage) bool {
	_, ok := p.Linkage(which)
	return ok
}

// SetLinkage assigns the GUID at the named endpoint.
func (p *Primitive) SetLinkage(which Linkage, g GUID) {
	switch which {
	case LinkageLeft:
		p.Left = g
	case LinkageRight:
		p.Right = g
	case LinkageTypeguid:
		p.Typeguid = g
	case LinkageScope:
		p.Scope = g
	}
}
