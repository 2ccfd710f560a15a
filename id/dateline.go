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
	"github.com/tidwall/btree"
)

// Dateline is a read-consistency token: an ordered mapping from dbid to the
// last-observed local serial for that dbid. Backed by tidwall/btree so
// insert/iterate stay sorted without a resort on every read.
type Dateline struct {
	m *btree.Map[uint64, uint64]
}

// NewDateline returns an empty dateline.
func NewDateline() *Dateline {
	return &Dateline{m: btree.NewMap[uint64, uint64](32)}
}

// Insert records that serial was observed for dbid, keeping only the
// maximum serial seen so far for that dbid.
func (d *Dateline) Insert(dbid, serial uint64) {
	if cur, ok := d.m.Get(dbid); !ok || serial > cur {
		d.m.Set(dbid, serial)
	}
}

// Serial returns the last-observed serial for dbid, or 0 if unobserved.
func (d *Dateline) Serial(dbid uint64) uint64 {
	v, _ := d.m.Get(dbid)
	return v
}

// Len reports the number of distinct dbids recorded.
func (d *Dateline) Len() int { return d.m.Len() }

// Pair is one (dbid, serial) entry, yielded in ascending dbid order.
type Pair struct {
	DBID   uint64
	Serial uint64
}

// Pairs returns every recorded (dbid, serial) in ascending dbid order.
func (d *Dateline) Pairs() []Pair {
	out := make([]Pair, 0, d.m.Len())
	d.m.Scan(func(dbid, serial uint64) bool {
		out = append(out, Pair{DBID: dbid, Serial: serial})
		return true
	})
	return out
}

// Covers reports whether d has, for every dbid recorded in o, a serial at
// least as large as o's - i.e. a read taken at d would see everything a
// read taken at o would see.
func (d *Dateline) Covers(o *Dateline) bool {
	covers := true
	o.m.Scan(func(dbid, serial uint64) bool {
		if d.Serial(dbid) < serial {
			covers = false
			return false
		}
		return true
	})
	return covers
}

// Freeze renders d in the wire format from spec.md §6:
// "<count>:<dbid>.<serial>[,<dbid>.<serial>...]" with pairs in strictly
// ascending dbid order, count the number of pairs.
func (d *Dateline) Freeze() string {
	pairs := d.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%x.%x", p.DBID, p.Serial)
	}
	return fmt.Sprintf("%d:%s", len(pairs), strings.Join(parts, ","))
}

// ThawDateline parses the wire format produced by Freeze. A malformed
// dateline is returned as a plain error that carries no category; callers
// in the cursor/request decode path attach pdb.Category as appropriate.
func ThawDateline(s string) (*Dateline, error) {
	d := NewDateline()
	if s == "" {
		return d, nil
	}
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return nil, errors.Errorf("dateline %q: missing count", s)
	}
	count, err := strconv.Atoi(s[:colon])
	if err != nil {
		return nil, errors.Wrapf(err, "dateline %q: count", s)
	}
	rest := s[colon+1:]
	if count == 0 {
		if rest != "" {
			return nil, errors.Errorf("dateline %q: count 0 but pairs present", s)
		}
		return d, nil
	}
	pairs := strings.Split(rest, ",")
	if len(pairs) != count {
		return nil, errors.Errorf("dateline %q: count %d but %d pairs", s, count, len(pairs))
	}
	var lastDBID uint64
	haveLast := false
	for _, p := range pairs {
		dot := strings.IndexByte(p, '.')
		if dot < 0 {
			return nil, errors.Errorf("dateline %q: pair %q missing '.'", s, p)
		}
		dbid, err := strconv.ParseUint(p[:dot], 16, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "dateline %q: dbid", s)
		}
		serial, err := strconv.ParseUint(p[dot+1:], 16, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "dateline %q: serial", s)
		}
		if haveLast && dbid <= lastDBID {
			return nil, errors.Errorf("dateline %q: dbid out of order", s)
		}
		lastDBID, haveLast = dbid, true
		d.Insert(dbid, serial)
	}
	return d, nil
}
