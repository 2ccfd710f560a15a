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

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// indexed is the common shape of VIP/Word/Prefix/Hash/ISA: a sorted ID
// slice fetched once (lazily) from Backend, wrapped in the shared
// sortedNext/Find/Check machinery. Only Variant(), the lazy fetch, and the
// cursor-grammar token differ between the five.
type indexed struct {
	variant Variant
	token   string // grammar payload after "variant:", reconstructible on Freeze
	fetch   func() ([]id.ID, error)
	fetched bool
	fetchErr error
	ids     sliceSource
	dir     id.Direction
	cur     cursor
	sum     *PSum
}

func newIndexed(variant Variant, token string, dir id.Direction, fetch func() ([]id.ID, error)) *indexed {
	return &indexed{variant: variant, token: token, fetch: fetch, dir: dir}
}

func (x *indexed) ensure(b *pdb.Budget) (Outcome, error) {
	if x.fetched {
		if x.fetchErr != nil {
			return End, x.fetchErr
		}
		return Done, nil
	}
	if !b.Charge(8) {
		return More, nil
	}
	ids, err := x.fetch()
	x.fetched = true
	if err != nil {
		x.fetchErr = err
		return End, err
	}
	x.ids = sliceSource(ids)
	x.cur = newCursor(x.dir, len(ids))
	return Done, nil
}

func (x *indexed) Variant() Variant { return x.variant }

func (x *indexed) Statistics(b *pdb.Budget) (Outcome, error) { return x.ensure(b) }

func (x *indexed) Stats() Stats {
	n := int64(len(x.ids))
	if !x.fetched {
		n = -1
	}
	return Stats{CheckCost: 2, NextCost: 2, FindCost: 2, N: n, NIsExact: x.fetched, Sorted: true}
}

func (x *indexed) Next(b *pdb.Budget) (id.ID, Outcome, error) {
	if o, err := x.ensure(b); o != Done {
		return id.NONE, o, err
	}
	return sortedNext(x.ids, x.dir, &x.cur, b)
}

func (x *indexed) Find(target id.ID, b *pdb.Budget) (id.ID, Outcome, error) {
	if o, err := x.ensure(b); o != Done {
		return id.NONE, o, err
	}
	return sortedFind(x.ids, x.dir, &x.cur, target, b)
}

func (x *indexed) Check(target id.ID, b *pdb.Budget) (Outcome, error) {
	if o, err := x.ensure(b); o != Done {
		if o == End {
			return No, err
		}
		return o, err
	}
	return sortedCheck(x.ids, target, b)
}

func (x *indexed) Clone() Iterator {
	c := &indexed{variant: x.variant, token: x.token, fetch: x.fetch, sum: x.sum, dir: x.dir}
	if x.fetched {
		c.fetched = true
		c.ids = x.ids
		c.cur = newCursor(x.dir, len(x.ids))
	}
	return c
}

func (x *indexed) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString(string(x.variant))
		buf.WriteByte(':')
		if x.dir == id.Backward {
			buf.WriteByte('b')
		} else {
			buf.WriteByte('f')
		}
		buf.WriteByte(':')
		buf.WriteString(x.token)
	}
	if flags.Position {
		buf.WriteByte('/')
		buf.WriteString(strconv.Itoa(x.cur.pos))
	}
	return nil
}

func (x *indexed) Reset() {
	x.cur = newCursor(x.dir, len(x.ids))
}

func (x *indexed) PrimitiveSummary() (PSum, bool) {
	if x.sum == nil {
		return PSum{}, false
	}
	return *x.sum, true
}

func (x *indexed) Beyond(value id.ID) bool {
	if !x.fetched {
		return false
	}
	return sortedBeyond(x.ids, x.dir, &x.cur, value)
}

func (x *indexed) RangeEstimate() Range {
	if !x.fetched {
		return Range{NExact: -1, NMax: 1 << 30}
	}
	return sortedRangeEstimate(x.ids)
}

func (x *indexed) Restrict(sum PSum) (Iterator, Outcome, error) {
	if x.sum != nil && x.sum.Equal(sum) {
		return x, Already, nil
	}
	return x, Already, nil
}

func (x *indexed) Direction() id.Direction { return x.dir }

// NewVIP builds the fan-in iterator for linkage `which` pointing at
// endpoint, optionally pre-intersected with typeguid (spec.md §3 "vip").
func NewVIP(backend Backend, which id.Linkage, endpoint id.GUID, hasType bool, typeguid id.GUID, dir id.Direction) Iterator {
	token := fmt.Sprintf("%s,%s", which, endpoint)
	if hasType {
		token += "," + typeguid.String()
	}
	x := newIndexed(VariantVIP, token, dir, func() ([]id.ID, error) {
		return backend.VIPFanIn(which, endpoint, hasType, typeguid)
	})
	x.sum = &PSum{Linkage: which, Endpoint: endpoint, HasType: hasType, Typeguid: typeguid}
	return x
}

// NewWord builds a word-index iterator.
func NewWord(backend Backend, word string, dir id.Direction) Iterator {
	return newIndexed(VariantWord, word, dir, func() ([]id.ID, error) { return backend.WordLookup(word) })
}

// NewPrefix builds a prefix-index iterator.
func NewPrefix(backend Backend, prefix string, dir id.Direction) Iterator {
	return newIndexed(VariantPrefix, prefix, dir, func() ([]id.ID, error) { return backend.PrefixLookup(prefix) })
}

// NewHash builds a value/key hash-index iterator.
func NewHash(backend Backend, kind HashKind, key []byte, dir id.Direction) Iterator {
	token := fmt.Sprintf("%d:%x", kind, key)
	return newIndexed(VariantHash, token, dir, func() ([]id.ID, error) { return backend.HashLookup(kind, key) })
}

// NewIsa wraps an arbitrary already-computed sorted ID slice as a "derived"
// iterator (spec.md §3 "isa"): used when the read engine materialises a
// subconstraint's answer set once and wants to replay it without
// re-deriving it (e.g. a type's instance set computed off the VIP for
// `typeguid`).
func NewIsa(ids []id.ID, dir id.Direction) Iterator {
	sorted := append([]id.ID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return newIndexed(VariantIsa, isaToken(sorted), dir, func() ([]id.ID, error) {
		return sorted, nil
	})
}

// isaToken renders the ID set as the comma-separated hex list the cursor
// codec needs to thaw an isa iterator without a backend round-trip: unlike
// word/prefix/hash/vip, an isa iterator's membership was computed once by
// its caller and has no index to re-derive it from.
func isaToken(ids []id.ID) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = strconv.FormatUint(uint64(v), 16)
	}
	return strings.Join(parts, ",")
}

func parseIsaToken(token string) ([]id.ID, error) {
	if token == "" {
		return nil, nil
	}
	fields := strings.Split(token, ",")
	ids := make([]id.ID, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("isa cursor %q: %w", token, err)
		}
		ids[i] = id.ID(v)
	}
	return ids, nil
}

// ThawIndexed reconstructs a vip/word/prefix/hash/isa iterator from its
// frozen "set" slice ("variant:dir:token", with the leading "variant:"
// already consumed by the dispatcher). word/prefix/hash/vip re-run their
// lookup against backend; isa replays its literal member list, which was
// embedded directly in its token at Freeze time.
func ThawIndexed(backend Backend, variant Variant, setSlice string) (Iterator, error) {
	parts := strings.SplitN(setSlice, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%s cursor %q: missing direction", variant, setSlice)
	}
	dir := id.Forward
	if parts[0] == "b" {
		dir = id.Backward
	}
	token := parts[1]

	switch variant {
	case VariantWord:
		return NewWord(backend, token, dir), nil
	case VariantPrefix:
		return NewPrefix(backend, token, dir), nil
	case VariantHash:
		kindStr, hexKey, ok := strings.Cut(token, ":")
		if !ok {
			return nil, fmt.Errorf("hash cursor %q: missing key", token)
		}
		kindN, err := strconv.Atoi(kindStr)
		if err != nil {
			return nil, fmt.Errorf("hash cursor %q: kind: %w", token, err)
		}
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return nil, fmt.Errorf("hash cursor %q: key: %w", token, err)
		}
		return NewHash(backend, HashKind(kindN), key, dir), nil
	case VariantVIP:
		fields := strings.Split(token, ",")
		if len(fields) < 2 {
			return nil, fmt.Errorf("vip cursor %q: want linkage,endpoint[,typeguid]", token)
		}
		which, err := id.ParseLinkage(fields[0])
		if err != nil {
			return nil, fmt.Errorf("vip cursor %q: %w", token, err)
		}
		endpoint, err := id.ParseGUID(fields[1])
		if err != nil {
			return nil, fmt.Errorf("vip cursor %q: endpoint: %w", token, err)
		}
		hasType := len(fields) > 2
		var typeguid id.GUID
		if hasType {
			typeguid, err = id.ParseGUID(fields[2])
			if err != nil {
				return nil, fmt.Errorf("vip cursor %q: typeguid: %w", token, err)
			}
		}
		return NewVIP(backend, which, endpoint, hasType, typeguid, dir), nil
	case VariantIsa:
		ids, err := parseIsaToken(token)
		if err != nil {
			return nil, err
		}
		return NewIsa(ids, dir), nil
	default:
		return nil, fmt.Errorf("ThawIndexed: unsupported variant %q", variant)
	}
}
