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

// Package memstore is the in-memory reference implementation of the
// Primitive Store contract (pdb/store), used by tests and by the worker
// binary, which always runs on it.
package memstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

type vipKey struct {
	which    id.Linkage
	endpoint id.GUID
	typeguid id.GUID
	hasType  bool
}

type hashKey struct {
	kind iter.HashKind
	hex  string
}

// Store is the in-memory Primitive Store. Zero value is not usable; use
// New.
type Store struct {
	mu sync.RWMutex

	primitives []id.Primitive // index i holds the primitive with ID i+1
	byGUID     map[id.GUID]id.ID

	wordIdx   map[string][]id.ID
	hashIdx   map[hashKey][]id.ID
	vip       map[vipKey][]id.ID

	binTree    *btree.BTreeG[string]
	binDirty   bool
	binStrings []string
	binOf      map[string][]id.ID

	cache *lru.Cache[id.ID, id.Primitive]

	transactional bool
	horizon       int64
}

// New returns an empty store. transactional controls what Transactional()
// reports (memstore honours either mode structurally identically, since an
// in-memory rollback is always exact; the flag exists so tests can exercise
// both of the Write Engine's commit-phase branches).
func New(transactional bool) *Store {
	cache, _ := lru.New[id.ID, id.Primitive](4096)
	return &Store{
		byGUID:        make(map[id.GUID]id.ID),
		wordIdx:       make(map[string][]id.ID),
		hashIdx:       make(map[hashKey][]id.ID),
		vip:           make(map[vipKey][]id.ID),
		binTree:       btree.NewG(32, func(a, b string) bool { return a < b }),
		binOf:         make(map[string][]id.ID),
		cache:         cache,
		transactional: transactional,
	}
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// WritePrimitive implements store.Store.
func (s *Store) WritePrimitive(p id.Primitive) (id.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(p)
}

func (s *Store) writeLocked(p id.Primitive) (id.ID, error) {
	newID := id.ID(len(s.primitives) + 1)
	p.ID = newID
	s.primitives = append(s.primitives, p)
	if !p.GUID.IsNull() {
		s.byGUID[p.GUID] = newID
	}
	for _, w := range tokens(p.Name) {
		s.wordIdx[w] = appendSorted(s.wordIdx[w], newID)
	}
	for _, w := range tokens(p.Value) {
		s.wordIdx[w] = appendSorted(s.wordIdx[w], newID)
	}
	if p.Value != "" {
		hk := hashKey{kind: iter.HashValue, hex: sprintHex(valueHash(p.Value))}
		s.hashIdx[hk] = appendSorted(s.hashIdx[hk], newID)
		s.addBinString(p.Value, newID)
	}
	if p.Name != "" {
		s.addBinString(p.Name, newID)
	}
	for _, l := range []id.Linkage{id.LinkageLeft, id.LinkageRight, id.LinkageTypeguid, id.LinkageScope} {
		g, ok := p.Linkage(l)
		if !ok {
			continue
		}
		s.vip[vipKey{which: l, endpoint: g}] = appendSorted(s.vip[vipKey{which: l, endpoint: g}], newID)
		if !p.Typeguid.IsNull() {
			s.vip[vipKey{which: l, endpoint: g, typeguid: p.Typeguid, hasType: true}] = appendSorted(
				s.vip[vipKey{which: l, endpoint: g, typeguid: p.Typeguid, hasType: true}], newID)
		}
	}
	s.cache.Add(newID, p)
	return newID, nil
}

func appendSorted(ids []id.ID, v id.ID) []id.ID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= v })
	if i < len(ids) && ids[i] == v {
		return ids
	}
	ids = append(ids, id.NONE)
	copy(ids[i+1:], ids[i:])
	ids[i] = v
	return ids
}

func (s *Store) addBinString(str string, pid id.ID) {
	if _, ok := s.binOf[str]; !ok {
		s.binTree.ReplaceOrInsert(str)
		s.binDirty = true
	}
	s.binOf[str] = appendSorted(s.binOf[str], pid)
}

func (s *Store) ensureBinStrings() {
	if !s.binDirty && s.binStrings != nil {
		return
	}
	s.binStrings = s.binStrings[:0]
	s.binTree.Ascend(func(v string) bool {
		s.binStrings = append(s.binStrings, v)
		return true
	})
	s.binDirty = false
}

// MintGUID allocates a fresh GUID for a new logical record, deriving
// dbid/local from a UUIDv4 so callers never have to hand-manage the
// identifier space themselves.
func (s *Store) MintGUID() id.GUID {
	u := uuid.New()
	hi := uint64(0)
	lo := uint64(0)
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(u[i])
	}
	return id.GUID{DBID: hi, Local: lo, Serial: 1}
}

func valueHash(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
