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

package memstore

import (
	"sort"
	"strings"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// PrimitiveRead implements store.Store.
func (s *Store) PrimitiveRead(pid id.ID) (id.Primitive, bool) {
	if cached, ok := s.cache.Get(pid); ok {
		return cached, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if pid < 1 || int(pid) > len(s.primitives) {
		return id.Primitive{}, false
	}
	p := s.primitives[pid-1]
	s.cache.Add(pid, p)
	return p, true
}

// PrimitiveByGUID implements store.Store, preferring the newest generation
// sharing guid's dbid/local prefix.
func (s *Store) PrimitiveByGUID(guid id.GUID) (id.Primitive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best, bestID := id.Primitive{}, id.NONE
	if pid, ok := s.byGUID[guid]; ok {
		bestID = pid
	}
	for g, pid := range s.byGUID {
		if g.SameRecord(guid) && (bestID == id.NONE || g.Newer(s.primitives[bestID-1].GUID)) {
			bestID = pid
		}
	}
	if bestID == id.NONE {
		return id.Primitive{}, false
	}
	best = s.primitives[bestID-1]
	return best, true
}

func (s *Store) IDFromGUID(guid id.GUID) (id.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pid, ok := s.byGUID[guid]
	return pid, ok
}

func (s *Store) GUIDFromID(pid id.ID) (id.GUID, bool) {
	p, ok := s.PrimitiveRead(pid)
	if !ok {
		return id.Null, false
	}
	return p.GUID, true
}

func (s *Store) LinkageGet(p id.Primitive, which id.Linkage) (id.GUID, bool) {
	return p.Linkage(which)
}

func (s *Store) HasLinkage(p id.Primitive, which id.Linkage) bool {
	return p.HasLinkage(which)
}

// PrimitiveN implements iter.Backend.
func (s *Store) PrimitiveN() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.primitives))
}

// VIPFanIn implements iter.Backend.
func (s *Store) VIPFanIn(which id.Linkage, endpoint id.GUID, hasType bool, typeguid id.GUID) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.vip[vipKey{which: which, endpoint: endpoint, typeguid: typeguid, hasType: hasType}]
	return append([]id.ID(nil), ids...), nil
}

// WordLookup implements iter.Backend.
func (s *Store) WordLookup(word string) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.ID(nil), s.wordIdx[strings.ToLower(word)]...), nil
}

// PrefixLookup implements iter.Backend, via a linear scan of the word
// index's distinct keys. Acceptable for the reference store's expected
// scale (spec.md §1 treats the real tile/index layer as out of scope); a
// production backend would use a trie or sorted key range instead.
func (s *Store) PrefixLookup(prefix string) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix = strings.ToLower(prefix)
	var out []id.ID
	for w, ids := range s.wordIdx {
		if strings.HasPrefix(w, prefix) {
			for _, v := range ids {
				out = appendSorted(out, v)
			}
		}
	}
	return out, nil
}

// HashLookup implements iter.Backend.
func (s *Store) HashLookup(kind iter.HashKind, key []byte) ([]id.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hk := hashKey{kind: kind, hex: sprintHex(valueHash(string(key)))}
	return append([]id.ID(nil), s.hashIdx[hk]...), nil
}

func sprintHex(h uint64) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hextable[h&0xf]
		h >>= 4
	}
	return string(buf)
}

// BinContents implements iter.Backend.
func (s *Store) BinContents(bin int) ([]id.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBinStrings()
	if bin < 0 || bin >= len(s.binStrings) {
		return nil, nil
	}
	return append([]id.ID(nil), s.binOf[s.binStrings[bin]]...), nil
}

// BinLookup implements cmp.Backend: the index of the first known bin
// string >= s (an insertion point, valid even when s itself was never
// written).
func (s *Store) BinLookup(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBinStrings()
	return sort.SearchStrings(s.binStrings, str), nil
}

// BinValue implements cmp.Backend.
func (s *Store) BinValue(bin int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBinStrings()
	if bin < 0 || bin >= len(s.binStrings) {
		return "", nil
	}
	return s.binStrings[bin], nil
}

// BinBounds implements cmp.Backend.
func (s *Store) BinBounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureBinStrings()
	if len(s.binStrings) == 0 {
		return 0, 0
	}
	return 0, len(s.binStrings) - 1
}

func (s *Store) HashIterator(kind iter.HashKind, key []byte, dir id.Direction) (iter.Iterator, error) {
	return iter.NewHash(s, kind, key, dir), nil
}

func (s *Store) WordIterator(word string, dir id.Direction) (iter.Iterator, error) {
	return iter.NewWord(s, word, dir), nil
}

func (s *Store) PrefixIterator(prefix string, dir id.Direction) (iter.Iterator, error) {
	return iter.NewPrefix(s, prefix, dir), nil
}

// BinToIterator implements store.Store. high is excluded (half-open), so the
// bin at high's insertion point - the first bin whose string is >= high,
// whether or not it matches exactly - never appears in the walk.
func (s *Store) BinToIterator(low, high string, forward bool, errorIfNull bool) (iter.Iterator, error) {
	loBin, _ := s.BinLookup(low)
	hiBin, _ := s.BinLookup(high)
	if hiBin < loBin {
		loBin, hiBin = hiBin, loBin
	}
	bins := make([]int, 0, hiBin-loBin)
	for b := loBin; b < hiBin; b++ {
		bins = append(bins, b)
	}
	dir := id.Forward
	if !forward {
		dir = id.Backward
		for i, j := 0, len(bins)-1; i < j; i, j = i+1, j-1 {
			bins[i], bins[j] = bins[j], bins[i]
		}
	}
	if errorIfNull && len(bins) == 0 {
		return nil, errEmptyBinRange(low, high)
	}
	return iter.NewBin(s, bins, dir), nil
}
