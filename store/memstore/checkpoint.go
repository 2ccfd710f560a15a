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
	"github.com/pkg/errors"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

func errEmptyBinRange(low, high string) error {
	return errors.Errorf("memstore: bin range [%q,%q) is empty", low, high)
}

// CheckpointWrite implements store.Store. In-memory state is already the
// durable copy, so this only records the new horizon; sync/block are
// accepted for interface fidelity and ignored.
func (s *Store) CheckpointWrite(sync, block bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizon = int64(len(s.primitives))
	return nil
}

// CheckpointRollback discards every primitive written after horizon,
// rebuilding every index from the retained prefix. This is the in-memory
// analogue of the on-disk tile layer's snapshot-rollback.
func (s *Store) CheckpointRollback(horizon int64) error {
	s.mu.Lock()
	if horizon < 0 || horizon > int64(len(s.primitives)) {
		s.mu.Unlock()
		return errors.Errorf("memstore: rollback horizon %d out of range [0,%d]", horizon, len(s.primitives))
	}
	kept := append([]id.Primitive(nil), s.primitives[:horizon]...)
	s.mu.Unlock()

	rebuilt := New(s.transactional)
	for _, p := range kept {
		if _, err := rebuilt.writeLocked(p); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primitives = rebuilt.primitives
	s.byGUID = rebuilt.byGUID
	s.wordIdx = rebuilt.wordIdx
	s.hashIdx = rebuilt.hashIdx
	s.vip = rebuilt.vip
	s.binTree = rebuilt.binTree
	s.binDirty = rebuilt.binDirty
	s.binStrings = rebuilt.binStrings
	s.binOf = rebuilt.binOf
	s.cache = rebuilt.cache
	s.horizon = rebuilt.horizon
	return nil
}

// CheckpointOptional and CheckpointUrgent implement store.Store. memstore
// has no background writer to schedule, so both are no-ops beyond
// recording a horizon the way CheckpointWrite does.
func (s *Store) CheckpointOptional() { _ = s.CheckpointWrite(false, false) }
func (s *Store) CheckpointUrgent()   { _ = s.CheckpointWrite(true, true) }

// Transactional implements store.Store.
func (s *Store) Transactional() bool { return s.transactional }

// IteratorRefreshPointer implements store.Store. memstore never substitutes
// an iterator's underlying original out from under a caller (there is no
// background compaction here), so every call reports "already".
func (s *Store) IteratorRefreshPointer(it iter.Iterator) (iter.Iterator, bool, error) {
	return it, false, nil
}
