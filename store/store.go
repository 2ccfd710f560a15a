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

// Package store declares the Primitive Store contract (spec.md §6): the
// on-disk tile/partition layer the core treats as an external collaborator.
// pdb/store/memstore is the in-memory reference implementation used by
// tests and the single-process worker binary.
package store

import (
	"github.com/erigontech/pdb/cmp"
	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// Store is the full Primitive Store contract: id.Primitive reads, the five
// index families (VIP fan-in, word, prefix, hash, bin), and the
// maintenance operations the Write Engine needs (checkpoint/rollback,
// transactional capability probe, iterator-pointer refresh). It embeds
// iter.Backend and cmp.Backend so any Store can be handed directly to
// iterator/comparator constructors without an adapter shim.
type Store interface {
	iter.Backend
	cmp.Backend

	// PrimitiveRead resolves id to its primitive. ok is false if id is
	// unknown (deleted, never written, or out of range).
	PrimitiveRead(id id.ID) (p id.Primitive, ok bool)

	// PrimitiveByGUID resolves guid to its primitive, preferring the
	// newest generation sharing guid's dbid/local prefix.
	PrimitiveByGUID(guid id.GUID) (p id.Primitive, ok bool)

	// IDFromGUID and GUIDFromID convert between the two addressing
	// schemes.
	IDFromGUID(guid id.GUID) (id.ID, bool)
	GUIDFromID(pid id.ID) (id.GUID, bool)

	// LinkageGet and HasLinkage read one of a primitive's four endpoint
	// linkages.
	LinkageGet(p id.Primitive, which id.Linkage) (id.GUID, bool)
	HasLinkage(p id.Primitive, which id.Linkage) bool

	// HashIterator, WordIterator and PrefixIterator wrap the
	// corresponding iter.Backend lookup in a ready-to-use iter.Iterator,
	// matching spec.md §6's external-interface naming directly (the core
	// otherwise only sees the lower-level *Lookup methods via
	// iter.Backend).
	HashIterator(kind iter.HashKind, key []byte, dir id.Direction) (iter.Iterator, error)
	WordIterator(word string, dir id.Direction) (iter.Iterator, error)
	PrefixIterator(prefix string, dir id.Direction) (iter.Iterator, error)

	// BinToIterator builds a Bin iterator over the bins whose strings fall
	// in [low, high) (in lexical-string terms). errorIfNull controls whether
	// an empty range is an error or a silently-empty iterator.
	BinToIterator(low, high string, forward bool, errorIfNull bool) (iter.Iterator, error)

	// WritePrimitive assigns p a fresh ID (p.ID is ignored on input) and
	// durably appends it, maintaining every index. It is the only call that
	// adds primitives; CheckpointRollback is the only one that removes them.
	WritePrimitive(p id.Primitive) (id.ID, error)

	// MintGUID allocates a fresh GUID for a new logical record, for the
	// Write Engine's commit phase to assign to a node it decides to
	// create rather than bind to an existing primitive.
	MintGUID() id.GUID

	// CheckpointWrite durably persists everything up to the current
	// primitive count. sync requests fsync-level durability; block waits
	// for completion rather than scheduling it.
	CheckpointWrite(sync, block bool) error

	// CheckpointRollback discards every primitive written after horizon
	// (a primitive count previously returned by PrimitiveN), used by the
	// Write Engine's rollback-on-failure path.
	CheckpointRollback(horizon int64) error

	// CheckpointOptional and CheckpointUrgent request a checkpoint on the
	// idle path (best-effort) or immediately (used after a successful
	// commit and after anything touching durability, respectively).
	CheckpointOptional()
	CheckpointUrgent()

	// Transactional reports whether WritePrimitive/CheckpointRollback are
	// backed by an atomic transaction (true) or require an explicit
	// checkpoint request to recover from a partial write (false).
	Transactional() bool

	// IteratorRefreshPointer reports whether it's underlying "original"
	// has been substituted since it was built (e.g. become_small_set
	// replaced a composite with a Fixed) and, if so, returns the
	// refreshed iterator. ok is false ("already") when nothing changed.
	IteratorRefreshPointer(it iter.Iterator) (refreshed iter.Iterator, ok bool, err error)
}
