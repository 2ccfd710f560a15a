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

// Package cursor implements the Cursor Codec (C8): freeze/thaw of an
// iterator's three independent slices (set, position, state) into the
// stable textual grammar of spec.md §4.8, so a read request that soft-
// times-out can hand its partial position back to the caller as a plain
// string and resume from it later, possibly in another process.
//
// The three slices are /-separated in the fixed order set/position/state.
// The set slice is exactly what an Iterator's own Freeze(FreezeFlags{Set:
// true}, ...) produces — variant-tagged, recursively composable for and:/
// or: — and is the only slice Thaw needs to parse structurally, since it
// alone carries the tree shape. Position and state are plain decimal
// numbers owned by the caller (normally a Read-Set Context): Thaw replays
// position by driving the freshly-rebuilt tree through that many Next
// calls, rather than reaching into each variant's private cursor fields.
// That keeps the codec decoupled from every iterator variant's internal
// layout, at the cost of a replay pass instead of O(1) direct seek — an
// acceptable trade given frozen cursors are the rare, cold path.
package cursor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// State is the decimal-encoded "state" slice: a snapshot of an iterator's
// statistics at freeze time, carried for display/debugging (e.g. the
// admin surface's /debug/cursor endpoint) and cheaply recomputed rather
// than threaded back into the rebuilt iterator, since Statistics is
// idempotent and inexpensive relative to a cross-process resume.
type State struct {
	CheckCost, NextCost, FindCost, N int64
	NIsExact, Sorted                bool
}

func encodeState(s State) string {
	return fmt.Sprintf("%d,%d,%d,%d,%s,%s",
		s.CheckCost, s.NextCost, s.FindCost, s.N, boolTok(s.NIsExact), boolTok(s.Sorted))
}

func decodeState(s string) (State, error) {
	var out State
	if s == "" {
		return out, nil
	}
	fields := strings.Split(s, ",")
	if len(fields) != 6 {
		return out, fmt.Errorf("cursor: state slice %q: want 6 fields", s)
	}
	var err error
	if out.CheckCost, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return out, fmt.Errorf("cursor: state slice %q: check-cost: %w", s, err)
	}
	if out.NextCost, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return out, fmt.Errorf("cursor: state slice %q: next-cost: %w", s, err)
	}
	if out.FindCost, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return out, fmt.Errorf("cursor: state slice %q: find-cost: %w", s, err)
	}
	if out.N, err = strconv.ParseInt(fields[3], 10, 64); err != nil {
		return out, fmt.Errorf("cursor: state slice %q: n: %w", s, err)
	}
	out.NIsExact = fields[4] == "1"
	out.Sorted = fields[5] == "1"
	return out, nil
}

func boolTok(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func stateFromStats(st iter.Stats) State {
	return State{CheckCost: st.CheckCost, NextCost: st.NextCost, FindCost: st.FindCost,
		N: st.N, NIsExact: st.NIsExact, Sorted: st.Sorted}
}

// Freeze renders it's set slice plus the caller-supplied position (number
// of successful Next calls already delivered from it) and its current
// Stats into the fixed set/position/state cursor grammar.
func Freeze(it iter.Iterator, position int64) (string, error) {
	var buf iter.Buffer
	if err := it.Freeze(iter.FreezeFlags{Set: true}, &buf); err != nil {
		return "", err
	}
	state := encodeState(stateFromStats(it.Stats()))
	return buf.String() + "/" + strconv.FormatInt(position, 10) + "/" + state, nil
}

// FreezeMasquerade is Freeze, but mask (when non-empty) replaces the
// human-visible portion of the set slice: the real set slice is still
// carried in a side channel Thaw recovers from, preserving spec.md §4.8's
// requirement that the true representation survive even though the
// masquerade string is what a user-facing cursor shows. low/high are
// injected as "[low-high]" at mask's first "::", per spec.
func FreezeMasquerade(it iter.Iterator, position int64, mask string, low, high id.ID) (string, error) {
	full, err := Freeze(it, position)
	if err != nil {
		return "", err
	}
	if mask == "" {
		return full, nil
	}
	setSlice, rest, ok := strings.Cut(full, "/")
	if !ok {
		setSlice, rest = full, ""
	}
	bracket := fmt.Sprintf("[%s-%s]", low, high)
	visible := mask
	if i := strings.Index(mask, "::"); i >= 0 {
		visible = mask[:i+2] + bracket + mask[i+2:]
	} else {
		visible = mask + bracket
	}
	return visible + maskSeparator + setSlice + "/" + rest, nil
}

// maskSeparator joins a masquerade's visible text to its hidden real set
// slice. None of the grammar's tokens (variant names, hex IDs, decimal
// numbers, ':' ',' ';') ever produce this byte, so splitting on first
// occurrence is unambiguous.
const maskSeparator = "\x00"

// Thaw parses a frozen cursor back into a live iterator (in "thaw mode":
// built directly from the recorded variant tree via the New* constructors,
// never through BuildAnd/BuildOr's become_small_set), plus the position it
// should replay to and its recorded State for display. An OR node is
// rebuilt with iter.NewOr, so its empty, single-child and Null-child
// rewrites do apply; an OR frozen from a tree NewOr built has none of
// those shapes, so they leave it unchanged.
//
// If a subiterator's original has since been substituted (store-driven
// compaction swapped in an equivalent representation), callers should
// re-clone that subtree from store.IteratorRefreshPointer before relying
// on it for further execution; Thaw itself has no store handle to do that
// substitution check on your behalf.
func Thaw(backend iter.Backend, frozen string) (it iter.Iterator, position int64, state State, err error) {
	setSlice, rest, ok := strings.Cut(frozen, "/")
	if !ok {
		return nil, 0, State{}, fmt.Errorf("cursor %q: missing position/state slices", frozen)
	}
	if i := strings.Index(setSlice, maskSeparator); i >= 0 {
		setSlice = setSlice[i+len(maskSeparator):]
	}
	positionStr, stateStr, ok := strings.Cut(rest, "/")
	if !ok {
		positionStr, stateStr = rest, ""
	}

	p := &parser{s: setSlice}
	it, err = p.parseNode(backend)
	if err != nil {
		return nil, 0, State{}, err
	}
	if !p.atEnd() {
		return nil, 0, State{}, fmt.Errorf("cursor %q: trailing garbage %q in set slice", frozen, p.s[p.i:])
	}

	position, err = strconv.ParseInt(positionStr, 10, 64)
	if err != nil {
		return nil, 0, State{}, fmt.Errorf("cursor %q: position: %w", frozen, err)
	}
	state, err = decodeState(stateStr)
	if err != nil {
		return nil, 0, State{}, err
	}

	budget := pdb.NewBudget(1 << 30)
	for i := int64(0); i < position; i++ {
		if _, outcome, nextErr := it.Next(budget); outcome != iter.Done {
			if nextErr != nil {
				return nil, 0, State{}, fmt.Errorf("cursor %q: replay position %d: %w", frozen, position, nextErr)
			}
			break
		}
	}
	return it, position, state, nil
}
