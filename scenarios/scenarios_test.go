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

// Package scenarios exercises the literal end-to-end scenarios (S1-S5) and
// write laws (11-13) of spec.md §8 across the Read/Write Engines, the
// comparator plane and the ticket printer together, rather than against any
// one package in isolation. S6 (ticket ordering) is covered by package
// ticket's own tests.
package scenarios_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/cmp"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/cursor"
	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/read"
	"github.com/erigontech/pdb/store/memstore"
	"github.com/erigontech/pdb/ticket"
	"github.com/erigontech/pdb/write"
)

func drain(t *testing.T, it iter.Iterator) []id.ID {
	t.Helper()
	b := pdb.NewBudget(1 << 20)
	var out []id.ID
	for {
		v, o, err := it.Next(b)
		require.NoError(t, err)
		if o == iter.End {
			return out
		}
		require.Equal(t, iter.Done, o)
		out = append(out, v)
	}
}

// S1: datetime range iteration over bins 1999..2004 restricted to
// ["2000","2003") must yield exactly 2000, 2001, 2002 in order, and a
// cursor frozen after 2001 must resume at 2002.
func TestS1DatetimeRangeIteration(t *testing.T) {
	st := memstore.New(false)
	years := []string{"2002", "1999", "2004", "2000", "2003", "2001"}
	byValue := map[string]id.ID{}
	for _, y := range years {
		pid, err := st.WritePrimitive(id.Primitive{Value: y})
		require.NoError(t, err)
		byValue[y] = pid
	}

	d := cmp.NewDatetime()
	it, err := d.RangeIterator(st, "2000", "2003", id.Forward)
	require.NoError(t, err)

	ids := drain(t, it)
	require.Equal(t, []id.ID{byValue["2000"], byValue["2001"], byValue["2002"]}, ids)

	it2, err := d.RangeIterator(st, "2000", "2003", id.Forward)
	require.NoError(t, err)
	b := pdb.NewBudget(1 << 10)
	v, o, err := it2.Next(b)
	require.NoError(t, err)
	require.Equal(t, iter.Done, o)
	require.Equal(t, byValue["2000"], v)
	v, o, err = it2.Next(b)
	require.NoError(t, err)
	require.Equal(t, iter.Done, o)
	require.Equal(t, byValue["2001"], v)

	frozen, err := cursor.Freeze(it2, 2)
	require.NoError(t, err)
	thawed, pos, _, err := cursor.Thaw(st, frozen)
	require.NoError(t, err)
	require.Equal(t, int64(2), pos)
	v, o, err = thawed.Next(b)
	require.NoError(t, err)
	require.Equal(t, iter.Done, o)
	require.Equal(t, byValue["2002"], v, "a cursor resumed after 2001 must yield 2002 next")
}

// S2: or(fixed{7}, fixed{3}) forward yields 3, 7; backward yields 7, 3.
func TestS2OrOfTwoSingletons(t *testing.T) {
	forward := iter.NewOr([]iter.Iterator{
		iter.NewFixed([]id.ID{7}, id.Forward),
		iter.NewFixed([]id.ID{3}, id.Forward),
	}, id.Forward)
	require.Equal(t, []id.ID{3, 7}, drain(t, forward))

	backward := iter.NewOr([]iter.Iterator{
		iter.NewFixed([]id.ID{7}, id.Backward),
		iter.NewFixed([]id.ID{3}, id.Backward),
	}, id.Backward)
	require.Equal(t, []id.ID{7, 3}, drain(t, backward))
}

// S3: AND(VIP(right=P), all) yields exactly the primitives whose right
// endpoint is P's GUID.
func TestS3AndWithVIP(t *testing.T) {
	st := memstore.New(false)
	target := st.MintGUID()
	_, err := st.WritePrimitive(id.Primitive{GUID: target, Name: "P"})
	require.NoError(t, err)

	match1, err := st.WritePrimitive(id.Primitive{Right: target, Name: "edge-a"})
	require.NoError(t, err)
	match2, err := st.WritePrimitive(id.Primitive{Right: target, Name: "edge-b"})
	require.NoError(t, err)
	_, err = st.WritePrimitive(id.Primitive{Name: "unrelated"})
	require.NoError(t, err)

	vipIDs, err := st.VIPFanIn(id.LinkageRight, target, false, id.GUID{})
	require.NoError(t, err)

	and := iter.NewAnd([]iter.Iterator{
		iter.NewFixed(vipIDs, id.Forward),
		iter.NewAll(st.PrimitiveN, id.Forward),
	}, id.Forward)

	require.ElementsMatch(t, []id.ID{match1, match2}, drain(t, and))
}

// S4: writing N(name="a", value="1") with result=(guid) produces a single
// atom GUID g1; immediately reading (name="a" value="1") returns a list
// containing g1. This also exercises write law 11: write(C); read(C')
// returns the newly-written primitive whenever C' subsets C.
func TestS4WriteThenRead(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	name, value := "a", "1"
	root := &constraint.WriteNode{
		Name:   &name,
		Value:  &value,
		Result: constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID}},
	}
	res, err := write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.True(t, res.HasGUID)
	g1 := res.GUID

	nameC := constraint.StringConstraint{Op: constraint.OpEqual, Value: "a"}
	valueC := constraint.StringConstraint{Op: constraint.OpEqual, Value: "1"}
	node := &constraint.Node{
		Name:   &nameC,
		Value:  &valueC,
		Result: constraint.ResultPattern{Fields: []string{"guid"}},
	}
	it := iter.NewAll(st.PrimitiveN, id.Forward)
	rsc, err := read.Execute(st, node, it, id.NONE, id.Null, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, rsc.Matches, 1)
	require.Equal(t, g1, rsc.Matches[0].Primitive.GUID)
}

// S5 / write law 12: a 3-node write tree where the third node's uniqueness
// check fails must leave primitive_n unchanged from its pre-write value,
// and the read set visible afterward must be unchanged.
func TestS5RollbackLeavesPrimitiveCountUnchanged(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	_, err := st.WritePrimitive(id.Primitive{Name: "singleton"})
	require.NoError(t, err)
	before := st.PrimitiveN()

	clashing := "singleton"
	child1 := &constraint.WriteNode{Name: str("first-child")}
	child2 := &constraint.WriteNode{Name: &clashing, Key: &constraint.KeyClause{Columns: []string{"name"}}}
	root := &constraint.WriteNode{
		Name:     str("root"),
		Children: []*constraint.WriteNode{child1, child2},
	}

	_, err = write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.Error(t, err)
	require.Equal(t, pdb.EXISTS, pdb.AsCategory(err))
	require.Equal(t, before, st.PrimitiveN(), "a failed commit must not leave any partial writes behind")

	node := &constraint.Node{Result: constraint.ResultPattern{Fields: []string{"name"}}}
	it := iter.NewAll(st.PrimitiveN, id.Forward)
	rsc, err := read.Execute(st, node, it, id.NONE, id.Null, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, rsc.Matches, 1, "the read set must be unchanged after the failed write")
}

func str(s string) *string { return &s }

// write law 13: two successive unique-marked writes of the same tree
// produce EXISTS on the second.
func TestWriteLaw13UniqueSecondWriteFails(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	treeOf := func() *constraint.WriteNode {
		return &constraint.WriteNode{
			Name: str("widget"),
			Key:  &constraint.KeyClause{Columns: []string{"name"}},
		}
	}

	_, err := write.Commit(tm, st, treeOf(), time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = write.Commit(tm, st, treeOf(), time.Now().Add(time.Minute))
	require.Error(t, err)
	require.Equal(t, pdb.EXISTS, pdb.AsCategory(err))
}
