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

package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/cursor"
	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/store/memstore"
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

func TestFreezeThawFixedRoundTrip(t *testing.T) {
	it := iter.NewFixed([]id.ID{3, 7, 9}, id.Forward)
	b := pdb.NewBudget(1 << 10)
	first, o, err := it.Next(b)
	require.NoError(t, err)
	require.Equal(t, iter.Done, o)
	require.Equal(t, id.ID(3), first)

	text, err := cursor.Freeze(it, 1)
	require.NoError(t, err)

	st := memstore.New(false)
	thawed, position, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, int64(1), position)

	rest := drain(t, thawed)
	require.Equal(t, []id.ID{7, 9}, rest)
}

func TestFreezeThawWordRoundTrip(t *testing.T) {
	st := memstore.New(false)
	_, err := st.WritePrimitive(id.Primitive{Name: "hello world"})
	require.NoError(t, err)
	_, err = st.WritePrimitive(id.Primitive{Name: "hello there"})
	require.NoError(t, err)

	it, err := st.WordIterator("hello", id.Forward)
	require.NoError(t, err)

	text, err := cursor.Freeze(it, 0)
	require.NoError(t, err)

	thawed, position, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, int64(0), position)
	require.Equal(t, []id.ID{1, 2}, drain(t, thawed))
}

func TestFreezeThawAndNesting(t *testing.T) {
	left := iter.NewFixed([]id.ID{1, 2, 3, 4}, id.Forward)
	right := iter.NewFixed([]id.ID{2, 4, 6}, id.Forward)
	and := iter.NewAnd([]iter.Iterator{left, right}, id.Forward)

	b := pdb.NewBudget(1 << 10)
	_, o, err := and.Statistics(b)
	require.NoError(t, err)
	require.Equal(t, iter.Done, o)

	text, err := cursor.Freeze(and, 0)
	require.NoError(t, err)

	st := memstore.New(false)
	thawed, _, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, []id.ID{2, 4}, drain(t, thawed))
}

func TestFreezeThawOrNesting(t *testing.T) {
	a := iter.NewFixed([]id.ID{1, 3}, id.Forward)
	b := iter.NewFixed([]id.ID{2, 4}, id.Forward)
	or := iter.NewOr([]iter.Iterator{a, b}, id.Forward)

	text, err := cursor.Freeze(or, 0)
	require.NoError(t, err)

	st := memstore.New(false)
	thawed, _, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, []id.ID{1, 2, 3, 4}, drain(t, thawed))
}

func TestFreezeThawPositionReplay(t *testing.T) {
	it := iter.NewFixed([]id.ID{10, 20, 30, 40}, id.Forward)
	budget := pdb.NewBudget(1 << 10)
	_, _, err := it.Next(budget)
	require.NoError(t, err)
	_, _, err = it.Next(budget)
	require.NoError(t, err)

	text, err := cursor.Freeze(it, 2)
	require.NoError(t, err)

	st := memstore.New(false)
	thawed, position, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, int64(2), position)
	require.Equal(t, []id.ID{30, 40}, drain(t, thawed))
}

func TestFreezeMasqueradePreservesRealSet(t *testing.T) {
	it := iter.NewFixed([]id.ID{5, 6}, id.Forward)
	text, err := cursor.FreezeMasquerade(it, 0, "synthetic::cursor", 5, 6)
	require.NoError(t, err)
	require.Contains(t, text, "[5-6]")

	st := memstore.New(false)
	thawed, _, _, err := cursor.Thaw(st, text)
	require.NoError(t, err)
	require.Equal(t, []id.ID{5, 6}, drain(t, thawed))
}

func TestThawRejectsUnknownVariant(t *testing.T) {
	st := memstore.New(false)
	_, _, _, err := cursor.Thaw(st, "bogus:xyz/0/")
	require.Error(t, err)
}
