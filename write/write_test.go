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

package write_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"
	"github.com/erigontech/pdb/store/memstore"
	"github.com/erigontech/pdb/ticket"
	"github.com/erigontech/pdb/write"

	"github.com/erigontech/pdb/id"
)

func str(s string) *string { return &s }

func TestCommitCreatesFreshPrimitive(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	name := "widget"
	root := &constraint.WriteNode{
		Name:   &name,
		Result: constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID}},
	}

	res, err := write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.True(t, res.HasGUID)

	p, ok := st.PrimitiveByGUID(res.GUID)
	require.True(t, ok)
	require.Equal(t, "widget", p.Name)
	require.True(t, p.Live)
}

func TestCommitIAmLinkageParentPointsAtChild(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	child := &constraint.WriteNode{
		Name:          str("child"),
		ParentLinkage: constraint.Linkage{Kind: constraint.LinkageIAm, Which: id.LinkageLeft},
	}
	root := &constraint.WriteNode{
		Name:     str("parent"),
		Children: []*constraint.WriteNode{child},
		Result:   constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID, constraint.WriteResultContents}},
	}

	res, err := write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	parent, ok := st.PrimitiveByGUID(res.GUID)
	require.True(t, ok)
	require.Equal(t, res.Contents[0].GUID, parent.Left)
}

func TestCommitMyLinkageChildPointsAtParent(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	child := &constraint.WriteNode{
		Name:          str("edge"),
		ParentLinkage: constraint.Linkage{Kind: constraint.LinkageMy, Which: id.LinkageLeft},
		Result:        constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID}},
	}
	root := &constraint.WriteNode{
		Name:     str("node"),
		Children: []*constraint.WriteNode{child},
		Result:   constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID, constraint.WriteResultContents}},
	}

	res, err := write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.NoError(t, err)

	childPrimitive, ok := st.PrimitiveByGUID(res.Contents[0].GUID)
	require.True(t, ok)
	require.Equal(t, res.GUID, childPrimitive.Left)
}

func TestAnchorReusesExistingPrimitive(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	anchorTarget := st.MintGUID()
	_, err := st.WritePrimitive(id.Primitive{GUID: anchorTarget, Name: "target"})
	require.NoError(t, err)

	existing := st.MintGUID()
	_, err = st.WritePrimitive(id.Primitive{GUID: existing, Left: anchorTarget, Name: "edge"})
	require.NoError(t, err)

	before := st.PrimitiveN()

	root := &constraint.WriteNode{
		Name:    str("edge"),
		Anchors: []constraint.AnchorClause{{Linkage: id.LinkageLeft, Value: anchorTarget}},
		Result:  constraint.WriteResult{Kinds: []constraint.WriteResultKind{constraint.WriteResultGUID}},
	}

	res, err := write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, existing, res.GUID)
	require.Equal(t, before, st.PrimitiveN())
}

func TestUniqueCheckFailsWithExists(t *testing.T) {
	st := memstore.New(false)
	tm := ticket.NewManager()

	_, err := st.WritePrimitive(id.Primitive{Name: "singleton"})
	require.NoError(t, err)

	root := &constraint.WriteNode{
		Name: str("singleton"),
		Key:  &constraint.KeyClause{Columns: []string{"name"}},
	}

	_, err = write.Commit(tm, st, root, time.Now().Add(time.Minute))
	require.Error(t, err)
	require.Equal(t, pdb.EXISTS, pdb.AsCategory(err))
}
