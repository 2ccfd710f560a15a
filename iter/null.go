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
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/id"
)

// Null is the always-empty iterator. OR construction rewrites OR(x...) to
// drop any Null child and collapses OR() entirely to Null (spec.md §4.2).
type Null struct{ dir id.Direction }

// NewNull returns the empty iterator in the given direction.
func NewNull(dir id.Direction) *Null { return &Null{dir: dir} }

func (n *Null) Variant() Variant                            { return VariantNull }
func (n *Null) Statistics(b *pdb.Budget) (Outcome, error)   { return Done, nil }
func (n *Null) Stats() Stats {
	return Stats{N: 0, NIsExact: true, Sorted: true}
}
func (n *Null) Next(b *pdb.Budget) (id.ID, Outcome, error)       { return id.NONE, End, nil }
func (n *Null) Find(id.ID, *pdb.Budget) (id.ID, Outcome, error)  { return id.NONE, End, nil }
func (n *Null) Check(id.ID, *pdb.Budget) (Outcome, error)        { return No, nil }
func (n *Null) Clone() Iterator                                   { return &Null{dir: n.dir} }
func (n *Null) Freeze(flags FreezeFlags, buf *Buffer) error {
	if flags.Set {
		buf.WriteString("null:")
	}
	return nil
}
func (n *Null) Reset()                         {}
func (n *Null) PrimitiveSummary() (PSum, bool) { return PSum{}, false }
func (n *Null) Beyond(id.ID) bool              { return true }
func (n *Null) RangeEstimate() Range           { return Range{Low: id.NONE, High: id.NONE, NExact: 0, NMax: 0} }
func (n *Null) Restrict(PSum) (Iterator, Outcome, error) { return n, Already, nil }
func (n *Null) Direction() id.Direction        { return n.dir }
