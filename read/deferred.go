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

package read

import (
	"time"

	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/stack"
)

// Deferred is the deferred{base, index} value of spec.md §4.5.5: a cheap
// placeholder for an answer the engine decided was too expensive to
// materialise eagerly, carrying a reference to the RSC that would compute it
// and the result-frame slot (Index) it would eventually fill.
type Deferred struct {
	Base  *RSC
	Index string
}

// NewDeferred builds a deferred value over base, to be resolved by Resume
// into result slot index.
func NewDeferred(base *RSC, index string) *Deferred {
	return &Deferred{Base: base, Index: index}
}

// Resume runs d's base RSC to completion in existence-check mode
// (verify=false, per spec.md §4.5.5's "sets verify=false, re-pushes the
// RSC, and runs the pipeline to completion") and returns its first match's
// ID, or nil if it has none.
func Resume(d *Deferred, b *pdb.Budget) (any, error) {
	d.Base.Mode.Verify = false
	s := stack.New()
	s.Push(d.Base)
	deadline := time.Now().Add(24 * time.Hour)
	for {
		o, err := s.RunUntilDeadline(b, deadline)
		if err != nil {
			return nil, err
		}
		if o == stack.Done {
			break
		}
		b.Refill(1 << 20)
	}
	if len(d.Base.Matches) == 0 {
		return nil, nil
	}
	return d.Base.Matches[0].ID, nil
}
