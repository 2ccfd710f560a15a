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
	"github.com/erigontech/pdb"
	"github.com/erigontech/pdb/constraint"

	"github.com/erigontech/pdb/id"
)

// Frame is a result frame (`pframe`, spec.md §4.5.3): pf_one is the
// per-candidate pattern (Fields, extracted fresh per match into a plain
// map by extractFrame); pf_set is this Set map, filled lazily by sample
// copy from whichever candidate happens to pass through first.
type Frame struct {
	Fields      []string
	SampleMarks map[string]bool
	Set         map[string]any

	deferred []*Deferred
}

func newFrame(node *constraint.Node) *Frame {
	return &Frame{
		Fields:      node.Result.Fields,
		SampleMarks: node.Result.Sample,
		Set:         make(map[string]any),
	}
}

// extractFrame builds one candidate's pf_one values for the named fields.
func extractFrame(p id.Primitive, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out[f] = p.ID
		case "guid":
			out[f] = p.GUID
		case "name":
			out[f] = p.Name
		case "value":
			out[f] = p.Value
		case "left":
			out[f] = p.Left
		case "right":
			out[f] = p.Right
		case "typeguid":
			out[f] = p.Typeguid
		case "scope":
			out[f] = p.Scope
		case "timestamp":
			out[f] = p.Timestamp
		case "live":
			out[f] = p.Live
		case "archival":
			out[f] = p.Archival
		}
	}
	return out
}

// sampleInto copies values from perID into any still-unspecified per-set
// sample slot. A *Deferred value is recorded rather than copied immediately,
// to be resolved by evaluateDeferredSamples before the RSC decides
// termination.
func (f *Frame) sampleInto(perID map[string]any) {
	for field := range f.SampleMarks {
		if _, already := f.Set[field]; already {
			continue
		}
		v, ok := perID[field]
		if !ok {
			continue
		}
		if d, isDeferred := v.(*Deferred); isDeferred {
			f.deferred = append(f.deferred, d)
			continue
		}
		f.Set[field] = v
	}
}

// evaluateDeferredSamples resolves every deferred sample recorded since the
// last call, in place, before the RSC decides termination (spec.md §4.5.3).
func (f *Frame) evaluateDeferredSamples() error {
	pending := f.deferred
	f.deferred = nil
	for _, d := range pending {
		v, err := Resume(d, pdb.NewBudget(1<<20))
		if err != nil {
			return err
		}
		if v != nil {
			f.Set[d.Index] = v
		}
	}
	return nil
}
