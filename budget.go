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

package pdb

// Budget is the cooperative-yield currency named pdb_budget in spec.md
// §4.2/§4.4: a signed counter, decremented by iterator and I/O primitives,
// that goes negative when a call must yield MORE rather than complete.
type Budget struct {
	n int64
}

// NewBudget returns a Budget charged with n units.
func NewBudget(n int64) *Budget { return &Budget{n: n} }

// Charge deducts cost units and reports whether the budget is still
// positive. Once exhausted (<=0) the caller must return MORE and leave
// enough state to resume.
func (b *Budget) Charge(cost int64) bool {
	b.n -= cost
	return b.n > 0
}

// Exhausted reports whether the budget has already run out without
// charging anything further.
func (b *Budget) Exhausted() bool { return b.n <= 0 }

// Remaining reports the number of units left (may be negative after an
// overshoot charge).
func (b *Budget) Remaining() int64 { return b.n }

// Refill adds n units back to the budget, used when a suspended call is
// resumed with a fresh per-call allowance.
func (b *Budget) Refill(n int64) { b.n += n }
