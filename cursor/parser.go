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

package cursor

import (
	"fmt"
	"strconv"

	"github.com/erigontech/pdb/id"
	"github.com/erigontech/pdb/iter"
)

// parser is a minimal recursive-descent reader over a frozen set slice.
// Every composite (and:/or:) node's child count is known up front, so the
// parser never has to guess where one child's text ends and the next
// begins: a leaf's text runs to the next top-level ';' (or end of input);
// a composite's text is its header plus exactly N recursively-parsed
// children, each followed by the ';' its parent's Freeze loop appended.
type parser struct {
	s string
	i int
}

func (p *parser) atEnd() bool { return p.i >= len(p.s) }

func (p *parser) readUntilByte(c byte) string {
	start := p.i
	for p.i < len(p.s) && p.s[p.i] != c {
		p.i++
	}
	return p.s[start:p.i]
}

func (p *parser) readDigits() (string, error) {
	start := p.i
	for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
		p.i++
	}
	if p.i == start {
		return "", fmt.Errorf("cursor: expected digits at %q", p.s[p.i:])
	}
	return p.s[start:p.i], nil
}

func (p *parser) expectByte(c byte) error {
	if p.i >= len(p.s) || p.s[p.i] != c {
		return fmt.Errorf("cursor: expected %q at %q", c, p.s[p.i:])
	}
	p.i++
	return nil
}

// parseNode parses one variant-tagged node starting at the parser's
// current position.
func (p *parser) parseNode(backend iter.Backend) (iter.Iterator, error) {
	variant := p.readUntilByte(':')
	if err := p.expectByte(':'); err != nil {
		return nil, fmt.Errorf("cursor: node %q: %w", variant, err)
	}

	switch iter.Variant(variant) {
	case iter.VariantAnd, iter.VariantOr:
		nStr, err := p.readDigits()
		if err != nil {
			return nil, fmt.Errorf("cursor: %s: child count: %w", variant, err)
		}
		n, err := strconv.Atoi(nStr)
		if err != nil {
			return nil, fmt.Errorf("cursor: %s: child count: %w", variant, err)
		}
		children := make([]iter.Iterator, n)
		for i := 0; i < n; i++ {
			child, err := p.parseNode(backend)
			if err != nil {
				return nil, fmt.Errorf("cursor: %s: child %d: %w", variant, i, err)
			}
			if err := p.expectByte(';'); err != nil {
				return nil, fmt.Errorf("cursor: %s: child %d terminator: %w", variant, i, err)
			}
			children[i] = child
		}
		dir := dirOf(children)
		if variant == string(iter.VariantAnd) {
			return iter.NewAnd(children, dir), nil
		}
		return iter.NewOr(children, dir), nil

	case iter.VariantNull:
		p.consumeLeafRest()
		return iter.NewNull(id.Forward), nil

	case iter.VariantAll:
		rest := p.consumeLeafRest()
		dir := id.Forward
		if len(rest) > 0 && rest[0] == 'b' {
			dir = id.Backward
		}
		return iter.NewAll(backend.PrimitiveN, dir), nil

	case iter.VariantFixed:
		rest := p.consumeLeafRest()
		return iter.ThawFixed(rest)

	case iter.VariantBin:
		rest := p.consumeLeafRest()
		return iter.ThawBin(backend, rest)

	case iter.VariantVIP, iter.VariantWord, iter.VariantPrefix, iter.VariantHash, iter.VariantIsa:
		rest := p.consumeLeafRest()
		return iter.ThawIndexed(backend, iter.Variant(variant), rest)

	default:
		return nil, fmt.Errorf("cursor: unknown variant %q", variant)
	}
}

// consumeLeafRest reads a leaf node's payload: everything up to the next
// top-level ';' (the parent composite's terminator) or end of input.
func (p *parser) consumeLeafRest() string {
	return p.readUntilByte(';')
}

func dirOf(children []iter.Iterator) id.Direction {
	if len(children) == 0 {
		return id.Forward
	}
	return children[0].Direction()
}
