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

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category names a propagation class, not a Go error type: iterator, read
// and write pipelines all return one of these as the outer shape of any
// failure (or NO/MORE as a control signal, not an error at all).
type Category int

const (
	// CategoryNone marks a non-error, non-control-signal success.
	CategoryNone Category = iota
	// NO is a negative result: predicate false, end of stream, no match.
	NO
	// MORE is a cooperative yield, a control signal rather than an error.
	MORE
	// ALREADY marks an idempotent operation that made no change.
	ALREADY
	// SYNTAX is a parse/cursor-format violation.
	SYNTAX
	// SEMANTICS is a semantically ill-formed request.
	SEMANTICS
	// LEXICAL is a cursor string malformed at the lexer level.
	LEXICAL
	// TOO_HARD means the request soft-timed-out; resume with a cursor.
	TOO_HARD
	// TOO_LARGE means a sort key exceeds the current sort window.
	TOO_LARGE
	// PRIMITIVE_TOO_LARGE means a single primitive exceeds storage limits.
	PRIMITIVE_TOO_LARGE
	// OUTDATED means a write target is not the newest generation.
	OUTDATED
	// EXISTS means a uniqueness check failed.
	EXISTS
	// NO_RESTART means the worker does not want to be restarted.
	NO_RESTART
	// IO is a pass-through failure from the store layer.
	IO
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "NONE"
	case NO:
		return "NO"
	case MORE:
		return "MORE"
	case ALREADY:
		return "ALREADY"
	case SYNTAX:
		return "SYNTAX"
	case SEMANTICS:
		return "SEMANTICS"
	case LEXICAL:
		return "LEXICAL"
	case TOO_HARD:
		return "TOO_HARD"
	case TOO_LARGE:
		return "TOO_LARGE"
	case PRIMITIVE_TOO_LARGE:
		return "PRIMITIVE_TOO_LARGE"
	case OUTDATED:
		return "OUTDATED"
	case EXISTS:
		return "EXISTS"
	case NO_RESTART:
		return "NO_RESTART"
	case IO:
		return "IO"
	default:
		return "UNKNOWN"
	}
}

// Error is the sole error type propagated through the query execution
// core. It carries a Category alongside a wrapped cause so that a category
// survives propagation through the cooperative stack even as the cause
// picks up additional %w/Wrap layers on the way up.
type Error struct {
	Cat   Category
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Cat.String()
	}
	return fmt.Sprintf("%s: %s", e.Cat, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Cause reports the deepest wrapped error, preferring pkg/errors' chain
// over the stdlib one so category-tagged errors constructed with Wrapf
// still resolve to their root cause.
func (e *Error) Cause() error {
	if e.cause == nil {
		return nil
	}
	return errors.Cause(e.cause)
}

// NewError builds a categorised error from a plain message.
func NewError(cat Category, format string, args ...any) *Error {
	return &Error{Cat: cat, cause: fmt.Errorf(format, args...)}
}

// WrapError attaches a category to an existing error, preserving it as the
// wrapped cause via pkg/errors so a stack trace is captured at the
// category boundary.
func WrapError(cat Category, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Cat: cat, cause: errors.Wrap(err, msg)}
}

// AsCategory extracts the Category of err, defaulting to IO for any error
// that did not originate as a *pdb.Error (e.g. a raw store I/O failure).
func AsCategory(err error) Category {
	if err == nil {
		return CategoryNone
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Cat
	}
	return IO
}

// Is reports whether err is a *pdb.Error of category cat.
func Is(err error, cat Category) bool {
	return AsCategory(err) == cat
}
