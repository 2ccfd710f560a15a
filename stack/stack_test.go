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

package stack

import (
	"errors"
	"testing"
	"time"

	"github.com/erigontech/pdb"
)

// fakeContext runs a scripted sequence of Signal/error pairs, one per Run
// call, and counts how many times Free was invoked.
type fakeContext struct {
	BaseContext
	script    []Signal
	errScript []error
	i         int
	freed     int
}

func (f *fakeContext) Run(b *pdb.Budget) (Signal, error) {
	sig := f.script[f.i]
	var err error
	if f.i < len(f.errScript) {
		err = f.errScript[f.i]
	}
	f.i++
	return sig, err
}

func (f *fakeContext) Suspend() any          { return f.i }
func (f *fakeContext) Unsuspend(s any) error { f.i = s.(int); return nil }
func (f *fakeContext) Free() error           { f.freed++; return nil }

func TestRunUntilDeadlinePopsToEmpty(t *testing.T) {
	root := &fakeContext{script: []Signal{{}, {Pop: true}}}
	s := New()
	s.Push(root)

	out, err := s.RunUntilDeadline(pdb.NewBudget(1<<20), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RunUntilDeadline: %v", err)
	}
	if out != Done {
		t.Fatalf("Outcome = %v, want Done", out)
	}
	if !s.Empty() {
		t.Fatalf("stack should be empty after Pop")
	}
	if root.freed != 1 {
		t.Fatalf("Free called %d times, want 1", root.freed)
	}
}

func TestRunUntilDeadlinePushesChildDepthFirst(t *testing.T) {
	child := &fakeContext{script: []Signal{{Pop: true}}}
	parent := &fakeContext{script: []Signal{{Push: child}, {Pop: true}}}

	s := New()
	s.Push(parent)

	out, err := s.RunUntilDeadline(pdb.NewBudget(1<<20), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RunUntilDeadline: %v", err)
	}
	if out != Done {
		t.Fatalf("Outcome = %v, want Done", out)
	}
	if child.freed != 1 || parent.freed != 1 {
		t.Fatalf("child.freed=%d parent.freed=%d, want 1/1", child.freed, parent.freed)
	}
}

func TestRunUntilDeadlineReturnsMoreOnBudgetExhaustion(t *testing.T) {
	ctx := &fakeContext{script: []Signal{{More: true}, {Pop: true}}}
	s := New()
	s.Push(ctx)

	out, err := s.RunUntilDeadline(pdb.NewBudget(1<<20), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RunUntilDeadline: %v", err)
	}
	if out != More {
		t.Fatalf("Outcome = %v, want More", out)
	}
	if s.Empty() {
		t.Fatalf("a More outcome must leave the context on the stack for resume")
	}
}

func TestRunUntilDeadlinePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	ctx := &fakeContext{script: []Signal{{}}, errScript: []error{boom}}
	s := New()
	s.Push(ctx)

	_, err := s.RunUntilDeadline(pdb.NewBudget(1<<20), time.Now().Add(time.Second))
	if !errors.Is(err, boom) {
		t.Fatalf("RunUntilDeadline error = %v, want %v", err, boom)
	}
}

func TestRunUntilDeadlineRemoveByID(t *testing.T) {
	victim := &fakeContext{script: []Signal{{}, {Pop: true}}}
	s := New()
	s.Push(victim)
	victimID := victim.ID()

	remover := &fakeContext{script: []Signal{{Remove: victimID}, {Pop: true}}}
	s.Push(remover)

	out, err := s.RunUntilDeadline(pdb.NewBudget(1<<20), time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("RunUntilDeadline: %v", err)
	}
	if out != Done {
		t.Fatalf("Outcome = %v, want Done", out)
	}
	if victim.freed != 1 {
		t.Fatalf("removed context must still be Freed exactly once, got %d", victim.freed)
	}
}

func TestAbortTearsDownRemainingFrames(t *testing.T) {
	a := &fakeContext{script: []Signal{{}}}
	b := &fakeContext{script: []Signal{{}}}
	s := New()
	s.Push(a)
	s.Push(b)

	errs := s.Abort()
	if len(errs) != 0 {
		t.Fatalf("Abort() errs = %v, want none", errs)
	}
	if !s.Empty() {
		t.Fatalf("Abort must empty the stack")
	}
	if a.freed != 1 || b.freed != 1 {
		t.Fatalf("a.freed=%d b.freed=%d, want 1/1", a.freed, b.freed)
	}
}
