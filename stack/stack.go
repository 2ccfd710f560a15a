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
	"time"

	"golang.org/x/time/rate"

	"github.com/erigontech/pdb"
)

// Outcome is RunUntilDeadline's result: Done if the stack emptied, More if
// the wall-clock deadline was reached or the top context ran out of budget,
// with frames still pending.
type Outcome int

const (
	Done Outcome = iota
	More
)

// deadlineCheckRate bounds how often RunUntilDeadline pays for a time.Now()
// call while spinning through cheap context Run calls; budget exhaustion
// remains the primary yield signal; this just keeps the wall-clock check
// from dominating a tight loop of sub-microsecond Run calls.
const deadlineCheckRate = 2000 // checks per second

// Stack is one request's LIFO of StackContexts.
type Stack struct {
	frames  []StackContext
	nextID  ContextID
	res     *ResourceManager
	limiter *rate.Limiter
}

// New returns an empty stack with its own resource manager.
func New() *Stack {
	return &Stack{res: NewResourceManager(), limiter: rate.NewLimiter(rate.Limit(deadlineCheckRate), 1)}
}

// Push adds ctx to the top of the stack, assigning it a fresh ContextID and
// registering it with the resource manager.
func (s *Stack) Push(ctx StackContext) {
	s.nextID++
	ctx.SetID(s.nextID)
	s.frames = append(s.frames, ctx)
	s.res.Register(ctx)
}

func (s *Stack) top() StackContext {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *Stack) popTop() StackContext {
	n := len(s.frames)
	if n == 0 {
		return nil
	}
	ctx := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return ctx
}

// removeByID drops the context with the given ID from anywhere in the
// stack (spec.md §4.4's "remove themselves anywhere in the stack").
func (s *Stack) removeByID(id ContextID) {
	for i, ctx := range s.frames {
		if ctx.ID() == id {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
}

// Empty reports whether every frame has returned.
func (s *Stack) Empty() bool { return len(s.frames) == 0 }

// Abort tears down every context still on the stack via the resource
// manager's guaranteed-once Free, for abnormal request termination.
func (s *Stack) Abort() []error {
	errs := s.res.TeardownAll()
	s.frames = nil
	return errs
}

// RunUntilDeadline repeatedly runs the top context until the stack empties
// (Done), or until the wall-clock deadline passes or the top context
// signals More (out of budget) with frames still pending (More). b is
// refilled by the caller between calls; RunUntilDeadline
// itself never refills mid-call, so a single call always makes forward
// progress or returns promptly.
func (s *Stack) RunUntilDeadline(b *pdb.Budget, deadline time.Time) (Outcome, error) {
	for {
		top := s.top()
		if top == nil {
			return Done, nil
		}
		if !s.limiter.Allow() {
			// Limiter denies: skip the time.Now() syscall this iteration
			// and trust budget exhaustion to bound the loop instead.
		} else if !time.Now().Before(deadline) {
			return More, nil
		}
		sig, err := top.Run(b)
		if err != nil {
			return Done, err
		}
		if sig.More {
			return More, err
		}
		if sig.Remove != 0 {
			s.removeByID(sig.Remove)
			if err := s.res.FreeOne(sig.Remove); err != nil {
				return Done, err
			}
			continue
		}
		if sig.Push != nil {
			s.Push(sig.Push)
			continue
		}
		if sig.Pop {
			popped := s.popTop()
			if err := s.res.FreeOne(popped.ID()); err != nil {
				return Done, err
			}
			continue
		}
		// Neither push, pop, remove, nor more: the context resumed itself
		// to a different internal continuation and wants another Run.
	}
}
