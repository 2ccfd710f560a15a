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

import "sync"

// ResourceManager tracks every StackContext a request has ever pushed and
// guarantees Free runs exactly once per context, even if the request is
// torn down abnormally (panic recovery, client disconnect) instead of
// unwinding the stack frame by frame.
type ResourceManager struct {
	mu    sync.Mutex
	live  map[ContextID]StackContext
	freed map[ContextID]bool
}

// NewResourceManager returns an empty manager for one request.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{live: make(map[ContextID]StackContext), freed: make(map[ContextID]bool)}
}

// Register records ctx as live. Called by Stack.Push.
func (r *ResourceManager) Register(ctx StackContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[ctx.ID()] = ctx
}

// FreeOne releases a single context's resources, idempotently: a context
// already freed (via the normal pop path or a prior abnormal teardown) is
// not freed twice.
func (r *ResourceManager) FreeOne(id ContextID) error {
	r.mu.Lock()
	ctx, ok := r.live[id]
	already := r.freed[id]
	if ok {
		delete(r.live, id)
	}
	r.freed[id] = true
	r.mu.Unlock()
	if !ok || already {
		return nil
	}
	return ctx.Free()
}

// TeardownAll frees every context still registered, in arbitrary order,
// collecting every error rather than stopping at the first. Called once
// when a request aborts with contexts still on the stack.
func (r *ResourceManager) TeardownAll() []error {
	r.mu.Lock()
	remaining := make([]StackContext, 0, len(r.live))
	for id, ctx := range r.live {
		if r.freed[id] {
			continue
		}
		remaining = append(remaining, ctx)
	}
	r.mu.Unlock()
	var errs []error
	for _, ctx := range remaining {
		if err := r.FreeOne(ctx.ID()); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
