// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package id

import (
	"context"
	"sync"
)

var _ Allocator = &AllocatorImpl{}

// AllocatorImpl issues ids from an in-process counter. Ids are never reused,
// not even after the table they were issued for is dropped. The counter is
// volatile, it restarts from zero with the process, which is fine because the
// catalog it serves is volatile too.
type AllocatorImpl struct {
	mu   sync.Mutex
	base uint64
}

func NewAllocatorImpl() *AllocatorImpl {
	return &AllocatorImpl{}
}

func (alloc *AllocatorImpl) Alloc(_ context.Context) (uint64, error) {
	alloc.mu.Lock()
	defer alloc.mu.Unlock()

	alloc.base++

	return alloc.base, nil
}
