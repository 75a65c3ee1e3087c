// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package id

import "context"

// Allocator defines the id allocator for the catalog meta info.
type Allocator interface {
	// Alloc returns an id strictly greater than every id returned before.
	Alloc(ctx context.Context) (uint64, error)
}
