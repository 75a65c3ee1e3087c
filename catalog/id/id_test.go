// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package id

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const defaultAllocSize = 200

func TestAllocMonotonic(t *testing.T) {
	re := require.New(t)
	alloc := NewAllocatorImpl()
	ctx := context.Background()

	prev := uint64(0)
	for i := 0; i < defaultAllocSize; i++ {
		value, err := alloc.Alloc(ctx)
		re.NoError(err)
		re.Greater(value, prev)
		prev = value
	}
}

func TestAllocMultiThread(t *testing.T) {
	re := require.New(t)
	alloc := NewAllocatorImpl()
	ctx := context.Background()

	const workers = 4
	results := make([][]uint64, workers)

	// Multiple goroutines allocate ids concurrently.
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			ids := make([]uint64, 0, defaultAllocSize)
			for j := 0; j < defaultAllocSize; j++ {
				value, err := alloc.Alloc(ctx)
				re.NoError(err)
				ids = append(ids, value)
			}
			results[worker] = ids
		}(i)
	}
	wg.Wait()

	all := make([]uint64, 0, workers*defaultAllocSize)
	for _, ids := range results {
		all = append(all, ids...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i := 1; i < len(all); i++ {
		re.NotEqual(all[i-1], all[i])
	}
}
