// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package beam

import (
	"sync"
	"sync/atomic"
)

// slicePool is a type-safe wrapper around sync.Pool specialized for
// reusing the backing storage of the flat label-hypothesis and
// word-end-hypothesis arrays. Search step i produces a new generation
// of these slices every step; recycling backing arrays instead of
// reallocating them is the dominant memory optimisation of the
// search driver, since compacting ranges after pruning happens every
// step.
//
// Adapted from the routing-table trie's node pool: the tracked
// statistics (live / total allocated) are kept for the same reason —
// they are cheap and useful while tuning pruning limits — but the
// pooled payload is a slice of hypotheses rather than a single tree
// node.
type slicePool[T any] struct {
	sync.Pool

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

// newSlicePool creates a pool whose zero value for a fresh slice is an
// empty slice with the given initial capacity.
func newSlicePool[T any](initialCap int) *slicePool[T] {
	p := &slicePool[T]{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		s := make([]T, 0, initialCap)
		return &s
	}
	return p
}

// Get retrieves a zero-length slice from the pool, or allocates a new
// one if the pool is empty. If p is nil, a fresh slice is returned
// without tracking (useful for tests that don't care about reuse).
func (p *slicePool[T]) Get() *[]T {
	if p == nil {
		s := make([]T, 0, 16)
		return &s
	}
	p.currentLive.Add(1)
	return p.Pool.Get().(*[]T)
}

// Put returns a slice to the pool for reuse, truncating it to zero
// length but keeping its capacity.
func (p *slicePool[T]) Put(s *[]T) {
	if p == nil || s == nil {
		return
	}
	p.currentLive.Add(-1)

	*s = (*s)[:0]
	p.Pool.Put(s)
}

// Stats reports the number of currently checked-out slices and the
// total number ever allocated, for tuning the initial-capacity hint.
func (p *slicePool[T]) Stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
