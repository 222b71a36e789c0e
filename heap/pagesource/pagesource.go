/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pagesource provides the heap-growth collaborator described in
// spec.md §6: something that extends a single contiguous region monotonically
// and never shrinks it. Fixed is the provided implementation: it reserves one
// backing slab up front from a small size-classed pool of reusable slabs
// (the same technique cache/mempool uses to recycle []byte buffers, here
// repurposed to hand out one large, stable-address slab per heap instead of
// many small ones) and then just bumps a break offset inside it.
package pagesource

import (
	"fmt"
	"math/bits"
	"sync"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"
)

const minSlabSize = 64 << 10 // 64KB, smallest slab class handed out

// slabPool pools backing slabs by size class so repeated test runs (and
// short-lived heaps in general) don't churn the allocator with fresh
// multi-megabyte slices on every Release/NewFixed cycle.
type slabPool struct {
	size int
	sync.Pool
}

var (
	poolsMu sync.Mutex
	pools   []*slabPool // one per slab size, in order of first use
)

func poolFor(size int) *slabPool {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	for _, p := range pools {
		if p.size == size {
			return p
		}
	}
	p := &slabPool{size: size}
	p.New = func() interface{} {
		b := mcache.Malloc(size)
		return &b
	}
	pools = append(pools, p)
	return p
}

func classSize(capacity int) int {
	if capacity <= minSlabSize {
		return minSlabSize
	}
	return 1 << bits.Len(uint(capacity-1))
}

// Fixed implements heap.PageSource (and heap.Limiter), backed by one pooled,
// contiguous slab.
// Its address never moves for the lifetime of the Fixed, which is what
// makes int32 offsets into the arena safe to hand out as block references.
type Fixed struct {
	slab     *[]byte
	poolSize int
	base     unsafe.Pointer
	brk      int
	cap      int
}

// NewFixed reserves a slab of at least capacity bytes and returns a Fixed
// page source ready to Grow from offset 0. capacity must be positive.
func NewFixed(capacity int) (*Fixed, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("pagesource: capacity must be positive, got %d", capacity)
	}
	size := classSize(capacity)
	pool := poolFor(size)
	slab := pool.Get().(*[]byte)
	*slab = (*slab)[:size]
	for i := range *slab {
		(*slab)[i] = 0
	}
	return &Fixed{
		slab:     slab,
		poolSize: size,
		base:     unsafe.Pointer(&(*slab)[0]),
		cap:      capacity,
	}, nil
}

// Grow extends the break by exactly n bytes and returns the address of the
// first new byte. ok is false if the slab cannot satisfy the request; the
// Fixed is left unchanged in that case.
func (f *Fixed) Grow(n int) (base unsafe.Pointer, ok bool) {
	if n <= 0 || f.brk+n > f.cap {
		return nil, false
	}
	p := unsafe.Add(f.base, f.brk)
	f.brk += n
	return p, true
}

// Base returns the address of the first byte of the region.
func (f *Fixed) Base() unsafe.Pointer { return f.base }

// Limit returns the address one past the last byte handed out by Grow.
func (f *Fixed) Limit() unsafe.Pointer { return unsafe.Add(f.base, f.brk) }

// Capacity returns the total number of bytes Grow could ever hand out.
func (f *Fixed) Capacity() int { return f.cap }

// Release returns the backing slab to its size-class pool. The Fixed must
// not be used afterward.
func (f *Fixed) Release() {
	if f.slab == nil {
		return
	}
	pool := poolFor(f.poolSize)
	pool.Put(f.slab)
	f.slab = nil
	f.base = nil
}
