package heap

import (
	"errors"
	"unsafe"
)

// PageSource is the heap-growth collaborator: something that extends a
// single contiguous region monotonically and never shrinks it. Grow must
// return bytes immediately following every previously granted region; n is
// always 8-aligned by the caller. ok is false on exhaustion, leaving the
// source's state unchanged — see package pagesource for the provided
// implementation.
type PageSource interface {
	Grow(n int) (base unsafe.Pointer, ok bool)
	Base() unsafe.Pointer
}

// Limiter is optionally implemented by a PageSource to expose how much of
// the region has been handed out. The heap itself does not consult it:
// Check verifies only the block chain and the class free lists.
type Limiter interface {
	Limit() unsafe.Pointer
}

// ErrGrowFailed is returned by New when the page source cannot satisfy the
// initial reservation (table + one minimum-size free block).
var ErrGrowFailed = errors.New("heap: page source exhausted during init")

// Config configures a Heap at construction time. The zero Config selects
// all defaults.
type Config struct {
	// ClassCount is the number of segregated size-class list heads.
	// <= 0 selects DefaultClassCount (20).
	ClassCount int
	// CoalesceLimit is the class index at or below which Free never
	// coalesces. <= 0 selects DefaultCoalesceLimit (2).
	CoalesceLimit int
	// Policy selects the placement search strategy. Zero value is BestFit.
	Policy Policy
}

func (c Config) withDefaults() Config {
	if c.ClassCount <= 0 {
		c.ClassCount = DefaultClassCount
	}
	if c.CoalesceLimit <= 0 {
		c.CoalesceLimit = DefaultCoalesceLimit
	}
	return c
}

// Heap is a segregated-fits allocator over one PageSource's region. It
// bundles the table base, first-block, and last-block anchors into a single
// value rather than exposing package-level globals, per the "bundle into a
// heap-context value" design note. A Heap is not safe for concurrent use.
type Heap struct {
	src PageSource
	base unsafe.Pointer

	classCount    int
	coalesceLimit int
	policy        Policy

	tableOffset int // byte offset of the class table from base
	firstRef    ref
	lastRef     ref
}

// New acquires pad + table + one minimum-size free block from src and
// returns a ready-to-use Heap. It fails if src.Grow cannot satisfy that
// initial reservation, or if that first grant does not start at src.Base().
func New(src PageSource, cfg Config) (*Heap, error) {
	cfg = cfg.withDefaults()

	tableSize := cfg.ClassCount * linkSize
	pad := align8(tableSize+headerSize) - tableSize - headerSize
	reserve := pad + tableSize + minBlockSize

	base := src.Base()
	p, ok := src.Grow(reserve)
	if !ok {
		return nil, ErrGrowFailed
	}
	if p != base {
		return nil, errors.New("heap: page source did not grow from its own base")
	}

	h := &Heap{
		src:           src,
		base:          base,
		classCount:    cfg.ClassCount,
		coalesceLimit: cfg.CoalesceLimit,
		policy:        cfg.Policy,
		tableOffset:   pad,
	}

	for c := 0; c < cfg.ClassCount; c++ {
		h.setClassHead(c, noRef)
	}

	first := ref(pad + tableSize + headerSize)
	h.writeHeaderFooter(first, minBlockSize, false)
	h.firstRef = first
	h.lastRef = first
	h.insertFront(0, first)

	return h, nil
}

// Allocate returns an 8-byte aligned payload slice of at least size bytes,
// or nil if size <= 0 or the page source can't grow to satisfy the request.
func (h *Heap) Allocate(size int) []byte {
	if size <= 0 {
		return nil
	}
	need := align8(size + headerSize + footerSize)
	if need < minBlockSize {
		need = minBlockSize
	}

	for c := classOf(need, h.classCount); c < h.classCount; c++ {
		r, ok := h.search(c, need)
		if !ok {
			continue
		}
		blockSize, _ := h.readHeader(r)
		if blockSize-need <= minBlockSize {
			h.writeHeaderFooter(r, blockSize, true)
			h.removeFromList(c, r)
			return h.payload(r, blockSize, size)
		}
		h.split(r, need)
		return h.payload(r, need, size)
	}

	p, ok := h.src.Grow(need)
	if !ok {
		return nil
	}
	r := h.offsetOf(p) + ref(headerSize)
	h.writeHeaderFooter(r, need, true)
	h.lastRef = r
	return h.payload(r, need, size)
}

// Free returns block to the allocator. Freeing nil is a no-op. block must
// be a slice previously returned by Allocate or Resize on this same Heap;
// anything else is undefined behavior, though out-of-bounds or misaligned
// offsets are rejected with a panic rather than silently corrupting the
// heap.
func (h *Heap) Free(block []byte) {
	if block == nil {
		return
	}
	r := h.refOf(block)
	size, inUse := h.readHeader(r)
	if !inUse {
		panic("heap: double free")
	}
	h.writeHeaderFooter(r, size, false)

	c := classOf(size, h.classCount)
	if c > h.coalesceLimit {
		r = h.coalesce(r)
		size, _ = h.readHeader(r)
		c = classOf(size, h.classCount)
	}
	h.insertFront(c, r)
}

// Resize changes block's size, growing in place by absorbing free right
// neighbors when possible and falling back to allocate+copy+free otherwise.
// Resize(nil, n) with n>0 behaves like Allocate(n); Resize(block, 0) frees
// block and returns it (the caller must not dereference it afterward).
func (h *Heap) Resize(block []byte, size int) []byte {
	if block == nil {
		if size > 0 {
			return h.Allocate(size)
		}
		return nil
	}
	if size == 0 {
		h.Free(block)
		return block
	}

	r := h.refOf(block)
	old, _ := h.readHeader(r)
	newSize := align8(size + headerSize + footerSize)
	if newSize < minBlockSize {
		newSize = minBlockSize
	}
	if newSize == old {
		return block
	}

	if newSize > old {
		return h.growInPlaceOrCopy(r, old, newSize, size, block)
	}

	if old-newSize <= minBlockSize {
		return block
	}
	h.split(r, newSize)
	return h.payload(r, newSize, size)
}

func (h *Heap) growInPlaceOrCopy(r ref, old, newSize, size int, block []byte) []byte {
	diff := newSize - old

	total := 0
	last := r
	iter := r
	for total < diff {
		rr, ok := h.rightOf(iter)
		if !ok {
			break
		}
		rsize, rInUse := h.readHeader(rr)
		if rInUse {
			break
		}
		total += rsize
		last = rr
		iter = rr
	}

	if total < diff {
		fresh := h.Allocate(size)
		if fresh == nil {
			return nil
		}
		n := old - headerSize - footerSize
		if cap(fresh) < n {
			n = cap(fresh)
		}
		copy(fresh[:n], block[:n])
		h.Free(block)
		return fresh
	}

	iter = r
	for iter != last {
		rr, _ := h.rightOf(iter)
		rsize, _ := h.readHeader(rr)
		h.removeFromList(classOf(rsize, h.classCount), rr)
		iter = rr
	}

	merged := old + total
	h.writeHeaderFooter(r, merged, true)
	if h.lastRef == last {
		h.lastRef = r
	}
	return h.payload(r, merged, size)
}

// refOf recovers a block's ref from the []byte handle Allocate/Resize
// returned, validating that it falls within the managed region on an
// 8-byte boundary.
func (h *Heap) refOf(block []byte) ref {
	p := sliceDataPtr(block)
	r := h.offsetOf(p)
	if int(r) < int(h.firstRef) || int(r) > int(h.lastRef) || int(r)%8 != 0 {
		panic("heap: address not owned by this heap")
	}
	return r
}

// Available returns the total free payload bytes currently indexed across
// all size classes.
func (h *Heap) Available() int {
	total := 0
	for c := 0; c < h.classCount; c++ {
		for r := h.classHead(c); r != noRef; r = h.getNext(r) {
			size, _ := h.readHeader(r)
			total += size - headerSize - footerSize
		}
	}
	return total
}

// IsValidOffset reports whether payloadOffset could be a valid block
// payload start: inside the managed region and 8-aligned. It does not
// check whether the block is actually in use.
func (h *Heap) IsValidOffset(payloadOffset int) bool {
	if payloadOffset < int(h.firstRef) || payloadOffset > int(h.lastRef) {
		return false
	}
	return payloadOffset%8 == 0
}

// FreeAt frees the block whose payload starts at the given offset from the
// heap base. Panics if the offset is invalid or already free.
func (h *Heap) FreeAt(payloadOffset int) {
	if !h.IsValidOffset(payloadOffset) {
		panic("heap: offset out of range")
	}
	r := ref(payloadOffset)
	size, inUse := h.readHeader(r)
	if !inUse {
		panic("heap: double free")
	}
	h.Free(h.payload(r, size, size-headerSize-footerSize))
}
