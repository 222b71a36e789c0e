package heap

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/giamo/segfit/internal/xfnv"
)

// Check walks the heap verifying the two invariants spec.md's integrity
// checker covers: no two adjacent free blocks both sit above the coalesce
// threshold (coalesce escaped them), and every block reachable from any
// class list is actually marked free. Violations are reported to w; Check
// never mutates the heap and always completes, returning false if any
// violation was found.
func (h *Heap) Check(w io.Writer) bool {
	ok := true

	limit := maxDim(h.coalesceLimit)
	for r := h.firstRef; r != h.lastRef; {
		size, inUse := h.readHeader(r)
		rr, _ := h.rightOf(r)
		rsize, rInUse := h.readHeader(rr)

		if !inUse && size > limit && !rInUse && rsize > limit {
			fmt.Fprintf(w, "check: adjacent free blocks at %d and %d escaped coalescing\n", r, rr)
			ok = false
		}
		r = rr
	}

	for c := 0; c < h.classCount; c++ {
		seen := make(map[ref]bool)
		for r := h.classHead(c); r != noRef; r = h.getNext(r) {
			if seen[r] {
				fmt.Fprintf(w, "check: class %d free list cycles back to block %d\n", c, r)
				ok = false
				break
			}
			seen[r] = true

			_, inUse := h.readHeader(r)
			if inUse {
				fmt.Fprintf(w, "check: block %d is on class %d free list but marked in-use\n", r, c)
				ok = false
			}
		}
	}

	fmt.Fprintf(w, "check: fingerprint=%016x\n", h.fingerprint())
	return ok
}

// fingerprint returns an in-memory-only hash of the bytes the heap has
// claimed from its page source so far, purely as a diagnostic aid for
// comparing two Check() runs against the same heap instance.
func (h *Heap) fingerprint() uint64 {
	lastSize, _ := h.readHeader(h.lastRef)
	n := int(h.lastRef) + lastSize - headerSize
	b := unsafe.Slice((*byte)(h.base), n)
	return xfnv.Hash(b)
}
