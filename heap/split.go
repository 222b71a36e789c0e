package heap

// split divides block r (total size >= n + minBlockSize) into a used left
// half of size n and a free right half, pushing the right half onto its
// class list. If r was free (the allocate path), it's unlinked first; the
// resize-shrink path calls split on an already-used block, so no unlink
// happens there — same function, two callers, matching the original
// allocator's single split() reused from both mm_malloc and mm_realloc.
func (h *Heap) split(r ref, n int) {
	size, inUse := h.readHeader(r)
	remaining := size - n

	if !inUse {
		h.removeFromList(classOf(size, h.classCount), r)
	}

	h.writeHeaderFooter(r, n, true)

	right := r + ref(n)
	h.writeHeaderFooter(right, remaining, false)
	h.insertFront(classOf(remaining, h.classCount), right)

	if h.lastRef == r {
		h.lastRef = right
	}
}
