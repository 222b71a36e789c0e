package heap

// coalesce merges r with adjacent free neighbors whose size exceeds
// maxDim(coalesceLimit), walking right then left via the boundary tags.
// Blocks at or below the threshold act as coalesce barriers even when
// free — a deliberate policy that protects small-class LIFO locality, not
// an oversight. Returns the surviving (possibly relocated) block.
func (h *Heap) coalesce(r ref) ref {
	size, _ := h.readHeader(r)
	total := size
	limit := maxDim(h.coalesceLimit)

	rightmost := r
	for {
		rr, ok := h.rightOf(rightmost)
		if !ok {
			break
		}
		rsize, rInUse := h.readHeader(rr)
		if rInUse || rsize <= limit {
			break
		}
		total += rsize
		h.removeFromList(classOf(rsize, h.classCount), rr)
		rightmost = rr
	}

	left := r
	for {
		lr, ok := h.leftOf(left)
		if !ok {
			break
		}
		lsize, lInUse := h.readHeader(lr)
		if lInUse || lsize <= limit {
			break
		}
		total += lsize
		h.removeFromList(classOf(lsize, h.classCount), lr)
		left = lr
	}

	h.writeHeaderFooter(left, total, false)
	if h.lastRef == rightmost {
		h.lastRef = left
	}
	return left
}
