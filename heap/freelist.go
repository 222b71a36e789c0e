package heap

// insertFront pushes r onto the head of class c's list (LIFO: freshly freed
// blocks are the first ones handed back out).
func (h *Heap) insertFront(c int, r ref) {
	head := h.classHead(c)
	if head == noRef {
		h.setPrev(r, noRef)
		h.setNext(r, noRef)
	} else {
		h.setPrev(head, r)
		h.setNext(r, head)
		h.setPrev(r, noRef)
	}
	h.setClassHead(c, r)
}

// removeFromList unlinks r from class c's list, relinking its neighbors (or
// updating the head slot when r was the first element).
func (h *Heap) removeFromList(c int, r ref) {
	prev := h.getPrev(r)
	next := h.getNext(r)

	if prev == noRef && next == noRef {
		h.setClassHead(c, noRef)
		return
	}
	if prev != noRef {
		h.setNext(prev, next)
	} else {
		h.setClassHead(c, next)
	}
	if next != noRef {
		h.setPrev(next, prev)
	}
}
