package heap

import "unsafe"

const (
	// headerSize and footerSize are each one machine word: the high bits
	// hold the block's total size (always a multiple of 8, so the low 3
	// bits are free) and the low bit holds the in-use flag.
	headerSize = 8
	footerSize = 8

	// linkSize is the width of a single free-list link slot or class-table
	// head slot: a signed offset from the heap base rather than a raw
	// pointer (see SPEC_FULL.md §3's typed-offset design decision).
	linkSize = 4

	// minBlockSize is align8(header + footer + 2*linkSize): no block
	// smaller than this may ever exist in the heap.
	minBlockSize = 24
)

// ref is a block reference: the byte offset of a block's payload from the
// heap's base address. noRef is the "none" sentinel; offset 0 can never be
// a valid payload (it always falls inside the class-table region), so -1
// is unambiguous without needing a separate validity bit.
type ref int32

const noRef ref = -1

func align8(n int) int {
	return (n + 7) &^ 7
}

func packWord(size int, inUse bool) uint64 {
	w := uint64(size)
	if inUse {
		w |= 1
	}
	return w
}

func unpackSize(w uint64) int  { return int(w &^ 7) }
func unpackInUse(w uint64) bool { return w&1 != 0 }

// headerPtr returns the address of r's header word.
func (h *Heap) headerPtr(r ref) unsafe.Pointer {
	return unsafe.Add(h.base, int(r)-headerSize)
}

// footerPtr returns the address of r's footer word, given r's total size.
func (h *Heap) footerPtr(r ref, size int) unsafe.Pointer {
	return unsafe.Add(h.base, int(r)+size-headerSize-footerSize)
}

// readHeader returns the {size, in_use} pair encoded in r's header.
func (h *Heap) readHeader(r ref) (size int, inUse bool) {
	w := *(*uint64)(h.headerPtr(r))
	return unpackSize(w), unpackInUse(w)
}

// writeHeaderFooter writes the same {size, in_use} word to both boundary
// tags of r. The two writes always happen together: any code that touches
// one and not the other breaks the left-neighbor walk.
func (h *Heap) writeHeaderFooter(r ref, size int, inUse bool) {
	w := packWord(size, inUse)
	*(*uint64)(h.headerPtr(r)) = w
	*(*uint64)(h.footerPtr(r, size)) = w
}

// payloadPtr returns the address of r's payload (== r itself, measured from
// base).
func (h *Heap) payloadPtr(r ref) unsafe.Pointer {
	return unsafe.Add(h.base, int(r))
}

// offsetOf converts an absolute address within the arena to a ref.
func (h *Heap) offsetOf(p unsafe.Pointer) ref {
	return ref(uintptr(p) - uintptr(h.base))
}

// sliceDataPtr extracts the data pointer of a []byte via its slice header,
// the same trick unsafex/malloc's BuddyAllocator.Free uses to recover a
// block's address from the slice the caller hands back.
func sliceDataPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 && cap(b) == 0 {
		return nil
	}
	return unsafe.Pointer(*(*uintptr)(unsafe.Pointer(&b)))
}

// payload builds the []byte handle for a block of total size blockSize,
// truncated to length usedLen.
func (h *Heap) payload(r ref, blockSize, usedLen int) []byte {
	usable := blockSize - headerSize - footerSize
	full := unsafe.Slice((*byte)(h.payloadPtr(r)), usable)
	return full[:usedLen]
}

// tableSlotPtr returns the address of class c's head slot in the table.
func (h *Heap) tableSlotPtr(c int) unsafe.Pointer {
	return unsafe.Add(h.base, h.tableOffset+c*linkSize)
}

func (h *Heap) classHead(c int) ref {
	return ref(*(*int32)(h.tableSlotPtr(c)))
}

func (h *Heap) setClassHead(c int, r ref) {
	*(*int32)(h.tableSlotPtr(c)) = int32(r)
}

func (h *Heap) getPrev(r ref) ref {
	return ref(*(*int32)(h.payloadPtr(r)))
}

func (h *Heap) setPrev(r ref, v ref) {
	*(*int32)(h.payloadPtr(r)) = int32(v)
}

func (h *Heap) getNext(r ref) ref {
	return ref(*(*int32)(unsafe.Add(h.payloadPtr(r), linkSize)))
}

func (h *Heap) setNext(r ref, v ref) {
	*(*int32)(unsafe.Add(h.payloadPtr(r), linkSize)) = int32(v)
}

// leftOf returns r's left neighbor by walking its footer, or ok=false if r
// is the first block in the heap.
func (h *Heap) leftOf(r ref) (left ref, ok bool) {
	if r == h.firstRef {
		return 0, false
	}
	fp := unsafe.Add(h.base, int(r)-headerSize-footerSize)
	lsize := unpackSize(*(*uint64)(fp))
	return r - ref(lsize), true
}

// rightOf returns r's right neighbor, or ok=false if r is the last block.
func (h *Heap) rightOf(r ref) (right ref, ok bool) {
	if r == h.lastRef {
		return 0, false
	}
	size, _ := h.readHeader(r)
	return r + ref(size), true
}
