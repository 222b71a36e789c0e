package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeNilAllocatesLikeAllocate(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})
	p := h.Resize(nil, 32)
	require.NotNil(t, p)
	assert.Len(t, p, 32)
}

func TestResizeToZeroFreesAndReturnsBlock(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})
	p := h.Allocate(32)
	require.NotNil(t, p)

	out := h.Resize(p, 0)
	assert.NotNil(t, out)
	assert.Panics(t, func() { h.Free(p) }, "block must already be free")
}

func TestResizeSamePaddedSizeIsNoop(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})
	p := h.Allocate(8)
	r := h.refOf(p)

	out := h.Resize(p, 8)
	assert.Equal(t, r, h.refOf(out))
}

func TestResizeShrinkSplitsOffRemainder(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})
	p := h.Allocate(1024)
	require.NotNil(t, p)
	for i := range p {
		p[i] = byte(i)
	}

	out := h.Resize(p, 8)
	require.NotNil(t, out)
	assert.Len(t, out, 8)
	for i := range out {
		assert.Equal(t, byte(i), out[i])
	}

	size, inUse := h.readHeader(h.refOf(out))
	assert.True(t, inUse)
	assert.Less(t, size, 1024)
	assert.Greater(t, h.Available(), 0)
}

func TestResizeShrinkBelowSplitThresholdKeepsWholeBlock(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})
	p := h.Allocate(8)
	r := h.refOf(p)

	out := h.Resize(p, 1)
	assert.Equal(t, r, h.refOf(out))
	size, _ := h.readHeader(r)
	assert.Equal(t, minBlockSize, size)
}

func TestResizeGrowsInPlaceAbsorbingFreeRightNeighbor(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})

	p := h.Allocate(8)
	require.NotNil(t, p)
	for i := range p {
		p[i] = byte(0xAB)
	}
	filler := h.Allocate(400)
	require.NotNil(t, filler)
	h.Free(filler)

	r := h.refOf(p)
	grown := h.Resize(p, 64)
	require.NotNil(t, grown)
	assert.Equal(t, r, h.refOf(grown), "grow-in-place must keep the same address")
	assert.Len(t, grown, 64)
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(0xAB), grown[i], "payload prefix must survive in-place growth")
	}
}

func TestResizeGrowsFallsBackToCopyWhenNoRoom(t *testing.T) {
	h, _ := newTestHeap(t, 1<<20, Config{})

	a := h.Allocate(8)
	require.NotNil(t, a)
	for i := range a {
		a[i] = byte(0xCD)
	}
	b := h.Allocate(8) // keeps a's right neighbor in-use, blocking in-place growth

	ra := h.refOf(a)
	grown := h.Resize(a, 4096)
	require.NotNil(t, grown)
	assert.Len(t, grown, 4096)
	assert.NotEqual(t, ra, h.refOf(grown))
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(0xCD), grown[i])
	}

	assert.NotPanics(t, func() { h.Free(b) })
}
