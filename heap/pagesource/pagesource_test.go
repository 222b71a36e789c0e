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

package pagesource

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixed(t *testing.T) {
	_, err := NewFixed(0)
	assert.Error(t, err)

	f, err := NewFixed(1 << 20)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, f.Capacity(), 1<<20)
	f.Release()
}

func TestFixedGrow(t *testing.T) {
	f, err := NewFixed(1 << 16)
	require.NoError(t, err)
	defer f.Release()

	base := f.Base()
	p1, ok := f.Grow(128)
	require.True(t, ok)
	assert.Equal(t, base, p1)
	assert.Equal(t, unsafe.Add(base, 128), f.Limit())

	p2, ok := f.Grow(64)
	require.True(t, ok)
	assert.Equal(t, unsafe.Add(base, 128), p2)
	assert.Equal(t, unsafe.Add(base, 192), f.Limit())
}

func TestFixedGrowExhaustion(t *testing.T) {
	f, err := NewFixed(minSlabSize)
	require.NoError(t, err)
	defer f.Release()

	_, ok := f.Grow(f.Capacity() + 1)
	assert.False(t, ok)
	assert.Equal(t, f.Base(), f.Limit())

	_, ok = f.Grow(f.Capacity())
	assert.True(t, ok)
	_, ok = f.Grow(1)
	assert.False(t, ok)
}

func TestFixedGrowRejectsNonPositive(t *testing.T) {
	f, err := NewFixed(minSlabSize)
	require.NoError(t, err)
	defer f.Release()

	_, ok := f.Grow(0)
	assert.False(t, ok)
	_, ok = f.Grow(-8)
	assert.False(t, ok)
}

func TestClassSize(t *testing.T) {
	assert.Equal(t, minSlabSize, classSize(1))
	assert.Equal(t, minSlabSize, classSize(minSlabSize))
	assert.Equal(t, minSlabSize*2, classSize(minSlabSize+1))
	assert.Equal(t, 1<<20, classSize(1<<20))
}
