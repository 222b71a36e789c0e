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

// Package heap implements a segregated-fits memory allocator over a single,
// contiguous, monotonically growing region: a user-space heap manager
// layered on top of a pluggable growth primitive (see package pagesource).
//
// Blocks carry a header and footer word (boundary tags) so neighbors can be
// found in O(1) in either direction, and free blocks are indexed by a
// 20-class segregated free-list table stored at the base of the managed
// region. Allocation, freeing, and in-place resize all operate on 8-byte
// aligned []byte payload slices aliasing the underlying arena.
//
// Heap is not safe for concurrent use: every operation must run to
// completion before the next one starts, and callers that need the heap
// from multiple goroutines must serialize externally.
package heap
