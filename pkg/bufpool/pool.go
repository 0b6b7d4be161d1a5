// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

// Package bufpool hands out reusable byte buffers for streaming copies so
// the part pass-through path does not allocate a fresh buffer per part.
package bufpool

import "sync"

// copySize is the chunk size used by io.CopyBuffer when streaming a
// fetched part body into a destination PUT request.
const copySize = 32 * 1024

var pool = sync.Pool{
	New: func() any {
		buf := make([]byte, copySize)
		return &buf
	},
}

// Get returns a buffer suitable for io.CopyBuffer. Callers must return it
// with Put once the copy completes.
func Get() []byte {
	return *(pool.Get().(*[]byte))
}

// Put returns a buffer obtained from Get back to the pool.
func Put(buf []byte) {
	if cap(buf) != copySize {
		return
	}
	buf = buf[:copySize]
	pool.Put(&buf)
}
