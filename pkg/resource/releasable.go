package resource

import (
	"crypto/rand"
	"sync"
	"unsafe"

	"github.com/zeebo/xxh3"
)

const defaultBufferLength = 1024

var bufferPool = &sync.Pool{
	New: func() any {
		return &Buffer{
			p: make([]byte, 0, defaultBufferLength),
		}
	},
}

// Buffer is a pooled, release-once byte block standing in for memory the
// collector does not track. Releasing returns it to the pool; the backing
// slice must not be used afterwards.
type Buffer struct {
	p []byte
}

func AcquireBuffer() *Buffer {
	return bufferPool.Get().(*Buffer)
}

// Bytes - returns the slice managed under sync.Pool. Copy the output slice,
// don't retain the same value past Release.
func (b *Buffer) Bytes() []byte {
	return b.p
}

// Fill grows the buffer to n bytes of random content, replacing anything
// previously held.
func (b *Buffer) Fill(n int) *Buffer {
	b.Reset()
	if cap(b.p) < n {
		b.p = make([]byte, 0, n)
	}
	b.p = b.p[:n]
	if _, err := rand.Read(b.p); err != nil {
		panic(err)
	}
	return b
}

// Fingerprint hashes the current content with xxh3.
func (b *Buffer) Fingerprint() uint64 {
	return xxh3.Hash(b.p)
}

func (b *Buffer) Weight() int64 {
	return int64(cap(b.p)) + int64(unsafe.Sizeof(*b))
}

func (b *Buffer) Reset() {
	b.p = b.p[:0]
}

func (b *Buffer) Release() {
	b.Reset()
	bufferPool.Put(b)
}

// Releasable is the release-once contract shared by the demo's resource
// owners. Release reports whether this call performed the release; repeated
// calls are no-ops.
type Releasable interface {
	Release() bool
	Released() bool
}
