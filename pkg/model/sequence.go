package model

import (
	"encoding/binary"
	"sync"

	"github.com/zeebo/xxh3"
)

var (
	seqHasherPool = sync.Pool{New: func() any { return xxh3.New() }}
	seqBufPool    = sync.Pool{New: func() any { b := make([]byte, 8); return &b }}
)

// Sequence is the demo's stand-in for expensive data: the ordered integers
// 1..N. A fresh instance is built every time the collector has reclaimed the
// previous one, so instance identity is never stable across rebuilds while
// the content fingerprint always is.
type Sequence struct {
	values      []int
	fingerprint uint64
}

// NewSequence builds the ordered sequence 1..n and fingerprints its content.
func NewSequence(n int) *Sequence {
	s := &Sequence{values: make([]int, 0, n)}
	for i := 1; i <= n; i++ {
		s.values = append(s.values, i)
	}
	s.fingerprint = s.hash()
	return s
}

// Values returns the backing slice. Callers must not mutate it.
func (s *Sequence) Values() []int { return s.values }

func (s *Sequence) Len() int { return len(s.values) }

// Fingerprint is the xxh3 hash of the sequence content. Two independently
// built sequences of the same length share a fingerprint even though their
// identities differ.
func (s *Sequence) Fingerprint() uint64 { return s.fingerprint }

// EqualValues reports content equality, the only equality the weak cache
// guarantees to its callers.
func (s *Sequence) EqualValues(other *Sequence) bool {
	if other == nil || len(s.values) != len(other.values) {
		return false
	}
	return s.fingerprint == other.fingerprint
}

func (s *Sequence) hash() uint64 {
	hasher := seqHasherPool.Get().(*xxh3.Hasher)
	defer func() {
		hasher.Reset()
		seqHasherPool.Put(hasher)
	}()

	buf := seqBufPool.Get().(*[]byte)
	defer seqBufPool.Put(buf)

	for _, v := range s.values {
		binary.LittleEndian.PutUint64(*buf, uint64(v))
		if _, err := hasher.Write(*buf); err != nil {
			panic(err)
		}
	}
	return hasher.Sum64()
}
