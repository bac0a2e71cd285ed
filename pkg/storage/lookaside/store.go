package lookaside

import (
	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"

	"github.com/memlabgo/memlab/pkg/loader"
	"github.com/memlabgo/memlab/pkg/model"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Store is the lookaside rendition of the weak cache: callers hold a
// non-owning string key into a strongly-owned, eviction-prone store. The
// contract is the same — the entry may be gone at any time with no warning
// (evicted, or never admitted), and the caller transparently rebuilds.
type Store struct {
	cache  *ristretto.Cache
	loader loader.Loader
	meter  metrics.Meter
}

func New(l loader.Loader, meter metrics.Meter) (*Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 10,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache, loader: l, meter: meter}, nil
}

// Get returns the sequence stored under key, rebuilding it when the store no
// longer holds one. The rebuilt value is offered back to the store; admission
// is best-effort and asynchronous, so the next Get may rebuild again.
func (s *Store) Get(key string) *model.Sequence {
	if v, ok := s.cache.Get(key); ok {
		if seq, ok := v.(*model.Sequence); ok {
			s.meter.IncLookasideHits()
			return seq
		}
	}

	seq := s.loader.Load()
	s.cache.Set(key, seq, int64(seq.Len()*8))
	s.meter.IncLookasideRebuilds()
	log.Debug().Msgf("[lookaside] rebuilt entry %q", key)
	return seq
}

// Wait blocks until pending admissions settle. Tests use it; the demo never
// relies on admission timing.
func (s *Store) Wait() {
	s.cache.Wait()
}

func (s *Store) Close() {
	s.cache.Close()
}
