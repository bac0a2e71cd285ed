package weakcache

import (
	"weak"

	"github.com/rs/zerolog/log"

	"github.com/memlabgo/memlab/pkg/loader"
	"github.com/memlabgo/memlab/pkg/model"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Cache holds a non-owning handle to the loader's most recent sequence. The
// handle never keeps the sequence alive: as soon as no caller retains a
// strong reference, any collection cycle may clear it, and the next Get
// silently rebuilds.
//
// Callers always observe a complete, valid sequence; what they must not
// assume is that two Gets return the same instance. Content equality is
// guaranteed, identity is not.
//
// Not safe for concurrent use; the demo is single-threaded.
type Cache struct {
	loader loader.Loader
	meter  metrics.Meter
	ref    weak.Pointer[model.Sequence]
	has    bool
}

func New(l loader.Loader, meter metrics.Meter) *Cache {
	return &Cache{loader: l, meter: meter}
}

// Get resolves the weak handle, rebuilding the sequence when the collector
// has reclaimed the previous target (or on first use).
func (c *Cache) Get() *model.Sequence {
	if c.has {
		if seq := c.ref.Value(); seq != nil {
			c.meter.IncWeakHits()
			return seq
		}
		c.meter.IncWeakInvalidations()
		log.Debug().Msg("[weakcache] target was reclaimed, rebuilding")
	}

	seq := c.loader.Load()
	c.ref = weak.Make(seq)
	c.has = true
	c.meter.IncWeakRebuilds()
	return seq
}

// Alive reports whether the current handle still resolves. Diagnostic only:
// the answer may be stale by the time the caller acts on it.
func (c *Cache) Alive() bool {
	return c.has && c.ref.Value() != nil
}
