package loader

import (
	"github.com/rs/zerolog/log"

	"github.com/memlabgo/memlab/pkg/model"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Loader produces the demo's expensive data on demand. Callers own the
// returned value; nothing in the loader retains it.
type Loader interface {
	Load() *model.Sequence
}

// ListLoader builds the integer sequence 1..n from scratch on every call,
// standing in for data that is costly to materialize.
type ListLoader struct {
	n     int
	meter metrics.Meter
}

func NewListLoader(n int, meter metrics.Meter) *ListLoader {
	return &ListLoader{n: n, meter: meter}
}

func (l *ListLoader) Load() *model.Sequence {
	seq := model.NewSequence(l.n)
	l.meter.IncSequenceBuilds()
	log.Debug().Msgf("[loader] built sequence of %d values (fingerprint=%x)", seq.Len(), seq.Fingerprint())
	return seq
}
