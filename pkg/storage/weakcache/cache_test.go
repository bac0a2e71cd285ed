package weakcache

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/loader"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

func newTestCache() *Cache {
	meter := metrics.New()
	return New(loader.NewListLoader(config.DefaultSequenceLen, meter), meter)
}

func TestCache_AlwaysReturnsValidSequence(t *testing.T) {
	c := newTestCache()

	for i := 0; i < 5; i++ {
		seq := c.Get()
		require.NotNil(t, seq)
		require.Equal(t, config.DefaultSequenceLen, seq.Len())
		for j, v := range seq.Values() {
			require.Equal(t, j+1, v)
		}
		runtime.GC()
	}
}

func TestCache_ConsecutiveGetsValueEqual(t *testing.T) {
	c := newTestCache()

	first := c.Get()
	second := c.Get()

	// Value equality is the contract; identity equality is not promised even
	// when it happens to hold here because the test retains both.
	assert.True(t, first.EqualValues(second))
}

func TestCache_SameInstanceWhileStronglyHeld(t *testing.T) {
	c := newTestCache()

	seq := c.Get()
	runtime.GC()
	again := c.Get()

	// The strong reference above keeps the target alive across the cycle.
	assert.True(t, seq == again)
	runtime.KeepAlive(seq)
}

func TestCache_RebuildsAfterReclamation(t *testing.T) {
	c := newTestCache()

	fp := c.Get().Fingerprint() // no strong reference retained past this line

	// Wait until a cycle actually clears the handle; never assert on how
	// many cycles that takes.
	assert.Eventually(t, func() bool {
		runtime.GC()
		return !c.Alive()
	}, 5*time.Second, 10*time.Millisecond)

	rebuilt := c.Get()
	require.NotNil(t, rebuilt)
	assert.Equal(t, fp, rebuilt.Fingerprint())
}
