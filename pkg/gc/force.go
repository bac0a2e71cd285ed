package gc

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Reclaimer is the explicit face of the collector in this demo. The demos
// never wait for a natural cycle; they ask the Reclaimer to force one and
// then assert nothing about when (or in what order) pending cleanups run.
//
// Force is rate-limited so a misbehaving caller cannot turn the process into
// a GC treadmill.
type Reclaimer struct {
	limiter *rate.Limiter
	meter   metrics.Meter
}

func NewReclaimer(cfg config.ForceGC, meter metrics.Meter) *Reclaimer {
	return &Reclaimer{
		limiter: rate.NewLimiter(rate.Limit(cfg.ForceRate), cfg.ForceBurst),
		meter:   meter,
	}
}

// Force runs a blocking collection pass when the limiter admits one and
// reports whether it did. Two back-to-back passes are used so cleanups queued
// by the first get a chance to be scheduled; nothing guarantees they ran by
// the time Force returns.
func (r *Reclaimer) Force() bool {
	if !r.limiter.Allow() {
		log.Debug().Msg("[force-GC] forced pass throttled")
		return false
	}
	runtime.GC()
	runtime.GC()
	r.meter.IncForcedGCPasses()
	log.Debug().Msg("[force-GC] forced collection pass completed")
	return true
}

// Run periodically forces Go's garbage collector and returns freed pages to
// the OS. The demo's heap is tiny, but the loop keeps the sample observable:
// sequences dropped by the weak cache and buffers abandoned to the fallback
// path get reclaimed on a predictable cadence instead of whenever the heap
// next doubles, so the log shows the lifecycle playing out. Both intervals
// are configurable.
func Run(ctx context.Context, cfg config.ForceGC) {
	go func() {
		gcTicker := time.NewTicker(cfg.GCInterval)
		defer gcTicker.Stop()

		freeOsMemTicker := time.NewTicker(cfg.FreeOsMemInterval)
		defer freeOsMemTicker.Stop()

		log.Info().Msgf(
			"[force-GC] running with gcInterval=%s, freeOsMemInterval=%s",
			cfg.GCInterval, cfg.FreeOsMemInterval,
		)

		var lastAlloc uint64

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("[force-GC] stopped")
				return

			case <-gcTicker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)

				runtime.GC()

				log.Info().Msgf(
					"[force-GC] forced GC pass (last GC pass at: %s, pause: %s)",
					time.Unix(0, int64(mem.LastGC)).Format(time.RFC3339Nano),
					lastGCPauseNs(mem.PauseNs),
				)

				lastAlloc = mem.Alloc
			case <-freeOsMemTicker.C:
				var mem runtime.MemStats
				runtime.ReadMemStats(&mem)

				if lastAlloc == 0 {
					lastAlloc = mem.Alloc
					continue
				}

				debug.FreeOSMemory() // use madvise(DONTNEED) under the hood

				log.Info().Msgf(
					"[force-GC] forcing flush of freed memory to OS (alloc was %s, now %s)",
					fmtBytes(lastAlloc), fmtBytes(mem.Alloc),
				)

				lastAlloc = mem.Alloc
			}
		}
	}()
}

// fmtBytes formats a byte count to a human-readable string.
func fmtBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func lastGCPauseNs(pauses [256]uint64) time.Duration {
	for i := 255; i >= 0; i-- {
		if pauses[i] > 0 {
			return time.Duration(pauses[i])
		}
	}
	return time.Duration(0)
}
