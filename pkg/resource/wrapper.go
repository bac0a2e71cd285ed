package resource

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Wrapper exclusively owns two resources the collector does not track: a
// pooled buffer of random bytes and an open file handle. Release is
// idempotent and dual-path:
//
//   - The explicit owner-invoked path frees the buffer, closes the file and
//     suppresses the pending fallback cleanup.
//   - The fallback collector-invoked path frees the buffer only. It must
//     never touch the file handle: by the time the collector runs it, the
//     order of cleanups across objects is unspecified, so the handle's own
//     teardown may have already run or not yet run.
//
// Not safe for concurrent use beyond the released flag; the demo is
// single-threaded.
type Wrapper struct {
	slot    *slot
	file    *os.File
	path    string
	fp      uint64
	cleanup runtime.Cleanup
}

// slot carries everything the fallback path may legally touch. It must not
// reference the Wrapper itself, or the wrapper would never become
// unreachable.
type slot struct {
	buf      *Buffer
	released *atomic.Bool
	meter    metrics.Meter
}

// NewWrapper allocates the buffer, opens the scratch file in create mode and
// arms the fallback cleanup.
func NewWrapper(cfg config.Demo, meter metrics.Meter) (*Wrapper, error) {
	buf := AcquireBuffer().Fill(cfg.BufferSize)

	path := filepath.Join(cfg.Dir, cfg.ScratchFile)
	file, err := os.Create(path)
	if err != nil {
		buf.Release()
		return nil, fmt.Errorf("open scratch file %q: %w", path, err)
	}

	w := &Wrapper{
		slot: &slot{buf: buf, released: &atomic.Bool{}, meter: meter},
		file: file,
		path: path,
		fp:   buf.Fingerprint(),
	}
	w.cleanup = runtime.AddCleanup(w, reclaimSlot, w.slot)

	log.Info().Msgf("[resource] acquired %d byte buffer (fingerprint=%x) and handle %q", cfg.BufferSize, w.fp, path)
	return w, nil
}

// reclaimSlot is the collector-invoked fallback. It frees the buffer and
// nothing else.
func reclaimSlot(s *slot) {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.buf.Release()
	s.meter.IncFallbackReclaims()
	log.Info().Msg("[resource] fallback reclaim freed the buffer, file handle left alone")
}

// Release frees the buffer, closes the file handle and cancels the pending
// fallback cleanup. The first call does the work; every later call is a
// no-op and returns false.
func (w *Wrapper) Release() bool {
	if !w.slot.released.CompareAndSwap(false, true) {
		log.Debug().Msgf("[resource] repeated release of %q ignored", w.path)
		return false
	}
	w.cleanup.Stop()
	w.slot.buf.Release()
	if err := w.file.Close(); err != nil {
		log.Warn().Msgf("[resource] closing %q: %v", w.path, err)
	}
	w.slot.meter.IncReleases()
	log.Info().Msgf("[resource] released buffer and handle %q", w.path)
	return true
}

func (w *Wrapper) Released() bool {
	return w.slot.released.Load()
}

// Fingerprint is the xxh3 hash taken of the buffer content at acquisition.
func (w *Wrapper) Fingerprint() uint64 { return w.fp }

func (w *Wrapper) Path() string { return w.path }

// WriteScratch appends to the owned file. Fails once the handle has been
// released.
func (w *Wrapper) WriteScratch(p []byte) error {
	if w.Released() {
		return os.ErrClosed
	}
	_, err := w.file.Write(p)
	return err
}
