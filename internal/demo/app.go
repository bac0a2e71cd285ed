package demo

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/memlabgo/memlab/internal/demo/api"
	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/gc"
	"github.com/memlabgo/memlab/pkg/k8s/probe/liveness"
	"github.com/memlabgo/memlab/pkg/loader"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
	"github.com/memlabgo/memlab/pkg/report"
	"github.com/memlabgo/memlab/pkg/resource"
	"github.com/memlabgo/memlab/pkg/server"
	"github.com/memlabgo/memlab/pkg/server/controller"
	"github.com/memlabgo/memlab/pkg/shutdown"
	"github.com/memlabgo/memlab/pkg/storage/lookaside"
	"github.com/memlabgo/memlab/pkg/storage/weakcache"
	"github.com/memlabgo/memlab/pkg/tempfile"
)

// App runs the three lifecycle demos in sequence and prints observations.
// Anticipated errors are logged and swallowed; the process always exits
// successfully.
type App struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.Config
	probe     liveness.Prober
	meter     metrics.Meter
	reclaimer *gc.Reclaimer
	cache     *weakcache.Cache
	store     *lookaside.Store
	server    *server.HTTP
	reporter  *report.Writer
	started   atomic.Bool
}

// NewApp wires the loader, caches, reclaimer and (when enabled) the
// observation server.
func NewApp(ctx context.Context, cfg *config.Config, probe liveness.Prober) (*App, error) {
	ctx, cancel := context.WithCancel(ctx)

	meter := metrics.New()
	seqLoader := loader.NewListLoader(cfg.Demo.SequenceLen, meter)

	store, err := lookaside.New(seqLoader, meter)
	if err != nil {
		cancel()
		return nil, err
	}

	app := &App{
		ctx:       ctx,
		cancel:    cancel,
		cfg:       cfg,
		probe:     probe,
		meter:     meter,
		reclaimer: gc.NewReclaimer(cfg.ForceGC, meter),
		cache:     weakcache.New(seqLoader, meter),
		store:     store,
		reporter:  report.NewWriter(cfg.Report, cfg.Demo.Dir),
	}

	if cfg.Server.Enabled {
		srv, err := server.New(ctx, cfg.Server, []controller.HttpController{
			controller.NewMetricsController(),
			controller.NewLivenessController(probe),
			api.NewStateController(meter),
		})
		if err != nil {
			app.stop()
			return nil, err
		}
		app.server = srv
	}

	return app, nil
}

// Start runs the demos. When the observation server is enabled it keeps
// serving until the context is cancelled; otherwise it cancels itself once
// the demos are done. The Gracefuller is expected to have been Add'ed by the
// caller; Done fires when shutdown is complete.
func (a *App) Start(g shutdown.Gracefuller) {
	defer func() {
		a.stop()
		g.Done()
	}()

	a.started.Store(true)
	a.probe.Watch(a)

	if a.server != nil {
		go a.server.ListenAndServe()
	}

	log.Info().Msg("[app] starting lifecycle demos")

	a.runTempFileDemo()
	a.runResourceDemo()
	a.runWeakCacheDemo()

	if err := a.reporter.Write("completed", a.meter.Snapshot()); err != nil {
		log.Warn().Msgf("[app] failed to write observations: %v", err)
	}

	if a.server != nil {
		<-a.ctx.Done()
		return
	}
	a.cancel()
}

// IsAlive satisfies the liveness probe.
func (a *App) IsAlive(context.Context) bool {
	return a.started.Load()
}

func (a *App) stop() {
	a.store.Close()
	a.cancel()
	log.Info().Msg("[app] stopped")
}

// runTempFileDemo shows that explicit release must precede deletion. The
// failing flow is run first when configured, so the caught I/O error is
// visible in the output.
func (a *App) runTempFileDemo() {
	log.Info().Msg("[app] --- demo 1: temp file release and deletion ---")

	path := filepath.Join(a.cfg.Demo.Dir, a.cfg.Demo.TempFile)
	if a.cfg.Demo.IllustrateOpenHandle {
		a.deleteTempFile(path, true)
	}
	a.deleteTempFile(path, false)
}

// deleteTempFile creates the file, writes to it, forces a collection pass and
// deletes it. With skipRelease the handle is left open on the first attempt:
// deletion fails with the anticipated I/O error, the error is logged, and the
// flow recovers by releasing and retrying.
func (a *App) deleteTempFile(path string, skipRelease bool) {
	w, err := tempfile.Create(path)
	if err != nil {
		log.Err(err).Msgf("[app] failed to create %q", path)
		return
	}

	if err := w.WriteString("This is a temporary file."); err != nil {
		log.Warn().Msgf("[app] failed to write %q: %v", path, err)
	}

	// Forcing a pass here does not release the handle for us: the reclaim
	// notice never touches it.
	a.reclaimer.Force()

	if !skipRelease {
		w.Release()
	}

	if err := w.Remove(); err != nil {
		a.meter.IncIOErrorsCaught()
		log.Warn().Msgf("[app] delete failed, handle still open: %v", err)

		w.Release()
		if err := w.Remove(); err != nil {
			log.Err(err).Msgf("[app] retry delete of %q failed", path)
			return
		}
		log.Info().Msgf("[app] %q deleted after releasing the handle", path)
		return
	}
	log.Info().Msgf("[app] %q deleted", path)
}

// runResourceDemo shows the dual-path release of resources the collector does
// not track.
func (a *App) runResourceDemo() {
	log.Info().Msg("[app] --- demo 2: dual-path resource release ---")

	w, err := resource.NewWrapper(a.cfg.Demo, a.meter)
	if err != nil {
		log.Err(err).Msg("[app] failed to acquire wrapper")
		return
	}
	if err := w.WriteScratch([]byte("scratch data")); err != nil {
		log.Warn().Msgf("[app] scratch write failed: %v", err)
	}

	w.Release()
	w.Release() // no-op, release is idempotent

	// Abandon a wrapper on purpose: at some unspecified later time the
	// fallback path frees its buffer and leaves the file handle alone.
	func() {
		abandoned, err := resource.NewWrapper(a.cfg.Demo, a.meter)
		if err != nil {
			log.Err(err).Msg("[app] failed to acquire second wrapper")
			return
		}
		log.Info().Msgf("[app] abandoning wrapper %q to the fallback path", abandoned.Path())
	}()
	a.reclaimer.Force()

	scratch := filepath.Join(a.cfg.Demo.Dir, a.cfg.Demo.ScratchFile)
	if err := os.Remove(scratch); err != nil {
		log.Warn().Msgf("[app] failed to remove %q: %v", scratch, err)
		return
	}
	log.Info().Msgf("[app] %q deleted", scratch)
}

// runWeakCacheDemo shows that a weak handle never keeps the sequence alive
// and that callers always observe a valid rebuild.
func (a *App) runWeakCacheDemo() {
	log.Info().Msg("[app] --- demo 3: weak cache ---")

	first := a.cache.Get()
	second := a.cache.Get()
	log.Info().Msgf(
		"[app] consecutive gets: value-equal=%t, same-instance=%t",
		first.EqualValues(second), first == second,
	)

	// Both strong references are dead past this point, so the forced pass is
	// allowed (not required) to reclaim the target.
	a.reclaimer.Force()
	log.Info().Msgf("[app] after forced pass: handle alive=%t", a.cache.Alive())

	third := a.cache.Get()
	log.Info().Msgf(
		"[app] get after collection: %d values, fingerprint=%x",
		third.Len(), third.Fingerprint(),
	)

	// Lookaside rendition of the same contract: a non-owning key into a
	// strongly-owned, eviction-prone store.
	seq := a.store.Get("sequence")
	again := a.store.Get("sequence")
	log.Info().Msgf("[app] lookaside gets: value-equal=%t", seq.EqualValues(again))
}
