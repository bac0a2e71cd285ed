package demo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/k8s/probe/liveness"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
	"github.com/memlabgo/memlab/pkg/shutdown"
)

func newTestCfg(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Demo.Dir = t.TempDir()
	cfg.Demo.IllustrateOpenHandle = true
	cfg.Report.Enabled = true
	return cfg
}

// runApp drives a full Start/shutdown cycle and returns once everything
// stopped.
func runApp(t *testing.T, cfg *config.Config) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := shutdown.NewGraceful(ctx, cancel)
	g.SetGracefulTimeout(10 * time.Second)

	app, err := NewApp(ctx, cfg, liveness.NewProbe(50*time.Millisecond))
	require.NoError(t, err)

	g.Add(1)
	go func() {
		app.Start(g)
		cancel()
	}()

	require.NoError(t, g.ListenCancelAndAwait())
}

func TestApp_EndToEnd(t *testing.T) {
	cfg := newTestCfg(t)
	before := metrics.New().Snapshot()

	runApp(t, cfg)

	// Both demo files are gone: a terminal "deleted" state was reached.
	_, err := os.Stat(filepath.Join(cfg.Demo.Dir, cfg.Demo.TempFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.Demo.Dir, cfg.Demo.ScratchFile))
	assert.True(t, os.IsNotExist(err))

	// The observations report was written.
	_, err = os.Stat(filepath.Join(cfg.Demo.Dir, cfg.Report.Path))
	assert.NoError(t, err)

	after := metrics.New().Snapshot()

	// The illustrated delete-before-release flow surfaced exactly one caught
	// I/O error; nothing propagated.
	assert.Equal(t, before.IOErrorsCaught+1, after.IOErrorsCaught)

	// The weak cache demo always builds at least one sequence, and the
	// explicit release path ran.
	assert.Greater(t, after.WeakRebuilds, before.WeakRebuilds)
	assert.Greater(t, after.Releases, before.Releases)
}

func TestApp_NoIllustratedError(t *testing.T) {
	cfg := newTestCfg(t)
	cfg.Demo.IllustrateOpenHandle = false
	before := metrics.New().Snapshot()

	runApp(t, cfg)

	// The direct flow deletes without surfacing the error.
	after := metrics.New().Snapshot()
	assert.Equal(t, before.IOErrorsCaught, after.IOErrorsCaught)

	_, err := os.Stat(filepath.Join(cfg.Demo.Dir, cfg.Demo.TempFile))
	assert.True(t, os.IsNotExist(err))
}

func TestApp_IsAliveAfterStart(t *testing.T) {
	cfg := newTestCfg(t)
	cfg.Report.Enabled = false

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg, liveness.NewProbe(50*time.Millisecond))
	require.NoError(t, err)

	assert.False(t, app.IsAlive(ctx))

	g := shutdown.NewGraceful(ctx, cancel)
	g.Add(1)
	go func() {
		app.Start(g)
		cancel()
	}()

	assert.Eventually(t, func() bool { return app.IsAlive(ctx) }, time.Second, 5*time.Millisecond)
	require.NoError(t, g.ListenCancelAndAwait())
}
