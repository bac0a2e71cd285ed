package main

import (
	"context"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/memlabgo/memlab/internal/demo"
	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/gc"
	"github.com/memlabgo/memlab/pkg/k8s/probe/liveness"
	"github.com/memlabgo/memlab/pkg/shutdown"
)

// setMaxProcs automatically sets the optimal GOMAXPROCS value (CPU parallelism)
// based on the available CPUs and cgroup/docker CPU quotas (uses automaxprocs).
func setMaxProcs() {
	if _, err := maxprocs.Set(); err != nil {
		log.Err(err).Msg("[main] setting up GOMAXPROCS value failed")
		panic(err)
	}
	log.Info().Msgf("[main] optimized GOMAXPROCS=%d was set up", runtime.GOMAXPROCS(0))
}

// loadCfg resolves the config path from the environment and loads it.
func loadCfg() (*config.Config, error) {
	path, err := config.PathFromEnv()
	if err != nil {
		log.Err(err).Msg("[config] failed to resolve config path")
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Err(err).Msg("[config] failed to load")
		return nil, err
	}
	log.Info().Msgf("[config] config loaded from '%v'", path)
	return cfg, nil
}

func setLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logs.Level)
	if err != nil {
		log.Warn().Msgf("[main] unknown log level %q, keeping %q", cfg.Logs.Level, zerolog.GlobalLevel())
		return
	}
	zerolog.SetGlobalLevel(level)
}

// Main entrypoint: configures and runs the lifecycle demos. The exit code is
// always success; every anticipated error is caught and logged along the way.
func main() {
	// Create a root context for graceful shutdown and cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local env overrides, if any.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("[main] no .env file found")
	}

	// Optimize GOMAXPROCS for the current environment.
	setMaxProcs()

	cfg, cfgError := loadCfg()
	if cfgError != nil {
		log.Err(cfgError).Msg("[main] failed to load demo config")
		return
	}
	setLogLevel(cfg)

	// Setup graceful shutdown handler (SIGTERM, SIGINT, etc).
	gracefulShutdown := shutdown.NewGraceful(ctx, cancel)
	gracefulShutdown.SetGracefulTimeout(time.Minute)

	// Liveness probe for the observation server's health route.
	probe := liveness.NewProbe(cfg.K8S.Probe.Timeout)

	app, err := demo.NewApp(ctx, cfg, probe)
	if err != nil {
		log.Err(err).Msg("[main] failed to init demo app")
		return
	}

	// Run the periodic forced-GC loop when enabled.
	if cfg.ForceGC.Enabled {
		gcCtx, gcCancel := context.WithCancel(context.Background())
		defer gcCancel()
		gc.Run(gcCtx, cfg.ForceGC)
	}

	// Run the demos; once they finish (and the observation server, if
	// enabled, has stopped) the root context is cancelled and the process
	// exits cleanly.
	gracefulShutdown.Add(1)
	go func() {
		app.Start(gracefulShutdown)
		cancel()
	}()

	if err := gracefulShutdown.ListenCancelAndAwait(); err != nil {
		log.Err(err).Msg("failed to gracefully shut down service")
	}
}
