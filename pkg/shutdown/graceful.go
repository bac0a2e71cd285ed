package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrGracefulTimeout = errors.New("graceful shutdown timed out")

// Gracefuller is the registration half of the shutdown contract: components
// Add themselves before starting and Done when fully stopped.
type Gracefuller interface {
	Add(delta int)
	Done()
}

// Graceful waits for a cancel signal (OS signal or context cancellation) and
// then awaits every registered component, up to a configurable timeout.
type Graceful struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewGraceful(ctx context.Context, cancel context.CancelFunc) *Graceful {
	return &Graceful{ctx: ctx, cancel: cancel, timeout: time.Minute}
}

func (g *Graceful) SetGracefulTimeout(timeout time.Duration) {
	g.timeout = timeout
}

func (g *Graceful) Add(delta int) { g.wg.Add(delta) }

func (g *Graceful) Done() { g.wg.Done() }

// ListenCancelAndAwait blocks until the context is cancelled or an OS signal
// arrives, then waits for registered components to finish. Returns
// ErrGracefulTimeout if they don't make it in time.
func (g *Graceful) ListenCancelAndAwait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("[shutdown] received signal %q, shutting down", sig)
		g.cancel()
	case <-g.ctx.Done():
		log.Info().Msg("[shutdown] context cancelled, shutting down")
	}

	awaited := make(chan struct{})
	go func() {
		defer close(awaited)
		g.wg.Wait()
	}()

	select {
	case <-awaited:
		return nil
	case <-time.After(g.timeout):
		return ErrGracefulTimeout
	}
}
