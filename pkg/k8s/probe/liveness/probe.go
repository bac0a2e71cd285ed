package liveness

import (
	"context"
	"sync/atomic"
	"time"
)

// Service is anything whose liveness can be polled.
type Service interface {
	IsAlive(ctx context.Context) bool
}

type Prober interface {
	Watch(svc Service)
	IsAlive() bool
}

// Probe polls a watched service on a fixed cadence and caches the last
// answer for the HTTP probe route.
type Probe struct {
	timeout time.Duration
	alive   atomic.Bool
}

func NewProbe(timeout time.Duration) *Probe {
	return &Probe{timeout: timeout}
}

// Watch polls svc until the process exits. Non-blocking.
func (p *Probe) Watch(svc Service) {
	poll := func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		p.alive.Store(svc.IsAlive(ctx))
	}
	poll()

	go func() {
		ticker := time.NewTicker(p.timeout)
		defer ticker.Stop()
		for range ticker.C {
			poll()
		}
	}()
}

func (p *Probe) IsAlive() bool {
	return p.alive.Load()
}
