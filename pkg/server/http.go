package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/server/controller"
)

// HTTP is the optional observation server: metrics, liveness, and a demo
// state snapshot. None of the demo semantics depend on it.
type HTTP struct {
	ctx    context.Context
	cfg    config.Server
	server *fasthttp.Server
}

func New(ctx context.Context, cfg config.Server, controllers []controller.HttpController) (*HTTP, error) {
	s := &HTTP{ctx: ctx, cfg: cfg}
	s.initServer(s.buildRouter(controllers))
	return s, nil
}

func (s *HTTP) ListenAndServe() {
	wg := &sync.WaitGroup{}
	defer wg.Wait()

	wg.Add(1)
	go s.serve(wg)

	wg.Add(1)
	go s.shutdown(wg)
}

func (s *HTTP) serve(wg *sync.WaitGroup) {
	defer wg.Done()

	name := s.cfg.Name
	port := s.cfg.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	log.Info().Msgf("[server] %v was started on %v", name, port)
	defer log.Info().Msgf("[server] %v was stopped on %v", name, port)

	if err := s.server.ListenAndServe(port); err != nil {
		log.Error().Err(err).Msgf("[server] %v failed to listen and serve port %v: %v", name, port, err.Error())
	}
}

func (s *HTTP) shutdown(wg *sync.WaitGroup) {
	defer wg.Done()

	<-s.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn().Msgf("[server] %v shutdown failed: %v", s.cfg.Name, err.Error())
		}
		return
	}
}

func (s *HTTP) buildRouter(controllers []controller.HttpController) *router.Router {
	r := router.New()
	for _, contr := range controllers {
		contr.AddRoute(r)
	}
	return r
}

func (s *HTTP) initServer(r *router.Router) {
	s.server = &fasthttp.Server{
		Handler:     r.Handler,
		Name:        s.cfg.Name,
		ReadTimeout: 5 * time.Second,
	}
}
