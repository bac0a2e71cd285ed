package api

import (
	"encoding/json"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog/log"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/fasthttp"

	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

const stateRoutePath = "/demo/state"

// StateController serves a JSON snapshot of the demo counters.
type StateController struct {
	meter metrics.Meter
}

func NewStateController(meter metrics.Meter) *StateController {
	return &StateController{meter: meter}
}

func (c *StateController) Get(ctx *fasthttp.RequestCtx) {
	log.Debug().Msgf("[api] %s requested", strconv.B2S(ctx.Path()))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("application/json; charset=utf-8")
	_ = json.NewEncoder(ctx).Encode(c.meter.Snapshot())
}

func (c *StateController) AddRoute(r *router.Router) {
	r.GET(stateRoutePath, c.Get)
}
