package controller

import (
	"encoding/json"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/memlabgo/memlab/pkg/k8s/probe/liveness"
)

const livenessRoutePath = "/k8s/probe"

type livenessResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// LivenessController serves the cached probe answer.
type LivenessController struct {
	probe liveness.Prober
}

func NewLivenessController(probe liveness.Prober) *LivenessController {
	return &LivenessController{probe: probe}
}

func (c *LivenessController) Get(ctx *fasthttp.RequestCtx) {
	resp := livenessResponse{Status: fasthttp.StatusOK, Message: "I'm fine :D"}
	if !c.probe.IsAlive() {
		resp = livenessResponse{Status: fasthttp.StatusServiceUnavailable, Message: "not alive"}
	}
	ctx.SetStatusCode(resp.Status)
	ctx.SetContentType("application/json; charset=utf-8")
	_ = json.NewEncoder(ctx).Encode(resp)
}

func (c *LivenessController) AddRoute(r *router.Router) {
	r.GET(livenessRoutePath, c.Get)
}
