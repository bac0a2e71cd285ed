package controller

import (
	"github.com/VictoriaMetrics/metrics"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
)

const metricsRoutePath = "/metrics"

// MetricsController exposes the VictoriaMetrics registry in Prometheus text
// format.
type MetricsController struct{}

func NewMetricsController() *MetricsController {
	return &MetricsController{}
}

func (c *MetricsController) Get(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	metrics.WritePrometheus(ctx, true)
}

func (c *MetricsController) AddRoute(r *router.Router) {
	r.GET(metricsRoutePath, c.Get)
}
