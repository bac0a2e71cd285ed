package controller

import "github.com/fasthttp/router"

// HttpController attaches one or more routes to the observation server.
type HttpController interface {
	AddRoute(r *router.Router)
}
