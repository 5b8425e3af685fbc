package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/privacy2run/internal/handler"
)

// RegisterRoutes wires every endpoint of the service onto the provided
// Echo instance. The route table deliberately mirrors the original
// deployment: the landing page, the two-legged OAuth endpoint, the athlete
// activity dump, the uptime probe and the gated debug dump. The cache
// middleware only wraps the athlete listing; everything else is either
// trivially cheap or must never be cached (the OAuth callback mutates
// state). Both middlewares degrade to pass-through when Redis is absent.
func RegisterRoutes(e *echo.Echo, a *handler.AppHandler, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	e.GET("/", a.Root)
	e.GET("/oauth", a.OAuth)
	e.GET("/athletes/:id", a.Athlete, cache)
	e.GET("/uptime", a.Uptime)
	e.GET("/debug-oauth", a.DebugOAuth)
}
