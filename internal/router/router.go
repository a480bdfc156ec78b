// Package router defines how HTTP routes are registered for the API.
//
// The response cache is attached to the /companies, /invoices and
// /industries groups only.  Health, readiness and metrics must always reflect
// the current state of the process and are never cached.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/handler"
	"github.com/iliyamo/biztime/internal/metrics"
	"github.com/iliyamo/biztime/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and Prometheus metrics.  None of them require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAuth exposes the token endpoint.  It is only mounted when a JWT
// secret is configured.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	if !a.Cfg.Enabled() {
		return
	}
	e.POST("/auth/token", a.Token)
}

// writeGuard returns the middlewares wrapping every write route.  With auth
// disabled writes stay open.
func writeGuard(cfg config.AuthConfig) []echo.MiddlewareFunc {
	if !cfg.Enabled() {
		return nil
	}
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(handler.RoleAdmin),
	}
}

// groupMiddleware wraps an optional middleware for e.Group.  A nil cache
// leaves the group without middleware.
func groupMiddleware(cache echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{cache}
}
