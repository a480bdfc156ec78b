package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/handler"
)

// RegisterIndustries registers the /industries routes.  PUT links a company
// to the industry named in the path.
func RegisterIndustries(e *echo.Echo, h *handler.IndustryHandler, auth config.AuthConfig, cache echo.MiddlewareFunc) {
	g := e.Group("/industries", groupMiddleware(cache)...)
	g.GET("", h.List)

	guard := writeGuard(auth)
	g.POST("", h.Create, guard...)
	g.PUT("/:code", h.Associate, guard...)
}
