package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/handler"
)

// RegisterCompanies registers the /companies routes.  Reads are public;
// writes go through the auth guard when one is configured.
func RegisterCompanies(e *echo.Echo, h *handler.CompanyHandler, auth config.AuthConfig, cache echo.MiddlewareFunc) {
	g := e.Group("/companies", groupMiddleware(cache)...)
	g.GET("", h.List)
	g.GET("/:code", h.Get)

	guard := writeGuard(auth)
	g.POST("", h.Create, guard...)
	g.PUT("/:code", h.Update, guard...)
	g.DELETE("/:code", h.Delete, guard...)
}
