package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/handler"
)

// RegisterInvoices registers the /invoices routes.
func RegisterInvoices(e *echo.Echo, h *handler.InvoiceHandler, auth config.AuthConfig, cache echo.MiddlewareFunc) {
	g := e.Group("/invoices", groupMiddleware(cache)...)
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	guard := writeGuard(auth)
	g.POST("", h.Create, guard...)
	g.PUT("/:id", h.Update, guard...)
	g.DELETE("/:id", h.Delete, guard...)
}
