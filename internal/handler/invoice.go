package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/metrics"
	"github.com/iliyamo/biztime/internal/model"
	"github.com/iliyamo/biztime/internal/queue"
	"github.com/iliyamo/biztime/internal/repository"
	"github.com/iliyamo/biztime/internal/service"
)

// InvoiceStore is the persistence the invoice routes need.
type InvoiceStore interface {
	List(ctx context.Context) ([]model.InvoiceSummary, error)
	GetByID(ctx context.Context, id int64) (*model.InvoiceDetail, error)
	Create(ctx context.Context, compCode string, amt float64) (*model.Invoice, error)
	UpdatePayment(ctx context.Context, id int64, amt float64, paid bool) (*model.Invoice, model.PaymentChange, error)
	Delete(ctx context.Context, id int64) (*model.Invoice, error)
}

// InvoiceHandler serves /invoices.
type InvoiceHandler struct {
	Invoices InvoiceStore
	Events   service.Publisher
}

func NewInvoiceHandler(store InvoiceStore, events service.Publisher) *InvoiceHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &InvoiceHandler{Invoices: store, Events: events}
}

type createInvoiceReq struct {
	CompCode string  `json:"comp_code" validate:"required"`
	Amt      float64 `json:"amt" validate:"required"`
}

// Paid is a pointer so an explicit false is told apart from a missing field.
type updateInvoiceReq struct {
	Amt  float64 `json:"amt" validate:"required"`
	Paid *bool   `json:"paid" validate:"required"`
}

func invoiceID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, badRequest("invalid invoice id")
	}
	return id, nil
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c echo.Context) error {
	invoices, err := h.Invoices.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": invoices})
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	invoice, err := h.Invoices.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return notFound("invoice not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req createInvoiceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	invoice, err := h.Invoices.Create(ctx, req.CompCode, req.Amt)
	if err != nil {
		return err
	}
	_ = h.Events.Publish(ctx, queue.NewInvoiceEvent(queue.InvoiceCreated, invoice))
	return c.JSON(http.StatusCreated, echo.Map{"invoice": invoice})
}

// Update handles PUT /invoices/:id.  Settling stamps paid_date, reopening
// clears it and an unchanged paid flag leaves it alone.
func (h *InvoiceHandler) Update(c echo.Context) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	var req updateInvoiceReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	// The repository decides settle/reopen/unchanged under a row lock.
	invoice, change, err := h.Invoices.UpdatePayment(ctx, id, req.Amt, *req.Paid)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return notFound("invoice not found")
		}
		return err
	}
	metrics.RecordPaymentChange(change.String())
	// Only a change of the paid flag is worth an event; publishing is best
	// effort and the publisher logs its own failures.
	if typ, ok := queue.PaymentEventType(change); ok {
		_ = h.Events.Publish(ctx, queue.NewInvoiceEvent(typ, invoice))
	}
	return c.JSON(http.StatusOK, echo.Map{"invoice": invoice})
}

// Delete handles DELETE /invoices/:id.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	invoice, err := h.Invoices.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return notFound("invoice not found")
		}
		return err
	}
	_ = h.Events.Publish(ctx, queue.NewInvoiceEvent(queue.InvoiceDeleted, invoice))
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}
