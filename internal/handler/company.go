package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/model"
	"github.com/iliyamo/biztime/internal/queue"
	"github.com/iliyamo/biztime/internal/repository"
	"github.com/iliyamo/biztime/internal/service"
)

// CompanyStore is the persistence the company routes need.
type CompanyStore interface {
	List(ctx context.Context) ([]model.CompanySummary, error)
	GetByCode(ctx context.Context, code string) (*model.CompanyDetail, error)
	Create(ctx context.Context, c *model.Company) error
	Update(ctx context.Context, c *model.Company) error
	Delete(ctx context.Context, code string) error
}

// CompanyHandler serves /companies.
type CompanyHandler struct {
	Companies CompanyStore
	Events    service.Publisher
}

func NewCompanyHandler(store CompanyStore, events service.Publisher) *CompanyHandler {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &CompanyHandler{Companies: store, Events: events}
}

type createCompanyReq struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type updateCompanyReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// List handles GET /companies.
func (h *CompanyHandler) List(c echo.Context) error {
	companies, err := h.Companies.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"companies": companies})
}

// Get handles GET /companies/:code.
func (h *CompanyHandler) Get(c echo.Context) error {
	company, err := h.Companies.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return notFound("company not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"company": company})
}

// Create handles POST /companies.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req createCompanyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	company := &model.Company{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.Companies.Create(c.Request().Context(), company); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"company": company})
}

// Update handles PUT /companies/:code.  The code in the path is immutable.
func (h *CompanyHandler) Update(c echo.Context) error {
	var req updateCompanyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	// code comes from the path; a code in the body is ignored
	company := &model.Company{Code: c.Param("code"), Name: req.Name, Description: req.Description}
	if err := h.Companies.Update(c.Request().Context(), company); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return notFound("company not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"company": company})
}

// Delete handles DELETE /companies/:code.
func (h *CompanyHandler) Delete(c echo.Context) error {
	code := c.Param("code")
	if err := h.Companies.Delete(c.Request().Context(), code); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return notFound("company not found")
		}
		return err
	}
	// Publishing is best effort and never fails the request.
	_ = h.Events.Publish(c.Request().Context(), queue.NewCompanyDeletedEvent(code))
	return c.JSON(http.StatusOK, echo.Map{"status": "deleted"})
}
