package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/biztime/internal/model"
	"github.com/iliyamo/biztime/internal/repository"
)

// IndustryStore is the persistence the industry routes need.
type IndustryStore interface {
	ListWithCompanies(ctx context.Context) ([]model.IndustryCompanies, error)
	Create(ctx context.Context, ind *model.Industry) error
	Associate(ctx context.Context, indCode, compCode string) error
}

// IndustryHandler serves /industries.
type IndustryHandler struct {
	Industries IndustryStore
}

func NewIndustryHandler(store IndustryStore) *IndustryHandler {
	return &IndustryHandler{Industries: store}
}

type createIndustryReq struct {
	Code     string `json:"code" validate:"required"`
	Industry string `json:"industry" validate:"required"`
}

type associateReq struct {
	CompCode string `json:"comp_code" validate:"required"`
}

// List handles GET /industries.
func (h *IndustryHandler) List(c echo.Context) error {
	industries, err := h.Industries.ListWithCompanies(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"industries": industries})
}

// Create handles POST /industries.
func (h *IndustryHandler) Create(c echo.Context) error {
	var req createIndustryReq
	if err := bind(c, &req); err != nil {
		return err
	}
	industry := &model.Industry{Code: req.Code, Industry: req.Industry}
	if err := h.Industries.Create(c.Request().Context(), industry); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"industry": industry})
}

// Associate handles PUT /industries/:code, linking the company in the body
// to the industry in the path.
func (h *IndustryHandler) Associate(c echo.Context) error {
	var req associateReq
	if err := bind(c, &req); err != nil {
		return err
	}
	// A repeated pair is a client error, not a store failure.
	if err := h.Industries.Associate(c.Request().Context(), c.Param("code"), req.CompCode); err != nil {
		if errors.Is(err, repository.ErrAlreadyAssociated) {
			return badRequest("Industry already associated with that company")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
