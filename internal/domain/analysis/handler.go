package analysis

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(customer *echo.Group) {
	customer.GET("/analysis", h.List)
	customer.POST("/analysis", h.Add)
	customer.DELETE("/analysis/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	customerID := auth.UserIDFromContext(c.Request().Context())
	groups, err := h.svc.Grouped(c.Request().Context(), customerID)
	if err != nil {
		return mapError(err)
	}
	if groups == nil {
		groups = []*Group{}
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) Add(c echo.Context) error {
	var inputs []Input
	if err := c.Bind(&inputs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid analysis payload")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.Add(c.Request().Context(), customerID, inputs)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid analysis id")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), customerID, id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
