package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"medbook/backend/internal/service/directory"
)

type directoryService interface {
	Doctors(ctx context.Context, fieldID *uuid.UUID) ([]directory.DoctorView, error)
	MedicalFields(ctx context.Context) ([]directory.FieldView, error)
	Search(ctx context.Context, query string) (directory.SearchResult, error)
}

type DirectoryHandler struct {
	svc directoryService
	log *slog.Logger
}

func NewDirectoryHandler(svc directoryService, log *slog.Logger) *DirectoryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DirectoryHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.directory")),
	}
}

func (h *DirectoryHandler) Register(g *echo.Group) {
	g.GET("/doctors", h.Doctors)
	g.GET("/medical-fields", h.MedicalFields)
	g.GET("/search", h.Search)
}

func (h *DirectoryHandler) Doctors(c echo.Context) error {
	var fieldID *uuid.UUID
	if raw := c.QueryParam("fieldId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid fieldId")
		}
		fieldID = &id
	}

	doctors, err := h.svc.Doctors(c.Request().Context(), fieldID)
	if err != nil {
		h.log.Error("doctor listing failed", slog.Any("err", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *DirectoryHandler) MedicalFields(c echo.Context) error {
	fields, err := h.svc.MedicalFields(c.Request().Context())
	if err != nil {
		h.log.Error("medical field listing failed", slog.Any("err", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, fields)
}

func (h *DirectoryHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	result, err := h.svc.Search(c.Request().Context(), query)
	if err != nil {
		h.log.Error("search failed", slog.Any("err", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, result)
}
