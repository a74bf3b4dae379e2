package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"medbook/backend/internal/domain"
)

type availabilityService interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]domain.TimeOfDay, error)
}

type SlotsHandler struct {
	svc availabilityService
	log *slog.Logger
}

func NewSlotsHandler(svc availabilityService, log *slog.Logger) *SlotsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SlotsHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.slots")),
	}
}

func (h *SlotsHandler) Register(g *echo.Group) {
	g.GET("/time-slots", h.AvailableSlots)
}

func (h *SlotsHandler) AvailableSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}
	date, err := domain.ParseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		h.log.Error("available slots failed",
			slog.String("doctor_id", doctorID.String()),
			slog.Any("err", err),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, slots)
}
