package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/service/appointments"
	"medbook/backend/internal/store"
)

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (appointments.View, error)
	Cancel(ctx context.Context, userID, appointmentID uuid.UUID) (appointments.View, error)
	Reschedule(ctx context.Context, userID, appointmentID uuid.UUID, newAt time.Time) (appointments.View, error)
	List(ctx context.Context, userID uuid.UUID, filter store.ListFilter) ([]appointments.View, error)
}

type AppointmentsHandler struct {
	svc appointmentsService
	log *slog.Logger
}

func NewAppointmentsHandler(svc appointmentsService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.appointments")),
	}
}

func (h *AppointmentsHandler) Register(g *echo.Group) {
	g.GET("/appointments", h.List)
	g.GET("/appointments/upcoming", h.ListUpcoming)
	g.GET("/appointments/past", h.ListPast)
	g.POST("/appointments", h.Create)
	g.PUT("/appointments/:id/cancel", h.Cancel)
	g.PUT("/appointments/:id/reschedule", h.Reschedule)
}

type createAppointmentRequest struct {
	DoctorID        uuid.UUID       `json:"doctorId"`
	AppointmentDate domain.WallTime `json:"appointmentDate"`
	Notes           string          `json:"notes"`
}

func (h *AppointmentsHandler) Create(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	view, err := h.svc.Create(c.Request().Context(), appointments.CreateInput{
		UserID:        userID,
		DoctorID:      req.DoctorID,
		AppointmentAt: req.AppointmentDate.Time,
		Notes:         req.Notes,
	})
	if err != nil {
		return h.mapError(c, err, "create")
	}

	h.log.Info("appointment created",
		slog.String("appointment_id", view.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("doctor_id", view.DoctorID.String()),
	)
	return c.JSON(http.StatusOK, view)
}

func (h *AppointmentsHandler) Cancel(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	view, err := h.svc.Cancel(c.Request().Context(), userID, appointmentID)
	if err != nil {
		return h.mapError(c, err, "cancel")
	}

	h.log.Info("appointment cancelled",
		slog.String("appointment_id", appointmentID.String()),
		slog.String("user_id", userID.String()),
	)
	return c.JSON(http.StatusOK, view)
}

type rescheduleRequest struct {
	NewDate domain.WallTime `json:"newDate"`
}

func (h *AppointmentsHandler) Reschedule(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	view, err := h.svc.Reschedule(c.Request().Context(), userID, appointmentID, req.NewDate.Time)
	if err != nil {
		return h.mapError(c, err, "reschedule")
	}

	h.log.Info("appointment rescheduled",
		slog.String("appointment_id", appointmentID.String()),
		slog.String("user_id", userID.String()),
	)
	return c.JSON(http.StatusOK, view)
}

func (h *AppointmentsHandler) List(c echo.Context) error {
	return h.list(c, store.FilterAll)
}

func (h *AppointmentsHandler) ListUpcoming(c echo.Context) error {
	return h.list(c, store.FilterUpcoming)
}

func (h *AppointmentsHandler) ListPast(c echo.Context) error {
	return h.list(c, store.FilterPast)
}

func (h *AppointmentsHandler) list(c echo.Context, filter store.ListFilter) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	views, err := h.svc.List(c.Request().Context(), userID, filter)
	if err != nil {
		return h.mapError(c, err, "list")
	}
	return c.JSON(http.StatusOK, views)
}

func (h *AppointmentsHandler) mapError(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, appointments.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not allowed")
	case errors.Is(err, store.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "time slot is already booked")
	case errors.Is(err, appointments.ErrInvalidTiming):
		return echo.NewHTTPError(http.StatusBadRequest, "appointment time must be in the future")
	}
	var vErr *appointments.ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
	}
	h.log.Error("appointment operation failed", slog.String("op", op), slog.Any("err", err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
