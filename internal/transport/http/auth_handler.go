package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"medbook/backend/internal/service/auth"
)

type authService interface {
	SendOTP(ctx context.Context, phone string) (string, error)
	VerifyOTP(ctx context.Context, phone, code string) (auth.AuthResult, error)
}

type AuthHandler struct {
	svc authService
	log *slog.Logger
}

func NewAuthHandler(svc authService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		svc: svc,
		log: log.With(slog.String("component", "http.auth")),
	}
}

func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/auth/send-otp", h.SendOTP)
	g.POST("/auth/verify-otp", h.VerifyOTP)
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type sendOTPResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	code, err := h.svc.SendOTP(c.Request().Context(), req.Phone)
	if err != nil {
		return h.mapError(err, "send_otp")
	}

	// The code is returned in the response body; SMS delivery is not wired.
	return c.JSON(http.StatusOK, sendOTPResponse{Message: "OTP sent successfully.", Code: code})
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.svc.VerifyOTP(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return h.mapError(err, "verify_otp")
	}

	h.log.Info("user authenticated", slog.String("user_id", result.User.ID.String()))
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) mapError(err error, op string) error {
	if errors.Is(err, auth.ErrInvalidCode) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired OTP")
	}
	var vErr *auth.ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
	}
	h.log.Error("auth operation failed", slog.String("op", op), slog.Any("err", err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
