package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type ServerConfig struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type Handlers struct {
	Auth         *AuthHandler
	Appointments *AppointmentsHandler
	Slots        *SlotsHandler
	Directory    *DirectoryHandler
}

// NewServer assembles the echo instance: public auth and directory routes,
// token-guarded appointment routes.
func NewServer(cfg ServerConfig, parser TokenParser, h Handlers, log *slog.Logger) *echo.Echo {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if cfg.RequestTimeout > 0 {
		e.Use(echomw.TimeoutWithConfig(echomw.TimeoutConfig{Timeout: cfg.RequestTimeout}))
	}
	if cfg.RateLimitRPS > 0 {
		e.Use(RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, log))
	}

	api := e.Group("/api")
	h.Auth.Register(api)
	h.Directory.Register(api)
	h.Slots.Register(api)

	authed := api.Group("", RequireAuth(parser))
	h.Appointments.Register(authed)

	return e
}
