package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const userIDContextKey = "medbook.user_id"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// RequireAuth resolves the Authorization header before the engine runs.
// Downstream handlers read the caller with callerID.
func RequireAuth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			userID, err := parser.ParseToken(strings.TrimSpace(token))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get(userIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}

// RateLimit applies a per-client token bucket keyed by remote address.
func RateLimit(rps float64, burst int, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiterFor(c.RealIP()).Allow() {
				log.Warn("rate limit exceeded", slog.String("remote", c.RealIP()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
