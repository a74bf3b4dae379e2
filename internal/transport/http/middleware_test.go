package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type fakeTokenParser struct {
	parseFn func(token string) (uuid.UUID, error)
}

func (f *fakeTokenParser) ParseToken(token string) (uuid.UUID, error) {
	return f.parseFn(token)
}

func runWithAuth(t *testing.T, parser TokenParser, authorization string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return nil }
	return c, RequireAuth(parser)(next)(c)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	parser := &fakeTokenParser{
		parseFn: func(token string) (uuid.UUID, error) {
			t.Error("parser called without a token")
			return uuid.Nil, nil
		},
	}

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		_, err := runWithAuth(t, parser, header)
		if got := httpStatus(t, err); got != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want %d", header, got, http.StatusUnauthorized)
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	parser := &fakeTokenParser{
		parseFn: func(token string) (uuid.UUID, error) {
			return uuid.Nil, errors.New("bad signature")
		},
	}

	_, err := runWithAuth(t, parser, "Bearer not-valid")
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestRequireAuth_ResolvesCaller(t *testing.T) {
	parser := &fakeTokenParser{
		parseFn: func(token string) (uuid.UUID, error) {
			if token != "good-token" {
				t.Fatalf("token = %q, want good-token", token)
			}
			return testUserID, nil
		},
	}

	c, err := runWithAuth(t, parser, "Bearer good-token")
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	got, err := callerID(c)
	if err != nil {
		t.Fatalf("callerID error: %v", err)
	}
	if got != testUserID {
		t.Fatalf("caller = %s, want %s", got, testUserID)
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	mw := RateLimit(1, 2, discardLog())
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e := echo.New()

	do := func() error {
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		return mw(next)(c)
	}

	if err := do(); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}
	if err := do(); err != nil {
		t.Fatalf("second request rejected: %v", err)
	}
	err := do()
	if got := httpStatus(t, err); got != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", got, http.StatusTooManyRequests)
	}
}

func TestRateLimit_BucketsPerClient(t *testing.T) {
	mw := RateLimit(1, 1, discardLog())
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e := echo.New()

	do := func(addr string) error {
		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		req.RemoteAddr = addr
		c := e.NewContext(req, httptest.NewRecorder())
		return mw(next)(c)
	}

	if err := do("10.0.0.1:1234"); err != nil {
		t.Fatalf("first client rejected: %v", err)
	}
	if err := do("10.0.0.2:1234"); err != nil {
		t.Fatalf("second client rejected: %v", err)
	}
}
