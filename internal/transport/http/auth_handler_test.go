package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"medbook/backend/internal/service/auth"
)

type fakeAuthSvc struct {
	sendOTPFn   func(ctx context.Context, phone string) (string, error)
	verifyOTPFn func(ctx context.Context, phone, code string) (auth.AuthResult, error)
}

func (f *fakeAuthSvc) SendOTP(ctx context.Context, phone string) (string, error) {
	return f.sendOTPFn(ctx, phone)
}

func (f *fakeAuthSvc) VerifyOTP(ctx context.Context, phone, code string) (auth.AuthResult, error) {
	return f.verifyOTPFn(ctx, phone, code)
}

func TestSendOTP_ReturnsCode(t *testing.T) {
	svc := &fakeAuthSvc{
		sendOTPFn: func(ctx context.Context, phone string) (string, error) {
			if phone != "0501234567" {
				t.Fatalf("phone = %q", phone)
			}
			return "123456", nil
		},
	}
	h := NewAuthHandler(svc, discardLog())

	c, rec := newContext(t, http.MethodPost, "/api/auth/send-otp", `{"phone":"0501234567"}`)
	if err := h.SendOTP(c); err != nil {
		t.Fatalf("SendOTP error: %v", err)
	}

	var resp sendOTPResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "123456" {
		t.Fatalf("code = %q, want 123456", resp.Code)
	}
}

func TestVerifyOTP_InvalidCodeMapsTo401(t *testing.T) {
	svc := &fakeAuthSvc{
		verifyOTPFn: func(ctx context.Context, phone, code string) (auth.AuthResult, error) {
			return auth.AuthResult{}, auth.ErrInvalidCode
		},
	}
	h := NewAuthHandler(svc, discardLog())

	c, _ := newContext(t, http.MethodPost, "/api/auth/verify-otp", `{"phone":"0501234567","code":"000000"}`)
	err := h.VerifyOTP(c)
	if got := httpStatus(t, err); got != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", got, http.StatusUnauthorized)
	}
}

func TestVerifyOTP_ReturnsTokenAndUser(t *testing.T) {
	svc := &fakeAuthSvc{
		verifyOTPFn: func(ctx context.Context, phone, code string) (auth.AuthResult, error) {
			return auth.AuthResult{
				Token: "signed-token",
				User:  auth.UserView{ID: testUserID, Phone: phone, Verified: true},
			}, nil
		},
	}
	h := NewAuthHandler(svc, discardLog())

	c, rec := newContext(t, http.MethodPost, "/api/auth/verify-otp", `{"phone":"0501234567","code":"123456"}`)
	if err := h.VerifyOTP(c); err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	var resp auth.AuthResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "signed-token" || resp.User.ID != testUserID || !resp.User.Verified {
		t.Fatalf("response = %+v", resp)
	}
}
