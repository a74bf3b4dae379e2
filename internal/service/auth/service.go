package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medbook/backend/internal/clock"
	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

var (
	// ErrInvalidCode means the one-time code is wrong, expired, or already used.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrInvalidToken means the bearer token failed verification.
	ErrInvalidToken = errors.New("invalid token")
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type UserView struct {
	ID       uuid.UUID `json:"id"`
	Phone    string    `json:"phone"`
	Name     string    `json:"name,omitempty"`
	Verified bool      `json:"verified"`
}

type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type Service struct {
	otps     store.OTPRepository
	users    store.UserRepository
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
	otpTTL   time.Duration
	log      *slog.Logger
}

func NewService(otps store.OTPRepository, users store.UserRepository, clk clock.Clock, secret []byte, tokenTTL, otpTTL time.Duration, log *slog.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		otps:     otps,
		users:    users,
		clock:    clk,
		secret:   secret,
		tokenTTL: tokenTTL,
		otpTTL:   otpTTL,
		log:      log.With(slog.String("component", "auth")),
	}
}

// SendOTP issues a fresh one-time code for the phone, purging expired codes
// first. The code is returned to the caller; SMS delivery is out of scope.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", validationError("phone is required")
	}

	code, err := sixDigitCode()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	if err := s.otps.DeleteExpired(ctx, now); err != nil {
		return "", err
	}
	_, err = s.otps.Save(ctx, domain.OTPCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL),
	})
	if err != nil {
		return "", err
	}

	s.log.Info("otp issued", slog.String("phone", phone))
	return code, nil
}

// VerifyOTP consumes the code, gets or creates a verified user for the phone,
// and returns a signed token.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (AuthResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return AuthResult{}, validationError("phone is required")
	}
	if strings.TrimSpace(code) == "" {
		return AuthResult{}, validationError("code is required")
	}

	ok, err := s.otps.Consume(ctx, phone, strings.TrimSpace(code), s.clock.Now())
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, ErrInvalidCode
	}

	user, err := s.users.GetByPhone(ctx, phone)
	switch {
	case errors.Is(err, store.ErrNotFound):
		user, err = s.users.Create(ctx, domain.User{Phone: phone, Verified: true})
		if err != nil {
			return AuthResult{}, err
		}
	case err != nil:
		return AuthResult{}, err
	}

	if !user.Verified {
		user.Verified = true
		user, err = s.users.Update(ctx, user)
		if err != nil {
			return AuthResult{}, err
		}
	}

	token, err := s.signToken(user)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		Token: token,
		User: UserView{
			ID:       user.ID,
			Phone:    user.Phone,
			Name:     user.Name,
			Verified: user.Verified,
		},
	}, nil
}

// ParseToken verifies a bearer token and returns the caller's user id.
func (s *Service) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) signToken(user domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"phone": user.Phone,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	return token.SignedString(s.secret)
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
