package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"taskflow-backend/internal/apperr"
)

// Account is a registered identity. PasswordHash never leaves the service.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists accounts. CreateAccount must enforce email uniqueness at
// write time and return ErrEmailTaken on a duplicate. Lookups return
// ErrAccountNotFound when nothing matches.
type Store interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, email string) (Account, error)
	AccountByID(ctx context.Context, id string) (Account, error)
}

var (
	ErrEmailTaken      = apperr.New(apperr.ErrConflict, "Email already registered")
	ErrBadCredentials  = apperr.New(apperr.ErrUnauthorized, "Incorrect email or password")
	ErrInvalidToken    = apperr.New(apperr.ErrUnauthorized, "Could not validate credentials")
	ErrTokenExpired    = apperr.New(apperr.ErrUnauthorized, "Could not validate credentials")
	ErrAccountNotFound = apperr.New(apperr.ErrUnauthorized, "Could not validate credentials")
)

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Invalid("email is not a valid address")
	}
	return nil
}
