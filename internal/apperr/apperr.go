// Package apperr holds the error kinds shared by every layer. Domain code
// wraps one of these sentinels; the HTTP layer maps them to status codes.
package apperr

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("advisory unavailable")
	ErrNotConfigured = errors.New("advisory not configured")
)

// New returns an error of the given kind whose message is safe to show to
// clients. errors.Is(err, kind) reports true.
func New(kind error, msg string) error {
	return &detailError{msg: msg, kind: kind}
}

// Invalid is shorthand for New(ErrInvalidInput, msg).
func Invalid(msg string) error {
	return New(ErrInvalidInput, msg)
}

type detailError struct {
	msg  string
	kind error
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

// Detail returns the client-facing message carried by err, if any.
func Detail(err error) (string, bool) {
	var d *detailError
	if errors.As(err, &d) {
		return d.msg, true
	}
	return "", false
}
