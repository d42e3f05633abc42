// Package httpx holds the JSON request/response helpers used by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"taskflow-backend/internal/apperr"
)

const maxBodyBytes = 1 << 20

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDetail writes the {"detail": msg} error body.
func WriteDetail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"detail": msg})
}

// Decode reads a single JSON object into dst. Unknown fields, trailing data
// and oversized bodies are rejected as invalid input.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var (
			syntaxErr *json.SyntaxError
			typeErr   *json.UnmarshalTypeError
			maxErr    *http.MaxBytesError
		)
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("request body is required")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.Invalid("malformed JSON body")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return apperr.Invalid(fmt.Sprintf("field %q has the wrong type", typeErr.Field))
			}
			return apperr.Invalid("request body has the wrong shape")
		case errors.As(err, &maxErr):
			return apperr.Invalid("request body too large")
		default:
			// unknown fields and custom unmarshalers end up here
			return apperr.Invalid(err.Error())
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperr.Invalid("request body must contain a single JSON object")
	}
	return nil
}

// StatusFor maps an error kind to its HTTP status and a default detail.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperr.ErrNotConfigured):
		return http.StatusFailedDependency, "AI advisory is not configured"
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, "AI advisory is temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Error writes err as a structured response. Unclassified errors are logged
// and hidden behind a generic 500.
func Error(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error) {
	status, msg := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		WriteDetail(w, status, msg)
		return
	}
	if d, ok := apperr.Detail(err); ok {
		msg = d
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	log.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	WriteDetail(w, status, msg)
}
