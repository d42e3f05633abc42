package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"taskflow-backend/internal/apperr"
)

func TestDecode(t *testing.T) {
	type body struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"ok", `{"title":"a","count":1}`, false},
		{"empty", ``, true},
		{"malformed", `{"title":`, true},
		{"wrong type", `{"count":"one"}`, true},
		{"unknown field", `{"title":"a","extra":true}`, true},
		{"trailing", `{"title":"a"}{"title":"b"}`, true},
		{"too large", `{"title":"` + strings.Repeat("x", maxBodyBytes) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.in))
			var dst body
			err := Decode(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidInput) {
					t.Errorf("err = %v, want invalid input", err)
				}
				return
			}
			if err != nil || dst.Title != "a" || dst.Count != 1 {
				t.Errorf("dst = %+v, err = %v", dst, err)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Invalid("x"), http.StatusBadRequest},
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.New(apperr.ErrForbidden, "x"), http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", apperr.New(apperr.ErrNotFound, "x")), http.StatusNotFound},
		{apperr.ErrConflict, http.StatusConflict},
		{apperr.ErrNotConfigured, http.StatusFailedDependency},
		{apperr.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got, _ := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest("GET", "/", nil), zap.NewNop().Sugar(), errors.New("pq: password authentication failed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("pq:")) {
		t.Errorf("internal error leaked: %s", rec.Body)
	}
}

func TestErrorUsesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest("GET", "/", nil), zap.NewNop().Sugar(), apperr.New(apperr.ErrNotFound, "Task not found"))
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound || body["detail"] != "Task not found" {
		t.Errorf("%d %v", rec.Code, body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}
