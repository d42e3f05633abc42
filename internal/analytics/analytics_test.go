package analytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type MockSink struct {
	events    []Event
	WriteFunc func(ctx context.Context, e Event) error
}

func (m *MockSink) WriteEvent(ctx context.Context, e Event) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, e)
	}
	m.events = append(m.events, e)
	return nil
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Platform", " Android ")
	req.Header.Set("X-Session-Id", "s1")
	req.Header.Set("X-App-Version", "1.2.3")
	req.Header.Set("Accept-Language", "ru-RU")
	req = req.WithContext(WithUserID(req.Context(), "u1"))

	env := FromRequest(req)
	want := Envelope{UserID: "u1", SessionID: "s1", Platform: "android", AppVersion: "1.2.3", DeviceLocale: "ru-RU"}
	if env != want {
		t.Errorf("env = %+v, want %+v", env, want)
	}

	req.Header.Set("X-Platform", "windows-phone")
	if got := FromRequest(req).Platform; got != "unknown" {
		t.Errorf("platform = %q", got)
	}
}

func TestRecorderTrack(t *testing.T) {
	sink := &MockSink{}
	rec := NewRecorder(sink, zap.NewNop().Sugar())

	req := httptest.NewRequest("POST", "/tasks", nil)
	req.Header.Set("Idempotency-Key", "k1")
	rec.Track(req, "u1", "task_created", nil)

	if len(sink.events) != 1 {
		t.Fatalf("events = %d", len(sink.events))
	}
	e := sink.events[0]
	if e.UserID != "u1" || e.SourceEventKey != "k1:task_created" || e.ID == "" || e.Properties == nil {
		t.Errorf("event = %+v", e)
	}
	if e.Time.Location().String() != "UTC" {
		t.Errorf("event time not UTC: %v", e.Time)
	}
}

func TestRecorderScopesKeyPerEvent(t *testing.T) {
	sink := &MockSink{}
	rec := NewRecorder(sink, zap.NewNop().Sugar())

	req := httptest.NewRequest("PUT", "/tasks/t1", nil)
	req.Header.Set("Idempotency-Key", "req-1")
	rec.Track(req, "u1", "task_updated", nil)
	rec.Track(req, "u1", "task_completed", nil)

	if len(sink.events) != 2 {
		t.Fatalf("events = %d", len(sink.events))
	}
	if a, b := sink.events[0].SourceEventKey, sink.events[1].SourceEventKey; a == b {
		t.Errorf("both events share key %q", a)
	}

	if got := EventKey("", "task_updated"); got != "" {
		t.Errorf("EventKey without request key = %q", got)
	}
}

func TestRecorderSkipsAnonymous(t *testing.T) {
	sink := &MockSink{}
	NewRecorder(sink, zap.NewNop().Sugar()).Track(httptest.NewRequest("GET", "/", nil), "", "app_opened", nil)
	if len(sink.events) != 0 {
		t.Errorf("anonymous event recorded: %+v", sink.events)
	}
}

func TestRecorderSwallowsSinkErrors(t *testing.T) {
	sink := &MockSink{WriteFunc: func(context.Context, Event) error { return errors.New("db down") }}
	rec := NewRecorder(sink, zap.NewNop().Sugar())
	rec.Log(context.Background(), Envelope{UserID: "u1"}, "task_deleted", nil, "")

	var nilRec *Recorder
	nilRec.Track(httptest.NewRequest("GET", "/", nil), "u1", "task_deleted", nil)
}

func TestClientEventHandler(t *testing.T) {
	sink := &MockSink{}
	log := zap.NewNop().Sugar()
	h := ClientEventHandler(NewRecorder(sink, log), log)

	post := func(body string, uid string) int {
		req := httptest.NewRequest("POST", "/analytics/events", strings.NewReader(body))
		if uid != "" {
			req = req.WithContext(WithUserID(req.Context(), uid))
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	if code := post(`{"event_name":"dashboard_viewed","properties":{"tab":"week","nested":{"a":1}}}`, "u1"); code != http.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if _, ok := sink.events[0].Properties["nested"]; ok {
		t.Error("nested property kept")
	}
	if sink.events[0].Properties["tab"] != "week" {
		t.Errorf("props = %v", sink.events[0].Properties)
	}

	if code := post(`{"event_name":"task_created"}`, "u1"); code != http.StatusBadRequest {
		t.Errorf("server-side event accepted: %d", code)
	}
	if code := post(`{"event_name":"app_opened"}`, ""); code != http.StatusUnauthorized {
		t.Errorf("anonymous: %d", code)
	}
}
