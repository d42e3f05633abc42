package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
)

// eventLog is an analytics.Sink that keeps events in memory.
type eventLog struct{ events []analytics.Event }

func (l *eventLog) WriteEvent(_ context.Context, e analytics.Event) error {
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) names() []string {
	var out []string
	for _, e := range l.events {
		out = append(out, e.Name)
	}
	return out
}

func newTestHandler(mask bool) (*Handler, *Service, *eventLog) {
	svc, _ := newTestService()
	log := zap.NewNop().Sugar()
	events := &eventLog{}
	return NewHandler(svc, analytics.NewRecorder(events, log), log, mask), svc, events
}

func asUser(req *http.Request, uid string) *http.Request {
	ctx := auth.WithAccount(req.Context(), auth.Account{ID: uid})
	return req.WithContext(analytics.WithUserID(ctx, uid))
}

func TestHandlerCreateAndUpdateEvents(t *testing.T) {
	h, _, events := newTestHandler(true)

	req := asUser(httptest.NewRequest("POST", "/tasks", strings.NewReader(`{"title":"Secret plan","priority":"high"}`)), "u1")
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var created Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	req = asUser(httptest.NewRequest("PUT", "/tasks/"+created.ID, strings.NewReader(`{"status":"completed"}`)), "u1")
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}

	req = asUser(httptest.NewRequest("PUT", "/tasks/"+created.ID, strings.NewReader(`{"status":"pending"}`)), "u1")
	req.SetPathValue("id", created.ID)
	h.Update(httptest.NewRecorder(), req)

	got := strings.Join(events.names(), ",")
	want := "task_created,task_updated,task_completed,task_updated,task_uncompleted"
	if got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
	for _, e := range events.events {
		for k, v := range e.Properties {
			if s, ok := v.(string); ok && strings.Contains(s, "Secret") {
				t.Errorf("event %s property %s leaks task text", e.Name, k)
			}
		}
	}
}

func TestHandlerEmptyPatchEmitsNoEvent(t *testing.T) {
	h, svc, events := newTestHandler(true)
	task, _ := svc.Create(context.Background(), "u1", CreateInput{Title: "a"})

	req := asUser(httptest.NewRequest("PUT", "/tasks/"+task.ID, strings.NewReader(`{}`)), "u1")
	req.SetPathValue("id", task.ID)
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body)
	}
	if len(events.events) != 0 {
		t.Errorf("events = %v", events.names())
	}
}

func TestHandlerForeignMasking(t *testing.T) {
	for _, tc := range []struct {
		mask bool
		want int
	}{{true, http.StatusNotFound}, {false, http.StatusForbidden}} {
		h, svc, _ := newTestHandler(tc.mask)
		task, _ := svc.Create(context.Background(), "owner", CreateInput{Title: "a"})

		req := asUser(httptest.NewRequest("DELETE", "/tasks/"+task.ID, nil), "intruder")
		req.SetPathValue("id", task.ID)
		rec := httptest.NewRecorder()
		h.Delete(rec, req)
		if rec.Code != tc.want {
			t.Errorf("mask=%v: %d, want %d", tc.mask, rec.Code, tc.want)
		}
		if _, err := svc.Get(context.Background(), "owner", task.ID); err != nil {
			t.Errorf("task removed by intruder: %v", err)
		}
	}
}

func TestHandlerWithoutIdentity(t *testing.T) {
	h, _, _ := newTestHandler(true)
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", rec.Code)
	}
}
