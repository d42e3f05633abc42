package analytics

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskflow-backend/internal/ids"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       string
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	env := Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
	if uid, ok := UserIDFromContext(r.Context()); ok {
		env.UserID = uid
	}
	return env
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(string)
	return uid, ok && uid != ""
}

// SourceEventKeyFromRequest returns the client idempotency key, if any.
// A repeated key is stored once.
func SourceEventKeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Event is one product analytics record. Properties never carry raw task text.
type Event struct {
	ID             string         `json:"id" bson:"_id"`
	Name           string         `json:"event_name" bson:"event_name"`
	Time           time.Time      `json:"event_time" bson:"event_time"`
	UserID         string         `json:"user_id" bson:"user_id"`
	SessionID      string         `json:"session_id,omitempty" bson:"session_id,omitempty"`
	Platform       string         `json:"platform" bson:"platform"`
	AppVersion     string         `json:"app_version,omitempty" bson:"app_version,omitempty"`
	DeviceLocale   string         `json:"device_locale,omitempty" bson:"device_locale,omitempty"`
	SourceEventKey string         `json:"source_event_key,omitempty" bson:"source_event_key,omitempty"`
	Properties     map[string]any `json:"properties" bson:"properties"`
}

// Sink persists events. Duplicate SourceEventKeys must be ignored silently.
type Sink interface {
	WriteEvent(ctx context.Context, e Event) error
}

// Recorder turns handler calls into events. A nil *Recorder drops everything.
type Recorder struct {
	sink Sink
	log  *zap.SugaredLogger
	now  func() time.Time
}

func NewRecorder(sink Sink, log *zap.SugaredLogger) *Recorder {
	return &Recorder{sink: sink, log: log, now: time.Now}
}

// Log writes one event. Failures are logged and never returned: analytics
// must not break the request that produced it.
func (rec *Recorder) Log(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) {
	if rec == nil || rec.sink == nil || eventName == "" {
		return
	}
	if env.UserID == "" {
		uid, ok := UserIDFromContext(ctx)
		if !ok {
			return
		}
		env.UserID = uid
	}
	if props == nil {
		props = map[string]any{}
	}

	e := Event{
		ID:             ids.NewEventID(),
		Name:           eventName,
		Time:           rec.now().UTC(),
		UserID:         env.UserID,
		SessionID:      env.SessionID,
		Platform:       env.Platform,
		AppVersion:     env.AppVersion,
		DeviceLocale:   env.DeviceLocale,
		SourceEventKey: sourceEventKey,
		Properties:     props,
	}
	if err := rec.sink.WriteEvent(ctx, e); err != nil {
		rec.log.Warnw("analytics event dropped", "event", eventName, "err", err)
	}
}

// Track logs an event for the request's caller. userID overrides the
// context identity (used right after registration).
func (rec *Recorder) Track(r *http.Request, userID, eventName string, props map[string]any) {
	env := FromRequest(r)
	if userID != "" {
		env.UserID = userID
	}
	rec.Log(r.Context(), env, eventName, props, EventKey(SourceEventKeyFromRequest(r), eventName))
}

// EventKey scopes a request idempotency key to one event name, so a request
// that emits several events keeps all of them while a retry of the same
// request still collapses onto the stored ones.
func EventKey(requestKey, eventName string) string {
	if requestKey == "" {
		return ""
	}
	return requestKey + ":" + eventName
}

// LogSink writes events to the structured log only.
type LogSink struct {
	Log *zap.SugaredLogger
}

func (s LogSink) WriteEvent(_ context.Context, e Event) error {
	s.Log.Infow("analytics event",
		"event_id", e.ID,
		"event_name", e.Name,
		"user_id", e.UserID,
		"platform", e.Platform,
		"source_event_key", e.SourceEventKey,
		"properties", e.Properties,
	)
	return nil
}
