package sessiongate

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType classifies an [AuthEvent].
type EventType string

const (
	// EventLoginSuccess is an exported constant or variable used by the session core.
	EventLoginSuccess EventType = "login_success"
	// EventLoginFailure is an exported constant or variable used by the session core.
	EventLoginFailure EventType = "login_failure"
	// EventRegisterSuccess is an exported constant or variable used by the session core.
	EventRegisterSuccess EventType = "register_success"
	// EventRegisterFailure is an exported constant or variable used by the session core.
	EventRegisterFailure EventType = "register_failure"
	// EventLogout is an exported constant or variable used by the session core.
	EventLogout EventType = "logout"
	// EventRefreshSuccess is an exported constant or variable used by the session core.
	EventRefreshSuccess EventType = "refresh_success"
	// EventRefreshFailure is an exported constant or variable used by the session core.
	EventRefreshFailure EventType = "refresh_failure"
	// EventAuthCheck is an exported constant or variable used by the session core.
	EventAuthCheck EventType = "auth_check"
	// EventProfileUpdated is an exported constant or variable used by the session core.
	EventProfileUpdated EventType = "profile_updated"
	// EventPasswordResetRequested is an exported constant or variable used by the session core.
	EventPasswordResetRequested EventType = "password_reset_requested"
	// EventPasswordResetConfirmed is an exported constant or variable used by the session core.
	EventPasswordResetConfirmed EventType = "password_reset_confirmed"
	// EventUnauthorized is an exported constant or variable used by the session core.
	EventUnauthorized EventType = "unauthorized"
)

// AuthEvent is one observable transition of the session lifecycle.
type AuthEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EventSink receives session lifecycle events from the Manager's async
// dispatcher. Emit must not block longer than the caller's context allows.
type EventSink interface {
	Emit(ctx context.Context, event AuthEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, AuthEvent) {}

// ChannelSink forwards events to a buffered channel for consumption by
// application code (typically the routing layer watching for
// [EventUnauthorized]).
type ChannelSink struct {
	events chan AuthEvent
}

// NewChannelSink describes the newchannelsink operation and its observable behavior.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuthEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event AuthEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
func (s *ChannelSink) Events() <-chan AuthEvent {
	return s.events
}

// JSONWriterSink writes one JSON line per event to the wrapped writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event AuthEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
