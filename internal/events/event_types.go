package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionEnded   EventType = "session_ended"
	EventLoginFailed    EventType = "login_failed"
	EventResetCompleted EventType = "reset_completed"
)

// Event represents an auth lifecycle change. It never carries the credential.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Subject   string          `json:"subject,omitempty"`
	Role      domain.Role     `json:"role,omitempty"`
	Provider  domain.Provider `json:"provider,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// SessionEvent describes an event about sess.
func SessionEvent(eventType EventType, sess *domain.Session) Event {
	ev := NewEvent(eventType)
	if sess != nil {
		ev.Subject = sess.Subject
		ev.Role = sess.Role
		ev.Provider = sess.Provider
	}
	return ev
}

// Session end and login failure reasons.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
	ReasonCorrupt      = "corrupt"
	ReasonRejected     = "rejected"
	ReasonNoToken      = "no_token"
	ReasonDelegation   = "delegation_error"
)
