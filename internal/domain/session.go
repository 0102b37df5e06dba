package domain

import "time"

// Session is the authenticated identity held by the client. Subject, Role and
// Provider come from the credential's unverified claims.
type Session struct {
	Credential string
	Subject    string
	Role       Role
	Provider   Provider
	ExpiresAt  time.Time
}

// Expired reports whether the credential's exp claim has passed. A credential
// without an exp claim never expires locally.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Destination is a navigation target: an app path or an absolute external URL.
type Destination string

const (
	DestinationLogin     Destination = "/"
	DestinationDashboard Destination = "/dashboard"
	DestinationAdmin     Destination = "/admin"
)

func (d Destination) String() string {
	return string(d)
}
