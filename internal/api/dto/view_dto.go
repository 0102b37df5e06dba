package dto

import (
	"time"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// SessionView describes the signed-in identity without the credential.
type SessionView struct {
	Subject   string          `json:"subject"`
	Role      domain.Role     `json:"role"`
	Provider  domain.Provider `json:"provider"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// NewSessionView projects a session for display.
func NewSessionView(sess *domain.Session) SessionView {
	view := SessionView{Subject: sess.Subject, Role: sess.Role, Provider: sess.Provider}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		view.ExpiresAt = &exp
	}
	return view
}

// UserView is an account as shown on the dashboards.
type UserView struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Provider  domain.Provider   `json:"provider"`
	Status    domain.UserStatus `json:"status"`
	Avatar    string            `json:"avatar,omitempty"`
	LastLogin *time.Time        `json:"last_login,omitempty"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		Provider:  u.Provider,
		Status:    u.Status,
		Avatar:    u.Avatar,
		LastLogin: u.LastLogin,
	}
}

// ActivityView is one activity log line.
type ActivityView struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address,omitempty"`
	Details   string    `json:"details,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewActivityViews(entries []domain.ActivityEntry) []ActivityView {
	views := make([]ActivityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ActivityView{
			ID:        e.ID,
			Action:    e.Action,
			IPAddress: e.IPAddress,
			Details:   e.Details,
			UserEmail: e.UserEmail,
			Timestamp: e.Timestamp,
		})
	}
	return views
}

// AdminStatsView summarizes the account list.
type AdminStatsView struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	Admins      int `json:"admins"`
	Delegated   int `json:"delegated"`
}

// ResetStepView is the state of the password reset flow.
type ResetStepView struct {
	Step  string `json:"step"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
