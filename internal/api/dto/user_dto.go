package dto

import (
	"time"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// UserResponse mirrors the identity service's UserDto.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Provider  string     `json:"provider"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	Avatar    string     `json:"avatar,omitempty"`
}

// ToDomain canonicalizes role, provider and status strings.
func (u UserResponse) ToDomain() domain.User {
	status, ok := domain.ParseUserStatus(u.Status)
	if !ok {
		status = domain.UserStatusInactive
	}
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      domain.ParseRole(u.Role),
		Provider:  domain.ParseProvider(u.Provider),
		Status:    status,
		Avatar:    u.Avatar,
		LastLogin: u.LastLogin,
	}
}

// ActivityLogResponse mirrors the identity service's ActivityLog.
type ActivityLogResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ipAddress"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	User      *struct {
		Email string `json:"email"`
	} `json:"user,omitempty"`
}

// ToDomain flattens the nested user reference.
func (a ActivityLogResponse) ToDomain() domain.ActivityEntry {
	entry := domain.ActivityEntry{
		ID:        a.ID,
		Action:    a.Action,
		IPAddress: a.IPAddress,
		Details:   a.Details,
		Timestamp: a.Timestamp,
	}
	if a.User != nil {
		entry.UserEmail = a.User.Email
	}
	return entry
}

// UpdateUserStatusRequest payload for PUT /api/admin/users/{id}/status.
type UpdateUserStatusRequest struct {
	Status string `json:"status" form:"status"`
}
