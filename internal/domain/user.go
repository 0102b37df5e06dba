package domain

import (
	"strings"
	"time"
)

// UserStatus represents lifecycle states of an identity-service account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// ParseUserStatus canonicalizes status strings ("Active", "ACTIVE").
func ParseUserStatus(raw string) (UserStatus, bool) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case UserStatusActive:
		return UserStatusActive, true
	case UserStatusInactive:
		return UserStatusInactive, true
	case UserStatusSuspended:
		return UserStatusSuspended, true
	default:
		return "", false
	}
}

// User is an account as reported by the identity service.
type User struct {
	ID        string
	Email     string
	Role      Role
	Provider  Provider
	Status    UserStatus
	Avatar    string
	LastLogin *time.Time
}

// ActivityEntry is one audit record from the identity service.
type ActivityEntry struct {
	ID        string
	Action    string
	IPAddress string
	Details   string
	UserEmail string
	Timestamp time.Time
}
