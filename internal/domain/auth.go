package domain

import "strings"

// Role is the canonical authorization role carried by a credential.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole canonicalizes a role string from a credential or API payload.
// Anything that is not an admin spelling is a USER.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether the role grants the administrative dashboard.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Provider identifies how the session was authenticated.
type Provider string

const (
	ProviderEmail   Provider = "EMAIL"
	ProviderGoogle  Provider = "GOOGLE"
	ProviderGitHub  Provider = "GITHUB"
	ProviderUnknown Provider = "UNKNOWN"
)

// ParseProvider canonicalizes a provider string ("Email", "google", "GITHUB").
func ParseProvider(raw string) Provider {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(ProviderEmail), "LOCAL":
		return ProviderEmail
	case string(ProviderGoogle):
		return ProviderGoogle
	case string(ProviderGitHub):
		return ProviderGitHub
	default:
		return ProviderUnknown
	}
}

// Delegated reports whether the provider is a third-party redirect provider.
func (p Provider) Delegated() bool {
	return p == ProviderGoogle || p == ProviderGitHub
}

// Slug is the lowercase form used in authorization URLs.
func (p Provider) Slug() string {
	return strings.ToLower(string(p))
}
