package testutil

import "github.com/authkit-labs/auth-portal/internal/config"

// IdentityBaseURL is where Config points the identity client.
const IdentityBaseURL = "http://identity.test"

// Config is a complete configuration with the default paths, a memory
// session backend and proactive expiry on.
func Config() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "auth-portal", Env: "test", Version: "test"},
		Portal: config.PortalConfig{
			Host:                  "127.0.0.1",
			Port:                  "3000",
			PublicURL:             "http://localhost:3000",
			RedirectPath:          "/oauth2/redirect",
			RequestTimeoutSeconds: 5,
			CallbackWaitSeconds:   5,
		},
		Identity: config.IdentityConfig{
			BaseURL:          IdentityBaseURL,
			LoginPath:        "/api/auth/login",
			RegisterPath:     "/api/auth/register",
			AuthorizePath:    "/oauth2/authorize",
			ResetRequestPath: "/api/auth/password-reset/request",
			ResetVerifyPath:  "/api/auth/password-reset/verify",
			ResetConfirmPath: "/api/auth/password-reset/confirm",
			MePath:           "/api/users/me",
			ActivityPath:     "/api/users/me/activity",
			AdminUsersPath:   "/api/admin/users",
			AdminLogsPath:    "/api/admin/logs",
		},
		Session: config.SessionConfig{
			Backend:         config.SessionBackendMemory,
			Key:             "token",
			RedisPrefix:     "auth-portal:session",
			ProactiveExpiry: true,
		},
		Logger: config.LoggerConfig{Level: "debug", Encoding: "console"},
	}
}
