package identity

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/testutil"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

func testConfig() config.IdentityConfig {
	return config.IdentityConfig{
		BaseURL:          "http://identity.test",
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
	}
}

func newTestClient(id *testutil.Identity) *Client {
	return NewClient(testConfig(), id.Client(), zap.NewNop(), nil)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestLoginSuccess(t *testing.T) {
	id := testutil.NewIdentity()
	token := testutil.AdminToken(t)
	id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": token})
	})

	resp, err := newTestClient(id).Login(context.Background(), dto.LoginRequest{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, token, resp.Token)
	assert.Equal(t, map[string]any{"email": "a@b.com", "password": "x"}, id.LastBody("/api/auth/login"))
}

func TestFailureMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		ctype  string
		want   string
	}{
		{"json message", 401, `{"message":"Bad credentials"}`, fiber.MIMEApplicationJSON, "Bad credentials"},
		{"json without message", 401, `{"status":401,"error":"Unauthorized"}`, fiber.MIMEApplicationJSON, MsgLoginFailed},
		{"plain text", 409, "Email already in use", fiber.MIMETextPlain, "Email already in use"},
		{"empty", 500, "", fiber.MIMETextPlain, MsgLoginFailed},
		{"html", 502, "<html>bad gateway</html>", fiber.MIMETextHTML, MsgLoginFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := testutil.NewIdentity()
			id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
				c.Set(fiber.HeaderContentType, tc.ctype)
				return c.Status(tc.status).SendString(tc.body)
			})

			_, err := newTestClient(id).Login(context.Background(), dto.LoginRequest{Email: "a@b.com", Password: "x"})
			require.Error(t, err)
			assert.Equal(t, tc.want, apperrors.UserMessage(err))
			assert.Equal(t, tc.status, apperrors.ToClientError(err).HTTPStatus)
		})
	}
}

func TestTransportError(t *testing.T) {
	client := NewClient(testConfig(), &http.Client{Transport: failingTransport{}}, zap.NewNop(), nil)

	err := client.RequestResetCode(context.Background(), "a@b.com")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
}

func TestProtectedCallsSendBearer(t *testing.T) {
	id := testutil.NewIdentity()
	token := testutil.UserToken(t)

	id.App.Get("/api/users/me", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer "+token {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"id": "u1", "email": "user@example.com", "role": "User", "provider": "google", "status": "Active"})
	})

	client := newTestClient(id)

	user, err := client.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.ProviderGoogle, user.Provider)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	_, err = client.CurrentUser(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestSetUserStatus(t *testing.T) {
	id := testutil.NewIdentity()
	id.App.Put("/api/admin/users/:id/status", func(c *fiber.Ctx) error {
		var req dto.UpdateUserStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": c.Params("id"), "email": "x@y.com", "role": "USER", "status": req.Status})
	})

	user, err := newTestClient(id).SetUserStatus(context.Background(), "tok", "u-42", domain.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, "u-42", user.ID)
	assert.Equal(t, domain.UserStatusSuspended, user.Status)
	assert.Equal(t, "SUSPENDED", id.LastBody("/api/admin/users/u-42/status")["status"])
}

func TestAuthorizeURL(t *testing.T) {
	client := NewClient(testConfig(), nil, nil, nil)

	got := client.AuthorizeURL(domain.ProviderGitHub, "http://localhost:3000/oauth2/redirect")
	assert.Equal(t, "http://identity.test/oauth2/authorize/github?redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Foauth2%2Fredirect", got)
}
