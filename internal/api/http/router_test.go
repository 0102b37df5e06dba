package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkit-labs/auth-portal/internal/app"
	"github.com/authkit-labs/auth-portal/internal/session"
	"github.com/authkit-labs/auth-portal/internal/testutil"
)

type portal struct {
	app   *fiber.App
	id    *testutil.Identity
	store *session.MemoryStore
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	id := testutil.NewIdentity()
	store := session.NewMemoryStore()
	a := app.New(testutil.Config(), nil, store, id.Client())
	return &portal{app: a.Portal(), id: id, store: store}
}

func (p *portal) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (p *portal) get(t *testing.T, target string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return p.do(t, req)
}

func (p *portal) postForm(t *testing.T, target string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return p.do(t, req)
}

func (p *portal) stored() string {
	cred, err := p.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return cred
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get(fiber.HeaderLocation))
}

func TestHealth(t *testing.T) {
	p := newPortal(t)

	resp := p.get(t, "/health/live")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, p.get(t, "/health/ready"))
	assert.Equal(t, "ready", body["status"])
}

func TestGuardedViewsWithoutSession(t *testing.T) {
	p := newPortal(t)

	assertRedirect(t, p.get(t, "/dashboard"), "/")
	assertRedirect(t, p.get(t, "/admin"), "/")
	assert.Zero(t, p.id.TotalCalls())
}

func TestCredentialLogin(t *testing.T) {
	p := newPortal(t)
	token := testutil.AdminToken(t)
	p.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": token})
	})

	resp := p.postForm(t, "/login", url.Values{"email": {"admin@example.com"}, "password": {"secret"}})
	assertRedirect(t, resp, "/admin")
	assert.Equal(t, token, p.stored())
}

func TestCredentialLoginRejected(t *testing.T) {
	p := newPortal(t)
	p.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Bad credentials"})
	})

	resp := p.postForm(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"nope"}})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Bad credentials", body["error"].(map[string]any)["message"])
	assert.Empty(t, p.stored())
}

func TestDelegatedCallbackThenDashboard(t *testing.T) {
	p := newPortal(t)
	token := testutil.UserToken(t)
	p.id.App.Get("/api/users/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": "u1", "email": "user@example.com", "role": "USER", "provider": "GOOGLE", "status": "ACTIVE"})
	})
	p.id.App.Get("/api/users/me/activity", func(c *fiber.Ctx) error {
		return c.JSON([]fiber.Map{})
	})

	assertRedirect(t, p.get(t, "/oauth2/redirect?token="+url.QueryEscape(token)), "/dashboard")
	assert.Equal(t, token, p.stored())

	resp := p.get(t, "/dashboard")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "user@example.com", data["profile"].(map[string]any)["email"])
	assert.Equal(t, "USER", data["session"].(map[string]any)["role"])

	assertRedirect(t, p.get(t, "/admin"), "/dashboard")
}

func TestDelegatedCallbackError(t *testing.T) {
	p := newPortal(t)

	resp := p.get(t, "/oauth2/redirect?error=access_denied")
	assertRedirect(t, resp, "/?error=access_denied")
	assert.Empty(t, p.stored())

	resp = p.get(t, "/?error=access_denied")
	assertRedirect(t, resp, "/")
	var flash *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "portal_flash" {
			flash = c
		}
	}
	require.NotNil(t, flash)

	data := decode(t, p.get(t, "/", flash))["data"].(map[string]any)
	assert.Equal(t, "access_denied", data["error"])

	data = decode(t, p.get(t, "/"))["data"].(map[string]any)
	assert.NotContains(t, data, "error")
}

func TestDelegatedCallbackWithoutToken(t *testing.T) {
	p := newPortal(t)

	assertRedirect(t, p.get(t, "/oauth2/redirect"), "/")
	assertRedirect(t, p.get(t, "/oauth2/redirect?token=garbage"), "/")
	assert.Empty(t, p.stored())
}

func TestAuthorizeRedirect(t *testing.T) {
	p := newPortal(t)

	resp := p.get(t, "/oauth2/authorize/google")
	assertRedirect(t, resp, testutil.IdentityBaseURL+"/oauth2/authorize/google?redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Foauth2%2Fredirect")

	resp = p.get(t, "/oauth2/authorize/facebook")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	p := newPortal(t)
	require.NoError(t, p.store.Save(context.Background(), testutil.UserToken(t)))

	assertRedirect(t, p.postForm(t, "/logout", nil), "/")
	assert.Empty(t, p.stored())
}

func TestResetThroughPortal(t *testing.T) {
	p := newPortal(t)
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	p.id.App.Post("/api/auth/password-reset/request", ok)
	p.id.App.Post("/api/auth/password-reset/verify", ok)
	p.id.App.Post("/api/auth/password-reset/confirm", ok)

	resp := p.postForm(t, "/reset-password/password", url.Values{"newPassword": {"newpass123"}, "confirmPassword": {"newpass123"}})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assertRedirect(t, p.postForm(t, "/reset-password/email", url.Values{"email": {"jane@example.com"}}), "/reset-password")
	data := decode(t, p.get(t, "/reset-password"))["data"].(map[string]any)
	assert.Equal(t, "OTP", data["step"])
	assert.Equal(t, "jane@example.com", data["email"])

	resp = p.postForm(t, "/reset-password/otp", url.Values{"otp": {"123"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assertRedirect(t, p.postForm(t, "/reset-password/otp", url.Values{"otp": {"123456"}}), "/reset-password")

	resp = p.postForm(t, "/reset-password/password", url.Values{"newPassword": {"short"}, "confirmPassword": {"short"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, p.id.Calls("/api/auth/password-reset/confirm"))

	assertRedirect(t, p.postForm(t, "/reset-password/password", url.Values{"newPassword": {"newpass123"}, "confirmPassword": {"newpass123"}}), "/")
	assert.Equal(t, map[string]any{
		"email":       "jane@example.com",
		"otp":         "123456",
		"newPassword": "newpass123",
	}, p.id.LastBody("/api/auth/password-reset/confirm"))
}

func TestMetricsEndpoint(t *testing.T) {
	p := newPortal(t)
	p.get(t, "/health/live")

	resp := p.get(t, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "auth_portal_requests_total")
}

func TestMetricsAfterRejectedLogin(t *testing.T) {
	p := newPortal(t)
	p.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Bad credentials"})
	})

	resp := p.postForm(t, "/login", url.Values{"email": {"a@b.com"}, "password": {"nope"}})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	p.get(t, "/health/live")

	resp = p.get(t, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	assert.Contains(t, body, `auth_portal_requests_total{method="POST",path="/login",status="401"} 1`)
	assert.Contains(t, body, `auth_portal_errors_total{code="UNAUTHORIZED",method="POST",path="/login"} 1`)
	assert.Contains(t, body, `auth_portal_requests_total{method="GET",path="/health/live",status="200"} 1`)
	assert.NotContains(t, body, `method="GETT"`)
}
