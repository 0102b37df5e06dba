package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/session"
	"github.com/authkit-labs/auth-portal/internal/testutil"
)

type cli struct {
	id     *testutil.Identity
	store  *session.MemoryStore
	opened []string
}

func newCLI() *cli {
	return &cli{id: testutil.NewIdentity(), store: session.NewMemoryStore()}
}

func (c *cli) deps(stdin string) *Deps {
	return &Deps{
		ConfigLoader:  func() (*config.Config, error) { return testutil.Config(), nil },
		LoggerFactory: func(config.LoggerConfig) (*zap.Logger, error) { return zap.NewNop(), nil },
		StoreOpener: func(context.Context, *config.Config, *zap.Logger) (session.Store, func(), error) {
			return c.store, func() {}, nil
		},
		HTTPClient: c.id.Client(),
		BrowserOpener: func(target string) error {
			c.opened = append(c.opened, target)
			return nil
		},
		Stdin: strings.NewReader(stdin),
	}
}

// run executes args and returns stdout, stderr and the command error.
func (c *cli) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmdWithDeps(c.deps(stdin))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (c *cli) stored() string {
	cred, err := c.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return cred
}

func TestRootCmd_Help(t *testing.T) {
	c := newCLI()
	out, _, err := c.run(t, "", "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "login", "logout", "whoami", "register", "reset", "dashboard", "admin"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--env-file")
}

func TestLoginCmd_Flags(t *testing.T) {
	cmd := newLoginCmd(&Deps{})

	for _, name := range []string{"email", "password", "provider"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestLoginCmd_WithFlags(t *testing.T) {
	c := newCLI()
	token := testutil.AdminToken(t)
	c.id.App.Post("/api/auth/login", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"token": token})
	})

	out, _, err := c.run(t, "", "login", "--email", "admin@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as an administrator. Next: portal admin users")
	assert.Equal(t, token, c.stored())
	assert.Equal(t, map[string]any{"email": "admin@example.com", "password": "secret"}, c.id.LastBody("/api/auth/login"))
}

func TestLoginCmd_Prompts(t *testing.T) {
	c := newCLI()
	token := testutil.UserToken(t)
	c.id.App.Post("/api/auth/login", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"token": token})
	})

	out, _, err := c.run(t, "user@example.com\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Email: ")
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Signed in. Next: portal dashboard")
	assert.Equal(t, token, c.stored())
}

func TestLoginCmd_Rejected(t *testing.T) {
	c := newCLI()
	c.id.App.Post("/api/auth/login", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Bad credentials"})
	})

	_, _, err := c.run(t, "", "login", "--email", "a@b.com", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", err.Error())
	assert.Empty(t, c.stored())
}

func TestLoginCmd_ProviderExcludesPassword(t *testing.T) {
	c := newCLI()

	_, _, err := c.run(t, "", "login", "--provider", "google", "--email", "a@b.com")
	require.Error(t, err)
	assert.Zero(t, c.id.TotalCalls())
	assert.Empty(t, c.opened)
}

func TestLoginCmd_UnknownProvider(t *testing.T) {
	c := newCLI()

	_, _, err := c.run(t, "", "login", "--provider", "facebook")
	require.Error(t, err)
	assert.Empty(t, c.opened)
}

func TestWhoamiCmd(t *testing.T) {
	c := newCLI()

	_, _, err := c.run(t, "", "whoami")
	require.Error(t, err)

	require.NoError(t, c.store.Save(context.Background(), testutil.UserToken(t)))
	out, _, err := c.run(t, "", "whoami", "--json")
	require.NoError(t, err)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "user@example.com", view["subject"])
	assert.Equal(t, "USER", view["role"])

	out, _, err = c.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "user@example.com (USER, GOOGLE)")
}

func TestLogoutCmd(t *testing.T) {
	c := newCLI()
	require.NoError(t, c.store.Save(context.Background(), testutil.UserToken(t)))

	out, _, err := c.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.Empty(t, c.stored())
}

func TestRegisterCmd_LocalValidation(t *testing.T) {
	c := newCLI()

	_, _, err := c.run(t, "", "register", "--email", "new@example.com", "--password", "weak", "--confirm", "weak", "--role", "USER")
	require.Error(t, err)
	assert.Zero(t, c.id.TotalCalls())
}

func TestResetCmd_Interactive(t *testing.T) {
	c := newCLI()
	ok := func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) }
	c.id.App.Post("/api/auth/password-reset/request", ok)
	c.id.App.Post("/api/auth/password-reset/verify", ok)
	c.id.App.Post("/api/auth/password-reset/confirm", ok)

	input := strings.Join([]string{
		"jane@example.com",
		"12",
		"123456",
		"back",
		"654321",
		"newpass123",
		"newpass123",
	}, "\n") + "\n"

	out, errOut, err := c.run(t, input, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "A reset code was sent to jane@example.com.")
	assert.Contains(t, errOut, "Error:")
	assert.Contains(t, out, "Your password has been reset.")
	assert.Equal(t, map[string]any{
		"email":       "jane@example.com",
		"otp":         "654321",
		"newPassword": "newpass123",
	}, c.id.LastBody("/api/auth/password-reset/confirm"))
}

func TestResetCmd_InputEndsEarly(t *testing.T) {
	c := newCLI()
	c.id.App.Post("/api/auth/password-reset/request", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	_, _, err := c.run(t, "", "reset", "--email", "jane@example.com")
	require.Error(t, err)
	assert.Equal(t, 1, c.id.Calls("/api/auth/password-reset/request"))
}

func TestDashboardCmd_RequiresSession(t *testing.T) {
	c := newCLI()

	_, _, err := c.run(t, "", "dashboard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal login")
	assert.Zero(t, c.id.TotalCalls())
}

func TestAdminCmd_UserSessionIsTurnedAway(t *testing.T) {
	c := newCLI()
	require.NoError(t, c.store.Save(context.Background(), testutil.UserToken(t)))

	_, _, err := c.run(t, "", "admin", "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portal dashboard")
	assert.Zero(t, c.id.TotalCalls())
}

func TestAdminCmd_Users(t *testing.T) {
	c := newCLI()
	require.NoError(t, c.store.Save(context.Background(), testutil.AdminToken(t)))
	c.id.App.Get("/api/admin/users", func(ctx *fiber.Ctx) error {
		return ctx.JSON([]fiber.Map{
			{"id": "u1", "email": "admin@example.com", "role": "ADMIN", "provider": "EMAIL", "status": "ACTIVE"},
			{"id": "u2", "email": "user@example.com", "role": "USER", "provider": "GOOGLE", "status": "SUSPENDED"},
		})
	})
	c.id.App.Get("/api/admin/logs", func(ctx *fiber.Ctx) error {
		return ctx.JSON([]fiber.Map{})
	})

	out, _, err := c.run(t, "", "admin", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 2  active: 1  admins: 1  delegated: 1")
	assert.Contains(t, out, "user@example.com")
}
