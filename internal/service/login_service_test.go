package service

import (
	"context"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/testutil"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

func TestLoginAdminGoesToAdmin(t *testing.T) {
	h := newHarness(t)
	token := testutil.AdminToken(t)
	h.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": token})
	})
	flow := NewLoginFlow(h.client, h.sessions, h.dispatcher, nil)

	err := flow.Submit(context.Background(), h.nav, "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, token, h.stored(t))
	assert.Equal(t, []domain.Destination{domain.DestinationAdmin}, h.nav.all())
	assert.Empty(t, flow.VisibleError())
	assert.Equal(t, LoginIdle, flow.State())
	assert.Equal(t, map[string]any{"email": "admin@example.com", "password": "secret"}, h.id.LastBody("/api/auth/login"))
}

func TestLoginUserGoesToDashboard(t *testing.T) {
	h := newHarness(t)
	token := testutil.MintToken(t, testutil.TokenClaims{Subject: "u@example.com", Role: "User"})
	h.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": token})
	})

	err := NewLoginFlow(h.client, h.sessions, nil, nil).Submit(context.Background(), h.nav, "u@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.DestinationDashboard, h.nav.last())
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	previous := testutil.UserToken(t)
	require.NoError(t, h.store.Save(context.Background(), previous))
	h.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Bad credentials"})
	})
	flow := NewLoginFlow(h.client, h.sessions, h.dispatcher, nil)

	err := flow.Submit(context.Background(), h.nav, "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Bad credentials", flow.VisibleError())
	assert.Equal(t, previous, h.stored(t))
	assert.Empty(t, h.nav.all())
	assert.Equal(t, LoginIdle, flow.State())

	failed := h.events.of(events.EventLoginFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "a@b.com", failed[0].Subject)
	assert.Equal(t, events.ReasonRejected, failed[0].Reason)
}

func TestLoginUndecodableToken(t *testing.T) {
	h := newHarness(t)
	h.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"token": "not-a-token"})
	})
	flow := NewLoginFlow(h.client, h.sessions, h.dispatcher, nil)

	err := flow.Submit(context.Background(), h.nav, "a@b.com", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDecode))
	assert.Equal(t, MsgUnusableCredential, flow.VisibleError())
	assert.Empty(t, h.stored(t))
	assert.Empty(t, h.nav.all())
}

func TestLoginRequiresFields(t *testing.T) {
	h := newHarness(t)
	flow := NewLoginFlow(h.client, h.sessions, nil, nil)

	err := flow.Submit(context.Background(), h.nav, "  ", "pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, h.id.TotalCalls())
}

func TestLoginSingleFlight(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	token := testutil.UserToken(t)
	h.id.App.Post("/api/auth/login", func(c *fiber.Ctx) error {
		once.Do(func() { close(entered) })
		<-release
		return c.JSON(fiber.Map{"token": token})
	})
	flow := NewLoginFlow(h.client, h.sessions, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- flow.Submit(context.Background(), h.nav, "u@example.com", "pw")
	}()
	<-entered
	assert.Equal(t, LoginSubmitting, flow.State())

	err := flow.Submit(context.Background(), h.nav, "u@example.com", "pw")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, h.id.Calls("/api/auth/login"))
	assert.Equal(t, []domain.Destination{domain.DestinationDashboard}, h.nav.all())
}

type stubLoginClient struct {
	resp *dto.AuthResponse
	err  error
}

func (s stubLoginClient) Login(context.Context, dto.LoginRequest) (*dto.AuthResponse, error) {
	return s.resp, s.err
}

func TestLoginTransportFailure(t *testing.T) {
	h := newHarness(t)
	flow := NewLoginFlow(stubLoginClient{err: apperrors.NewTransportError(assert.AnError)}, h.sessions, nil, nil)

	err := flow.Submit(context.Background(), h.nav, "a@b.com", "pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTransport))
	assert.Equal(t, "Unable to reach the identity service. Please try again.", flow.VisibleError())
	assert.Empty(t, h.nav.all())
}
