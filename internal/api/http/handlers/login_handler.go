package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/service"
)

// LoginHandler serves the login entry point, both login flows, sign-up and logout.
type LoginHandler struct {
	sessions  *service.SessionService
	login     *service.LoginFlow
	delegated *service.DelegatedFlow
	register  *service.RegisterFlow
}

// NewLoginHandler constructs handler.
func NewLoginHandler(sessions *service.SessionService, login *service.LoginFlow, delegated *service.DelegatedFlow, register *service.RegisterFlow) *LoginHandler {
	return &LoginHandler{sessions: sessions, login: login, delegated: delegated, register: register}
}

// LoginPage handles GET /. An error carried in the query is moved into a
// flash cookie and the visitor is sent to the same URL without it.
func (h *LoginHandler) LoginPage(c *fiber.Ctx) error {
	if msg, cleaned, ok := service.ConsumeLoginError(queryValues(c)); ok {
		setFlash(c, msg)
		target := domain.DestinationLogin.String()
		if encoded := cleaned.Encode(); encoded != "" {
			target += "?" + encoded
		}
		return c.Redirect(target, fiber.StatusSeeOther)
	}

	data := fiber.Map{
		"login":    "/login",
		"register": "/register",
		"reset":    "/reset-password",
		"providers": fiber.Map{
			"google": "/oauth2/authorize/google",
			"github": "/oauth2/authorize/github",
		},
	}
	if msg := takeFlash(c); msg != "" {
		data["error"] = msg
	}
	return c.JSON(fiber.Map{"data": data})
}

// Login handles POST /login.
func (h *LoginHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	nav := &redirect{}
	if err := h.login.Submit(c.UserContext(), nav, req.Email, req.Password); err != nil {
		return err
	}
	return nav.send(c)
}

// Register handles POST /register.
func (h *LoginHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	nav := &redirect{}
	if err := h.register.Submit(c.UserContext(), nav, req); err != nil {
		return err
	}
	return nav.send(c)
}

// Authorize handles GET /oauth2/authorize/:provider by leaving for the
// identity service.
func (h *LoginHandler) Authorize(c *fiber.Ctx) error {
	nav := &redirect{}
	if err := h.delegated.Initiate(c.UserContext(), nav, c.Params("provider")); err != nil {
		return err
	}
	return nav.send(c)
}

// Callback handles the identity service's redirect back to the portal.
func (h *LoginHandler) Callback(c *fiber.Ctx) error {
	nav := &redirect{}
	if err := h.delegated.HandleCallback(c.UserContext(), nav, queryValues(c)); err != nil {
		return err
	}
	return nav.send(c)
}

// Logout handles POST /logout.
func (h *LoginHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.Redirect(domain.DestinationLogin.String(), fiber.StatusSeeOther)
}
