package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/service"
)

const resetPage = "/reset-password"

// ResetHandler exposes the password reset flow one step at a time.
type ResetHandler struct {
	flow *service.ResetFlow
}

// NewResetHandler constructs handler.
func NewResetHandler(flow *service.ResetFlow) *ResetHandler {
	return &ResetHandler{flow: flow}
}

// Show handles GET /reset-password.
func (h *ResetHandler) Show(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": resetView(h.flow.Current())})
}

// SubmitEmail handles POST /reset-password/email.
func (h *ResetHandler) SubmitEmail(c *fiber.Ctx) error {
	step, ok := h.flow.Current().(*service.EmailStep)
	if !ok {
		return service.ErrStepNotActive
	}
	var req dto.ResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if _, err := step.Submit(c.UserContext(), utils.CopyString(req.Email)); err != nil {
		return err
	}
	return c.Redirect(resetPage, fiber.StatusSeeOther)
}

// SubmitOTP handles POST /reset-password/otp.
func (h *ResetHandler) SubmitOTP(c *fiber.Ctx) error {
	step, ok := h.flow.Current().(*service.OTPStep)
	if !ok {
		return service.ErrStepNotActive
	}
	var req dto.VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if _, err := step.Submit(c.UserContext(), utils.CopyString(req.OTP)); err != nil {
		return err
	}
	return c.Redirect(resetPage, fiber.StatusSeeOther)
}

// SubmitPassword handles POST /reset-password/password.
func (h *ResetHandler) SubmitPassword(c *fiber.Ctx) error {
	step, ok := h.flow.Current().(*service.PasswordStep)
	if !ok {
		return service.ErrStepNotActive
	}
	var req dto.NewPasswordForm
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	nav := &redirect{}
	if err := step.Submit(c.UserContext(), nav, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return nav.send(c)
}

// Back handles POST /reset-password/back.
func (h *ResetHandler) Back(c *fiber.Ctx) error {
	var err error
	switch step := h.flow.Current().(type) {
	case *service.OTPStep:
		_, err = step.Back()
	case *service.PasswordStep:
		_, err = step.Back()
	}
	if err != nil {
		return err
	}
	return c.Redirect(resetPage, fiber.StatusSeeOther)
}

func resetView(state service.ResetState) dto.ResetStepView {
	view := dto.ResetStepView{Step: string(state.Step()), Error: state.VisibleError()}
	switch step := state.(type) {
	case *service.EmailStep:
		view.Email = step.Email()
	case *service.OTPStep:
		view.Email = step.Email()
		view.Code = step.Code()
	case *service.PasswordStep:
		view.Email = step.Email()
	}
	return view
}
