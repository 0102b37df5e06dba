package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/service"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// DashboardHandler serves the guarded views.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// User handles GET /dashboard.
func (h *DashboardHandler) User(c *fiber.Ctx) error {
	view, err := h.dashboards.User(c.UserContext())
	if err != nil {
		return guardFailure(c, err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session":  dto.NewSessionView(view.Session),
			"profile":  dto.NewUserView(view.Profile),
			"activity": dto.NewActivityViews(view.Activity),
		},
	})
}

// Admin handles GET /admin.
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	view, err := h.dashboards.Admin(c.UserContext())
	if err != nil {
		return guardFailure(c, err)
	}

	users := make([]dto.UserView, 0, len(view.Users))
	for _, u := range view.Users {
		users = append(users, dto.NewUserView(u))
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session": dto.NewSessionView(view.Session),
			"users":   users,
			"logs":    dto.NewActivityViews(view.Logs),
			"stats": dto.AdminStatsView{
				TotalUsers:  view.Stats.TotalUsers,
				ActiveUsers: view.Stats.ActiveUsers,
				Admins:      view.Stats.Admins,
				Delegated:   view.Stats.Delegated,
			},
		},
	})
}

// SetUserStatus handles POST /admin/users/:id/status.
func (h *DashboardHandler) SetUserStatus(c *fiber.Ctx) error {
	var req dto.UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.dashboards.SetUserStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return guardFailure(c, err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserView(*user)})
}

// guardFailure sends the visitor back to the login entry point once the
// session is gone; any other failure is rendered as an error.
func guardFailure(c *fiber.Ctx, err error) error {
	if apperrors.IsUnauthorized(err) {
		return c.Redirect(domain.DestinationLogin.String(), fiber.StatusSeeOther)
	}
	return err
}
