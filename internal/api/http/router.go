package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/api/http/handlers"
	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/observability"
	"github.com/authkit-labs/auth-portal/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Login        *handlers.LoginHandler
	Dashboard    *handlers.DashboardHandler
	Reset        *handlers.ResetHandler
	Guard        *auth.SessionGuard
	Metrics      *observability.Metrics
	RedirectPath string
}

// NewApp builds the portal with middlewares and routes registered.
func NewApp(appName string, logger *zap.Logger, timeout time.Duration, cfg RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, timeout)
	RegisterRoutes(app, cfg)
	return app
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Get(domain.DestinationLogin.String(), cfg.Login.LoginPage)
	app.Post("/login", cfg.Login.Login)
	app.Post("/logout", cfg.Login.Logout)
	app.Post("/register", cfg.Login.Register)
	app.Get("/oauth2/authorize/:provider", cfg.Login.Authorize)
	app.Get(cfg.RedirectPath, cfg.Login.Callback)

	reset := app.Group("/reset-password")
	reset.Get("", cfg.Reset.Show)
	reset.Post("/email", cfg.Reset.SubmitEmail)
	reset.Post("/otp", cfg.Reset.SubmitOTP)
	reset.Post("/password", cfg.Reset.SubmitPassword)
	reset.Post("/back", cfg.Reset.Back)

	app.Get(domain.DestinationDashboard.String(), cfg.Guard.Handle, cfg.Dashboard.User)

	admin := app.Group(domain.DestinationAdmin.String(), cfg.Guard.Handle, auth.RequireRole(domain.RoleAdmin, service.RouteFor))
	admin.Get("", cfg.Dashboard.Admin)
	admin.Post("/users/:id/status", cfg.Dashboard.SetUserStatus)
}
