// Package app wires the session core, the identity client and the portal.
package app

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/authkit-labs/auth-portal/internal/api/http"
	"github.com/authkit-labs/auth-portal/internal/api/http/handlers"
	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/identity"
	"github.com/authkit-labs/auth-portal/internal/observability"
	"github.com/authkit-labs/auth-portal/internal/service"
	"github.com/authkit-labs/auth-portal/internal/session"
	"github.com/authkit-labs/auth-portal/internal/worker"
)

// App holds every flow sharing one session store.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Events  events.Dispatcher
	Store   session.Store

	Identity   *identity.Client
	Sessions   *service.SessionService
	Login      *service.LoginFlow
	Delegated  *service.DelegatedFlow
	Register   *service.RegisterFlow
	Reset      *service.ResetFlow
	Dashboards *service.DashboardService
}

// New builds the object graph. A nil httpClient uses the configured timeout.
func New(cfg *config.Config, logger *zap.Logger, store session.Store, httpClient *http.Client) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger.Named("audit"), metrics)

	client := identity.NewClient(cfg.Identity, httpClient, logger.Named("identity"), metrics)
	sessions := service.NewSessionService(store, auth.NewDecoder(), dispatcher, logger.Named("session"), service.SessionOptions{
		ProactiveExpiry: cfg.Session.ProactiveExpiry,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Events:     dispatcher,
		Store:      store,
		Identity:   client,
		Sessions:   sessions,
		Login:      service.NewLoginFlow(client, sessions, dispatcher, logger.Named("login")),
		Delegated:  service.NewDelegatedFlow(client, sessions, dispatcher, logger.Named("delegated"), cfg.Portal.RedirectURL()),
		Register:   service.NewRegisterFlow(client, logger.Named("register")),
		Reset:      service.NewResetFlow(client, dispatcher, logger.Named("reset")),
		Dashboards: service.NewDashboardService(client, sessions, logger.Named("dashboard")),
	}
}

// Portal builds the fiber app bound to the return address.
func (a *App) Portal() *fiber.App {
	return httptransport.NewApp(a.Config.App.Name, a.Logger, a.Config.Portal.RequestTimeout(), httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(a.Config.App.Name, a.Config.App.Version, a.Config.Session.Backend, a.Store),
		Login:        handlers.NewLoginHandler(a.Sessions, a.Login, a.Delegated, a.Register),
		Dashboard:    handlers.NewDashboardHandler(a.Dashboards),
		Reset:        handlers.NewResetHandler(a.Reset),
		Guard:        auth.NewSessionGuard(a.Sessions),
		Metrics:      a.Metrics,
		RedirectPath: a.Config.Portal.RedirectPath,
	})
}
