package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/app"
	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/observability"
	"github.com/authkit-labs/auth-portal/internal/persistence"
	"github.com/authkit-labs/auth-portal/internal/session"
)

// Deps contains injectable dependencies for every command.
// All fields with nil values will use their default implementations.
type Deps struct {
	// ConfigLoader reads configuration.
	// Default: config.Load
	ConfigLoader func() (*config.Config, error)

	// LoggerFactory builds the process logger.
	// Default: observability.NewLogger
	LoggerFactory func(cfg config.LoggerConfig) (*zap.Logger, error)

	// StoreOpener opens the configured session store.
	// Default: persistence.OpenSessionStore
	StoreOpener func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, func(), error)

	// HTTPClient talks to the identity service.
	// Default: a client with IDENTITY_TIMEOUT_SECONDS
	HTTPClient *http.Client

	// BrowserOpener opens an external URL for the user.
	// Default: openBrowser
	BrowserOpener func(target string) error

	// Stdin feeds interactive prompts.
	// Default: the command's input
	Stdin io.Reader
}

func (d *Deps) withDefaults() *Deps {
	out := *d
	if out.ConfigLoader == nil {
		out.ConfigLoader = config.Load
	}
	if out.LoggerFactory == nil {
		out.LoggerFactory = observability.NewLogger
	}
	if out.StoreOpener == nil {
		out.StoreOpener = persistence.OpenSessionStore
	}
	if out.BrowserOpener == nil {
		out.BrowserOpener = openBrowser
	}
	return &out
}

// runtime is one command's view of the wired application.
type runtime struct {
	*app.App
	close func()
}

func (d *Deps) bootstrap(ctx context.Context) (*runtime, error) {
	deps := d.withDefaults()

	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := deps.ConfigLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := deps.LoggerFactory(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	store, closeStore, err := deps.StoreOpener(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &runtime{
		App: app.New(cfg, logger, store, deps.HTTPClient),
		close: func() {
			closeStore()
			_ = logger.Sync()
		},
	}, nil
}
