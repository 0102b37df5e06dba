package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal on the delegated-login return address",
		Long: `Run the portal web app. It hosts the login entry point, the delegated
login callback, the password reset pages and the dashboards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			portal := rt.Portal()
			errCh, err := startPortal(portal, rt.Config.Portal.Addr())
			if err != nil {
				return err
			}
			rt.Logger.Info("portal listening", zap.String("addr", rt.Config.Portal.Addr()))

			waitForShutdown(cmd.Context(), rt.Logger, errCh)
			return portal.Shutdown()
		},
	}
}

// startPortal binds addr before returning so bind errors surface at once.
func startPortal(portal *fiber.App, addr string) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- portal.Listener(ln)
	}()
	return errCh, nil
}

func waitForShutdown(ctx context.Context, logger *zap.Logger, errCh <-chan error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("portal stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
