package main

import (
	"errors"

	"github.com/spf13/cobra"

	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command for the portal CLI.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(&Deps{})
}

// NewRootCmdWithDeps creates the root command with injected dependencies.
func NewRootCmdWithDeps(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "Sign in to the identity service and manage the local session",
		Long: `portal is the client for the identity service. It signs you in with
email and password or through Google or GitHub, keeps the session
credential between runs, and shows the dashboard for your role.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment overrides from this file")

	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newLoginCmd(deps))
	cmd.AddCommand(newLogoutCmd(deps))
	cmd.AddCommand(newWhoamiCmd(deps))
	cmd.AddCommand(newRegisterCmd(deps))
	cmd.AddCommand(newResetCmd(deps))
	cmd.AddCommand(newDashboardCmd(deps))
	cmd.AddCommand(newAdminCmd(deps))

	return cmd
}

// userError keeps only the displayable line of err.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(apperrors.UserMessage(err))
}
