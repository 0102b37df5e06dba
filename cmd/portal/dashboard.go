package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/service"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

func newDashboardCmd(deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your profile and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			view, err := rt.Dashboards.User(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			profile := dto.NewUserView(view.Profile)
			activity := dto.NewActivityViews(view.Activity)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"profile": profile, "activity": activity})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\nrole: %s  provider: %s  status: %s\n\n", profile.Email, profile.Role, profile.Provider, profile.Status)
			writeActivity(out, activity)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newAdminCmd(deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer accounts (ADMIN role only)",
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List every account with summary counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			view, err := rt.Dashboards.Admin(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			users := make([]dto.UserView, 0, len(view.Users))
			for _, u := range view.Users {
				users = append(users, dto.NewUserView(u))
			}
			stats := dto.AdminStatsView{
				TotalUsers:  view.Stats.TotalUsers,
				ActiveUsers: view.Stats.ActiveUsers,
				Admins:      view.Stats.Admins,
				Delegated:   view.Stats.Delegated,
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"users": users, "stats": stats})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d  active: %d  admins: %d  delegated: %d\n\n",
				stats.TotalUsers, stats.ActiveUsers, stats.Admins, stats.Delegated)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEMAIL\tROLE\tPROVIDER\tSTATUS")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.Provider, u.Status)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logs",
		Short: "List every activity log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			view, err := rt.Dashboards.Admin(cmd.Context())
			if err != nil {
				return sessionError(err)
			}
			logs := dto.NewActivityViews(view.Logs)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), logs)
			}
			writeActivity(cmd.OutOrStdout(), logs)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-status <user-id> <ACTIVE|INACTIVE|SUSPENDED>",
		Short: "Change an account's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			user, err := rt.Dashboards.SetUserStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return sessionError(err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), dto.NewUserView(*user))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.ID, user.Status)
			return nil
		},
	})

	return cmd
}

// sessionError explains what to do when a guarded read fails.
func sessionError(err error) error {
	switch {
	case apperrors.IsUnauthorized(err):
		return fmt.Errorf("%s Run: portal login", apperrors.UserMessage(err))
	case errors.Is(err, service.ErrAdminOnly):
		return fmt.Errorf("%s Your dashboard: portal dashboard", apperrors.UserMessage(err))
	default:
		return userError(err)
	}
}

func writeActivity(out io.Writer, entries []dto.ActivityView) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recent activity.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tUSER\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Action, e.UserEmail, e.Details)
	}
	_ = w.Flush()
}
