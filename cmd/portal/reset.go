package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/authkit-labs/auth-portal/internal/service"
)

const backKeyword = "back"

func newResetCmd(deps *Deps) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password",
		Long: `Reset a forgotten password in three steps: request a code for your
email, enter the 6-digit code, then choose a new password. Type "back"
at the code or password prompt to return to the previous step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			in := newPrompter(deps, cmd)
			nav := terminalNavigator{out: cmd.OutOrStdout(), open: deps.withDefaults().BrowserOpener}
			ctx := cmd.Context()

			for {
				switch step := rt.Reset.Current().(type) {
				case *service.EmailStep:
					answer := email
					email = ""
					if answer == "" {
						if answer, err = in.ask("Email: "); err != nil {
							return err
						}
					}
					if _, err := step.Submit(ctx, answer); err != nil {
						cmd.PrintErrln("Error:", step.VisibleError())
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "A reset code was sent to %s.\n", strings.TrimSpace(answer))

				case *service.OTPStep:
					answer, err := in.ask("Code (or back): ")
					if err != nil {
						return err
					}
					if strings.EqualFold(strings.TrimSpace(answer), backKeyword) {
						if _, err := step.Back(); err != nil {
							return userError(err)
						}
						continue
					}
					if _, err := step.Submit(ctx, answer); err != nil {
						cmd.PrintErrln("Error:", step.VisibleError())
					}

				case *service.PasswordStep:
					password, err := in.askSecret("New password (or back): ")
					if err != nil {
						return err
					}
					if strings.EqualFold(strings.TrimSpace(password), backKeyword) {
						if _, err := step.Back(); err != nil {
							return userError(err)
						}
						continue
					}
					confirm, err := in.askSecret("Confirm new password: ")
					if err != nil {
						return err
					}
					if err := step.Submit(ctx, nav, password, confirm); err != nil {
						cmd.PrintErrln("Error:", step.VisibleError())
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Your password has been reset.")
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}
