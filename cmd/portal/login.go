package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/service"
)

type loginConfig struct {
	email    string
	password string
	provider string
}

func newLoginCmd(deps *Deps) *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or with --provider google|github",
		Long: `Sign in and store the session credential. With --provider the portal
is started on the return address and the browser is sent to the provider;
the command finishes when the identity service redirects back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			nav := terminalNavigator{out: cmd.OutOrStdout(), open: deps.withDefaults().BrowserOpener}
			if cfg.provider != "" {
				return runDelegatedLogin(cmd.Context(), rt, nav, cfg.provider)
			}

			in := newPrompter(deps, cmd)
			if cfg.email == "" {
				if cfg.email, err = in.ask("Email: "); err != nil {
					return err
				}
			}
			if cfg.password == "" {
				if cfg.password, err = in.askSecret("Password: "); err != nil {
					return err
				}
			}
			return userError(rt.Login.Submit(cmd.Context(), nav, cfg.email, cfg.password))
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "account email")
	cmd.Flags().StringVar(&cfg.password, "password", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&cfg.provider, "provider", "", "delegated provider: google or github")
	cmd.MarkFlagsMutuallyExclusive("provider", "email")
	cmd.MarkFlagsMutuallyExclusive("provider", "password")

	return cmd
}

func runDelegatedLogin(ctx context.Context, rt *runtime, nav terminalNavigator, provider string) error {
	if _, err := rt.Delegated.AuthorizeURL(provider); err != nil {
		return userError(err)
	}

	outcome := make(chan events.Event, 1)
	notify := func(_ context.Context, ev events.Event) error {
		select {
		case outcome <- ev:
		default:
		}
		return nil
	}
	defer rt.Events.Subscribe(events.EventSessionStarted, notify)()
	defer rt.Events.Subscribe(events.EventLoginFailed, notify)()

	portal := rt.Portal()
	serverErr, err := startPortal(portal, rt.Config.Portal.Addr())
	if err != nil {
		return fmt.Errorf("start portal on %s: %w", rt.Config.Portal.Addr(), err)
	}
	defer func() { _ = portal.Shutdown() }()

	if err := rt.Delegated.Initiate(ctx, nav, provider); err != nil {
		return userError(err)
	}

	ev, err := awaitOutcome(ctx, outcome, serverErr, rt.Config.Portal.CallbackWait())
	if err != nil {
		return err
	}
	// The callback answered with a redirect into the portal; keep serving so
	// the browser can load that page before Shutdown runs.
	linger(ctx, callbackLinger)
	if ev.Type == events.EventLoginFailed {
		return fmt.Errorf("delegated login failed: %s", failureReason(ev.Reason))
	}
	return nav.Navigate(ctx, service.RouteFor(ev.Role))
}

// callbackLinger is how long the portal keeps serving after the callback.
var callbackLinger = 3 * time.Second

func linger(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// awaitOutcome blocks until the callback reports success or failure.
func awaitOutcome(ctx context.Context, outcome <-chan events.Event, serverErr <-chan error, wait time.Duration) (events.Event, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ev := <-outcome:
		return ev, nil
	case err := <-serverErr:
		return events.Event{}, fmt.Errorf("portal stopped: %w", err)
	case <-timer.C:
		return events.Event{}, errors.New("timed out waiting for the provider to redirect back")
	case <-ctx.Done():
		return events.Event{}, ctx.Err()
	}
}

func failureReason(reason string) string {
	switch reason {
	case events.ReasonDelegation:
		return "the provider reported an error"
	case events.ReasonNoToken:
		return "no credential was returned"
	case events.ReasonCorrupt:
		return "the returned credential could not be read"
	default:
		return reason
	}
}

func newLogoutCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.Sessions.Logout(cmd.Context()); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			sess, err := rt.Sessions.Current(cmd.Context())
			if err != nil {
				return userError(err)
			}
			view := dto.NewSessionView(sess)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", view.Subject, view.Role, view.Provider)
			if view.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "expires %s\n", view.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func newRegisterCmd(deps *Deps) *cobra.Command {
	form := dto.RegisterRequest{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account with the identity service. The password needs at
least 8 characters with an uppercase letter, a lowercase letter and a digit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := deps.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			in := newPrompter(deps, cmd)
			for _, field := range []struct {
				label  string
				value  *string
				secret bool
			}{
				{"Email: ", &form.Email, false},
				{"Password: ", &form.Password, true},
				{"Confirm password: ", &form.ConfirmPassword, true},
				{"Role (USER or ADMIN): ", &form.Role, false},
			} {
				if *field.value != "" {
					continue
				}
				read := in.ask
				if field.secret {
					read = in.askSecret
				}
				if *field.value, err = read(field.label); err != nil {
					return err
				}
			}

			nav := terminalNavigator{out: cmd.OutOrStdout(), open: deps.withDefaults().BrowserOpener}
			if err := rt.Register.Submit(cmd.Context(), nav, form); err != nil {
				return userError(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation")
	cmd.Flags().StringVar(&form.Role, "role", "", "USER or ADMIN")
	return cmd
}

// prompter reads answers line by line from the command's input.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readSecret reads one line without echo. It is nil when the input is
	// not a terminal.
	readSecret func() ([]byte, error)
}

func newPrompter(deps *Deps, cmd *cobra.Command) *prompter {
	in := deps.Stdin
	if in == nil {
		in = cmd.InOrStdin()
	}
	p := &prompter{in: bufio.NewReader(in), out: cmd.OutOrStdout()}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// askSecret is ask without echo on a terminal.
func (p *prompter) askSecret(label string) (string, error) {
	if p.readSecret == nil {
		return p.ask(label)
	}
	fmt.Fprint(p.out, label)
	secret, err := p.readSecret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(string(secret), "\r\n"), nil
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
