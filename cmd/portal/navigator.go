package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	goruntime "runtime"
	"strings"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// terminalNavigator is the CLI's Navigator: internal destinations are
// printed as the command to run next, external ones open in the browser.
type terminalNavigator struct {
	out  io.Writer
	open func(target string) error
}

func (n terminalNavigator) Navigate(_ context.Context, dest domain.Destination) error {
	target := dest.String()
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		fmt.Fprintf(n.out, "Opening %s\n", target)
		if err := n.open(target); err != nil {
			fmt.Fprintf(n.out, "Could not open a browser. Visit the URL above to continue.\n")
		}
		return nil
	}

	path, query, _ := strings.Cut(target, "?")
	switch domain.Destination(path) {
	case domain.DestinationAdmin:
		fmt.Fprintln(n.out, "Signed in as an administrator. Next: portal admin users")
	case domain.DestinationDashboard:
		fmt.Fprintln(n.out, "Signed in. Next: portal dashboard")
	case domain.DestinationLogin:
		if values, err := url.ParseQuery(query); err == nil && values.Get("error") != "" {
			fmt.Fprintf(n.out, "Login failed: %s\n", values.Get("error"))
		}
		fmt.Fprintln(n.out, "Next: portal login")
	default:
		fmt.Fprintf(n.out, "Next: %s\n", target)
	}
	return nil
}

func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
