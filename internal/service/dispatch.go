package service

import (
	"context"
	"net/url"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// Navigator performs the one side effect of a flow: moving the user somewhere.
type Navigator interface {
	Navigate(ctx context.Context, dest domain.Destination) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, dest domain.Destination) error

func (f NavigatorFunc) Navigate(ctx context.Context, dest domain.Destination) error {
	return f(ctx, dest)
}

// RouteFor maps a role to the view it belongs to.
func RouteFor(role domain.Role) domain.Destination {
	if role.IsAdmin() {
		return domain.DestinationAdmin
	}
	return domain.DestinationDashboard
}

// LoginWithError is the login entry point carrying a message to surface.
func LoginWithError(message string) domain.Destination {
	if message == "" {
		return domain.DestinationLogin
	}
	q := url.Values{}
	q.Set("error", message)
	return domain.Destination(string(domain.DestinationLogin) + "?" + q.Encode())
}
