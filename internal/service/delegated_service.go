package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// ErrUnsupportedProvider is returned for anything but google and github.
var ErrUnsupportedProvider = apperrors.NewValidationError("Unsupported login provider", nil)

// AuthorizeURLBuilder builds the identity service's delegated-auth entry point.
type AuthorizeURLBuilder interface {
	AuthorizeURL(provider domain.Provider, redirectURI string) string
}

// DelegatedFlow drives third-party login. Leg A leaves for the provider, leg B
// handles the identity service's redirect back to the portal.
type DelegatedFlow struct {
	client      AuthorizeURLBuilder
	sessions    *SessionService
	events      events.Dispatcher
	logger      *zap.Logger
	redirectURI string
}

func NewDelegatedFlow(client AuthorizeURLBuilder, sessions *SessionService, dispatcher events.Dispatcher, logger *zap.Logger, redirectURI string) *DelegatedFlow {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DelegatedFlow{
		client:      client,
		sessions:    sessions,
		events:      dispatcher,
		logger:      logger,
		redirectURI: redirectURI,
	}
}

// AuthorizeURL returns where the user must go to log in with provider.
func (f *DelegatedFlow) AuthorizeURL(provider string) (string, error) {
	p := domain.ParseProvider(provider)
	if !p.Delegated() {
		return "", ErrUnsupportedProvider
	}
	return f.client.AuthorizeURL(p, f.redirectURI), nil
}

// Initiate navigates to the provider's authorization URL.
func (f *DelegatedFlow) Initiate(ctx context.Context, nav Navigator, provider string) error {
	target, err := f.AuthorizeURL(provider)
	if err != nil {
		return err
	}
	f.logger.Info("starting delegated login", zap.String("provider", strings.ToLower(provider)))
	return nav.Navigate(ctx, domain.Destination(target))
}

// HandleCallback consumes the redirect back from the identity service. Every
// outcome navigates: to the role's view on success, otherwise to the login
// entry point. Nothing is stored unless the token decodes.
func (f *DelegatedFlow) HandleCallback(ctx context.Context, nav Navigator, query url.Values) error {
	if msg := strings.TrimSpace(query.Get("error")); msg != "" {
		f.failed(ctx, events.ReasonDelegation)
		return nav.Navigate(ctx, LoginWithError(msg))
	}

	token := strings.TrimSpace(query.Get("token"))
	if token == "" {
		f.failed(ctx, events.ReasonNoToken)
		return nav.Navigate(ctx, domain.DestinationLogin)
	}

	sess, err := f.sessions.Establish(ctx, token)
	if err != nil {
		f.logger.Warn("delegated callback carried an unusable token", zap.Error(err))
		f.failed(ctx, events.ReasonCorrupt)
		return nav.Navigate(ctx, domain.DestinationLogin)
	}
	return nav.Navigate(ctx, RouteFor(sess.Role))
}

func (f *DelegatedFlow) failed(ctx context.Context, reason string) {
	ev := events.NewEvent(events.EventLoginFailed)
	ev.Reason = reason
	if err := f.events.Publish(ctx, ev); err != nil {
		f.logger.Warn("event handler failed", zap.Error(err))
	}
}

// ConsumeLoginError takes the error message off a login entry point query.
// The returned values no longer carry it, so revisiting them shows nothing.
func ConsumeLoginError(query url.Values) (string, url.Values, bool) {
	msg := strings.TrimSpace(query.Get("error"))
	cleaned := url.Values{}
	for k, v := range query {
		if k == "error" {
			continue
		}
		cleaned[k] = append([]string(nil), v...)
	}
	if msg == "" {
		return "", cleaned, false
	}
	return msg, cleaned, true
}
