package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// ErrSubmitInFlight is returned when a flow already has a request outstanding.
var ErrSubmitInFlight = apperrors.NewConflict("A request is already in progress.")

// MsgUnusableCredential is shown when the identity service answers with a
// token that cannot be decoded.
const MsgUnusableCredential = "Login failed. Please try again."

// LoginState is the state of a LoginFlow.
type LoginState string

const (
	LoginIdle       LoginState = "Idle"
	LoginSubmitting LoginState = "Submitting"
)

// LoginClient is the part of the identity client the login flow needs.
type LoginClient interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
}

// LoginFlow submits email and password and dispatches the new session by role.
type LoginFlow struct {
	client   LoginClient
	sessions *SessionService
	events   events.Dispatcher
	logger   *zap.Logger

	mu           sync.Mutex
	state        LoginState
	visibleError string
}

func NewLoginFlow(client LoginClient, sessions *SessionService, dispatcher events.Dispatcher, logger *zap.Logger) *LoginFlow {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginFlow{
		client:   client,
		sessions: sessions,
		events:   dispatcher,
		logger:   logger,
		state:    LoginIdle,
	}
}

// State returns Idle or Submitting.
func (f *LoginFlow) State() LoginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// VisibleError is the message left by the last failed submit.
func (f *LoginFlow) VisibleError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visibleError
}

// Submit sends one login request. On failure the store is left as it was and
// nothing is navigated.
func (f *LoginFlow) Submit(ctx context.Context, nav Navigator, email, password string) error {
	if !f.begin() {
		return ErrSubmitInFlight
	}
	defer f.end()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return f.fail(ctx, email, apperrors.NewValidationError("Email and password are required", nil))
	}

	resp, err := f.client.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return f.fail(ctx, email, err)
	}

	sess, err := f.sessions.Establish(ctx, resp.Token)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeDecode) {
			f.logger.Warn("identity service returned an undecodable credential", zap.Error(err))
			err = &apperrors.ClientError{
				Code:       apperrors.CodeDecode,
				Message:    MsgUnusableCredential,
				HTTPStatus: apperrors.ToClientError(err).HTTPStatus,
				Err:        err,
			}
		}
		return f.fail(ctx, email, err)
	}

	f.logger.Info("login succeeded", zap.String("role", string(sess.Role)))
	return nav.Navigate(ctx, RouteFor(sess.Role))
}

func (f *LoginFlow) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == LoginSubmitting {
		return false
	}
	f.state = LoginSubmitting
	f.visibleError = ""
	return true
}

func (f *LoginFlow) end() {
	f.mu.Lock()
	f.state = LoginIdle
	f.mu.Unlock()
}

func (f *LoginFlow) fail(ctx context.Context, email string, err error) error {
	f.mu.Lock()
	f.visibleError = apperrors.UserMessage(err)
	f.mu.Unlock()

	f.logger.Info("login failed", zap.String("code", apperrors.ToClientError(err).Code))

	ev := events.NewEvent(events.EventLoginFailed)
	ev.Subject = email
	ev.Provider = domain.ProviderEmail
	ev.Reason = events.ReasonRejected
	if apperrors.HasCode(err, apperrors.CodeDecode) {
		ev.Reason = events.ReasonCorrupt
	}
	if pubErr := f.events.Publish(ctx, ev); pubErr != nil {
		f.logger.Warn("event handler failed", zap.Error(pubErr))
	}
	return err
}
