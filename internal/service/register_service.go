package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/domain"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// MsgRoleRequired is shown when sign-up omits the role.
const MsgRoleRequired = "Please select a role"

// RegisterClient is the part of the identity client sign-up needs.
type RegisterClient interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
}

// RegisterFlow creates an account and sends the user to the login entry
// point. It does not start a session.
type RegisterFlow struct {
	client RegisterClient
	logger *zap.Logger

	mu           sync.Mutex
	submitting   bool
	visibleError string
}

func NewRegisterFlow(client RegisterClient, logger *zap.Logger) *RegisterFlow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegisterFlow{client: client, logger: logger}
}

func (f *RegisterFlow) VisibleError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visibleError
}

// Submit validates the form locally and registers the account.
func (f *RegisterFlow) Submit(ctx context.Context, nav Navigator, form dto.RegisterRequest) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	f.visibleError = ""
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	req, err := normalizeRegistration(form)
	if err != nil {
		return f.fail(err)
	}
	if err := f.client.Register(ctx, req); err != nil {
		f.logger.Info("registration failed", zap.Error(err))
		return f.fail(err)
	}

	f.logger.Info("account registered", zap.String("role", req.Role))
	return nav.Navigate(ctx, domain.DestinationLogin)
}

func (f *RegisterFlow) fail(err error) error {
	f.mu.Lock()
	f.visibleError = apperrors.UserMessage(err)
	f.mu.Unlock()
	return err
}

func normalizeRegistration(form dto.RegisterRequest) (dto.RegisterRequest, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := auth.CheckEmail(form.Email); err != nil {
		return form, err
	}
	if err := auth.CheckSignupPassword(form.Password, form.ConfirmPassword); err != nil {
		return form, err
	}
	if strings.TrimSpace(form.Role) == "" {
		return form, apperrors.NewValidationError(MsgRoleRequired, nil)
	}
	form.Role = string(domain.ParseRole(form.Role))
	return form, nil
}
