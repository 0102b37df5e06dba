package service

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// OTPLength is the number of characters in a reset code.
const OTPLength = 6

// MsgInvalidOTP is shown when a reset code is not OTPLength characters.
const MsgInvalidOTP = "Please enter the 6-digit code sent to your email"

// ErrStepNotActive is returned when a step handle is used after the flow has
// moved past it.
var ErrStepNotActive = apperrors.NewConflict("This step is no longer active.")

// ResetStep names the state of a ResetFlow.
type ResetStep string

const (
	ResetStepEmail    ResetStep = "EMAIL"
	ResetStepOTP      ResetStep = "OTP"
	ResetStepPassword ResetStep = "PASSWORD"
)

// ResetClient is the part of the identity client the reset flow needs.
type ResetClient interface {
	RequestResetCode(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
}

// ResetState is one of *EmailStep, *OTPStep or *PasswordStep.
type ResetState interface {
	Step() ResetStep
	VisibleError() string
	isResetState()
}

// ResetFlow is the three-step password reset. Each step only offers the
// transitions valid from it, so a password can only be committed from a
// PasswordStep obtained by verifying a code.
type ResetFlow struct {
	client ResetClient
	events events.Dispatcher
	logger *zap.Logger

	mu         sync.Mutex
	current    ResetState
	submitting bool
}

func NewResetFlow(client ResetClient, dispatcher events.Dispatcher, logger *zap.Logger) *ResetFlow {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &ResetFlow{client: client, events: dispatcher, logger: logger}
	f.current = &EmailStep{flow: f}
	return f
}

// Current returns the active step.
func (f *ResetFlow) Current() ResetState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Restart abandons any progress and returns to the email step.
func (f *ResetFlow) Restart() *EmailStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := &EmailStep{flow: f}
	f.current = step
	return step
}

func (f *ResetFlow) begin(step ResetState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != step {
		return ErrStepNotActive
	}
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.submitting = true
	return nil
}

func (f *ResetFlow) end() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

func (f *ResetFlow) moveTo(next ResetState) {
	f.mu.Lock()
	f.current = next
	f.mu.Unlock()
}

func (f *ResetFlow) back(from, to ResetState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != from {
		return ErrStepNotActive
	}
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.current = to
	return nil
}

func (f *ResetFlow) setError(dst *string, err error) error {
	f.mu.Lock()
	if err == nil {
		*dst = ""
	} else {
		*dst = apperrors.UserMessage(err)
	}
	f.mu.Unlock()
	return err
}

func (f *ResetFlow) read(s *string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *s
}

// EmailStep collects the address the reset code is sent to.
type EmailStep struct {
	flow         *ResetFlow
	email        string
	visibleError string
}

func (s *EmailStep) Step() ResetStep      { return ResetStepEmail }
func (s *EmailStep) VisibleError() string { return s.flow.read(&s.visibleError) }
func (s *EmailStep) Email() string        { return s.flow.read(&s.email) }
func (*EmailStep) isResetState()          {}

// Submit requests a code for email and moves to the OTP step.
func (s *EmailStep) Submit(ctx context.Context, email string) (*OTPStep, error) {
	if err := s.flow.begin(s); err != nil {
		return nil, err
	}
	defer s.flow.end()

	email = strings.TrimSpace(email)
	s.flow.mu.Lock()
	s.email = email
	s.visibleError = ""
	s.flow.mu.Unlock()

	if err := auth.CheckEmail(email); err != nil {
		return nil, s.flow.setError(&s.visibleError, err)
	}
	if err := s.flow.client.RequestResetCode(ctx, email); err != nil {
		s.flow.logger.Info("reset code request failed", zap.Error(err))
		return nil, s.flow.setError(&s.visibleError, err)
	}

	next := &OTPStep{flow: s.flow, email: email}
	s.flow.moveTo(next)
	return next, nil
}

// OTPStep collects the code mailed to Email.
type OTPStep struct {
	flow         *ResetFlow
	email        string
	code         string
	visibleError string
}

func (s *OTPStep) Step() ResetStep      { return ResetStepOTP }
func (s *OTPStep) VisibleError() string { return s.flow.read(&s.visibleError) }
func (s *OTPStep) Email() string        { return s.email }
func (s *OTPStep) Code() string         { return s.flow.read(&s.code) }
func (*OTPStep) isResetState()          {}

// Submit verifies code and moves to the password step. A rejected code stays
// entered.
func (s *OTPStep) Submit(ctx context.Context, code string) (*PasswordStep, error) {
	if err := s.flow.begin(s); err != nil {
		return nil, err
	}
	defer s.flow.end()

	code = strings.TrimSpace(code)
	s.flow.mu.Lock()
	s.code = code
	s.visibleError = ""
	s.flow.mu.Unlock()

	if utf8.RuneCountInString(code) != OTPLength {
		return nil, s.flow.setError(&s.visibleError,
			apperrors.NewValidationError(MsgInvalidOTP, map[string]any{"length": OTPLength}))
	}
	if err := s.flow.client.VerifyResetCode(ctx, s.email, code); err != nil {
		s.flow.logger.Info("reset code rejected", zap.Error(err))
		return nil, s.flow.setError(&s.visibleError, err)
	}

	next := &PasswordStep{flow: s.flow, email: s.email, otp: code}
	s.flow.moveTo(next)
	return next, nil
}

// Back returns to the email step with the address kept.
func (s *OTPStep) Back() (*EmailStep, error) {
	prev := &EmailStep{flow: s.flow, email: s.email}
	if err := s.flow.back(s, prev); err != nil {
		return nil, err
	}
	return prev, nil
}

// PasswordStep commits a new password for a verified email and code.
type PasswordStep struct {
	flow         *ResetFlow
	email        string
	otp          string
	visibleError string
}

func (s *PasswordStep) Step() ResetStep      { return ResetStepPassword }
func (s *PasswordStep) VisibleError() string { return s.flow.read(&s.visibleError) }
func (s *PasswordStep) Email() string        { return s.email }
func (*PasswordStep) isResetState()          {}

// Submit checks the new password locally, commits it and navigates to the
// login entry point. The flow starts over afterwards.
func (s *PasswordStep) Submit(ctx context.Context, nav Navigator, newPassword, confirm string) error {
	if err := s.flow.begin(s); err != nil {
		return err
	}
	defer s.flow.end()

	s.flow.setError(&s.visibleError, nil)
	if err := auth.CheckNewPassword(newPassword, confirm); err != nil {
		return s.flow.setError(&s.visibleError, err)
	}
	if err := s.flow.client.ResetPassword(ctx, s.email, s.otp, newPassword); err != nil {
		s.flow.logger.Info("password reset rejected", zap.Error(err))
		return s.flow.setError(&s.visibleError, err)
	}

	s.flow.moveTo(&EmailStep{flow: s.flow})
	ev := events.NewEvent(events.EventResetCompleted)
	ev.Subject = s.email
	if err := s.flow.events.Publish(ctx, ev); err != nil {
		s.flow.logger.Warn("event handler failed", zap.Error(err))
	}
	return nav.Navigate(ctx, domain.DestinationLogin)
}

// Back returns to the code step with the code kept.
func (s *PasswordStep) Back() (*OTPStep, error) {
	prev := &OTPStep{flow: s.flow, email: s.email, code: s.otp}
	if err := s.flow.back(s, prev); err != nil {
		return nil, err
	}
	return prev, nil
}
