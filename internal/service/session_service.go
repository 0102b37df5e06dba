package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/auth"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/session"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

var (
	// ErrNotAuthenticated means there is no usable session; go to the login entry point.
	ErrNotAuthenticated = apperrors.NewUnauthorized("Please sign in to continue.")
	// ErrSessionExpired means the stored credential's exp claim has passed.
	ErrSessionExpired = apperrors.NewUnauthorized("Your session has expired. Please sign in again.")
)

// SessionOptions tunes SessionService.
type SessionOptions struct {
	// ProactiveExpiry drops credentials whose exp claim has passed when they
	// are read, instead of waiting for the server to reject them.
	ProactiveExpiry bool
	Now             func() time.Time
}

// SessionService is the only owner of the session store. Login flows call
// Establish, guarded views call Current, logout and rejected calls clear.
type SessionService struct {
	store   session.Store
	decoder *auth.Decoder
	events  events.Dispatcher
	logger  *zap.Logger
	opts    SessionOptions
}

// NewSessionService wires the store and decoder together.
func NewSessionService(store session.Store, decoder *auth.Decoder, dispatcher events.Dispatcher, logger *zap.Logger, opts SessionOptions) *SessionService {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionService{store: store, decoder: decoder, events: dispatcher, logger: logger, opts: opts}
}

// Establish decodes credential and, only if that succeeds, stores it.
func (s *SessionService) Establish(ctx context.Context, credential string) (*domain.Session, error) {
	sess, err := s.decoder.DecodeSession(credential)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess.Credential); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("save session: %w", err))
	}

	s.publish(ctx, events.SessionEvent(events.EventSessionStarted, sess))
	return sess, nil
}

// Current returns the stored session. Unusable credentials are cleared and
// reported as ErrNotAuthenticated or ErrSessionExpired.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	credential, err := s.store.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("load session: %w", err))
	}

	sess, err := s.decoder.DecodeSession(credential)
	if err != nil {
		s.logger.Warn("discarding undecodable session credential", zap.Error(err))
		s.clear(ctx, nil, events.ReasonCorrupt)
		return nil, ErrNotAuthenticated
	}

	if s.opts.ProactiveExpiry && sess.Expired(s.opts.Now()) {
		s.clear(ctx, sess, events.ReasonExpired)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout clears the session.
func (s *SessionService) Logout(ctx context.Context) error {
	var sess *domain.Session
	if credential, err := s.store.Load(ctx); err == nil {
		sess, _ = s.decoder.DecodeSession(credential)
	}
	if err := s.store.Clear(ctx); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("clear session: %w", err))
	}
	s.publish(ctx, s.endEvent(sess, events.ReasonLogout))
	return nil
}

// HandleAuthFailure clears the session when err says the server no longer
// accepts it, and returns err unchanged.
func (s *SessionService) HandleAuthFailure(ctx context.Context, sess *domain.Session, err error) error {
	if err != nil && apperrors.IsUnauthorized(err) {
		s.clear(ctx, sess, events.ReasonUnauthorized)
	}
	return err
}

func (s *SessionService) clear(ctx context.Context, sess *domain.Session, reason string) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session", zap.String("reason", reason), zap.Error(err))
		return
	}
	s.publish(ctx, s.endEvent(sess, reason))
}

func (s *SessionService) endEvent(sess *domain.Session, reason string) events.Event {
	ev := events.SessionEvent(events.EventSessionEnded, sess)
	ev.Reason = reason
	return ev
}

func (s *SessionService) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("event handler failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
