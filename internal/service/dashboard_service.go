package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/authkit-labs/auth-portal/internal/domain"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// ErrAdminOnly is returned when a non-admin session asks for admin data.
var ErrAdminOnly = apperrors.NewForbidden("Administrator access is required.")

// DashboardClient is the protected part of the identity client.
type DashboardClient interface {
	CurrentUser(ctx context.Context, credential string) (*domain.User, error)
	Activity(ctx context.Context, credential string) ([]domain.ActivityEntry, error)
	ListUsers(ctx context.Context, credential string) ([]domain.User, error)
	ListLogs(ctx context.Context, credential string) ([]domain.ActivityEntry, error)
	SetUserStatus(ctx context.Context, credential, userID string, status domain.UserStatus) (*domain.User, error)
}

// UserDashboard is the signed-in user's own view.
type UserDashboard struct {
	Session  *domain.Session
	Profile  domain.User
	Activity []domain.ActivityEntry
}

// AdminStats summarizes the account list.
type AdminStats struct {
	TotalUsers  int
	ActiveUsers int
	Admins      int
	Delegated   int
}

// AdminDashboard is the administrator's view of every account.
type AdminDashboard struct {
	Session *domain.Session
	Users   []domain.User
	Logs    []domain.ActivityEntry
	Stats   AdminStats
}

// DashboardService loads the guarded views. A 401 or 403 from any read drops
// the session.
type DashboardService struct {
	client   DashboardClient
	sessions *SessionService
	logger   *zap.Logger
}

func NewDashboardService(client DashboardClient, sessions *SessionService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{client: client, sessions: sessions, logger: logger}
}

// User loads profile and activity together. If either read fails, the view fails.
func (s *DashboardService) User(ctx context.Context) (*UserDashboard, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	var (
		profile  *domain.User
		activity []domain.ActivityEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.client.CurrentUser(gctx, sess.Credential)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = s.client.Activity(gctx, sess.Credential)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Info("user dashboard load failed", zap.Error(err))
		return nil, s.sessions.HandleAuthFailure(ctx, sess, err)
	}

	view := &UserDashboard{Session: sess, Profile: *profile, Activity: activity}
	if view.Profile.Email == "" {
		view.Profile.Email = sess.Subject
	}
	if view.Profile.Provider == "" || view.Profile.Provider == domain.ProviderUnknown {
		view.Profile.Provider = sess.Provider
	}
	return view, nil
}

// Admin loads every account and every activity log together.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	sess, err := s.adminSession(ctx)
	if err != nil {
		return nil, err
	}

	var (
		users []domain.User
		logs  []domain.ActivityEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.client.ListUsers(gctx, sess.Credential)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = s.client.ListLogs(gctx, sess.Credential)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Info("admin dashboard load failed", zap.Error(err))
		return nil, s.sessions.HandleAuthFailure(ctx, sess, err)
	}

	return &AdminDashboard{Session: sess, Users: users, Logs: logs, Stats: ComputeStats(users)}, nil
}

// SetUserStatus changes an account's status. status is parsed case-insensitively.
func (s *DashboardService) SetUserStatus(ctx context.Context, userID, status string) (*domain.User, error) {
	canonical, ok := domain.ParseUserStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("Unknown user status", map[string]any{"status": status})
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("User id is required", nil)
	}

	sess, err := s.adminSession(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.client.SetUserStatus(ctx, sess.Credential, userID, canonical)
	if err != nil {
		return nil, s.sessions.HandleAuthFailure(ctx, sess, err)
	}
	s.logger.Info("user status changed", zap.String("user_id", userID), zap.String("status", string(canonical)))
	return user, nil
}

func (s *DashboardService) adminSession(ctx context.Context) (*domain.Session, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Role.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return sess, nil
}

// ComputeStats counts the account list.
func ComputeStats(users []domain.User) AdminStats {
	stats := AdminStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.Status == domain.UserStatusActive {
			stats.ActiveUsers++
		}
		if u.Role.IsAdmin() {
			stats.Admins++
		}
		if u.Provider.Delegated() {
			stats.Delegated++
		}
	}
	return stats
}
