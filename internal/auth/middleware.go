package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/authkit-labs/auth-portal/internal/domain"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

const sessionKey = "auth_session"

// SessionSource yields the current session or an UNAUTHORIZED error.
type SessionSource interface {
	Current(ctx context.Context) (*domain.Session, error)
}

// SessionGuard keeps guarded views behind a usable session.
type SessionGuard struct {
	sessions SessionSource
}

// NewSessionGuard constructs middleware.
func NewSessionGuard(sessions SessionSource) *SessionGuard {
	return &SessionGuard{sessions: sessions}
}

// Handle sends visitors without a usable session to the login entry point.
func (g *SessionGuard) Handle(c *fiber.Ctx) error {
	sess, err := g.sessions.Current(c.UserContext())
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			return c.Redirect(domain.DestinationLogin.String(), fiber.StatusSeeOther)
		}
		return err
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

// SessionFromContext retrieves the session loaded by the guard.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok
}
