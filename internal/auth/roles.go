package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

// RequireRole lets sessions holding role through and redirects everyone else
// to the view route picks for them. It must run after SessionGuard.Handle.
func RequireRole(role domain.Role, route func(domain.Role) domain.Destination) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		if !ok {
			return c.Redirect(domain.DestinationLogin.String(), fiber.StatusSeeOther)
		}
		if sess.Role != role {
			return c.Redirect(route(sess.Role).String(), fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
