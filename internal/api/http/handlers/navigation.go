package handlers

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/authkit-labs/auth-portal/internal/domain"
)

const (
	flashCookie = "portal_flash"
	flashTTL    = time.Minute
)

// redirect is the portal's Navigator. A flow navigates into it and the
// handler answers with a 303 to the captured destination.
type redirect struct {
	dest domain.Destination
}

func (r *redirect) Navigate(_ context.Context, dest domain.Destination) error {
	r.dest = dest
	return nil
}

func (r *redirect) send(c *fiber.Ctx) error {
	dest := r.dest
	if dest == "" {
		dest = domain.DestinationLogin
	}
	return c.Redirect(dest.String(), fiber.StatusSeeOther)
}

func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(message),
		Path:     "/",
		Expires:  time.Now().Add(flashTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// takeFlash returns the pending flash message and clears it.
func takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(flashCookie)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

func queryValues(c *fiber.Ctx) url.Values {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return values
}
