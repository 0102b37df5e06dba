package auth

import (
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/authkit-labs/auth-portal/internal/domain"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// Claims describes the identity service's JWT payload.
type Claims struct {
	Role     string `json:"role"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// Session projects the claims onto a canonical session.
func (c *Claims) Session(credential string) *domain.Session {
	sess := &domain.Session{
		Credential: credential,
		Subject:    c.Subject,
		Role:       domain.ParseRole(c.Role),
		Provider:   domain.ParseProvider(c.Provider),
	}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	return sess
}

// Decoder extracts claims from credentials without verifying them. The client
// holds no key; authenticity is the identity service's concern.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder builds a decoder.
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode parses the credential's claim payload. Any structural problem yields a
// DECODE_FAILED ClientError.
func (d *Decoder) Decode(credential string) (*Claims, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, apperrors.NewDecodeError(errors.New("empty credential"))
	}

	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(credential, claims); err != nil {
		return nil, apperrors.NewDecodeError(err)
	}
	return claims, nil
}

// DecodeSession decodes and projects in one step.
func (d *Decoder) DecodeSession(credential string) (*domain.Session, error) {
	claims, err := d.Decode(credential)
	if err != nil {
		return nil, err
	}
	return claims.Session(strings.TrimSpace(credential)), nil
}
