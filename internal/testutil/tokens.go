// Package testutil holds fixtures shared by package tests: signed credentials
// and an in-process fake of the identity service.
package testutil

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Secret signs test credentials. The client never verifies it.
const Secret = "test-signing-secret"

// TokenClaims are the claims the identity service puts in a credential.
type TokenClaims struct {
	Subject  string
	Role     string
	Provider string
	TTL      time.Duration
}

// MintToken signs an HS256 credential. A zero TTL omits the exp claim and a
// negative TTL produces an already-expired credential.
func MintToken(t testing.TB, c TokenClaims) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": c.Subject,
		"iat": time.Now().Unix(),
	}
	if c.Role != "" {
		claims["role"] = c.Role
	}
	if c.Provider != "" {
		claims["provider"] = c.Provider
	}
	if c.TTL != 0 {
		claims["exp"] = time.Now().Add(c.TTL).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// AdminToken is a valid one-hour admin credential.
func AdminToken(t testing.TB) string {
	return MintToken(t, TokenClaims{Subject: "admin@example.com", Role: "ADMIN", Provider: "EMAIL", TTL: time.Hour})
}

// UserToken is a valid one-hour user credential.
func UserToken(t testing.TB) string {
	return MintToken(t, TokenClaims{Subject: "user@example.com", Role: "USER", Provider: "GOOGLE", TTL: time.Hour})
}
