package auth

import (
	"net/mail"
	"strings"

	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// MsgInvalidEmail is shown when an address does not parse.
const MsgInvalidEmail = "Please enter a valid email address"

// CheckEmail accepts a bare address such as "jane@example.com". Display-name
// forms are rejected.
func CheckEmail(email string) error {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address, "@") {
		return apperrors.NewValidationError(MsgInvalidEmail, nil)
	}
	return nil
}
