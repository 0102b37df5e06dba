package auth

import (
	"unicode"

	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

// MinPasswordLength is the shortest password the client will submit.
const MinPasswordLength = 8

// Local validation messages shown before any request is made.
const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordTooShort = "Password must be at least 8 characters long"
	MsgPasswordPolicy   = "Please ensure all password requirements are met"
)

// CheckNewPassword enforces the reset-step preconditions: confirmation first,
// then length.
func CheckNewPassword(password, confirm string) error {
	if password != confirm {
		return apperrors.NewValidationError(MsgPasswordMismatch, nil)
	}
	if len([]rune(password)) < MinPasswordLength {
		return apperrors.NewValidationError(MsgPasswordTooShort, map[string]any{"min_length": MinPasswordLength})
	}
	return nil
}

// PasswordRequirements is the sign-up checklist.
type PasswordRequirements struct {
	Length    bool `json:"length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Number    bool `json:"number"`
	Match     bool `json:"match"`
}

// Satisfied reports whether every requirement holds.
func (r PasswordRequirements) Satisfied() bool {
	return r.Length && r.Uppercase && r.Lowercase && r.Number && r.Match
}

// EvaluatePassword fills the sign-up checklist for password and its confirmation.
func EvaluatePassword(password, confirm string) PasswordRequirements {
	req := PasswordRequirements{
		Length: len([]rune(password)) >= MinPasswordLength,
		Match:  confirm != "" && password == confirm,
	}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			req.Uppercase = true
		case unicode.IsLower(r):
			req.Lowercase = true
		case unicode.IsDigit(r):
			req.Number = true
		}
	}
	return req
}

// CheckSignupPassword returns a ValidationError unless every requirement holds.
func CheckSignupPassword(password, confirm string) error {
	req := EvaluatePassword(password, confirm)
	if !req.Satisfied() {
		return apperrors.NewValidationError(MsgPasswordPolicy, map[string]any{"requirements": req})
	}
	return nil
}
