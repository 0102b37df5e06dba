package dto

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse is returned by the identity service on login and register.
// Only Token is required; the rest mirror claims for convenience.
type AuthResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// RegisterRequest payload for POST /api/auth/register.
type RegisterRequest struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Role            string `json:"role" form:"role"`
}

// ResetCodeRequest asks the identity service to mail a reset code.
type ResetCodeRequest struct {
	Email string `json:"email" form:"email"`
}

// VerifyCodeRequest checks a reset code against the email it was sent to.
type VerifyCodeRequest struct {
	Email string `json:"email" form:"email"`
	OTP   string `json:"otp" form:"otp"`
}

// ResetPasswordRequest commits the new password for a verified code.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// NewPasswordForm is the portal form for the final reset step.
type NewPasswordForm struct {
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// ErrorResponse is the identity service's failure body.
type ErrorResponse struct {
	Message string `json:"message"`
}
