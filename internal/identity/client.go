// Package identity is the HTTP client for the remote identity service.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/api/dto"
	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/domain"
	"github.com/authkit-labs/auth-portal/internal/observability"
	apperrors "github.com/authkit-labs/auth-portal/pkg/util"
)

const maxBodyBytes = 1 << 20

// Fallback messages used when a failure body says nothing useful.
const (
	MsgLoginFailed    = "Login failed. Please check your credentials."
	MsgRegisterFailed = "Registration failed"
	MsgResetSend      = "Failed to send reset code. Please try again."
	MsgResetVerify    = "Invalid verification code"
	MsgResetCommit    = "Failed to reset password. Please try again."
	MsgLoadFailed     = "Failed to load data. Please try again."
)

// Client talks to the identity service. It never retries.
type Client struct {
	cfg     config.IdentityConfig
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClient builds a client. A nil httpClient gets one with the configured timeout.
func NewClient(cfg config.IdentityConfig, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger, metrics: metrics}
}

// Login exchanges email and password for a credential.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, c.cfg.LoginPath, "", req, &resp, MsgLoginFailed); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) error {
	return c.do(ctx, "register", http.MethodPost, c.cfg.RegisterPath, "", req, nil, MsgRegisterFailed)
}

// RequestResetCode asks for a reset code to be mailed to email.
func (c *Client) RequestResetCode(ctx context.Context, email string) error {
	return c.do(ctx, "reset_request", http.MethodPost, c.cfg.ResetRequestPath, "",
		dto.ResetCodeRequest{Email: email}, nil, MsgResetSend)
}

// VerifyResetCode checks a reset code.
func (c *Client) VerifyResetCode(ctx context.Context, email, otp string) error {
	return c.do(ctx, "reset_verify", http.MethodPost, c.cfg.ResetVerifyPath, "",
		dto.VerifyCodeRequest{Email: email, OTP: otp}, nil, MsgResetVerify)
}

// ResetPassword commits a new password bound to a verified email and code.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.do(ctx, "reset_confirm", http.MethodPost, c.cfg.ResetConfirmPath, "",
		dto.ResetPasswordRequest{Email: email, OTP: otp, NewPassword: newPassword}, nil, MsgResetCommit)
}

// CurrentUser fetches the profile of the credential's subject.
func (c *Client) CurrentUser(ctx context.Context, credential string) (*domain.User, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, "current_user", http.MethodGet, c.cfg.MePath, credential, nil, &resp, MsgLoadFailed); err != nil {
		return nil, err
	}
	user := resp.ToDomain()
	return &user, nil
}

// Activity fetches the subject's recent activity.
func (c *Client) Activity(ctx context.Context, credential string) ([]domain.ActivityEntry, error) {
	var resp []dto.ActivityLogResponse
	if err := c.do(ctx, "activity", http.MethodGet, c.cfg.ActivityPath, credential, nil, &resp, MsgLoadFailed); err != nil {
		return nil, err
	}
	return toEntries(resp), nil
}

// ListUsers fetches every account. Admin only.
func (c *Client) ListUsers(ctx context.Context, credential string) ([]domain.User, error) {
	var resp []dto.UserResponse
	if err := c.do(ctx, "admin_users", http.MethodGet, c.cfg.AdminUsersPath, credential, nil, &resp, MsgLoadFailed); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(resp))
	for _, u := range resp {
		users = append(users, u.ToDomain())
	}
	return users, nil
}

// ListLogs fetches every activity log. Admin only.
func (c *Client) ListLogs(ctx context.Context, credential string) ([]domain.ActivityEntry, error) {
	var resp []dto.ActivityLogResponse
	if err := c.do(ctx, "admin_logs", http.MethodGet, c.cfg.AdminLogsPath, credential, nil, &resp, MsgLoadFailed); err != nil {
		return nil, err
	}
	return toEntries(resp), nil
}

// SetUserStatus changes an account's status. Admin only.
func (c *Client) SetUserStatus(ctx context.Context, credential, userID string, status domain.UserStatus) (*domain.User, error) {
	path := c.cfg.AdminUsersPath + "/" + url.PathEscape(userID) + "/status"
	var resp dto.UserResponse
	err := c.do(ctx, "admin_set_status", http.MethodPut, path, credential,
		dto.UpdateUserStatusRequest{Status: string(status)}, &resp, "Failed to update user status")
	if err != nil {
		return nil, err
	}
	user := resp.ToDomain()
	return &user, nil
}

// AuthorizeURL is the identity service's delegated-auth entry point for
// provider, returning to redirectURI.
func (c *Client) AuthorizeURL(provider domain.Provider, redirectURI string) string {
	q := url.Values{}
	q.Set("redirect_uri", redirectURI)
	return c.cfg.BaseURL + c.cfg.AuthorizePath + "/" + url.PathEscape(provider.Slug()) + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, op, method, path, credential string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(fmt.Errorf("encode %s request: %w", op, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError(fmt.Errorf("build %s request: %w", op, err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))
	log.Debug("identity request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordIdentityCall(op, "transport")
		log.Warn("identity request failed", zap.Error(err))
		return apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.RecordIdentityCall(op, "transport")
		return apperrors.NewTransportError(fmt.Errorf("read %s response: %w", op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordIdentityCall(op, "rejected")
		log.Info("identity request rejected", zap.Int("status", resp.StatusCode))
		return apperrors.NewRejectedError(resp.StatusCode, failureMessage(raw, fallback))
	}

	c.metrics.RecordIdentityCall(op, "ok")
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apperrors.ClientError{
			Code:       apperrors.CodeRejected,
			Message:    fallback,
			HTTPStatus: resp.StatusCode,
			Err:        fmt.Errorf("decode %s response: %w", op, err),
		}
	}
	return nil
}

// failureMessage picks the human-readable part of a failure body: a JSON
// message, else short plain text, else fallback.
func failureMessage(raw []byte, fallback string) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallback
	}

	if strings.HasPrefix(text, "{") {
		var body dto.ErrorResponse
		if err := json.Unmarshal(raw, &body); err == nil {
			if msg := strings.TrimSpace(body.Message); msg != "" {
				return firstLine(msg)
			}
		}
		return fallback
	}
	if strings.HasPrefix(text, "<") || strings.HasPrefix(text, "[") {
		return fallback
	}
	return firstLine(text)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	const maxLen = 200
	if len([]rune(s)) > maxLen {
		s = string([]rune(s)[:maxLen])
	}
	return s
}

func toEntries(resp []dto.ActivityLogResponse) []domain.ActivityEntry {
	entries := make([]domain.ActivityEntry, 0, len(resp))
	for _, a := range resp {
		entries = append(entries, a.ToDomain())
	}
	return entries
}
