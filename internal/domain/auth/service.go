package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/mail"
	"strings"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

// Service exposes the session lifecycle workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Session, error)
	Login(ctx context.Context, req LoginRequest) (Session, error)
	AuthURL(ctx context.Context, provider string) (string, error)
	ExternalLogin(ctx context.Context, provider, code string) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	DeleteAccount(ctx context.Context, req DeleteRequest, refreshToken string) error
	ValidateAccess(ctx context.Context, token string) (Claims, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest, cookieCode string) error
}

type service struct {
	cfg       Config
	store     Store
	providers ProviderClient
	notifier  Notifier
	codec     *Codec
	logger    *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, store Store, providers ProviderClient, notifier Notifier, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		store:     store,
		providers: providers,
		notifier:  notifier,
		codec:     NewCodec(cfg),
		logger:    logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, apperrors.Wrap(CodeInvalidInput, "all fields are required", nil)
	}
	if err := validateEmail(email); err != nil {
		return Session{}, apperrors.Wrap(CodeInvalidInput, "invalid email", err)
	}
	_, exists, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, apperrors.Wrap(CodeStore, "failed to check user", err)
	}
	if exists {
		return Session{}, apperrors.Wrap(CodeEmailExists, "user or email already exist", nil)
	}
	id, err := s.store.InsertUser(ctx, email, HashPassword(req.Password))
	if err != nil {
		return Session{}, apperrors.Wrap(CodeStore, "failed to create user", err)
	}
	return s.buildSession(TokenPayload{
		User:       UserPayload{ID: id, Email: email},
		RememberMe: false,
	})
}

func (s *service) Login(ctx context.Context, req LoginRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, apperrors.Wrap(CodeInvalidInput, "all fields are required", nil)
	}
	user, found, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, apperrors.Wrap(CodeStore, "failed to fetch user", err)
	}
	// Unknown email and wrong password surface the same failure so the
	// endpoint cannot be used to enumerate accounts.
	if !found || HashPassword(req.Password) != user.PasswordHash {
		return Session{}, apperrors.Wrap(CodeInvalidCredentials, "invalid credentials", nil)
	}
	return s.buildSession(TokenPayload{
		User:       UserPayload{ID: user.ID, Email: user.Email},
		RememberMe: req.RememberMe,
	})
}

func (s *service) AuthURL(ctx context.Context, provider string) (string, error) {
	url, err := s.providers.AuthURL(provider)
	if err != nil {
		return "", apperrors.Wrap(CodeUpstream, "provider not available", err)
	}
	return url, nil
}

func (s *service) ExternalLogin(ctx context.Context, provider, code string) (Session, error) {
	if strings.TrimSpace(code) == "" {
		return Session{}, apperrors.Wrap(CodeUpstream, "no authorization code received", nil)
	}
	providerToken, err := s.providers.Exchange(ctx, provider, code)
	if err != nil {
		return Session{}, apperrors.Wrap(CodeUpstream, "failed to exchange authorization code", err)
	}
	profile, err := s.providers.Profile(ctx, provider, providerToken)
	if err != nil {
		return Session{}, apperrors.Wrap(CodeUpstream, "failed to fetch provider profile", err)
	}
	if profile.Email == "" {
		return Session{}, apperrors.Wrap(CodeUpstream, "provider did not supply an email address", nil)
	}
	payload, err := s.resolveExternal(ctx, profile.Email)
	if err != nil {
		return Session{}, err
	}
	// External sign-ins always get the remember tier.
	return s.buildSession(TokenPayload{User: payload, RememberMe: true})
}

// resolveExternal maps a provider-verified email to a local user, creating
// one with a random unusable password when absent. Such users can only gain
// a password later through the reset flow.
func (s *service) resolveExternal(ctx context.Context, email string) (UserPayload, error) {
	user, found, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return UserPayload{}, apperrors.Wrap(CodeStore, "failed to fetch user", err)
	}
	if found {
		return UserPayload{ID: user.ID, Email: user.Email}, nil
	}
	placeholder, err := randomHex(8)
	if err != nil {
		return UserPayload{}, apperrors.Wrap(CodeStore, "failed to generate placeholder password", err)
	}
	id, err := s.store.InsertUser(ctx, email, HashPassword(placeholder))
	if err != nil {
		return UserPayload{}, apperrors.Wrap(CodeStore, "failed to create user", err)
	}
	return UserPayload{ID: id, Email: email}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.Wrap(CodeInvalidToken, "no refresh token", nil)
	}
	denied, err := s.store.IsTokenDenied(ctx, refreshToken)
	if err != nil {
		return "", apperrors.Wrap(CodeStore, "failed to check denylist", err)
	}
	if denied {
		return "", apperrors.Wrap(CodeTokenDenied, "refresh token denied", nil)
	}
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	// A new access token only; the refresh token is never rotated.
	return s.codec.IssueAccess(claims.TokenPayload)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Wrap(CodeInvalidToken, "no refresh token", nil)
	}
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	// The write must be durable before the client is told the token is
	// gone, so this is awaited rather than fired and forgotten.
	if err := s.store.DenyToken(ctx, refreshToken, claims.ExpiresAt); err != nil {
		return apperrors.Wrap(CodeStore, "failed to deny refresh token", err)
	}
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, req DeleteRequest, refreshToken string) error {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return apperrors.Wrap(CodeInvalidInput, "all fields are required", nil)
	}
	user, found, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return apperrors.Wrap(CodeStore, "failed to fetch user", err)
	}
	if !found {
		return apperrors.Wrap(CodeUserNotFound, "user not found", nil)
	}
	if HashPassword(req.Password) != user.PasswordHash {
		return apperrors.Wrap(CodeInvalidCredentials, "invalid password", nil)
	}
	if _, err := s.store.DeleteUser(ctx, email); err != nil {
		return apperrors.Wrap(CodeStore, "failed to delete user", err)
	}
	// Best effort once the row is gone: an unverifiable cookie cannot be
	// replayed through refresh anyway, so it is logged instead of failing
	// an otherwise completed deletion.
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.logger.Warn("refresh token not revocable during account deletion", "error", err)
		return nil
	}
	if err := s.store.DenyToken(ctx, refreshToken, claims.ExpiresAt); err != nil {
		return apperrors.Wrap(CodeStore, "failed to deny refresh token", err)
	}
	return nil
}

func (s *service) ValidateAccess(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing", nil)
	}
	return s.codec.VerifyAccess(token)
}

func (s *service) buildSession(payload TokenPayload) (Session, error) {
	access, err := s.codec.IssueAccess(payload)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.codec.IssueRefresh(payload)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.cfg.RefreshTTL.Pick(payload.RememberMe),
	}, nil
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return apperrors.Wrap(CodeInvalidInput, "email exceeds 254 characters", nil)
	}
	_, err := mail.ParseAddress(email)
	return err
}

func randomHex(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
