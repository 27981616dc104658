package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

// Codec signs and verifies the two token kinds. Access and refresh tokens
// share the claims shape but are signed with independent secrets, so one
// kind never verifies as the other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     TTLTier
	refreshTTL    TTLTier
}

// NewCodec builds a codec from the auth configuration.
func NewCodec(cfg Config) *Codec {
	return &Codec{
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// IssueAccess mints a short-lived access token for the payload. The TTL
// tier follows the payload's rememberMe flag.
func (c *Codec) IssueAccess(payload TokenPayload) (string, error) {
	return c.issue(payload, c.accessSecret, c.accessTTL.Pick(payload.RememberMe))
}

// IssueRefresh mints a long-lived refresh token for the payload.
func (c *Codec) IssueRefresh(payload TokenPayload) (string, error) {
	return c.issue(payload, c.refreshSecret, c.refreshTTL.Pick(payload.RememberMe))
}

// VerifyAccess validates an access token and returns its claims.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, c.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, c.refreshSecret)
}

// AccessTTL exposes the configured access tier.
func (c *Codec) AccessTTL() TTLTier { return c.accessTTL }

// RefreshTTL exposes the configured refresh tier.
func (c *Codec) RefreshTTL() TTLTier { return c.refreshTTL }

type sessionClaims struct {
	jwt.RegisteredClaims
	User       UserPayload `json:"user"`
	RememberMe bool        `json:"rememberMe"`
}

func (c *Codec) issue(payload TokenPayload, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		User:       payload.User,
		RememberMe: payload.RememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperrors.Wrap(CodeStore, "failed to sign token", err)
	}
	return signed, nil
}

func (c *Codec) verify(token string, secret []byte) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperrors.Wrap(CodeTokenExpired, "token expired", err)
		}
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token invalid", nil)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing timestamps", nil)
	}
	return Claims{
		TokenPayload: TokenPayload{User: claims.User, RememberMe: claims.RememberMe},
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
