package auth

import (
	"context"
	"time"
)

// Store abstracts user and denylist persistence.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (User, bool, error)
	InsertUser(ctx context.Context, email, passwordHash string) (int64, error)
	UpdateUserPassword(ctx context.Context, email, passwordHash string) (bool, error)
	DeleteUser(ctx context.Context, email string) (bool, error)

	// DenyToken records a revoked refresh token together with the expiry
	// encoded in its own claims. It is an idempotent upsert: denying an
	// already-denied token must not fail or corrupt state.
	DenyToken(ctx context.Context, token string, expiresAt time.Time) error
	// IsTokenDenied reports whether the token has a present denylist entry.
	// Entries must not be evicted before their recorded expiry.
	IsTokenDenied(ctx context.Context, token string) (bool, error)
}

// Supported external identity providers.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// Profile is the subset of an external identity we rely on. The provider's
// email verification is trusted entirely; no local re-verification happens.
type Profile struct {
	Email string
}

// ProviderClient talks to an external OAuth identity provider.
type ProviderClient interface {
	AuthURL(provider string) (string, error)
	Exchange(ctx context.Context, provider, code string) (string, error)
	Profile(ctx context.Context, provider, accessToken string) (Profile, error)
}

// Notifier delivers outbound mail.
type Notifier interface {
	SendMail(ctx context.Context, to, subject, body string) error
}
