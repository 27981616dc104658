package auth

import "time"

// Config drives authentication behavior. Secrets are independent 32-byte
// HMAC keys; a token signed with one never verifies under the other.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     TTLTier
	RefreshTTL    TTLTier
	Google        ProviderConfig
	GitHub        ProviderConfig
}

// TTLTier selects a token lifetime from the rememberMe flag.
type TTLTier struct {
	Remember   time.Duration
	NoRemember time.Duration
}

// Pick returns the lifetime for the given remember tier.
func (t TTLTier) Pick(remember bool) time.Duration {
	if remember {
		return t.Remember
	}
	return t.NoRemember
}

// ProviderConfig holds OAuth settings for one external identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// DefaultAccessTTL and DefaultRefreshTTL are the stock token lifetimes.
var (
	DefaultAccessTTL  = TTLTier{Remember: time.Hour, NoRemember: 10 * time.Minute}
	DefaultRefreshTTL = TTLTier{Remember: 30 * 24 * time.Hour, NoRemember: time.Hour}
)

// User represents a persisted account.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// UserPayload is the user fragment embedded in token claims.
type UserPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TokenPayload is the application data carried by both token kinds.
type TokenPayload struct {
	User       UserPayload `json:"user"`
	RememberMe bool        `json:"rememberMe"`
}

// Claims are the decoded contents of a verified token.
type Claims struct {
	TokenPayload
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the result of a successful authentication: the access token
// goes to the response body, the refresh token into an httpOnly cookie
// whose max-age matches RefreshTTL.
type Session struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"pass"`
	RememberMe bool   `json:"rememberMe"`
}

// DeleteRequest re-authenticates the account owner before deletion.
type DeleteRequest struct {
	Email    string `json:"email"`
	Password string `json:"pass"`
}

// ChangePasswordRequest carries the reset code and the new password.
type ChangePasswordRequest struct {
	Code     string `json:"code"`
	Password string `json:"pass"`
	Email    string `json:"email"`
}
