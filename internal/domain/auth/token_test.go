package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

func testCodecConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-key-for-unit-tests"),
		RefreshSecret: []byte("refresh-secret-key-for-unit-test"),
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
	}
}

func TestCodec_RoundTripPreservesPayload(t *testing.T) {
	codec := NewCodec(testCodecConfig())
	payload := TokenPayload{User: UserPayload{ID: 7, Email: "a@test.com"}, RememberMe: true}

	signed, err := codec.IssueAccess(payload)
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(signed)
	require.NoError(t, err)
	require.Equal(t, payload.User, claims.User)
	require.True(t, claims.RememberMe)
}

func TestCodec_TTLFollowsRememberTier(t *testing.T) {
	codec := NewCodec(testCodecConfig())

	cases := []struct {
		name     string
		remember bool
		issue    func(TokenPayload) (string, error)
		verify   func(string) (Claims, error)
		want     time.Duration
	}{
		{"access no-remember", false, codec.IssueAccess, codec.VerifyAccess, 10 * time.Minute},
		{"access remember", true, codec.IssueAccess, codec.VerifyAccess, time.Hour},
		{"refresh no-remember", false, codec.IssueRefresh, codec.VerifyRefresh, time.Hour},
		{"refresh remember", true, codec.IssueRefresh, codec.VerifyRefresh, 30 * 24 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := TokenPayload{User: UserPayload{ID: 1, Email: "a@test.com"}, RememberMe: tc.remember}
			signed, err := tc.issue(payload)
			require.NoError(t, err)
			claims, err := tc.verify(signed)
			require.NoError(t, err)
			require.Equal(t, tc.want, claims.ExpiresAt.Sub(claims.IssuedAt))
		})
	}
}

func TestCodec_CrossSecretIsolation(t *testing.T) {
	codec := NewCodec(testCodecConfig())
	payload := TokenPayload{User: UserPayload{ID: 1, Email: "a@test.com"}}

	access, err := codec.IssueAccess(payload)
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh(payload)
	require.NoError(t, err)

	_, err = codec.VerifyRefresh(access)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
	_, err = codec.VerifyAccess(refresh)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	other := NewCodec(Config{
		AccessSecret:  []byte("another-32-byte-secret-entirely!"),
		RefreshSecret: []byte("yet-another-32-byte-hmac-secret!"),
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
	})
	_, err = other.VerifyAccess(access)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestCodec_ExpiredTokenIsTypedExpired(t *testing.T) {
	cfg := testCodecConfig()
	cfg.AccessTTL = TTLTier{Remember: -time.Minute, NoRemember: -time.Minute}
	codec := NewCodec(cfg)

	signed, err := codec.IssueAccess(TokenPayload{User: UserPayload{ID: 1, Email: "a@test.com"}})
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	require.True(t, apperrors.IsCode(err, CodeTokenExpired))
}

func TestCodec_MalformedInput(t *testing.T) {
	codec := NewCodec(testCodecConfig())
	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d", "ey.ey.ey"} {
		_, err := codec.VerifyAccess(garbage)
		require.True(t, apperrors.IsCode(err, CodeInvalidToken), "input %q", garbage)
	}
}
