package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
	"github.com/avallejos/visitauth/internal/infra/config"
	"github.com/avallejos/visitauth/internal/infra/userstore"
)

type stubProviders struct {
	email string
}

func (p *stubProviders) AuthURL(provider string) (string, error) {
	return "https://" + provider + ".example.com/authorize", nil
}

func (p *stubProviders) Exchange(_ context.Context, _, code string) (string, error) {
	if code == "bad-code" {
		return "", errors.New("exchange rejected")
	}
	return "provider-token", nil
}

func (p *stubProviders) Profile(_ context.Context, _, _ string) (auth.Profile, error) {
	return auth.Profile{Email: p.email}, nil
}

type stubNotifier struct{}

func (stubNotifier) SendMail(context.Context, string, string, string) error { return nil }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		HTTP: config.HTTPConfig{
			Address:        ":0",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
	authCfg := auth.Config{
		AccessSecret:  []byte("access-secret-key-for-unit-tests"),
		RefreshSecret: []byte("refresh-secret-key-for-unit-test"),
		AccessTTL:     auth.DefaultAccessTTL,
		RefreshTTL:    auth.DefaultRefreshTTL,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := userstore.NewMemory()
	authSvc := auth.NewService(authCfg, store, &stubProviders{email: "oauth@test.com"}, stubNotifier{}, logger)
	visitsSvc := visits.NewService(store, logger)
	handler := NewHandler(cfg, authSvc, visitsSvc, logger)
	return NewRouter(cfg, handler, authSvc).Handler
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func register(t *testing.T, srv http.Handler, email, password string) (string, *http.Cookie) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/register", gin.H{"email": email, "pass": password})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)

	cookie := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cookie)
	return body.AccessToken, cookie
}

func TestRouter_RegisterSetsSession(t *testing.T) {
	srv := newTestServer(t)

	_, cookie := register(t, srv, "a@test.com", "pw")
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	// No-remember tier: cookie lives one hour like the token.
	require.Equal(t, 3600, cookie.MaxAge)
}

func TestRouter_RegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@test.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/register", gin.H{"email": "a@test.com", "pass": "pw"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email_exists")
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@test.com", "pw")

	wrongPass := doJSON(t, srv, http.MethodPost, "/api/v1/login", gin.H{"email": "a@test.com", "pass": "nope"})
	unknownUser := doJSON(t, srv, http.MethodPost, "/api/v1/login", gin.H{"email": "x@test.com", "pass": "pw"})

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRouter_LoginRememberExtendsCookie(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@test.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/login", gin.H{"email": "a@test.com", "pass": "pw", "rememberMe": true})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cookie)
	require.Equal(t, 30*24*3600, cookie.MaxAge)
}

func TestRouter_RefreshFlow(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := register(t, srv, "a@test.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/refresh-token", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "accessToken")

	noCookie := doJSON(t, srv, http.MethodPost, "/api/v1/refresh-token", nil)
	require.Equal(t, http.StatusUnauthorized, noCookie.Code)
	require.Contains(t, noCookie.Body.String(), "invalid_token")
}

func TestRouter_LogoutDeniesAndClearsCookies(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := register(t, srv, "a@test.com", "pw")

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	cleared := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	replay := doJSON(t, srv, http.MethodPost, "/api/v1/refresh-token", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, replay.Code)
	require.Contains(t, replay.Body.String(), "token_denied")
}

func TestRouter_LogoutWithBadTokenStillClearsCookies(t *testing.T) {
	srv := newTestServer(t)

	garbage := &http.Cookie{Name: "refreshToken", Value: "garbage"}
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/logout", nil, garbage)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	cleared := findCookie(t, rec, "refreshToken")
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}

func TestRouter_DeleteAccount(t *testing.T) {
	srv := newTestServer(t)
	_, cookie := register(t, srv, "a@test.com", "pw")

	wrong := doJSON(t, srv, http.MethodDelete, "/api/v1/delete", gin.H{"email": "a@test.com", "pass": "nope"}, cookie)
	require.Equal(t, http.StatusUnauthorized, wrong.Code)

	rec := doJSON(t, srv, http.MethodDelete, "/api/v1/delete", gin.H{"email": "a@test.com", "pass": "pw"}, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	login := doJSON(t, srv, http.MethodPost, "/api/v1/login", gin.H{"email": "a@test.com", "pass": "pw"})
	require.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestRouter_AuthRedirect(t *testing.T) {
	srv := newTestServer(t)

	missing := doJSON(t, srv, http.MethodGet, "/api/v1/auth/google", nil)
	require.Equal(t, http.StatusBadRequest, missing.Code)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/auth/google?returnTo=%2Fdashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "authUrl")
	returnCookie := findCookie(t, rec, "returnCookie")
	require.NotNil(t, returnCookie)
	require.Equal(t, "/dashboard", returnCookie.Value)
}

func TestRouter_AuthCallback(t *testing.T) {
	srv := newTestServer(t)

	returnCookie := &http.Cookie{Name: "returnCookie", Value: "/dashboard"}
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/auth/github/callback?code=good", nil, returnCookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	refresh := findCookie(t, rec, "refreshToken")
	require.NotNil(t, refresh)
	// External sign-ins always land on the remember tier.
	require.Equal(t, 30*24*3600, refresh.MaxAge)

	fallback := doJSON(t, srv, http.MethodGet, "/api/v1/auth/github/callback?code=good", nil)
	require.Equal(t, http.StatusFound, fallback.Code)
	require.Equal(t, "/", fallback.Header().Get("Location"))

	failed := doJSON(t, srv, http.MethodGet, "/api/v1/auth/github/callback?code=bad-code", nil)
	require.Equal(t, http.StatusInternalServerError, failed.Code)
	require.Contains(t, failed.Body.String(), "upstream_error")
}

func TestRouter_PasswordResetFlow(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "a@test.com", "old")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/reset-password", gin.H{"email": "a@test.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Email sent.")
	resetCookie := findCookie(t, rec, "resetCookie")
	require.NotNil(t, resetCookie)
	require.Len(t, resetCookie.Value, 6)

	wrongCode := doJSON(t, srv, http.MethodPost, "/api/v1/change-pass",
		gin.H{"email": "a@test.com", "pass": "new", "code": "000000"},
		&http.Cookie{Name: "resetCookie", Value: resetCookie.Value})
	require.Equal(t, http.StatusBadRequest, wrongCode.Code)

	noCookie := doJSON(t, srv, http.MethodPost, "/api/v1/change-pass",
		gin.H{"email": "a@test.com", "pass": "new", "code": resetCookie.Value})
	require.Equal(t, http.StatusBadRequest, noCookie.Code)
	require.Contains(t, noCookie.Body.String(), "expired")

	ok := doJSON(t, srv, http.MethodPost, "/api/v1/change-pass",
		gin.H{"email": "a@test.com", "pass": "new", "code": resetCookie.Value},
		&http.Cookie{Name: "resetCookie", Value: resetCookie.Value})
	require.Equal(t, http.StatusOK, ok.Code)
	require.Contains(t, ok.Body.String(), "Password updated")
	cleared := findCookie(t, ok, "resetCookie")
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)

	login := doJSON(t, srv, http.MethodPost, "/api/v1/login", gin.H{"email": "a@test.com", "pass": "new"})
	require.Equal(t, http.StatusOK, login.Code)
}

func TestRouter_ResetPasswordUnknownEmail(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/reset-password", gin.H{"email": "nobody@test.com"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "user_not_found")
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	srv := newTestServer(t)
	access, _ := register(t, srv, "a@test.com", "pw")

	anonymous := doJSON(t, srv, http.MethodPost, "/api/v1/add-visit", nil)
	require.Equal(t, http.StatusUnauthorized, anonymous.Code)

	badToken := httptest.NewRequest(http.MethodPost, "/api/v1/add-visit", nil)
	badToken.Header.Set("Authorization", "Bearer not-a-token")
	badRec := httptest.NewRecorder()
	srv.ServeHTTP(badRec, badToken)
	require.Equal(t, http.StatusUnauthorized, badRec.Code)
	require.Contains(t, badRec.Body.String(), "invalid_token")

	add := httptest.NewRequest(http.MethodPost, "/api/v1/add-visit", nil)
	add.Header.Set("Authorization", "Bearer "+access)
	addRec := httptest.NewRecorder()
	srv.ServeHTTP(addRec, add)
	require.Equal(t, http.StatusOK, addRec.Code)
	require.Contains(t, addRec.Body.String(), "true")
}

func TestRouter_GetVisits(t *testing.T) {
	srv := newTestServer(t)
	access, _ := register(t, srv, "a@test.com", "pw")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/add-visit", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/get-visits", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []visits.Visit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	for _, v := range history {
		require.NotEmpty(t, v.DateTime)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "not_found")
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete))
}
