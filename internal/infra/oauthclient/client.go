package oauthclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/avallejos/visitauth/internal/domain/auth"
)

const (
	googleIssuerURL   = "https://accounts.google.com"
	githubUserInfoURL = "https://api.github.com/user"
)

// Client implements auth.ProviderClient for Google and GitHub.
type Client struct {
	configs    map[string]*oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds the provider client. Providers without credentials stay
// unconfigured and fail with an explicit error when used.
func New(googleCfg, githubCfg auth.ProviderConfig, logger *slog.Logger) *Client {
	configs := make(map[string]*oauth2.Config)
	if googleCfg.ClientID != "" && googleCfg.ClientSecret != "" {
		configs[auth.ProviderGoogle] = &oauth2.Config{
			ClientID:     googleCfg.ClientID,
			ClientSecret: googleCfg.ClientSecret,
			RedirectURL:  googleCfg.RedirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if githubCfg.ClientID != "" && githubCfg.ClientSecret != "" {
		configs[auth.ProviderGitHub] = &oauth2.Config{
			ClientID:     githubCfg.ClientID,
			ClientSecret: githubCfg.ClientSecret,
			RedirectURL:  githubCfg.RedirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		}
	}
	return &Client{
		configs:    configs,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With("component", "oauthclient"),
	}
}

func (c *Client) AuthURL(provider string) (string, error) {
	cfg, err := c.config(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(""), nil
}

func (c *Client) Exchange(ctx context.Context, provider, code string) (string, error) {
	cfg, err := c.config(provider)
	if err != nil {
		return "", err
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange authorization code with %s: %w", provider, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("no access token received from %s", provider)
	}
	return token.AccessToken, nil
}

func (c *Client) Profile(ctx context.Context, provider, accessToken string) (auth.Profile, error) {
	switch provider {
	case auth.ProviderGoogle:
		return c.googleProfile(ctx, accessToken)
	case auth.ProviderGitHub:
		return c.githubProfile(ctx, accessToken)
	default:
		return auth.Profile{}, fmt.Errorf("unknown provider %q", provider)
	}
}

// googleProfile resolves the profile through the OIDC UserInfo endpoint.
func (c *Client) googleProfile(ctx context.Context, accessToken string) (auth.Profile, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuerURL)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("initialize oidc provider: %w", err)
	}
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	info, err := provider.UserInfo(ctx, source)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("fetch google userinfo: %w", err)
	}
	return auth.Profile{Email: info.Email}, nil
}

// githubProfile queries the REST user endpoint. The email is empty when the
// account has not made it public, which the caller treats as a failure.
func (c *Client) githubProfile(ctx context.Context, accessToken string) (auth.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserInfoURL, nil)
	if err != nil {
		return auth.Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return auth.Profile{}, fmt.Errorf("github user endpoint returned status %d", resp.StatusCode)
	}
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return auth.Profile{}, fmt.Errorf("decode github user payload: %w", err)
	}
	return auth.Profile{Email: payload.Email}, nil
}

func (c *Client) config(provider string) (*oauth2.Config, error) {
	cfg, ok := c.configs[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q is not configured", provider)
	}
	return cfg, nil
}

var _ auth.ProviderClient = (*Client)(nil)
