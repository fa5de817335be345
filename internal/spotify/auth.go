package spotify

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/lyrics-service/internal/config"
)

// ErrUpstreamAuth wraps every failure of the token exchange itself, whether
// network-level or an error response from the accounts endpoint. Either both
// tokens come back or neither does.
var ErrUpstreamAuth = errors.New("spotify: token exchange failed")

// Scopes requested for user login.
const loginScopes = "user-read-private user-read-email"

// TokenProvider obtains and refreshes Spotify tokens for both the
// client-credentials (app) and authorization-code (user) flows.
type TokenProvider struct {
	clientID     string
	clientSecret string
	redirectURI  string
	accountsURL  string
	apiBaseURL   string
	httpClient   *http.Client
}

// NewTokenProvider builds a provider from config.
func NewTokenProvider(cfg config.SpotifyConfig) *TokenProvider {
	return &TokenProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
		accountsURL:  strings.TrimRight(cfg.AccountsURL, "/"),
		apiBaseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthorizeURL returns the Spotify login redirect for the given state.
func (p *TokenProvider) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", p.clientID)
	q.Set("scope", loginScopes)
	q.Set("redirect_uri", p.redirectURI)
	q.Set("state", state)
	return p.accountsURL + "/authorize?" + q.Encode()
}

// RandomState produces the opaque state value for an authorize redirect.
func RandomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ClientCredentials exchanges the application's id/secret for an app-level
// access token. No refresh token is returned for this grant.
func (p *TokenProvider) ClientCredentials(ctx context.Context) (Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	resp, err := p.tokenRequest(ctx, form, true)
	if err != nil {
		return Credential{}, err
	}
	return AppCredential(resp.AccessToken), nil
}

// ExchangeCode trades an OAuth authorization code for a user token pair.
// The owner is unknown at exchange time; callers fill it in after resolving
// the local user record.
func (p *TokenProvider) ExchangeCode(ctx context.Context, code string) (Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", p.redirectURI)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	resp, err := p.tokenRequest(ctx, form, false)
	if err != nil {
		return Credential{}, err
	}
	return UserCredential("", resp.AccessToken, resp.RefreshToken), nil
}

// Refresh trades a stored refresh token for a new pair. Spotify may omit the
// refresh token from the response, in which case the old one stays valid and
// is carried forward.
func (p *TokenProvider) Refresh(ctx context.Context, refreshToken string) (Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	resp, err := p.tokenRequest(ctx, form, true)
	if err != nil {
		return Credential{}, err
	}

	newRefresh := resp.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	return UserCredential("", resp.AccessToken, newRefresh), nil
}

// Profile fetches the Spotify account behind an access token.
func (p *TokenProvider) Profile(ctx context.Context, accessToken string) (*UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/me", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: profile fetch returned %d", ErrUpstreamAuth, res.StatusCode)
	}

	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	return &profile, nil
}

// UserProfile is the subset of GET /me used to identify local accounts.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// ImageURL returns the first profile image, if any.
func (p *UserProfile) ImageURL() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func (p *TokenProvider) tokenRequest(ctx context.Context, form url.Values, basicAuth bool) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth {
		req.SetBasicAuth(p.clientID, p.clientSecret)
	}

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", ErrUpstreamAuth, res.StatusCode, truncate(body, 200))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", ErrUpstreamAuth)
	}
	return &parsed, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
