package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lyrics-service/internal/config"
)

func testSpotifyConfig(accountsURL, apiURL string) config.SpotifyConfig {
	return config.SpotifyConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/callback",
		AccountsURL:  accountsURL,
		APIBaseURL:   apiURL,
	}
}

func TestClientCredentials(t *testing.T) {
	var gotForm url.Values
	var gotAuthHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuthHeader = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "app-abc",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	provider := NewTokenProvider(testSpotifyConfig(srv.URL, srv.URL))
	cred, err := provider.ClientCredentials(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CredentialApp, cred.Kind)
	assert.Equal(t, "app-abc", cred.Access)
	assert.Empty(t, cred.Refresh)
	assert.Equal(t, "client_credentials", gotForm.Get("grant_type"))
	assert.Contains(t, gotAuthHeader, "Basic ")
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost:8080/callback", r.PostForm.Get("redirect_uri"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "user-abc",
			"refresh_token": "refresh-abc",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	provider := NewTokenProvider(testSpotifyConfig(srv.URL, srv.URL))
	cred, err := provider.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, CredentialUser, cred.Kind)
	assert.Equal(t, "user-abc", cred.Access)
	assert.Equal(t, "refresh-abc", cred.Refresh)
}

func TestRefresh_CarriesForwardOmittedRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-old", r.PostForm.Get("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "user-new",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	provider := NewTokenProvider(testSpotifyConfig(srv.URL, srv.URL))
	cred, err := provider.Refresh(context.Background(), "refresh-old")
	require.NoError(t, err)

	assert.Equal(t, "user-new", cred.Access)
	assert.Equal(t, "refresh-old", cred.Refresh)
}

func TestTokenRequest_ErrorStatusWrapsUpstreamAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	provider := NewTokenProvider(testSpotifyConfig(srv.URL, srv.URL))
	_, err := provider.Refresh(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		require.Equal(t, "Bearer user-abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "spotify-user-1",
			"email":        "user@example.com",
			"display_name": "A Listener",
			"images":       []map[string]string{{"url": "http://img.example/p.jpg"}},
		})
	}))
	defer srv.Close()

	provider := NewTokenProvider(testSpotifyConfig(srv.URL, srv.URL))
	profile, err := provider.Profile(context.Background(), "user-abc")
	require.NoError(t, err)

	assert.Equal(t, "spotify-user-1", profile.ID)
	assert.Equal(t, "user@example.com", profile.Email)
	assert.Equal(t, "A Listener", profile.DisplayName)
	assert.Equal(t, "http://img.example/p.jpg", profile.ImageURL())
}

func TestAuthorizeURL(t *testing.T) {
	provider := NewTokenProvider(testSpotifyConfig("https://accounts.spotify.com", "https://api.spotify.com/v1"))
	raw := provider.AuthorizeURL("state-123")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost:8080/callback", q.Get("redirect_uri"))
}

func TestRandomState_Unique(t *testing.T) {
	a, err := RandomState()
	require.NoError(t, err)
	b, err := RandomState()
	require.NoError(t, err)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestClient_UnauthorizedAndAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tracks/expired":
			w.WriteHeader(http.StatusUnauthorized)
		case "/tracks/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":404}}`))
		default:
			_, _ = w.Write([]byte(`{"id":"track-1"}`))
		}
	}))
	defer srv.Close()

	client := NewClient(testSpotifyConfig(srv.URL, srv.URL))

	_, err := client.Track(context.Background(), "tok", "expired")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.Track(context.Background(), "tok", "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	body, err := client.Track(context.Background(), "tok", "track-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"track-1"}`, string(body))
}

func TestClient_SearchBuildsQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"tracks":{}}`))
	}))
	defer srv.Close()

	client := NewClient(testSpotifyConfig(srv.URL, srv.URL))
	_, err := client.Search(context.Background(), "tok", "bohemian rhapsody", "")
	require.NoError(t, err)

	assert.Equal(t, "bohemian rhapsody", gotQuery.Get("q"))
	assert.Equal(t, "track", gotQuery.Get("type"))
	assert.Equal(t, "10", gotQuery.Get("limit"))
}
