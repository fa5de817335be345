package spotify

import (
	"context"
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

// ErrUnauthorized is the sole signal that triggers the invoker's retry
// path. It maps one-to-one onto an upstream 401.
var ErrUnauthorized = errors.New("spotify: unauthorized")

// APIError carries a non-401 upstream failure. It propagates unchanged; the
// invoker never retries it.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: api returned %d: %s", e.Status, e.Body)
}

// Client performs Spotify Web API resource calls with a supplied bearer
// token. It never refreshes tokens itself; that is the invoker's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client from config.
func NewClient(cfg config.SpotifyConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search queries the search endpoint for the top matches of the given type.
func (c *Client) Search(ctx context.Context, token, query, searchType string) (json.RawMessage, error) {
	if searchType == "" {
		searchType = "track"
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", searchType)
	q.Set("limit", "10")
	return c.get(ctx, token, "/search?"+q.Encode())
}

// Track fetches one track's metadata.
func (c *Client) Track(ctx context.Context, token, trackID string) (json.RawMessage, error) {
	return c.get(ctx, token, "/tracks/"+url.PathEscape(trackID))
}

// Playlist fetches a playlist trimmed down to the fields the client renders.
func (c *Client) Playlist(ctx context.Context, token, playlistID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("market", "ES")
	q.Set("fields", "name,tracks.items(track(album(images),artists,id,name))")
	return c.get(ctx, token, "/playlists/"+url.PathEscape(playlistID)+"?"+q.Encode())
}

// MyPlaylists fetches the first page of the token owner's playlists.
func (c *Client) MyPlaylists(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/me/playlists?limit=3&offset=0")
}

// NewReleases fetches the newest album releases.
func (c *Client) NewReleases(ctx context.Context, token string) (json.RawMessage, error) {
	return c.get(ctx, token, "/browse/new-releases?limit=10")
}

func (c *Client) get(ctx context.Context, token, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case res.StatusCode >= 400:
		return nil, &APIError{Status: res.StatusCode, Body: truncate(body, 200)}
	}
	return json.RawMessage(body), nil
}
