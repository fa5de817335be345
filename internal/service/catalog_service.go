package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lyrics-service/internal/domain"
	"github.com/spec-kit/lyrics-service/internal/repository"
	"github.com/spec-kit/lyrics-service/internal/spotify"
)

// ErrSpotifyNotLinked marks operations that need the caller's own Spotify
// account when none is linked.
var ErrSpotifyNotLinked = errors.New("spotify account not linked")

// LyricsSource fetches lyrics for one track.
type LyricsSource interface {
	Lyrics(ctx context.Context, track, artist string) (string, error)
}

// CatalogService proxies browse and lookup operations to Spotify, picking
// the right credential per request: the caller's stored Spotify tokens when
// they have linked an account, the shared app credential otherwise. Every
// upstream call goes through the invoker so an expired token costs at most
// one refresh round-trip.
type CatalogService struct {
	users   repository.UserRepository
	client  *spotify.Client
	invoker *spotify.Invoker
	appCred *spotify.AppCredentialHolder
	lyrics  LyricsSource
}

// CatalogDependencies encapsulates requirements for the catalog service.
type CatalogDependencies struct {
	UserRepo repository.UserRepository
	Client   *spotify.Client
	Invoker  *spotify.Invoker
	AppCred  *spotify.AppCredentialHolder
	Lyrics   LyricsSource
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		users:   deps.UserRepo,
		client:  deps.Client,
		invoker: deps.Invoker,
		appCred: deps.AppCred,
		lyrics:  deps.Lyrics,
	}
}

// Search proxies the Spotify search endpoint.
func (s *CatalogService) Search(ctx context.Context, userID, query, searchType string) (json.RawMessage, error) {
	cred, persist, err := s.resolveCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.invoker.Do(ctx, "search", cred, persist, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.client.Search(ctx, token, query, searchType)
	})
}

// Track proxies a single-track lookup.
func (s *CatalogService) Track(ctx context.Context, userID, trackID string) (json.RawMessage, error) {
	cred, persist, err := s.resolveCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.invoker.Do(ctx, "track", cred, persist, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.client.Track(ctx, token, trackID)
	})
}

// Playlist proxies a playlist lookup.
func (s *CatalogService) Playlist(ctx context.Context, userID, playlistID string) (json.RawMessage, error) {
	cred, persist, err := s.resolveCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.invoker.Do(ctx, "playlist", cred, persist, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.client.Playlist(ctx, token, playlistID)
	})
}

// MyPlaylists lists the caller's own playlists. Unlike the browse routes it
// cannot fall back to the app credential: the endpoint is meaningless
// without a user identity.
func (s *CatalogService) MyPlaylists(ctx context.Context, userID string) (json.RawMessage, error) {
	if userID == "" {
		return nil, ErrSpotifyNotLinked
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasSpotify() {
		return nil, ErrSpotifyNotLinked
	}

	cred := spotify.UserCredential(user.ID, user.Spotify.AccessToken, user.Spotify.RefreshToken)
	return s.invoker.Do(ctx, "my-playlists", cred, s.persistUserCredential, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.client.MyPlaylists(ctx, token)
	})
}

// NewReleases proxies the new-releases browse endpoint.
func (s *CatalogService) NewReleases(ctx context.Context, userID string) (json.RawMessage, error) {
	cred, persist, err := s.resolveCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.invoker.Do(ctx, "new-releases", cred, persist, func(ctx context.Context, token string) (json.RawMessage, error) {
		return s.client.NewReleases(ctx, token)
	})
}

// Lyrics fetches lyrics for a track through the external script source.
func (s *CatalogService) Lyrics(ctx context.Context, trackName, artistName string) (string, error) {
	return s.lyrics.Lyrics(ctx, trackName, artistName)
}

// resolveCredential picks the Spotify credential for a request. Anonymous
// callers, and signed-in users without a linked Spotify account, share the
// process-wide app credential.
func (s *CatalogService) resolveCredential(ctx context.Context, userID string) (spotify.Credential, spotify.PersistFunc, error) {
	if userID != "" {
		user, err := s.users.GetByID(ctx, userID)
		switch {
		case err == nil && user.HasSpotify():
			cred := spotify.UserCredential(user.ID, user.Spotify.AccessToken, user.Spotify.RefreshToken)
			return cred, s.persistUserCredential, nil
		case err != nil && !errors.Is(err, pgx.ErrNoRows):
			return spotify.Credential{}, nil, err
		}
	}

	cred, err := s.appCred.Current(ctx)
	if err != nil {
		return spotify.Credential{}, nil, err
	}
	return cred, s.persistAppCredential, nil
}

func (s *CatalogService) persistAppCredential(_ context.Context, cred spotify.Credential) error {
	s.appCred.Replace(cred)
	return nil
}

func (s *CatalogService) persistUserCredential(ctx context.Context, cred spotify.Credential) error {
	if cred.OwnerID == "" {
		return errors.New("refreshed credential has no owner")
	}
	user, err := s.users.GetByID(ctx, cred.OwnerID)
	if err != nil {
		return err
	}
	account := domain.SpotifyAccount{
		AccessToken:  cred.Access,
		RefreshToken: cred.Refresh,
	}
	if user.Spotify != nil {
		account.UserID = user.Spotify.UserID
	}
	return s.users.UpdateSpotifyCredential(ctx, cred.OwnerID, account)
}
