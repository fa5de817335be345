package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/lyrics-service/internal/auth"
	"github.com/spec-kit/lyrics-service/internal/config"
	"github.com/spec-kit/lyrics-service/internal/domain"
	"github.com/spec-kit/lyrics-service/internal/events"
	"github.com/spec-kit/lyrics-service/internal/repository"
	"github.com/spec-kit/lyrics-service/internal/spotify"
)

// SpotifyAuthenticator is the slice of the Spotify token provider the auth
// flows need.
type SpotifyAuthenticator interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (spotify.Credential, error)
	Profile(ctx context.Context, accessToken string) (*spotify.UserProfile, error)
}

// AuthService coordinates signup, login, session refresh and the Spotify
// OAuth callback.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	oauth      SpotifyAuthenticator
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Spotify    SpotifyAuthenticator
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users: deps.UserRepo,
		tokenMgr: auth.NewTokenManager(
			cfg.Auth.AccessSecret,
			cfg.Auth.RefreshSecret,
			cfg.Auth.AccessTTL(),
			cfg.Auth.RefreshTTL(),
		),
		oauth:      deps.Spotify,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Signup creates a local account and mints its first session pair.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*domain.User, auth.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, auth.TokenPair{}, errors.New("email already in use")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.TokenPair{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, auth.TokenPair{}, err
	}

	pair, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	s.publish(ctx, events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Email: user.Email,
		Name:  user.Name,
	})
	return user, pair, nil
}

// Login authenticates a local account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	if user.PasswordHash == "" {
		return nil, auth.TokenPair{}, errors.New("account has no password login")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, auth.TokenPair{}, errors.New("invalid credentials")
	}

	pair, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// RefreshSession rotates a refresh token into a brand-new session pair.
func (s *AuthService) RefreshSession(_ context.Context, refreshToken string) (auth.TokenPair, error) {
	return s.tokenMgr.Rotate(refreshToken)
}

// SpotifyLoginURL returns the authorize redirect for the login button.
func (s *AuthService) SpotifyLoginURL() (string, error) {
	state, err := spotify.RandomState()
	if err != nil {
		return "", err
	}
	return s.oauth.AuthorizeURL(state), nil
}

// HandleSpotifyCallback exchanges the authorization code, identifies or
// creates the local user from the Spotify profile, stores the credential on
// the user record and mints a session pair.
func (s *AuthService) HandleSpotifyCallback(ctx context.Context, code string) (*domain.User, auth.TokenPair, error) {
	cred, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	profile, err := s.oauth.Profile(ctx, cred.Access)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	account := &domain.SpotifyAccount{
		UserID:       profile.ID,
		AccessToken:  cred.Access,
		RefreshToken: cred.Refresh,
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		user.ImageURL = profile.ImageURL()
		user.Spotify = account
		if err := s.users.Update(ctx, user); err != nil {
			return nil, auth.TokenPair{}, err
		}
	case errors.Is(err, pgx.ErrNoRows):
		user = &domain.User{
			Name:     profile.DisplayName,
			Email:    profile.Email,
			ImageURL: profile.ImageURL(),
			Spotify:  account,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, auth.TokenPair{}, err
		}
	default:
		return nil, auth.TokenPair{}, err
	}

	pair, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}

	s.publish(ctx, events.EventSpotifyLinked, user.ID, events.SpotifyLinkedPayload{
		SpotifyUserID: profile.ID,
	})
	return user, pair, nil
}

// UserData returns the record behind an authenticated session.
func (s *AuthService) UserData(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
