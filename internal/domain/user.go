package domain

import "time"

// SpotifyAccount is the Spotify credential embedded in a user record. It is
// written at OAuth-callback time and overwritten whenever a refresh succeeds.
type SpotifyAccount struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// User is the domain model for application users. Locally registered users
// carry a password hash; Spotify-linked users carry an embedded credential.
// Both can be present when a local account later links Spotify.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	ImageURL     string
	Spotify      *SpotifyAccount
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSpotify reports whether the user has a linked Spotify credential.
func (u *User) HasSpotify() bool {
	return u != nil && u.Spotify != nil && u.Spotify.AccessToken != ""
}
