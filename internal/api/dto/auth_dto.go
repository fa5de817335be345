package dto

// SignupRequest payload for new local accounts.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for local login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest payload for rotating a session pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionResponse carries a freshly issued session pair. Field names match
// what the browser client stores.
type SessionResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshtoken"`
}

// UserResponse is the public view of a user record.
type UserResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image,omitempty"`
	SpotifyLinked bool   `json:"spotifyLinked"`
	SpotifyUserID string `json:"spotifyUserId,omitempty"`
}
