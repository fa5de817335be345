package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp      EventType = "user_signed_up"
	EventSpotifyLinked     EventType = "spotify_linked"
	EventLyricCommentAdded EventType = "lyric_comment_added"
	EventTrackCommentAdded EventType = "track_comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SpotifyLinkedPayload payload.
type SpotifyLinkedPayload struct {
	SpotifyUserID string `json:"spotify_user_id"`
}

// LyricCommentAddedPayload payload.
type LyricCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	TrackID     string `json:"track_id"`
	LyricID     string `json:"lyric_id"`
	BodyPreview string `json:"body_preview"`
}

// TrackCommentAddedPayload payload.
type TrackCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	TrackID     string `json:"track_id"`
	BodyPreview string `json:"body_preview"`
}
