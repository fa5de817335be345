package dto

import "time"

// LyricCommentRequest payload for commenting on a lyric line.
type LyricCommentRequest struct {
	TrackID     string `json:"trackId"`
	LyricID     string `json:"lyricId"`
	CommentText string `json:"commentText"`
}

// TrackCommentRequest payload for commenting on a track.
type TrackCommentRequest struct {
	TrackID     string `json:"trackId"`
	CommentText string `json:"commentText"`
}

// LyricCommentResponse is one lyric comment with its author's name.
type LyricCommentResponse struct {
	ID        string    `json:"id"`
	TrackID   string    `json:"trackId"`
	LyricID   string    `json:"lyricId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Comment   string    `json:"comments"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// TrackCommentResponse is one track comment.
type TrackCommentResponse struct {
	ID        string    `json:"id"`
	TrackID   string    `json:"trackId"`
	UserID    string    `json:"userId"`
	Comment   string    `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}
