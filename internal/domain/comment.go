package domain

import "time"

// LyricComment is a comment attached to one lyric line of one track.
type LyricComment struct {
	ID        string
	TrackID   string
	LyricID   string
	UserID    string
	Body      string
	Likes     int
	CreatedAt time.Time
}

// LyricCommentWithAuthor joins a lyric comment with its author's display name
// for listing responses.
type LyricCommentWithAuthor struct {
	LyricComment
	Username string
}

// TrackComment is a comment attached to a whole track.
type TrackComment struct {
	ID        string
	TrackID   string
	UserID    string
	Body      string
	CreatedAt time.Time
}
