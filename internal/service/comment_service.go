package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/lyrics-service/internal/domain"
	"github.com/spec-kit/lyrics-service/internal/events"
	"github.com/spec-kit/lyrics-service/internal/repository"
)

const previewLength = 80

// CommentService manages comments on tracks and lyric lines.
type CommentService struct {
	lyricComments repository.LyricCommentRepository
	trackComments repository.TrackCommentRepository
	dispatcher    events.Dispatcher
}

// NewCommentService builds the service.
func NewCommentService(lyricComments repository.LyricCommentRepository, trackComments repository.TrackCommentRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{
		lyricComments: lyricComments,
		trackComments: trackComments,
		dispatcher:    dispatcher,
	}
}

// AddLyricComment stores a comment on one lyric line. The author comes from
// the authenticated session, never from the request body.
func (s *CommentService) AddLyricComment(ctx context.Context, userID, trackID, lyricID, body string) (*domain.LyricComment, error) {
	if userID == "" || trackID == "" || lyricID == "" || body == "" {
		return nil, errors.New("trackId, lyricId and comment text required")
	}

	comment := &domain.LyricComment{
		TrackID: trackID,
		LyricID: lyricID,
		UserID:  userID,
		Body:    body,
	}
	if err := s.lyricComments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventLyricCommentAdded, userID, events.LyricCommentAddedPayload{
		CommentID:   comment.ID,
		TrackID:     trackID,
		LyricID:     lyricID,
		BodyPreview: preview(body),
	})
	return comment, nil
}

// ListLyricComments lists a lyric line's comments with author names.
func (s *CommentService) ListLyricComments(ctx context.Context, trackID, lyricID string) ([]domain.LyricCommentWithAuthor, error) {
	return s.lyricComments.ListForLyric(ctx, trackID, lyricID)
}

// AddTrackComment stores a comment on a whole track.
func (s *CommentService) AddTrackComment(ctx context.Context, userID, trackID, body string) (*domain.TrackComment, error) {
	if userID == "" || trackID == "" || body == "" {
		return nil, errors.New("trackId and comment text required")
	}

	comment := &domain.TrackComment{
		TrackID: trackID,
		UserID:  userID,
		Body:    body,
	}
	if err := s.trackComments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTrackCommentAdded, userID, events.TrackCommentAddedPayload{
		CommentID:   comment.ID,
		TrackID:     trackID,
		BodyPreview: preview(body),
	})
	return comment, nil
}

// ListTrackComments lists a track's comments.
func (s *CommentService) ListTrackComments(ctx context.Context, trackID string) ([]domain.TrackComment, error) {
	return s.trackComments.ListForTrack(ctx, trackID)
}

func (s *CommentService) publish(ctx context.Context, eventType events.EventType, userID string, payload any) {
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

func preview(body string) string {
	if len(body) <= previewLength {
		return body
	}
	return body[:previewLength]
}
