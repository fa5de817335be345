package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/lyrics-service/internal/domain"
	"github.com/spec-kit/lyrics-service/internal/events"
)

type fakeLyricCommentRepo struct {
	comments []domain.LyricComment
}

func (f *fakeLyricCommentRepo) Create(_ context.Context, comment *domain.LyricComment) error {
	comment.ID = "lyric-comment-" + strconv.Itoa(len(f.comments)+1)
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeLyricCommentRepo) ListForLyric(_ context.Context, trackID, lyricID string) ([]domain.LyricCommentWithAuthor, error) {
	var result []domain.LyricCommentWithAuthor
	for _, c := range f.comments {
		if c.TrackID == trackID && c.LyricID == lyricID {
			result = append(result, domain.LyricCommentWithAuthor{LyricComment: c, Username: "someone"})
		}
	}
	return result, nil
}

type fakeTrackCommentRepo struct {
	comments []domain.TrackComment
}

func (f *fakeTrackCommentRepo) Create(_ context.Context, comment *domain.TrackComment) error {
	comment.ID = "track-comment-" + strconv.Itoa(len(f.comments)+1)
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeTrackCommentRepo) ListForTrack(_ context.Context, trackID string) ([]domain.TrackComment, error) {
	var result []domain.TrackComment
	for _, c := range f.comments {
		if c.TrackID == trackID {
			result = append(result, c)
		}
	}
	return result, nil
}

func TestAddLyricComment_StoresAndPublishes(t *testing.T) {
	lyricRepo := &fakeLyricCommentRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventLyricCommentAdded, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewCommentService(lyricRepo, &fakeTrackCommentRepo{}, dispatcher)

	comment, err := svc.AddLyricComment(context.Background(), "user-1", "track-1", "lyric-3", "great line")
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)

	listed, err := svc.ListLyricComments(context.Background(), "track-1", "lyric-3")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "great line", listed[0].Body)

	require.Len(t, published, 1)
	assert.Equal(t, "user-1", published[0].UserID)
}

func TestAddLyricComment_RequiresFields(t *testing.T) {
	svc := NewCommentService(&fakeLyricCommentRepo{}, &fakeTrackCommentRepo{}, nil)

	_, err := svc.AddLyricComment(context.Background(), "", "track-1", "lyric-1", "text")
	require.Error(t, err)

	_, err = svc.AddLyricComment(context.Background(), "user-1", "track-1", "lyric-1", "")
	require.Error(t, err)
}

func TestAddTrackComment_StoresAndLists(t *testing.T) {
	svc := NewCommentService(&fakeLyricCommentRepo{}, &fakeTrackCommentRepo{}, nil)

	_, err := svc.AddTrackComment(context.Background(), "user-1", "track-1", "banger")
	require.NoError(t, err)

	listed, err := svc.ListTrackComments(context.Background(), "track-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "banger", listed[0].Body)

	other, err := svc.ListTrackComments(context.Background(), "track-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}
