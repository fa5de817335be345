package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lyrics-service/internal/domain"
)

// LyricCommentRepository manages comments on individual lyric lines.
type LyricCommentRepository interface {
	Create(ctx context.Context, comment *domain.LyricComment) error
	ListForLyric(ctx context.Context, trackID, lyricID string) ([]domain.LyricCommentWithAuthor, error)
}

// TrackCommentRepository manages comments on whole tracks.
type TrackCommentRepository interface {
	Create(ctx context.Context, comment *domain.TrackComment) error
	ListForTrack(ctx context.Context, trackID string) ([]domain.TrackComment, error)
}

type lyricCommentRepository struct {
	pool *pgxpool.Pool
}

// NewLyricCommentRepository builds repository.
func NewLyricCommentRepository(pool *pgxpool.Pool) LyricCommentRepository {
	return &lyricCommentRepository{pool: pool}
}

func (r *lyricCommentRepository) Create(ctx context.Context, comment *domain.LyricComment) error {
	const query = `
        INSERT INTO lyric_comments (track_id, lyric_id, user_id, body)
        VALUES ($1,$2,$3,$4)
        RETURNING id, likes, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TrackID,
		comment.LyricID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.Likes, &comment.CreatedAt)
}

func (r *lyricCommentRepository) ListForLyric(ctx context.Context, trackID, lyricID string) ([]domain.LyricCommentWithAuthor, error) {
	const query = `
        SELECT c.id, c.track_id, c.lyric_id, c.user_id, c.body, c.likes, c.created_at, u.name
        FROM lyric_comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.track_id=$1 AND c.lyric_id=$2
        ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, query, trackID, lyricID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LyricCommentWithAuthor
	for rows.Next() {
		var c domain.LyricCommentWithAuthor
		if err := rows.Scan(
			&c.ID,
			&c.TrackID,
			&c.LyricID,
			&c.UserID,
			&c.Body,
			&c.Likes,
			&c.CreatedAt,
			&c.Username,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type trackCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTrackCommentRepository builds repository.
func NewTrackCommentRepository(pool *pgxpool.Pool) TrackCommentRepository {
	return &trackCommentRepository{pool: pool}
}

func (r *trackCommentRepository) Create(ctx context.Context, comment *domain.TrackComment) error {
	const query = `
        INSERT INTO track_comments (track_id, user_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TrackID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *trackCommentRepository) ListForTrack(ctx context.Context, trackID string) ([]domain.TrackComment, error) {
	const query = `
        SELECT id, track_id, user_id, body, created_at
        FROM track_comments WHERE track_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TrackComment
	for rows.Next() {
		var c domain.TrackComment
		if err := rows.Scan(
			&c.ID,
			&c.TrackID,
			&c.UserID,
			&c.Body,
			&c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
