package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lyrics-service/internal/domain"
)

// UserRepository defines persistence access for application users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateSpotifyCredential overwrites the embedded Spotify credential on
	// one user's record; the refresh path uses it without touching the rest
	// of the row.
	UpdateSpotifyCredential(ctx context.Context, userID string, cred domain.SpotifyAccount) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, name, email, password_hash, image_url,
        spotify_user_id, spotify_access_token, spotify_refresh_token,
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, image_url,
            spotify_user_id, spotify_access_token, spotify_refresh_token)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	spotifyID, spotifyAccess, spotifyRefresh := spotifyFields(user)

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		nullable(user.PasswordHash),
		nullable(user.ImageURL),
		spotifyID,
		spotifyAccess,
		spotifyRefresh,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, image_url=$4,
            spotify_user_id=$5, spotify_access_token=$6, spotify_refresh_token=$7,
            updated_at=NOW()
        WHERE id=$8`

	spotifyID, spotifyAccess, spotifyRefresh := spotifyFields(user)

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		nullable(user.PasswordHash),
		nullable(user.ImageURL),
		spotifyID,
		spotifyAccess,
		spotifyRefresh,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) UpdateSpotifyCredential(ctx context.Context, userID string, cred domain.SpotifyAccount) error {
	const query = `
        UPDATE users SET spotify_user_id=$1, spotify_access_token=$2,
            spotify_refresh_token=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		nullable(cred.UserID),
		nullable(cred.AccessToken),
		nullable(cred.RefreshToken),
		userID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user           domain.User
		passwordHash   *string
		imageURL       *string
		spotifyID      *string
		spotifyAccess  *string
		spotifyRefresh *string
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&passwordHash,
		&imageURL,
		&spotifyID,
		&spotifyAccess,
		&spotifyRefresh,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.PasswordHash = deref(passwordHash)
	user.ImageURL = deref(imageURL)
	if deref(spotifyAccess) != "" || deref(spotifyID) != "" {
		user.Spotify = &domain.SpotifyAccount{
			UserID:       deref(spotifyID),
			AccessToken:  deref(spotifyAccess),
			RefreshToken: deref(spotifyRefresh),
		}
	}
	return &user, nil
}

func spotifyFields(user *domain.User) (*string, *string, *string) {
	if user.Spotify == nil {
		return nil, nil, nil
	}
	return nullable(user.Spotify.UserID),
		nullable(user.Spotify.AccessToken),
		nullable(user.Spotify.RefreshToken)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
