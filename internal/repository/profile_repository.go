package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
)

// ProfileRepository manages personal profile rows.
type ProfileRepository interface {
	Create(ctx context.Context, personal *domain.Personal) error
	Update(ctx context.Context, userID int64, phone, email *string) (*domain.Personal, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Personal, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, personal *domain.Personal) error {
	const query = `
        INSERT INTO personal (user_id, phone, email)
        VALUES ($1, $2, $3)
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		personal.UserID,
		personal.Phone,
		personal.Email,
	).Scan(&personal.CreatedAt)
}

func (r *profileRepository) Update(ctx context.Context, userID int64, phone, email *string) (*domain.Personal, error) {
	const query = `
        UPDATE personal
        SET phone=COALESCE($1, phone), email=COALESCE($2, email)
        WHERE user_id=$3
        RETURNING user_id, phone, email, created_at`

	var personal domain.Personal
	if err := r.pool.QueryRow(ctx, query, phone, email, userID).Scan(
		&personal.UserID,
		&personal.Phone,
		&personal.Email,
		&personal.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &personal, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Personal, error) {
	const query = `
        SELECT user_id, phone, email, created_at
        FROM personal WHERE user_id=$1`

	var personal domain.Personal
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&personal.UserID,
		&personal.Phone,
		&personal.Email,
		&personal.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &personal, nil
}
