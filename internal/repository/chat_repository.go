package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Avdeevkonst/oauth2-chat/internal/domain"
)

// ChatRepository manages contact links between users.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id int64) (*domain.Chat, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Chat, error)
	Delete(ctx context.Context, id int64) error
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository returns a Postgres-backed implementation.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	const query = `
        INSERT INTO chats (owner_id, contact_id)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		chat.OwnerID,
		chat.ContactID,
	).Scan(&chat.ID, &chat.CreatedAt)
}

func (r *chatRepository) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	const query = `
        SELECT id, owner_id, contact_id, created_at
        FROM chats WHERE id=$1`

	var chat domain.Chat
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&chat.ID,
		&chat.OwnerID,
		&chat.ContactID,
		&chat.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Chat, error) {
	const query = `
        SELECT id, owner_id, contact_id, created_at
        FROM chats WHERE owner_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(
			&chat.ID,
			&chat.OwnerID,
			&chat.ContactID,
			&chat.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, chat)
	}
	return result, rows.Err()
}

func (r *chatRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM chats WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
