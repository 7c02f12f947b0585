package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionConflict = errors.New("session id conflict")
)

// SessionRecord - зашифрованные данные серверной сессии.
type SessionRecord struct {
	ID        string
	Data      string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SessionRepository interface {
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Upsert(ctx context.Context, rec *SessionRecord) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

// Get возвращает только непросроченную сессию.
func (r *postgresSessionRepository) Get(ctx context.Context, id string) (*SessionRecord, error) {
	query := `SELECT id, data, expires_at, created_at, updated_at
	          FROM admin_sessions WHERE id = $1 AND expires_at > NOW()`

	var rec SessionRecord
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Data, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *postgresSessionRepository) Upsert(ctx context.Context, rec *SessionRecord) error {
	query := `INSERT INTO admin_sessions (id, data, expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, NOW(), NOW())
	          ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = NOW()
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, rec.ID, rec.Data, rec.ExpiresAt).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrSessionConflict
		}
		return err
	}
	return nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM admin_sessions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM admin_sessions WHERE expires_at <= $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return affectedRows(result)
}
