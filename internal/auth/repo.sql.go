package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamroom-io/teamroom/internal/platform/db"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Repository abstracts user persistence for authentication.
type Repository interface {
	FindByName(ctx context.Context, name string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, name, email string) (*User, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByName fetches a user by unique name.
func (r *PGRepository) FindByName(ctx context.Context, name string) (*User, error) {
	const query = `SELECT id, name, email, created_at FROM users WHERE name = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, name))
}

// GetUser fetches a user by ID.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	const query = `SELECT id, name, email, created_at FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// CreateUser inserts a new user.
func (r *PGRepository) CreateUser(ctx context.Context, name, email string) (*User, error) {
	const query = `
		INSERT INTO users (name, email) VALUES ($1, $2)
		RETURNING id, name, email, created_at`
	user, err := r.scanUser(r.pool.QueryRow(ctx, query, name, email))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

func (r *PGRepository) scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
