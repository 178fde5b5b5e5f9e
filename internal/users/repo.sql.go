package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamroom-io/teamroom/internal/shared"
)

// Repository abstracts user profile reads.
type Repository interface {
	GetUser(ctx context.Context, id int64) (int64, string, string, error)
	ListTeams(ctx context.Context, userID int64) ([]TeamSummary, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetUser fetches id, name, and email for a user.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (int64, string, string, error) {
	var (
		userID int64
		name   string
		email  string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name, email FROM users WHERE id = $1`, id).
		Scan(&userID, &name, &email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", "", shared.ErrNotFound
		}
		return 0, "", "", err
	}
	return userID, name, email, nil
}

// ListTeams returns the restricted team projections for a user.
func (r *PGRepository) ListTeams(ctx context.Context, userID int64) ([]TeamSummary, error) {
	const query = `
		SELECT t.id, tt.name
		FROM user_teams ut
		JOIN teams t ON t.id = ut.team_id
		JOIN team_types tt ON tt.id = t.team_type_id
		WHERE ut.user_id = $1
		ORDER BY t.id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teams := make([]TeamSummary, 0)
	for rows.Next() {
		var team TeamSummary
		if err := rows.Scan(&team.ID, &team.Type); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
