package teams

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamroom-io/teamroom/internal/platform/db"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Repository abstracts team persistence.
type Repository interface {
	GetTeam(ctx context.Context, id int64) (*Team, error)
	GetTeamType(ctx context.Context, name string) (*TeamType, error)
	CreateTeam(ctx context.Context, name string, typeID int64) (*Team, error)
	UpdateTeamName(ctx context.Context, id int64, name string) error
	// DeleteTeamCascade removes the team, its memberships, and every
	// reservation it owns in one transaction.
	DeleteTeamCascade(ctx context.Context, id int64) error
	ListMembers(ctx context.Context, teamID int64) ([]Member, error)
	IsMember(ctx context.Context, teamID, userID int64) (bool, error)
	AddMember(ctx context.Context, teamID, userID int64) error
	RemoveMember(ctx context.Context, teamID, userID int64) error
	UserExists(ctx context.Context, userID int64) (bool, error)
	Priority(ctx context.Context, teamID int64) (int, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const teamColumns = `
	t.id, t.name, t.created_at,
	tt.id, tt.name, tt.priority, tt.advance_time`

func scanTeam(row pgx.Row) (*Team, error) {
	var team Team
	err := row.Scan(
		&team.ID, &team.Name, &team.CreatedAt,
		&team.Type.ID, &team.Type.Name, &team.Type.Priority, &team.Type.AdvanceTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &team, nil
}

// GetTeam fetches a team with its type by ID.
func (r *PGRepository) GetTeam(ctx context.Context, id int64) (*Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams t
		JOIN team_types tt ON tt.id = t.team_type_id
		WHERE t.id = $1`
	return scanTeam(r.pool.QueryRow(ctx, query, id))
}

// GetTeamType fetches a team type by unique name.
func (r *PGRepository) GetTeamType(ctx context.Context, name string) (*TeamType, error) {
	const query = `SELECT id, name, priority, advance_time FROM team_types WHERE name = $1`
	var tt TeamType
	err := r.pool.QueryRow(ctx, query, name).Scan(&tt.ID, &tt.Name, &tt.Priority, &tt.AdvanceTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tt, nil
}

// CreateTeam inserts a team of the given type.
func (r *PGRepository) CreateTeam(ctx context.Context, name string, typeID int64) (*Team, error) {
	const query = `INSERT INTO teams (name, team_type_id) VALUES ($1, $2) RETURNING id`
	var id int64
	if err := r.pool.QueryRow(ctx, query, name, typeID).Scan(&id); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return r.GetTeam(ctx, id)
}

// UpdateTeamName renames a team.
func (r *PGRepository) UpdateTeamName(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE teams SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteTeamCascade removes the team, memberships, and owned reservations atomically.
func (r *PGRepository) DeleteTeamCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reservations WHERE team_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_teams WHERE team_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ListMembers returns the member projection for a team ordered by name.
func (r *PGRepository) ListMembers(ctx context.Context, teamID int64) ([]Member, error) {
	const query = `
		SELECT u.id, u.name
		FROM user_teams ut
		JOIN users u ON u.id = ut.user_id
		WHERE ut.team_id = $1
		ORDER BY u.name`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// IsMember reports whether the user belongs to the team.
func (r *PGRepository) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM user_teams WHERE team_id = $1 AND user_id = $2)`
	var member bool
	if err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(&member); err != nil {
		return false, err
	}
	return member, nil
}

// AddMember links a user to a team.
func (r *PGRepository) AddMember(ctx context.Context, teamID, userID int64) error {
	const query = `INSERT INTO user_teams (user_id, team_id) VALUES ($2, $1) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, teamID, userID)
	return err
}

// RemoveMember unlinks a user from a team.
func (r *PGRepository) RemoveMember(ctx context.Context, teamID, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_teams WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	return err
}

// UserExists reports whether a user record exists.
func (r *PGRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Priority projects the team's current type priority. A team can be re-typed
// between bookings, so the value is read fresh on every call.
func (r *PGRepository) Priority(ctx context.Context, teamID int64) (int, error) {
	const query = `
		SELECT tt.priority
		FROM teams t
		JOIN team_types tt ON tt.id = t.team_type_id
		WHERE t.id = $1`
	var priority int
	err := r.pool.QueryRow(ctx, query, teamID).Scan(&priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return priority, nil
}
