package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamroom-io/teamroom/internal/platform/db"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Repository abstracts reservation persistence.
type Repository interface {
	// WithTx runs fn inside one serializable transaction; the engine's
	// scan-decide-commit sequence must not interleave with another writer
	// on the same room.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetReservation(ctx context.Context, id int64) (*Reservation, error)
	// List returns reservations overlapping [from, to] when both are set,
	// otherwise every reservation that has not yet ended.
	List(ctx context.Context, from, to *time.Time) ([]Reservation, error)
	TeamExists(ctx context.Context, teamID int64) (bool, error)
	RoomExists(ctx context.Context, roomID int64) (bool, error)
	IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error)
}

// TxRepository exposes the operations available inside a booking transaction.
type TxRepository interface {
	// LockRoom takes a row lock on the room, serializing bookings per room.
	// Returns ErrInvalidReference when the room does not exist.
	LockRoom(ctx context.Context, roomID int64) error
	// ListOverlapping returns reservations in the room whose closed
	// interval touches [start, end], excluding excludeID when non-zero.
	ListOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]Reservation, error)
	// TeamPriority projects the team's current type priority.
	TeamPriority(ctx context.Context, teamID int64) (int, error)
	Insert(ctx context.Context, res *Reservation) (int64, error)
	Update(ctx context.Context, res *Reservation) error
	Delete(ctx context.Context, id int64) error
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a serializable transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const reservationColumns = `id, team_id, room_id, created_by, start_at, end_at`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	err := row.Scan(&res.ID, &res.TeamID, &res.RoomID, &res.CreatedBy, &res.Start, &res.End)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetReservation fetches a reservation by ID.
func (r *PGRepository) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(r.pool.QueryRow(ctx, query, id))
}

// List returns reservations overlapping the window, or all not yet ended.
func (r *PGRepository) List(ctx context.Context, from, to *time.Time) ([]Reservation, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if from != nil && to != nil {
		query := `SELECT ` + reservationColumns + `
			FROM reservations
			WHERE end_at >= $1 AND start_at <= $2
			ORDER BY start_at`
		rows, err = r.pool.Query(ctx, query, *from, *to)
	} else {
		query := `SELECT ` + reservationColumns + `
			FROM reservations
			WHERE end_at >= now()
			ORDER BY start_at`
		rows, err = r.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Reservation, 0)
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.ID, &res.TeamID, &res.RoomID, &res.CreatedBy, &res.Start, &res.End); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// TeamExists reports whether the team record exists.
func (r *PGRepository) TeamExists(ctx context.Context, teamID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists)
	return exists, err
}

// RoomExists reports whether the room record exists.
func (r *PGRepository) RoomExists(ctx context.Context, roomID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, roomID).Scan(&exists)
	return exists, err
}

// IsTeamMember reports whether the user belongs to the team.
func (r *PGRepository) IsTeamMember(ctx context.Context, teamID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM user_teams WHERE team_id = $1 AND user_id = $2)`
	var member bool
	err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(&member)
	return member, err
}

// PurgeEndedBefore removes reservations whose interval ended before the
// cutoff and reports how many rows were deleted.
func (r *PGRepository) PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE end_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txRepo) LockRoom(ctx context.Context, roomID int64) error {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidReference
		}
		return err
	}
	return nil
}

func (t *txRepo) ListOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) ([]Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1 AND end_at >= $2 AND start_at <= $3 AND id <> $4
		ORDER BY start_at`
	rows, err := t.tx.Query(ctx, query, roomID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Reservation, 0)
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.ID, &res.TeamID, &res.RoomID, &res.CreatedBy, &res.Start, &res.End); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func (t *txRepo) TeamPriority(ctx context.Context, teamID int64) (int, error) {
	const query = `
		SELECT tt.priority
		FROM teams t
		JOIN team_types tt ON tt.id = t.team_type_id
		WHERE t.id = $1`
	var priority int
	err := t.tx.QueryRow(ctx, query, teamID).Scan(&priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInvalidReference
		}
		return 0, err
	}
	return priority, nil
}

func (t *txRepo) Insert(ctx context.Context, res *Reservation) (int64, error) {
	const query = `
		INSERT INTO reservations (team_id, room_id, created_by, start_at, end_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(ctx, query, res.TeamID, res.RoomID, res.CreatedBy, res.Start, res.End).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (t *txRepo) Update(ctx context.Context, res *Reservation) error {
	const query = `
		UPDATE reservations
		SET team_id = $2, room_id = $3, start_at = $4, end_at = $5
		WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query, res.ID, res.TeamID, res.RoomID, res.Start, res.End)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (t *txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
