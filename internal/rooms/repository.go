package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamroom-io/teamroom/internal/platform/db"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// Repository abstracts room persistence.
type Repository interface {
	ListRooms(ctx context.Context) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (*Room, error)
	CreateRoom(ctx context.Context, number string) (*Room, error)
	// UpdateRoom renames the room and replaces its feature set, upserting
	// features by name, in one transaction.
	UpdateRoom(ctx context.Context, id int64, number string, features []string) error
	DeleteRoom(ctx context.Context, id int64) error
	ListFeatures(ctx context.Context, roomID int64) ([]Feature, error)
	ListReservations(ctx context.Context, roomID int64) ([]ReservationSlot, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListRooms returns all rooms.
func (r *PGRepository) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]Room, 0)
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Number); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}

// GetRoom fetches a room by ID.
func (r *PGRepository) GetRoom(ctx context.Context, id int64) (*Room, error) {
	var room Room
	err := r.pool.QueryRow(ctx, `SELECT id, number FROM rooms WHERE id = $1`, id).Scan(&room.ID, &room.Number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

// CreateRoom inserts a room.
func (r *PGRepository) CreateRoom(ctx context.Context, number string) (*Room, error) {
	var room Room
	err := r.pool.QueryRow(ctx, `INSERT INTO rooms (number) VALUES ($1) RETURNING id, number`, number).
		Scan(&room.ID, &room.Number)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &room, nil
}

// UpdateRoom renames a room and replaces its feature links.
func (r *PGRepository) UpdateRoom(ctx context.Context, id int64, number string, features []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE rooms SET number = $2 WHERE id = $1`, id, number)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.ErrDuplicate
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM room_room_features WHERE room_id = $1`, id); err != nil {
			return err
		}
		for _, name := range features {
			var featureID int64
			err := tx.QueryRow(ctx, `
				INSERT INTO room_features (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, name).Scan(&featureID)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO room_room_features (room_id, feature_id)
				VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, featureID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRoom removes a room and its feature links.
func (r *PGRepository) DeleteRoom(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM room_room_features WHERE room_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ListFeatures returns the features linked to a room.
func (r *PGRepository) ListFeatures(ctx context.Context, roomID int64) ([]Feature, error) {
	const query = `
		SELECT f.id, f.name
		FROM room_room_features rf
		JOIN room_features f ON f.id = rf.feature_id
		WHERE rf.room_id = $1
		ORDER BY f.name`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	features := make([]Feature, 0)
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// ListReservations returns the room's reservations ordered by start time.
func (r *PGRepository) ListReservations(ctx context.Context, roomID int64) ([]ReservationSlot, error) {
	const query = `
		SELECT id, team_id, start_at, end_at
		FROM reservations
		WHERE room_id = $1
		ORDER BY start_at`
	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]ReservationSlot, 0)
	for rows.Next() {
		var slot ReservationSlot
		var start, end time.Time
		if err := rows.Scan(&slot.ID, &slot.TeamID, &start, &end); err != nil {
			return nil, err
		}
		slot.Start = start.Format(time.RFC3339)
		slot.End = end.Format(time.RFC3339)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
