package reservations

import (
	"context"
	"fmt"
)

// Engine decides booking admission. The conflict scan, the override
// eligibility decision, and the commit (including any deletions of bumped
// reservations) execute inside a single serializable transaction holding a
// lock on the room row.
type Engine struct {
	repo Repository
}

// NewEngine constructs an Engine.
func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// Schedule admits a new reservation, or rejects it with a ConflictError
// carrying the override eligibility.
func (e *Engine) Schedule(ctx context.Context, res *Reservation, override bool) error {
	return e.book(ctx, res, override, false)
}

// Reschedule re-runs the conflict check for an existing reservation with new
// fields, excluding the reservation itself from the overlap scan.
func (e *Engine) Reschedule(ctx context.Context, res *Reservation, override bool) error {
	return e.book(ctx, res, override, true)
}

func (e *Engine) book(ctx context.Context, res *Reservation, override, update bool) error {
	if !res.Start.Before(res.End) {
		return ErrInvalidInterval
	}

	return e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockRoom(ctx, res.RoomID); err != nil {
			return err
		}
		candidate, err := tx.TeamPriority(ctx, res.TeamID)
		if err != nil {
			return err
		}

		var excludeID int64
		if update {
			excludeID = res.ID
		}
		conflicts, err := tx.ListOverlapping(ctx, res.RoomID, res.Start, res.End, excludeID)
		if err != nil {
			return fmt.Errorf("scan conflicts: %w", err)
		}

		if len(conflicts) > 0 {
			// Override is eligible only when every conflicting team
			// ranks strictly below the candidate; a tie disqualifies
			// the whole request.
			overridable := true
			for _, conflict := range conflicts {
				priority, err := tx.TeamPriority(ctx, conflict.TeamID)
				if err != nil {
					return err
				}
				if priority <= candidate {
					overridable = false
					break
				}
			}
			if !overridable {
				return &ConflictError{Overridable: false}
			}
			if !override {
				// Dry run: let the caller confirm before anything
				// gets deleted.
				return &ConflictError{Overridable: true}
			}
			for _, conflict := range conflicts {
				if err := tx.Delete(ctx, conflict.ID); err != nil {
					return fmt.Errorf("delete bumped reservation %d: %w", conflict.ID, err)
				}
			}
		}

		if update {
			return tx.Update(ctx, res)
		}
		id, err := tx.Insert(ctx, res)
		if err != nil {
			return err
		}
		res.ID = id
		return nil
	})
}
