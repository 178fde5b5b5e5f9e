// Package reservations implements the booking conflict engine: interval
// overlap detection, priority-based override eligibility, and the atomic
// admit/override commit.
package reservations

import (
	"errors"
	"fmt"
	"time"
)

// Reservation is a room booking held by a team.
type Reservation struct {
	ID        int64
	TeamID    int64
	RoomID    int64
	CreatedBy int64
	Start     time.Time
	End       time.Time
}

// BookingRequest carries the caller-supplied fields of a reservation write.
type BookingRequest struct {
	TeamID int64
	RoomID int64
	Start  time.Time
	End    time.Time
	// Override confirms deletion of lower-priority conflicting reservations.
	// Without it an overridable conflict is reported back as a dry run.
	Override bool
}

var (
	// ErrInvalidInterval indicates start is not strictly before end.
	ErrInvalidInterval = errors.New("reservations: start must be before end")
	// ErrInvalidReference indicates the team or room vanished between the
	// gate's existence check and the engine's transaction.
	ErrInvalidReference = errors.New("reservations: referenced entity does not exist")
)

// ConflictError is the well-defined negative result of a booking attempt. It
// is not an exceptional fault: Overridable tells the caller whether
// resubmitting with Override set would succeed.
type ConflictError struct {
	Overridable bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("reservations: conflict (overridable=%t)", e.Overridable)
}

// Overlaps reports whether the reservation collides with the [start, end]
// interval. Intervals are closed: touching endpoints count as overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return !r.End.Before(start) && !r.Start.After(end)
}
