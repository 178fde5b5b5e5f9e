// Package rbac implements the role/permission model and the permission
// evaluator. Permissions are stored as dotted names; an ".elevated" suffix
// marks the tier that grants an operation unconditionally, bypassing the
// ownership check its base counterpart requires. The evaluator itself knows
// nothing about tiers: it answers exact-name membership only, and each call
// site decides how elevated and base compose.
package rbac

import "time"

// Action identifies a guarded operation in the permission taxonomy.
type Action string

const (
	ActionTeamCreate Action = "team.create"
	ActionTeamRead   Action = "team.read"
	ActionTeamUpdate Action = "team.update"
	ActionTeamDelete Action = "team.delete"

	ActionReservationCreate Action = "reservation.create"
	ActionReservationUpdate Action = "reservation.update"
	ActionReservationDelete Action = "reservation.delete"
)

// ElevatedSuffix marks the unconditional tier of a permission name.
const ElevatedSuffix = ".elevated"

// Capability pairs an action with its tier.
type Capability struct {
	Action   Action
	Elevated bool
}

// Base returns the base-tier capability for an action.
func Base(action Action) Capability {
	return Capability{Action: action}
}

// Elevated returns the elevated-tier capability for an action.
func Elevated(action Action) Capability {
	return Capability{Action: action, Elevated: true}
}

// Name renders the stored permission name for the capability.
func (c Capability) Name() string {
	if c.Elevated {
		return string(c.Action) + ElevatedSuffix
	}
	return string(c.Action)
}

// Catalog lists every permission name the product defines. Creation has no
// elevated tier: a reservation is always created on behalf of a team the
// actor belongs to.
func Catalog() []string {
	return []string{
		Base(ActionTeamCreate).Name(),
		Elevated(ActionTeamCreate).Name(),
		Base(ActionTeamRead).Name(),
		Elevated(ActionTeamRead).Name(),
		Base(ActionTeamUpdate).Name(),
		Elevated(ActionTeamUpdate).Name(),
		Base(ActionTeamDelete).Name(),
		Elevated(ActionTeamDelete).Name(),
		Base(ActionReservationCreate).Name(),
		Base(ActionReservationUpdate).Name(),
		Elevated(ActionReservationUpdate).Name(),
		Base(ActionReservationDelete).Name(),
		Elevated(ActionReservationDelete).Name(),
	}
}

// Role represents a named permission grouping.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Permission represents an atomic capability record.
type Permission struct {
	ID   int64
	Name string
}
