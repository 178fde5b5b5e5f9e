// Package teams manages teams, team types, and membership. A team's
// conflict-resolution priority is always a projection of its current team
// type; teams are never compared by identity.
package teams

import "time"

// TeamType classifies teams and carries the booking priority rank.
// Lower Priority value means higher precedence when reservations collide.
type TeamType struct {
	ID   int64
	Name string
	// Priority ranks the type for conflict overrides; lower number wins.
	Priority int
	// AdvanceTime is the number of days ahead the type may book. It is
	// carried and surfaced but not enforced by the booking engine.
	AdvanceTime int
}

// Team is a named group of users sharing reservations.
type Team struct {
	ID        int64
	Name      string
	Type      TeamType
	CreatedAt time.Time
}

// Member is the reduced user projection exposed in team detail reads.
type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TypeOtherTeam is the only team type creatable with the base team.create
// permission; every other type requires the elevated tier.
const TypeOtherTeam = "other_team"
