package auth

import "time"

// User represents a user account resolvable from a bearer token.
type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}
