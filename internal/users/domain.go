package users

// Profile is the user detail returned by the read endpoint. Teams appear in
// their restricted projection since the endpoint is unauthenticated.
type Profile struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Teams       []TeamSummary `json:"teams"`
	Permissions []string      `json:"permissions"`
}

// TeamSummary is the restricted team projection.
type TeamSummary struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}
