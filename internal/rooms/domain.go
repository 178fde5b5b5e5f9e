package rooms

// Room is a reservable physical room.
type Room struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// Feature is a named attribute of a room (projector, whiteboard, ...).
type Feature struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReservationSlot is the reduced reservation projection included in room reads.
type ReservationSlot struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
}
