package rooms

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Service wraps room business rules. Rooms have no ownership model; listing
// order is the only logic above plain persistence.
type Service struct {
	repo     Repository
	collator *collate.Collator
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		// Numeric collation so room "915" sorts before room "1560".
		collator: collate.New(language.English, collate.Numeric),
	}
}

// List returns all rooms in numeric room-number order.
func (s *Service) List(ctx context.Context) ([]Room, error) {
	list, err := s.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return s.collator.CompareString(list[i].Number, list[j].Number) < 0
	})
	return list, nil
}

// Create adds a room with a unique number.
func (s *Service) Create(ctx context.Context, number string) (*Room, error) {
	return s.repo.CreateRoom(ctx, number)
}

// Get returns a room with its features and reservations.
func (s *Service) Get(ctx context.Context, id int64) (*Room, []Feature, []ReservationSlot, error) {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	features, err := s.repo.ListFeatures(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	reservations, err := s.repo.ListReservations(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return room, features, reservations, nil
}

// Update renames a room and replaces its feature set.
func (s *Service) Update(ctx context.Context, id int64, number string, features []string) error {
	return s.repo.UpdateRoom(ctx, id, number, features)
}

// Delete removes a room.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteRoom(ctx, id)
}
