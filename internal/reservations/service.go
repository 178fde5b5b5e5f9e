package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/teamroom-io/teamroom/internal/rbac"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// PermissionEvaluator answers exact-name capability membership queries.
type PermissionEvaluator interface {
	Has(ctx context.Context, userID int64, cap rbac.Capability) (bool, error)
}

// Service composes the authorization gate in front of the booking engine.
// Gate order: authenticate, referenced-entity existence, permission plus
// ownership.
type Service struct {
	repo   Repository
	engine *Engine
	perms  PermissionEvaluator
}

// NewService constructs a new Service.
func NewService(repo Repository, perms PermissionEvaluator) *Service {
	return &Service{
		repo:   repo,
		engine: NewEngine(repo),
		perms:  perms,
	}
}

// Create books a reservation. Requires reservation.create and membership in
// the target team; creation has no elevated tier.
func (s *Service) Create(ctx context.Context, principal *shared.Principal, req BookingRequest) (*Reservation, error) {
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	if err := s.checkReferences(ctx, req.TeamID, req.RoomID); err != nil {
		return nil, err
	}

	allowed, err := s.perms.Has(ctx, principal.ID, rbac.Base(rbac.ActionReservationCreate))
	if err != nil {
		return nil, err
	}
	if allowed {
		allowed, err = s.repo.IsTeamMember(ctx, req.TeamID, principal.ID)
		if err != nil {
			return nil, err
		}
	}
	if !allowed {
		return nil, shared.ErrForbidden
	}

	res := &Reservation{
		TeamID:    req.TeamID,
		RoomID:    req.RoomID,
		CreatedBy: principal.ID,
		Start:     req.Start,
		End:       req.End,
	}
	if err := s.engine.Schedule(ctx, res, req.Override); err != nil {
		return nil, err
	}
	return res, nil
}

// Update rebooks an existing reservation, re-running the conflict check.
// Requires reservation.update.elevated, or reservation.update plus membership
// in the reservation's team.
func (s *Service) Update(ctx context.Context, principal *shared.Principal, id int64, req BookingRequest) (*Reservation, error) {
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	existing, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.TeamID, req.RoomID); err != nil {
		return nil, err
	}

	allowed, err := s.allowed(ctx, principal.ID, rbac.ActionReservationUpdate, existing.TeamID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, shared.ErrForbidden
	}

	res := &Reservation{
		ID:        id,
		TeamID:    req.TeamID,
		RoomID:    req.RoomID,
		CreatedBy: existing.CreatedBy,
		Start:     req.Start,
		End:       req.End,
	}
	if err := s.engine.Reschedule(ctx, res, req.Override); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes a reservation. Historically this endpoint was open; it now
// requires reservation.delete.elevated, or reservation.delete plus membership
// in the reservation's team.
func (s *Service) Delete(ctx context.Context, principal *shared.Principal, id int64) error {
	if principal == nil {
		return shared.ErrUnauthenticated
	}
	existing, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	allowed, err := s.allowed(ctx, principal.ID, rbac.ActionReservationDelete, existing.TeamID)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.Delete(ctx, id)
	})
}

// Get returns a reservation. Requires authentication only.
func (s *Service) Get(ctx context.Context, principal *shared.Principal, id int64) (*Reservation, error) {
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	return s.repo.GetReservation(ctx, id)
}

// List returns reservations overlapping the window when both bounds are set,
// otherwise every reservation that has not yet ended. Requires authentication.
func (s *Service) List(ctx context.Context, principal *shared.Principal, from, to *time.Time) ([]Reservation, error) {
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	return s.repo.List(ctx, from, to)
}

func (s *Service) allowed(ctx context.Context, userID int64, action rbac.Action, teamID int64) (bool, error) {
	elevated, err := s.perms.Has(ctx, userID, rbac.Elevated(action))
	if err != nil {
		return false, err
	}
	if elevated {
		return true, nil
	}
	base, err := s.perms.Has(ctx, userID, rbac.Base(action))
	if err != nil {
		return false, err
	}
	if !base {
		return false, nil
	}
	return s.repo.IsTeamMember(ctx, teamID, userID)
}

func (s *Service) checkReferences(ctx context.Context, teamID, roomID int64) error {
	exists, err := s.repo.TeamExists(ctx, teamID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: team %d", shared.ErrNotFound, teamID)
	}
	exists, err = s.repo.RoomExists(ctx, roomID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: room %d", shared.ErrNotFound, roomID)
	}
	return nil
}
