package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamroom-io/teamroom/internal/rbac"
	"github.com/teamroom-io/teamroom/internal/shared"
)

// PermissionEvaluator answers exact-name capability membership queries.
type PermissionEvaluator interface {
	Has(ctx context.Context, userID int64, cap rbac.Capability) (bool, error)
}

// Service wraps team business rules and the authorization gate for team
// mutations. Gate order everywhere: authenticate, then referenced-entity
// existence, then permission/ownership.
type Service struct {
	repo  Repository
	perms PermissionEvaluator
}

// NewService constructs a new Service.
func NewService(repo Repository, perms PermissionEvaluator) *Service {
	return &Service{repo: repo, perms: perms}
}

// allowed implements the elevated-unconditional / base-plus-ownership rule.
func (s *Service) allowed(ctx context.Context, userID int64, action rbac.Action, owns func(context.Context) (bool, error)) (bool, error) {
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
	return owns(ctx)
}

// Create adds a team. The base team.create permission only covers the
// other_team type; any other type requires team.create.elevated.
func (s *Service) Create(ctx context.Context, principal *shared.Principal, name, typeName string) (*Team, error) {
	if principal == nil {
		return nil, shared.ErrUnauthenticated
	}
	teamType, err := s.repo.GetTeamType(ctx, typeName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown team type %q", shared.ErrValidation, typeName)
		}
		return nil, err
	}

	elevated, err := s.perms.Has(ctx, principal.ID, rbac.Elevated(rbac.ActionTeamCreate))
	if err != nil {
		return nil, err
	}
	if !elevated {
		if teamType.Name != TypeOtherTeam {
			return nil, shared.ErrForbidden
		}
		base, err := s.perms.Has(ctx, principal.ID, rbac.Base(rbac.ActionTeamCreate))
		if err != nil {
			return nil, err
		}
		if !base {
			return nil, shared.ErrForbidden
		}
	}

	return s.repo.CreateTeam(ctx, name, teamType.ID)
}

// Get returns the team plus its member list and whether the caller is
// entitled to the full view (name, advance_time, members). Anonymous callers
// and non-members without team.read.elevated only see id and type.
func (s *Service) Get(ctx context.Context, principal *shared.Principal, id int64) (*Team, []Member, bool, error) {
	team, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}

	full := false
	if principal != nil {
		full, err = s.allowed(ctx, principal.ID, rbac.ActionTeamRead, func(ctx context.Context) (bool, error) {
			return s.repo.IsMember(ctx, id, principal.ID)
		})
		if err != nil {
			return nil, nil, false, err
		}
	}
	if !full {
		return team, nil, false, nil
	}

	members, err := s.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, nil, false, err
	}
	return team, members, true, nil
}

// Update renames a team. Requires team.update.elevated, or team.update plus
// membership.
func (s *Service) Update(ctx context.Context, principal *shared.Principal, id int64, name string) error {
	if principal == nil {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.GetTeam(ctx, id); err != nil {
		return err
	}
	ok, err := s.allowed(ctx, principal.ID, rbac.ActionTeamUpdate, func(ctx context.Context) (bool, error) {
		return s.repo.IsMember(ctx, id, principal.ID)
	})
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return s.repo.UpdateTeamName(ctx, id, name)
}

// Delete removes a team and cascades its reservations in the same
// transaction. Requires team.delete.elevated, or team.delete plus membership.
func (s *Service) Delete(ctx context.Context, principal *shared.Principal, id int64) error {
	if principal == nil {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.GetTeam(ctx, id); err != nil {
		return err
	}
	ok, err := s.allowed(ctx, principal.ID, rbac.ActionTeamDelete, func(ctx context.Context) (bool, error) {
		return s.repo.IsMember(ctx, id, principal.ID)
	})
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return s.repo.DeleteTeamCascade(ctx, id)
}

// AddMember adds a user to a team under the team.update gate.
func (s *Service) AddMember(ctx context.Context, principal *shared.Principal, teamID, userID int64) error {
	return s.changeMembership(ctx, principal, teamID, userID, s.repo.AddMember)
}

// RemoveMember removes a user from a team under the team.update gate.
func (s *Service) RemoveMember(ctx context.Context, principal *shared.Principal, teamID, userID int64) error {
	return s.changeMembership(ctx, principal, teamID, userID, s.repo.RemoveMember)
}

func (s *Service) changeMembership(ctx context.Context, principal *shared.Principal, teamID, userID int64, apply func(context.Context, int64, int64) error) error {
	if principal == nil {
		return shared.ErrUnauthenticated
	}
	if _, err := s.repo.GetTeam(ctx, teamID); err != nil {
		return err
	}
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, userID)
	}
	ok, err := s.allowed(ctx, principal.ID, rbac.ActionTeamUpdate, func(ctx context.Context) (bool, error) {
		return s.repo.IsMember(ctx, teamID, principal.ID)
	})
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrForbidden
	}
	return apply(ctx, teamID, userID)
}

// Priority resolves the team's effective booking priority, a live projection
// of its team type. Lower value wins conflict comparisons.
func (s *Service) Priority(ctx context.Context, teamID int64) (int, error) {
	return s.repo.Priority(ctx, teamID)
}
