package users

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PermissionLister resolves a user's deduplicated permission names.
type PermissionLister interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Service assembles user profiles.
type Service struct {
	repo  Repository
	perms PermissionLister
}

// NewService constructs a new Service.
func NewService(repo Repository, perms PermissionLister) *Service {
	return &Service{repo: repo, perms: perms}
}

// Profile returns the user with their teams and effective permissions. The
// two relationship fetches run concurrently.
func (s *Service) Profile(ctx context.Context, id int64) (*Profile, error) {
	userID, name, email, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := &Profile{ID: userID, Name: name, Email: email}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.repo.ListTeams(ctx, userID)
		if err != nil {
			return err
		}
		profile.Teams = teams
		return nil
	})
	g.Go(func() error {
		perms, err := s.perms.EffectivePermissions(ctx, userID)
		if err != nil {
			return err
		}
		profile.Permissions = perms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}
