package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamroom-io/teamroom/internal/shared"
)

type stubUserRepo struct {
	id    int64
	name  string
	email string
	teams []TeamSummary
}

func (s *stubUserRepo) GetUser(ctx context.Context, id int64) (int64, string, string, error) {
	if id != s.id {
		return 0, "", "", shared.ErrNotFound
	}
	return s.id, s.name, s.email, nil
}

func (s *stubUserRepo) ListTeams(ctx context.Context, userID int64) ([]TeamSummary, error) {
	return s.teams, nil
}

type stubPerms struct {
	perms []string
}

func (s *stubPerms) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.perms, nil
}

func TestProfile(t *testing.T) {
	repo := &stubUserRepo{
		id:    7,
		name:  "catherine",
		email: "cat@example.com",
		teams: []TeamSummary{{ID: 1, Type: "class"}},
	}
	service := NewService(repo, &stubPerms{perms: []string{"team.read", "reservation.create"}})

	profile, err := service.Profile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, "catherine", profile.Name)
	assert.Len(t, profile.Teams, 1)
	assert.Len(t, profile.Permissions, 2)
}

func TestProfileNotFound(t *testing.T) {
	service := NewService(&stubUserRepo{id: 7}, &stubPerms{})
	_, err := service.Profile(context.Background(), 100)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
