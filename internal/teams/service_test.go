package teams

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamroom-io/teamroom/internal/rbac"
	"github.com/teamroom-io/teamroom/internal/shared"
)

type mockRepo struct {
	types        map[string]*TeamType
	teams        map[int64]*Team
	members      map[int64]map[int64]string // teamID -> userID -> name
	users        map[int64]string
	reservations map[int64][]int64 // teamID -> reservation IDs
	nextTeamID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		types: map[string]*TeamType{
			"default":        {ID: 1, Name: "default", Priority: 4, AdvanceTime: 14},
			"other_team":     {ID: 2, Name: "other_team", Priority: 4, AdvanceTime: 14},
			"class":          {ID: 3, Name: "class", Priority: 3, AdvanceTime: 14},
			"colab_class":    {ID: 4, Name: "colab_class", Priority: 2, AdvanceTime: 14},
			"senior_project": {ID: 5, Name: "senior_project", Priority: 1, AdvanceTime: 14},
		},
		teams:        make(map[int64]*Team),
		members:      make(map[int64]map[int64]string),
		users:        map[int64]string{10: "alice", 11: "bob"},
		reservations: make(map[int64][]int64),
		nextTeamID:   1,
	}
}

func (m *mockRepo) GetTeam(ctx context.Context, id int64) (*Team, error) {
	team, ok := m.teams[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return team, nil
}

func (m *mockRepo) GetTeamType(ctx context.Context, name string) (*TeamType, error) {
	tt, ok := m.types[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return tt, nil
}

func (m *mockRepo) CreateTeam(ctx context.Context, name string, typeID int64) (*Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return nil, shared.ErrDuplicate
		}
	}
	var teamType TeamType
	for _, tt := range m.types {
		if tt.ID == typeID {
			teamType = *tt
		}
	}
	team := &Team{ID: m.nextTeamID, Name: name, Type: teamType}
	m.nextTeamID++
	m.teams[team.ID] = team
	return team, nil
}

func (m *mockRepo) UpdateTeamName(ctx context.Context, id int64, name string) error {
	team, ok := m.teams[id]
	if !ok {
		return shared.ErrNotFound
	}
	team.Name = name
	return nil
}

func (m *mockRepo) DeleteTeamCascade(ctx context.Context, id int64) error {
	if _, ok := m.teams[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.teams, id)
	delete(m.members, id)
	delete(m.reservations, id)
	return nil
}

func (m *mockRepo) ListMembers(ctx context.Context, teamID int64) ([]Member, error) {
	members := make([]Member, 0)
	for id, name := range m.members[teamID] {
		members = append(members, Member{ID: id, Name: name})
	}
	return members, nil
}

func (m *mockRepo) IsMember(ctx context.Context, teamID, userID int64) (bool, error) {
	_, ok := m.members[teamID][userID]
	return ok, nil
}

func (m *mockRepo) AddMember(ctx context.Context, teamID, userID int64) error {
	if m.members[teamID] == nil {
		m.members[teamID] = make(map[int64]string)
	}
	m.members[teamID][userID] = m.users[userID]
	return nil
}

func (m *mockRepo) RemoveMember(ctx context.Context, teamID, userID int64) error {
	delete(m.members[teamID], userID)
	return nil
}

func (m *mockRepo) UserExists(ctx context.Context, userID int64) (bool, error) {
	_, ok := m.users[userID]
	return ok, nil
}

func (m *mockRepo) Priority(ctx context.Context, teamID int64) (int, error) {
	team, ok := m.teams[teamID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return team.Type.Priority, nil
}

type mockPerms struct {
	granted map[int64]map[string]bool
}

func (m *mockPerms) Has(ctx context.Context, userID int64, cap rbac.Capability) (bool, error) {
	return m.granted[userID][cap.Name()], nil
}

func grant(userID int64, names ...string) *mockPerms {
	perms := &mockPerms{granted: map[int64]map[string]bool{userID: {}}}
	for _, name := range names {
		perms.granted[userID][name] = true
	}
	return perms
}

func principal(id int64) *shared.Principal {
	return &shared.Principal{ID: id, Name: "user"}
}

func TestCreateOtherTeamWithBasePermission(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo, grant(10, "team.create"))

	team, err := service.Create(context.Background(), principal(10), "robotics", "other_team")
	require.NoError(t, err)
	assert.Equal(t, "other_team", team.Type.Name)
}

func TestCreateNonOtherTeamRequiresElevated(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo, grant(10, "team.create"))

	_, err := service.Create(context.Background(), principal(10), "csc500", "class")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	service = NewService(repo, grant(10, "team.create.elevated"))
	team, err := service.Create(context.Background(), principal(10), "csc500", "class")
	require.NoError(t, err)
	assert.Equal(t, "class", team.Type.Name)
}

func TestCreateUnknownType(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo, grant(10, "team.create.elevated"))

	_, err := service.Create(context.Background(), principal(10), "ghosts", "haunted")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUnauthenticated(t *testing.T) {
	service := NewService(newMockRepo(), grant(10))
	_, err := service.Create(context.Background(), nil, "x", "other_team")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestReadVisibility(t *testing.T) {
	repo := newMockRepo()
	team, err := repo.CreateTeam(context.Background(), "secret-squad", repo.types["default"].ID)
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(context.Background(), team.ID, 10))

	// Member with base permission sees the full view.
	service := NewService(repo, grant(10, "team.read"))
	_, members, full, err := service.Get(context.Background(), principal(10), team.ID)
	require.NoError(t, err)
	assert.True(t, full)
	assert.Len(t, members, 1)

	// Non-member with base permission only sees id and type.
	service = NewService(repo, grant(11, "team.read"))
	_, _, full, err = service.Get(context.Background(), principal(11), team.ID)
	require.NoError(t, err)
	assert.False(t, full)

	// Non-member with elevated permission sees everything.
	service = NewService(repo, grant(11, "team.read.elevated"))
	_, _, full, err = service.Get(context.Background(), principal(11), team.ID)
	require.NoError(t, err)
	assert.True(t, full)

	// Anonymous callers get the restricted view.
	service = NewService(repo, grant(0))
	_, _, full, err = service.Get(context.Background(), nil, team.ID)
	require.NoError(t, err)
	assert.False(t, full)
}

func TestUpdateOwnershipGate(t *testing.T) {
	repo := newMockRepo()
	team, err := repo.CreateTeam(context.Background(), "ops", repo.types["default"].ID)
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(context.Background(), team.ID, 10))

	// Member with base permission may rename.
	service := NewService(repo, grant(10, "team.update"))
	require.NoError(t, service.Update(context.Background(), principal(10), team.ID, "ops-2"))
	assert.Equal(t, "ops-2", repo.teams[team.ID].Name)

	// Non-member with base permission may not.
	service = NewService(repo, grant(11, "team.update"))
	assert.ErrorIs(t, service.Update(context.Background(), principal(11), team.ID, "nope"), shared.ErrForbidden)

	// Elevated is unconditional.
	service = NewService(repo, grant(11, "team.update.elevated"))
	require.NoError(t, service.Update(context.Background(), principal(11), team.ID, "ops-3"))
}

func TestDeleteCascades(t *testing.T) {
	repo := newMockRepo()
	team, err := repo.CreateTeam(context.Background(), "doomed", repo.types["default"].ID)
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(context.Background(), team.ID, 10))
	repo.reservations[team.ID] = []int64{100, 101}

	service := NewService(repo, grant(10, "team.delete"))
	require.NoError(t, service.Delete(context.Background(), principal(10), team.ID))

	assert.NotContains(t, repo.teams, team.ID)
	assert.NotContains(t, repo.reservations, team.ID)
}

func TestDeleteMissingTeam(t *testing.T) {
	service := NewService(newMockRepo(), grant(10, "team.delete.elevated"))
	assert.ErrorIs(t, service.Delete(context.Background(), principal(10), 999), shared.ErrNotFound)
}

func TestMembershipChangeGate(t *testing.T) {
	repo := newMockRepo()
	team, err := repo.CreateTeam(context.Background(), "crew", repo.types["default"].ID)
	require.NoError(t, err)
	require.NoError(t, repo.AddMember(context.Background(), team.ID, 10))

	service := NewService(repo, grant(10, "team.update"))
	require.NoError(t, service.AddMember(context.Background(), principal(10), team.ID, 11))
	member, err := repo.IsMember(context.Background(), team.ID, 11)
	require.NoError(t, err)
	assert.True(t, member)

	// Unknown user is a 404, not a silent no-op.
	err = service.AddMember(context.Background(), principal(10), team.ID, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, service.RemoveMember(context.Background(), principal(10), team.ID, 11))
	member, err = repo.IsMember(context.Background(), team.ID, 11)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestPriorityProjection(t *testing.T) {
	repo := newMockRepo()
	team, err := repo.CreateTeam(context.Background(), "seniors", repo.types["senior_project"].ID)
	require.NoError(t, err)

	service := NewService(repo, grant(10))
	priority, err := service.Priority(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, priority)

	// Re-typing the team must be reflected immediately.
	repo.teams[team.ID].Type = *repo.types["default"]
	priority, err = service.Priority(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, priority)
}
