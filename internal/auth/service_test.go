package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamroom-io/teamroom/internal/auth"
	"github.com/teamroom-io/teamroom/internal/shared"
)

type stubRepo struct {
	byName map[string]*auth.User
	byID   map[int64]*auth.User
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byName: make(map[string]*auth.User),
		byID:   make(map[int64]*auth.User),
		nextID: 1,
	}
}

func (s *stubRepo) FindByName(ctx context.Context, name string) (*auth.User, error) {
	user, ok := s.byName[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) GetUser(ctx context.Context, id int64) (*auth.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, name, email string) (*auth.User, error) {
	if _, ok := s.byName[name]; ok {
		return nil, shared.ErrDuplicate
	}
	user := &auth.User{ID: s.nextID, Name: name, Email: email}
	s.nextID++
	s.byName[name] = user
	s.byID[user.ID] = user
	return user, nil
}

func TestAuthenticateExistingUser(t *testing.T) {
	repo := newStubRepo()
	_, err := repo.CreateUser(context.Background(), "anthony", "foo@bar.com")
	require.NoError(t, err)

	service := auth.NewService(repo, auth.NewCodec("secret", 0))
	token, err := service.Authenticate(context.Background(), "anthony")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := service.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), principal.ID)
	assert.Equal(t, "anthony", principal.Name)
	assert.Len(t, repo.byID, 1, "existing user must not be duplicated")
}

func TestAuthenticateProvisionsUser(t *testing.T) {
	repo := newStubRepo()
	service := auth.NewService(repo, auth.NewCodec("secret", 0))

	token, err := service.Authenticate(context.Background(), "bob")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := repo.FindByName(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob@", user.Email)
}

func TestResolveDeletedUser(t *testing.T) {
	repo := newStubRepo()
	user, err := repo.CreateUser(context.Background(), "carol", "carol@example.com")
	require.NoError(t, err)

	service := auth.NewService(repo, auth.NewCodec("secret", 0))
	token, err := service.Authenticate(context.Background(), "carol")
	require.NoError(t, err)

	delete(repo.byID, user.ID)
	delete(repo.byName, user.Name)

	_, err = service.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestResolveGarbageToken(t *testing.T) {
	service := auth.NewService(newStubRepo(), auth.NewCodec("secret", 0))
	_, err := service.Resolve(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}
