package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/teamroom-io/teamroom/internal/shared"
)

// Service wraps identity business rules: username-based provisioning and
// stateless token issuance and resolution.
type Service struct {
	repo  Repository
	codec *Codec
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *Codec) *Service {
	return &Service{repo: repo, codec: codec}
}

// Authenticate issues a token for the named user, provisioning the account on
// first sight. Provisioned accounts derive a placeholder email from the name.
func (s *Service) Authenticate(ctx context.Context, username string) (string, error) {
	user, err := s.repo.FindByName(ctx, username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("find user: %w", err)
		}
		user, err = s.repo.CreateUser(ctx, username, username+"@")
		if err != nil {
			return "", fmt.Errorf("provision user: %w", err)
		}
	}
	return s.codec.Issue(user.ID)
}

// Resolve verifies a token and loads the embedded user. Tokens for users that
// no longer exist are invalid, which is the only revocation mechanism the
// stateless scheme has.
func (s *Service) Resolve(ctx context.Context, token string) (*shared.Principal, error) {
	userID, err := s.codec.Verify(token)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return &shared.Principal{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}
