package users

import (
	"context"
	"errors"

	"github.com/vitalink/vitalink-api/internal/auth"
)

// AccountSource adapts the user repository to the auth layer's account view.
type AccountSource struct {
	repo Repository
}

// NewAccountSource wraps a user repository for the auth handler.
func NewAccountSource(repo Repository) *AccountSource {
	return &AccountSource{repo: repo}
}

// ByEmail implements auth.AccountSource.
func (s *AccountSource) ByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.convert(s.repo.GetByEmail(ctx, email))
}

// ByID implements auth.AccountSource.
func (s *AccountSource) ByID(ctx context.Context, id string) (*auth.Account, error) {
	return s.convert(s.repo.GetByID(ctx, id))
}

func (s *AccountSource) convert(u *User, err error) (*auth.Account, error) {
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return &auth.Account{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		Admin:          u.IsAdmin,
		Verified:       u.Verified(),
	}, nil
}
