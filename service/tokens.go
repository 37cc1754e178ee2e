package service

import (
	"context"
	"errors"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/repository"
)

type tokens interface {
	CreateAuthenticationToken(ctx context.Context, email, password string) (*data.Token, error)
	DeleteAuthenticationToken(ctx context.Context, userID int64) error
}

// CreateAuthenticationToken service creates a new authentication token.
func (s *service) CreateAuthenticationToken(ctx context.Context, email, password string) (*data.Token, error) {
	v := validator.New()
	data.ValidateEmail(v, email)
	data.ValidatePasswordPlaintext(v, password)
	if !v.Valid() {
		return nil, failedValidation(v)
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}
	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return s.repo.CreateNewToken(ctx, user.ID, s.config.Library.TokenTTL, data.ScopeAuthentication)
}

// DeleteAuthenticationToken deletes all authentication tokens for a user.
func (s *service) DeleteAuthenticationToken(ctx context.Context, userID int64) error {
	return s.repo.DeleteAllTokensForUser(ctx, data.ScopeAuthentication, userID)
}
