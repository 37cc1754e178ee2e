package service

import (
	"context"
	"errors"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/repository"
)

type users interface {
	RegisterUser(ctx context.Context, name, email, password string) (*data.User, error)
	GetUser(ctx context.Context, userID int64) (*data.User, error)
	UpdateUser(ctx context.Context, userID int64, requestBody dto.UpdateUserRequestBody) (*data.User, error)
	GetUserForToken(ctx context.Context, tokenScope, tokenPlaintext string) (*data.User, error)
	EnsureStaffUser(ctx context.Context) error
}

// RegisterUser service registers a new user.
func (s *service) RegisterUser(ctx context.Context, name, email, password string) (*data.User, error) {
	v := validator.New()
	if data.ValidateRegistration(v, name, email, password); !v.Valid() {
		return nil, failedValidation(v)
	}
	user := &data.User{
		Name:  name,
		Email: email,
	}
	err := user.Password.Set(password)
	if err != nil {
		return nil, err
	}
	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError("email", "a user with this email address already exists")
		default:
			return nil, err
		}
	}
	s.notify(user.Email, "user_welcome.tmpl", map[string]any{
		"userName": firstName(user.Name),
		"userID":   user.ID,
	})
	return user, nil
}

// GetUser service shows the details of a specific user.
func (s *service) GetUser(ctx context.Context, userID int64) (*data.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// UpdateUser service updates the profile of a specific user.
func (s *service) UpdateUser(ctx context.Context, userID int64, requestBody dto.UpdateUserRequestBody) (*data.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if requestBody.Name != nil {
		user.Name = *requestBody.Name
	}
	if requestBody.Email != nil {
		user.Email = *requestBody.Email
	}
	if requestBody.Password != nil {
		v := validator.New()
		if data.ValidatePasswordPlaintext(v, *requestBody.Password); !v.Valid() {
			return nil, failedValidation(v)
		}
		if err := user.Password.Set(*requestBody.Password); err != nil {
			return nil, err
		}
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError("email", "a user with this email address already exists")
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUserForToken service retrieves the user owning an unexpired token.
func (s *service) GetUserForToken(ctx context.Context, tokenScope, tokenPlaintext string) (*data.User, error) {
	v := validator.New()
	if data.ValidateTokenPlaintext(v, tokenPlaintext); !v.Valid() {
		return nil, failedValidation(v)
	}
	user, err := s.repo.GetUserForToken(ctx, tokenScope, tokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, fieldError("token", "invalid or expired authentication token")
		default:
			return nil, err
		}
	}
	return user, nil
}

// EnsureStaffUser creates the configured staff account, or promotes an existing
// account with that email to staff. It does nothing when no staff email is set.
func (s *service) EnsureStaffUser(ctx context.Context) error {
	cfg := s.config.Staff
	if cfg.Email == "" {
		return nil
	}
	user, err := s.repo.GetUserByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		if user.IsStaff {
			return nil
		}
		user.IsStaff = true
		return s.repo.UpdateUser(ctx, user)
	case errors.Is(err, repository.ErrRecordNotFound):
	default:
		return err
	}
	v := validator.New()
	if data.ValidateRegistration(v, cfg.Name, cfg.Email, cfg.Password); !v.Valid() {
		return failedValidation(v)
	}
	user = &data.User{Name: cfg.Name, Email: cfg.Email, IsStaff: true}
	if err := user.Password.Set(cfg.Password); err != nil {
		return err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}
	s.logger.PrintInfo("staff account created", map[string]string{"email": user.Email})
	return nil
}
