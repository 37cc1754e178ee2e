package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/emzola/librarian/data"
)

type users interface {
	CreateUser(ctx context.Context, user *data.User) error
	GetUserByID(ctx context.Context, userID int64) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
	UpdateUser(ctx context.Context, user *data.User) error
	GetUserForToken(ctx context.Context, tokenScope, tokenPlaintext string) (*data.User, error)
}

// CreateUser creates a new user record.
func (r *repository) CreateUser(ctx context.Context, user *data.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, is_staff)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version`
	args := []interface{}{user.Name, user.Email, user.Password.Hash, user.IsStaff}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Version,
	)
	if err != nil {
		return translate(err)
	}
	return nil
}

// GetUserByID retrieves a user record by its ID.
func (r *repository) GetUserByID(ctx context.Context, userID int64) (*data.User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, is_staff, version
		FROM users
		WHERE id = $1`
	return r.getUser(ctx, query, userID)
}

// GetUserByEmail retrieves a user record by its email.
func (r *repository) GetUserByEmail(ctx context.Context, email string) (*data.User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, is_staff, version
		FROM users
		WHERE email = $1`
	return r.getUser(ctx, query, email)
}

// UpdateUser updates a user record.
func (r *repository) UpdateUser(ctx context.Context, user *data.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, is_staff = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version`
	args := []interface{}{
		user.Name,
		user.Email,
		user.Password.Hash,
		user.IsStaff,
		user.ID,
		user.Version,
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return translate(err)
		}
	}
	return nil
}

// GetUserForToken returns the user owning an unexpired token.
func (r *repository) GetUserForToken(ctx context.Context, tokenScope, tokenPlaintext string) (*data.User, error) {
	query := `
		SELECT users.id, users.created_at, users.name, users.email, users.password_hash, users.is_staff, users.version
		FROM users
		INNER JOIN tokens
		ON users.id = tokens.user_id
		WHERE tokens.hash = $1
		AND tokens.scope = $2
		AND tokens.expiry > $3`
	return r.getUser(ctx, query, data.TokenHash(tokenPlaintext), tokenScope, time.Now())
}

func (r *repository) getUser(ctx context.Context, query string, args ...interface{}) (*data.User, error) {
	var user data.User
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.Hash,
		&user.IsStaff,
		&user.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
