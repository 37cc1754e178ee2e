package memory

import (
	"bytes"
	"context"
	"time"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
)

func (st *state) emailTaken(email string, exceptID int64) bool {
	for id, u := range st.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.emailTaken(user.Email, 0) {
		return repository.ErrDuplicateRecord
	}
	s.state.lastUserID++
	user.ID = s.state.lastUserID
	user.CreatedAt = time.Now()
	user.Version = 1
	stored := *user
	stored.Password.Plaintext = nil
	s.state.users[user.ID] = stored
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID int64) (*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[userID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (s *Store) UpdateUser(_ context.Context, user *data.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.state.users[user.ID]
	if !ok || stored.Version != user.Version {
		return repository.ErrEditConflict
	}
	if s.state.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateRecord
	}
	user.Version++
	updated := *user
	updated.Password.Plaintext = nil
	s.state.users[user.ID] = updated
	return nil
}

func (s *Store) GetUserForToken(_ context.Context, tokenScope, tokenPlaintext string) (*data.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash := data.TokenHash(tokenPlaintext)
	now := time.Now()
	for _, t := range s.state.tokens {
		if t.Scope == tokenScope && bytes.Equal(t.Hash, hash) && t.Expiry.After(now) {
			if u, ok := s.state.users[t.UserID]; ok {
				return &u, nil
			}
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (s *Store) CreateNewToken(_ context.Context, userID int64, ttl time.Duration, scope string) (*data.Token, error) {
	token, err := data.GenerateToken(userID, ttl, scope)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.users[userID]; !ok {
		return nil, repository.ErrInvalidReference
	}
	stored := *token
	stored.Plaintext = ""
	s.state.tokens = append(s.state.tokens, stored)
	return token, nil
}

func (s *Store) DeleteAllTokensForUser(_ context.Context, scope string, userID int64) error {
	if userID < 1 {
		return repository.ErrRecordNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.tokens[:0:0]
	for _, t := range s.state.tokens {
		if t.Scope != scope || t.UserID != userID {
			kept = append(kept, t)
		}
	}
	s.state.tokens = kept
	return nil
}
