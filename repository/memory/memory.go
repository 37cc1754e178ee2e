// Package memory provides an in-process implementation of repository.Repository.
// It is used for local runs without PostgreSQL and by the test suites.
package memory

import (
	"context"
	"sync"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
)

var _ repository.Repository = (*Store)(nil)

// Store holds every record in memory behind a single lock.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	authors    map[int64]data.Author
	books      map[int64]data.Book
	borrowings map[int64]data.Borrowing
	users      map[int64]data.User
	tokens     []data.Token

	lastAuthorID    int64
	lastBookID      int64
	lastBorrowingID int64
	lastUserID      int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		state: &state{
			authors:    make(map[int64]data.Author),
			books:      make(map[int64]data.Book),
			borrowings: make(map[int64]data.Borrowing),
			users:      make(map[int64]data.User),
		},
	}
}

// Atomically runs fn against a staged copy of the store. The copy replaces the
// live state only when fn succeeds, so a failed unit leaves no trace.
func (s *Store) Atomically(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.state.clone()
	if err := fn(&tx{st: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (st *state) clone() *state {
	c := &state{
		authors:         make(map[int64]data.Author, len(st.authors)),
		books:           make(map[int64]data.Book, len(st.books)),
		borrowings:      make(map[int64]data.Borrowing, len(st.borrowings)),
		users:           make(map[int64]data.User, len(st.users)),
		tokens:          append([]data.Token(nil), st.tokens...),
		lastAuthorID:    st.lastAuthorID,
		lastBookID:      st.lastBookID,
		lastBorrowingID: st.lastBorrowingID,
		lastUserID:      st.lastUserID,
	}
	for id, a := range st.authors {
		c.authors[id] = a
	}
	for id, b := range st.books {
		b.Authors = append([]int64(nil), b.Authors...)
		c.books[id] = b
	}
	for id, b := range st.borrowings {
		c.borrowings[id] = copyBorrowing(b)
	}
	for id, u := range st.users {
		c.users[id] = u
	}
	return c
}

// book returns a detached copy of a stored book with its author names resolved.
func (st *state) book(id int64) (*data.Book, bool) {
	b, ok := st.books[id]
	if !ok {
		return nil, false
	}
	b.Authors = append([]int64{}, b.Authors...)
	b.AuthorNames = make([]string, 0, len(b.Authors))
	for _, authorID := range b.Authors {
		if a, ok := st.authors[authorID]; ok {
			b.AuthorNames = append(b.AuthorNames, a.FullName())
		}
	}
	return &b, true
}

func copyBorrowing(b data.Borrowing) data.Borrowing {
	if b.ActualReturnDate != nil {
		d := *b.ActualReturnDate
		b.ActualReturnDate = &d
	}
	return b
}
