package memory

import (
	"cmp"
	"context"
	"strings"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
)

var authorColumns = map[string]compareFunc[*data.Author]{
	"id":         func(a, b *data.Author) int { return cmp.Compare(a.ID, b.ID) },
	"first_name": func(a, b *data.Author) int { return strings.Compare(a.FirstName, b.FirstName) },
	"last_name":  func(a, b *data.Author) int { return strings.Compare(a.LastName, b.LastName) },
}

var bookColumns = map[string]compareFunc[*data.Book]{
	"id":        func(a, b *data.Book) int { return cmp.Compare(a.ID, b.ID) },
	"title":     func(a, b *data.Book) int { return strings.Compare(a.Title, b.Title) },
	"inventory": func(a, b *data.Book) int { return cmp.Compare(a.Inventory, b.Inventory) },
	"daily_fee": func(a, b *data.Book) int { return a.DailyFee.Cmp(b.DailyFee.Decimal) },
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (st *state) pseudonymTaken(pseudonym *string, exceptID int64) bool {
	if pseudonym == nil {
		return false
	}
	for id, a := range st.authors {
		if id != exceptID && a.Pseudonym != nil && *a.Pseudonym == *pseudonym {
			return true
		}
	}
	return false
}

func (st *state) authorsExist(ids []int64) bool {
	for _, id := range ids {
		if _, ok := st.authors[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) CreateAuthor(_ context.Context, author *data.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.pseudonymTaken(author.Pseudonym, 0) {
		return repository.ErrDuplicateRecord
	}
	s.state.lastAuthorID++
	author.ID = s.state.lastAuthorID
	author.Version = 1
	s.state.authors[author.ID] = *author
	return nil
}

func (s *Store) GetAuthor(_ context.Context, authorID int64) (*data.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.authors[authorID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return &a, nil
}

func (s *Store) GetAllAuthors(_ context.Context, firstName string, filters data.Filters) ([]*data.Author, data.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := []*data.Author{}
	for _, a := range s.state.authors {
		if firstName == "" || containsFold(a.FirstName, firstName) {
			a := a
			authors = append(authors, &a)
		}
	}
	result, metadata := page(authors, filters, authorColumns, func(a *data.Author) int64 { return a.ID })
	return result, metadata, nil
}

func (s *Store) GetAuthorsByIDs(_ context.Context, authorIDs []int64) ([]*data.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authors := []*data.Author{}
	seen := make(map[int64]bool)
	for _, id := range authorIDs {
		if a, ok := s.state.authors[id]; ok && !seen[id] {
			seen[id] = true
			authors = append(authors, &a)
		}
	}
	return authors, nil
}

func (s *Store) UpdateAuthor(_ context.Context, author *data.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.state.authors[author.ID]
	if !ok || stored.Version != author.Version {
		return repository.ErrEditConflict
	}
	if s.state.pseudonymTaken(author.Pseudonym, author.ID) {
		return repository.ErrDuplicateRecord
	}
	author.Version++
	s.state.authors[author.ID] = *author
	return nil
}

func (s *Store) DeleteAuthor(_ context.Context, authorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.authors[authorID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(s.state.authors, authorID)
	for id, b := range s.state.books {
		kept := b.Authors[:0:0]
		for _, a := range b.Authors {
			if a != authorID {
				kept = append(kept, a)
			}
		}
		b.Authors = kept
		s.state.books[id] = b
	}
	return nil
}

func (s *Store) CreateBook(_ context.Context, book *data.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.authorsExist(book.Authors) {
		return repository.ErrInvalidReference
	}
	if book.Inventory < 0 {
		return repository.ErrInventoryExhausted
	}
	s.state.lastBookID++
	book.ID = s.state.lastBookID
	book.Version = 1
	s.state.books[book.ID] = storedBook(book)
	stored, _ := s.state.book(book.ID)
	book.AuthorNames = stored.AuthorNames
	return nil
}

func (s *Store) GetBook(_ context.Context, bookID int64) (*data.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.book(bookID)
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return b, nil
}

func (s *Store) GetAllBooks(_ context.Context, title string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := []*data.Book{}
	for id, b := range s.state.books {
		if title == "" || containsFold(b.Title, title) {
			book, _ := s.state.book(id)
			books = append(books, book)
		}
	}
	result, metadata := page(books, filters, bookColumns, func(b *data.Book) int64 { return b.ID })
	return result, metadata, nil
}

// UpdateBook never writes inventory; the stored value is copied back to the caller.
func (s *Store) UpdateBook(_ context.Context, book *data.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.state.books[book.ID]
	if !ok || stored.Version != book.Version {
		return repository.ErrEditConflict
	}
	if !s.state.authorsExist(book.Authors) {
		return repository.ErrInvalidReference
	}
	book.Inventory = stored.Inventory
	book.Version++
	s.state.books[book.ID] = storedBook(book)
	updated, _ := s.state.book(book.ID)
	book.AuthorNames = updated.AuthorNames
	return nil
}

// DeleteBook removes a book together with its borrowings.
func (s *Store) DeleteBook(_ context.Context, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.books[bookID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(s.state.books, bookID)
	for id, b := range s.state.borrowings {
		if b.BookID == bookID {
			delete(s.state.borrowings, id)
		}
	}
	return nil
}

func storedBook(book *data.Book) data.Book {
	b := *book
	b.Authors = append([]int64(nil), book.Authors...)
	b.AuthorNames = nil
	return b
}
