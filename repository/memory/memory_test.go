package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, inventory int) (*Store, *data.Book, *data.User) {
	t.Helper()
	ctx := context.Background()
	s := New()
	author := &data.Author{FirstName: "Ursula", LastName: "Le Guin"}
	require.NoError(t, s.CreateAuthor(ctx, author))
	book := &data.Book{Title: "The Dispossessed", Authors: []int64{author.ID}, Cover: data.CoverSoft, Inventory: inventory}
	require.NoError(t, s.CreateBook(ctx, book))
	user := &data.User{Name: "Reader", Email: "reader@example.com"}
	require.NoError(t, user.Password.Set("pa55word1"))
	require.NoError(t, s.CreateUser(ctx, user))
	return s, book, user
}

func TestCreateBookResolvesAuthorNames(t *testing.T) {
	s, book, _ := seed(t, 1)
	assert.Equal(t, []string{"Ursula Le Guin"}, book.AuthorNames)

	got, err := s.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, got.Authors)
	assert.Equal(t, []string{"Ursula Le Guin"}, got.AuthorNames)
}

func TestCreateBookUnknownAuthor(t *testing.T) {
	s := New()
	err := s.CreateBook(context.Background(), &data.Book{Title: "x", Authors: []int64{42}, Cover: data.CoverHard})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestAtomicallyDiscardsFailedUnit(t *testing.T) {
	s, book, user := seed(t, 1)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Atomically(ctx, func(tx repository.Tx) error {
		b := &data.Borrowing{BookID: book.ID, UserID: user.ID, BorrowDate: data.Date{Year: 2024, Month: 1, Day: 1}}
		if err := tx.InsertBorrowing(ctx, b); err != nil {
			return err
		}
		if _, err := tx.AdjustBookInventory(ctx, book.ID, -1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Inventory)
	_, metadata, err := s.GetAllBorrowings(ctx, data.BorrowingQuery{}, data.Filters{Page: 1, PageSize: 10, Sort: "id", SortSafeList: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, 0, metadata.TotalRecords)
}

func TestAdjustBookInventoryNeverNegative(t *testing.T) {
	s, book, _ := seed(t, 1)
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Atomically(ctx, func(tx repository.Tx) error {
				_, err := tx.AdjustBookInventory(ctx, book.ID, -1)
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, repository.ErrInventoryExhausted)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	got, err := s.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory)
}

func TestCloseBorrowingTwice(t *testing.T) {
	s, book, user := seed(t, 1)
	ctx := context.Background()
	today := data.Date{Year: 2024, Month: 3, Day: 10}
	b := &data.Borrowing{BookID: book.ID, UserID: user.ID, BorrowDate: today, ExpectedReturnDate: today.AddDays(7)}
	require.NoError(t, s.Atomically(ctx, func(tx repository.Tx) error { return tx.InsertBorrowing(ctx, b) }))

	b.ActualReturnDate = &today
	require.NoError(t, s.Atomically(ctx, func(tx repository.Tx) error { return tx.CloseBorrowing(ctx, b) }))
	err := s.Atomically(ctx, func(tx repository.Tx) error { return tx.CloseBorrowing(ctx, b) })
	assert.ErrorIs(t, err, repository.ErrEditConflict)
}

func TestGetAllBooksFilterAndPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	author := &data.Author{FirstName: "Terry", LastName: "Pratchett"}
	require.NoError(t, s.CreateAuthor(ctx, author))
	for _, title := range []string{"Mort", "Guards! Guards!", "Small Gods", "Men at Arms", "Going Postal"} {
		require.NoError(t, s.CreateBook(ctx, &data.Book{Title: title, Authors: []int64{author.ID}, Cover: data.CoverSoft}))
	}
	filters := data.Filters{Page: 1, PageSize: 2, Sort: "-title", SortSafeList: []string{"id", "title", "-title"}}

	books, metadata, err := s.GetAllBooks(ctx, "", filters)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Small Gods", books[0].Title)
	assert.Equal(t, "Mort", books[1].Title)
	assert.Equal(t, 3, metadata.LastPage)
	assert.Equal(t, 5, metadata.TotalRecords)

	filters.Page = 3
	books, _, err = s.GetAllBooks(ctx, "", filters)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Going Postal", books[0].Title)

	filters.Page = 1
	books, metadata, err = s.GetAllBooks(ctx, "GUARDS", filters)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 1, metadata.TotalRecords)
}

func TestUpdateBookKeepsInventory(t *testing.T) {
	s, book, _ := seed(t, 3)
	ctx := context.Background()
	book.Title = "The Dispossessed: An Ambiguous Utopia"
	book.Inventory = 99
	require.NoError(t, s.UpdateBook(ctx, book))
	assert.Equal(t, 3, book.Inventory)

	stale := *book
	stale.Version--
	assert.ErrorIs(t, s.UpdateBook(ctx, &stale), repository.ErrEditConflict)
}

func TestDuplicatePseudonym(t *testing.T) {
	s := New()
	ctx := context.Background()
	alias := "Richard Bachman"
	require.NoError(t, s.CreateAuthor(ctx, &data.Author{FirstName: "Stephen", LastName: "King", Pseudonym: &alias}))
	err := s.CreateAuthor(ctx, &data.Author{FirstName: "Other", LastName: "Person", Pseudonym: &alias})
	assert.ErrorIs(t, err, repository.ErrDuplicateRecord)
}

func TestDeleteBookCascadesBorrowings(t *testing.T) {
	s, book, user := seed(t, 1)
	ctx := context.Background()
	b := &data.Borrowing{BookID: book.ID, UserID: user.ID}
	require.NoError(t, s.Atomically(ctx, func(tx repository.Tx) error { return tx.InsertBorrowing(ctx, b) }))
	require.NoError(t, s.DeleteBook(ctx, book.ID))
	_, err := s.GetBorrowing(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestTokens(t *testing.T) {
	s, _, user := seed(t, 0)
	ctx := context.Background()
	token, err := s.CreateNewToken(ctx, user.ID, time.Hour, data.ScopeAuthentication)
	require.NoError(t, err)

	got, err := s.GetUserForToken(ctx, data.ScopeAuthentication, token.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, s.DeleteAllTokensForUser(ctx, data.ScopeAuthentication, user.ID))
	_, err = s.GetUserForToken(ctx, data.ScopeAuthentication, token.Plaintext)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	s, _, _ := seed(t, 0)
	other := &data.User{Name: "Other", Email: "reader@example.com"}
	require.NoError(t, other.Password.Set("pa55word1"))
	assert.ErrorIs(t, s.CreateUser(context.Background(), other), repository.ErrDuplicateRecord)
}
