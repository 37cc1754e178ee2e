package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emzola/librarian/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSNEnv names a disposable PostgreSQL database. Its tables are truncated
// by every test below.
const testDSNEnv = "LIBRARIAN_TEST_DSN"

var day = data.DateOf(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC))

func openTestDB(t *testing.T) *repository {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	entries, err := os.ReadDir(filepath.Join("..", "migrations"))
	require.NoError(t, err)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		stmt, err := os.ReadFile(filepath.Join("..", "migrations", e.Name()))
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, string(stmt))
		require.NoError(t, err, e.Name())
	}
	_, err = db.ExecContext(ctx, `TRUNCATE borrowings, tokens, users, books_authors, books, authors RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return New(db)
}

func givenBookAndUser(t *testing.T, r *repository, inventory int) (*data.Book, *data.User) {
	t.Helper()
	ctx := context.Background()
	author := &data.Author{FirstName: "Ursula", LastName: "Le Guin"}
	require.NoError(t, r.CreateAuthor(ctx, author))
	fee, err := data.NewFee("0.50")
	require.NoError(t, err)
	book := &data.Book{Title: "The Dispossessed", Authors: []int64{author.ID}, Cover: data.CoverSoft, Inventory: inventory, DailyFee: fee}
	require.NoError(t, r.CreateBook(ctx, book))
	user := &data.User{Name: "Reader", Email: "reader@example.com"}
	require.NoError(t, user.Password.Set("pa55word1"))
	require.NoError(t, r.CreateUser(ctx, user))
	return book, user
}

// borrow runs the creation unit: lock the book, check stock, insert, decrement.
func borrow(ctx context.Context, r *repository, bookID, userID int64) (*data.Borrowing, error) {
	var created *data.Borrowing
	err := r.Atomically(ctx, func(tx Tx) error {
		book, err := tx.GetBookForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if book.Inventory < 1 {
			return ErrInventoryExhausted
		}
		b := &data.Borrowing{BorrowDate: day, ExpectedReturnDate: day.AddDays(7), BookID: bookID, UserID: userID}
		if err := tx.InsertBorrowing(ctx, b); err != nil {
			return err
		}
		if _, err := tx.AdjustBookInventory(ctx, bookID, -1); err != nil {
			return err
		}
		created = b
		return nil
	})
	return created, err
}

func closeBorrowing(ctx context.Context, r *repository, borrowingID int64) error {
	return r.Atomically(ctx, func(tx Tx) error {
		b, err := tx.GetBorrowingForUpdate(ctx, borrowingID)
		if err != nil {
			return err
		}
		returned := day.AddDays(1)
		b.ActualReturnDate = &returned
		if err := tx.CloseBorrowing(ctx, b); err != nil {
			return err
		}
		_, err = tx.AdjustBookInventory(ctx, b.BookID, 1)
		return err
	})
}

func bookInventory(t *testing.T, r *repository, bookID int64) int {
	t.Helper()
	book, err := r.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	return book.Inventory
}

func TestPostgresConcurrentBorrowingOfLastCopy(t *testing.T) {
	r := openTestDB(t)
	book, user := givenBookAndUser(t, r, 1)
	ctx := context.Background()

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exhausted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := borrow(ctx, r, book.ID, user.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInventoryExhausted):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, exhausted)
	assert.Equal(t, 0, bookInventory(t, r, book.ID))

	list, _, err := r.GetAllBorrowings(ctx, data.BorrowingQuery{}, data.Filters{Page: 1, PageSize: 20, Sort: "id", SortSafeList: []string{"id"}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPostgresAdjustBookInventoryNeverNegative(t *testing.T) {
	r := openTestDB(t)
	book, _ := givenBookAndUser(t, r, 1)
	ctx := context.Background()

	err := r.Atomically(ctx, func(tx Tx) error {
		_, err := tx.AdjustBookInventory(ctx, book.ID, -2)
		return err
	})
	assert.ErrorIs(t, err, ErrInventoryExhausted)
	assert.Equal(t, 1, bookInventory(t, r, book.ID))
}

func TestPostgresAtomicallyRollsBackFailedInsert(t *testing.T) {
	r := openTestDB(t)
	book, _ := givenBookAndUser(t, r, 2)
	ctx := context.Background()

	err := r.Atomically(ctx, func(tx Tx) error {
		if _, err := tx.AdjustBookInventory(ctx, book.ID, -1); err != nil {
			return err
		}
		// No such user: the insert violates the foreign key.
		return tx.InsertBorrowing(ctx, &data.Borrowing{BorrowDate: day, ExpectedReturnDate: day, BookID: book.ID, UserID: 999})
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.Equal(t, 2, bookInventory(t, r, book.ID))

	list, _, err := r.GetAllBorrowings(ctx, data.BorrowingQuery{}, data.Filters{Page: 1, PageSize: 20, Sort: "id", SortSafeList: []string{"id"}})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPostgresCloseBorrowingTwice(t *testing.T) {
	r := openTestDB(t)
	book, user := givenBookAndUser(t, r, 1)
	ctx := context.Background()

	b, err := borrow(ctx, r, book.ID, user.ID)
	require.NoError(t, err)
	require.NoError(t, closeBorrowing(ctx, r, b.ID))
	assert.Equal(t, 1, bookInventory(t, r, book.ID))

	got, err := r.GetBorrowing(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ActualReturnDate)
	assert.Equal(t, day.AddDays(1), *got.ActualReturnDate)

	assert.ErrorIs(t, closeBorrowing(ctx, r, b.ID), ErrEditConflict)
	assert.Equal(t, 1, bookInventory(t, r, book.ID))
}

func TestPostgresGetAllBorrowingsFilters(t *testing.T) {
	r := openTestDB(t)
	book, alice := givenBookAndUser(t, r, 3)
	ctx := context.Background()
	bob := &data.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, bob.Password.Set("pa55word1"))
	require.NoError(t, r.CreateUser(ctx, bob))

	first, err := borrow(ctx, r, book.ID, alice.ID)
	require.NoError(t, err)
	_, err = borrow(ctx, r, book.ID, alice.ID)
	require.NoError(t, err)
	_, err = borrow(ctx, r, book.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, closeBorrowing(ctx, r, first.ID))

	filters := data.Filters{Page: 1, PageSize: 20, Sort: "id", SortSafeList: []string{"id"}}
	active, closed := true, false
	tests := []struct {
		name  string
		query data.BorrowingQuery
		want  int
	}{
		{"unfiltered", data.BorrowingQuery{}, 3},
		{"by owner", data.BorrowingQuery{UserID: &alice.ID}, 2},
		{"active", data.BorrowingQuery{IsActive: &active}, 2},
		{"closed", data.BorrowingQuery{IsActive: &closed}, 1},
		{"owner and active", data.BorrowingQuery{UserID: &alice.ID, IsActive: &active}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, metadata, err := r.GetAllBorrowings(ctx, tt.query, filters)
			require.NoError(t, err)
			assert.Len(t, list, tt.want)
			assert.Equal(t, tt.want, metadata.TotalRecords)
		})
	}
}
