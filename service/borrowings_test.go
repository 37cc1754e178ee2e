package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emzola/librarian/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBorrowing(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 2)
	ctx := context.Background()

	b, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(7))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, day, b.BorrowDate)
	assert.Equal(t, day.AddDays(7), b.ExpectedReturnDate)
	assert.Nil(t, b.ActualReturnDate)
	assert.True(t, b.IsActive())
	assert.Equal(t, f.alice.ID, b.UserID)
	assert.Equal(t, 1, f.inventory(t, book.ID))

	f.wg.Wait()
	assert.Contains(t, f.mailer.templates(), "borrowing_created.tmpl")
}

func TestCreateBorrowingUntilInventoryRunsOut(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 2)
	ctx := context.Background()

	_, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(3))
	require.NoError(t, err)
	_, err = f.svc.CreateBorrowing(ctx, f.bob, book.ID, day.AddDays(3))
	require.NoError(t, err)
	assert.Equal(t, 0, f.inventory(t, book.ID))

	_, err = f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(3))
	require.ErrorIs(t, err, ErrEmptyInventory)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "book_inventory")
	assert.Equal(t, 0, f.inventory(t, book.ID))
	assert.Equal(t, 2, f.borrowingCount(t))
}

func TestCreateBorrowingRejectsPastDate(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 1)

	_, err := f.svc.CreateBorrowing(context.Background(), f.alice, book.ID, day.AddDays(-1))
	require.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, 1, f.inventory(t, book.ID))
	assert.Zero(t, f.borrowingCount(t))
}

func TestCreateBorrowingUnknownBook(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateBorrowing(context.Background(), f.alice, 404, day)
	require.ErrorIs(t, err, ErrFailedValidation)
	assert.Zero(t, f.borrowingCount(t))
}

func TestCreateBorrowingRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 1)
	_, err := f.svc.CreateBorrowing(context.Background(), data.AnonymousUser, book.ID, day)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Equal(t, 1, f.inventory(t, book.ID))
}

func TestCreateBorrowingConcurrently(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 1)
	ctx := context.Background()

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		empty     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrEmptyInventory):
				empty++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, empty)
	assert.Equal(t, 0, f.inventory(t, book.ID))
	assert.Equal(t, 1, f.borrowingCount(t))
}

func TestReturnBorrowing(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 2)
	ctx := context.Background()

	b, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(7))
	require.NoError(t, err)
	assert.Equal(t, 1, f.inventory(t, book.ID))

	f.clock.Advance(24 * time.Hour)
	returned, err := f.svc.ReturnBorrowing(ctx, f.alice, b.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, day.AddDays(1), *returned.ActualReturnDate)
	assert.False(t, returned.IsActive())
	assert.Equal(t, 2, f.inventory(t, book.ID))

	_, err = f.svc.ReturnBorrowing(ctx, f.alice, b.ID, nil)
	require.ErrorIs(t, err, ErrAlreadyReturned)
	assert.ErrorIs(t, err, ErrFailedValidation)
	assert.Equal(t, 2, f.inventory(t, book.ID))

	f.wg.Wait()
	assert.Contains(t, f.mailer.templates(), "borrowing_returned.tmpl")
}

func TestReturnBorrowingWithExplicitDate(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 1)
	ctx := context.Background()
	b, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(7))
	require.NoError(t, err)

	tomorrow := day.AddDays(1)
	_, err = f.svc.ReturnBorrowing(ctx, f.alice, b.ID, &tomorrow)
	require.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, 0, f.inventory(t, book.ID))
	stored, err := f.repo.GetBorrowing(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())

	today := day
	returned, err := f.svc.ReturnBorrowing(ctx, f.alice, b.ID, &today)
	require.NoError(t, err)
	assert.Equal(t, day, *returned.ActualReturnDate)
	assert.Equal(t, 1, f.inventory(t, book.ID))
}

func TestReturnBorrowingAccess(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 2)
	ctx := context.Background()
	b, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(7))
	require.NoError(t, err)

	_, err = f.svc.ReturnBorrowing(ctx, f.bob, b.ID, nil)
	require.ErrorIs(t, err, ErrNotPermitted)
	assert.Equal(t, 1, f.inventory(t, book.ID))

	_, err = f.svc.ReturnBorrowing(ctx, data.AnonymousUser, b.ID, nil)
	require.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = f.svc.ReturnBorrowing(ctx, f.staff, b.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.inventory(t, book.ID))

	_, err = f.svc.ReturnBorrowing(ctx, f.staff, 999, nil)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetBorrowing(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 1)
	ctx := context.Background()
	b, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day)
	require.NoError(t, err)

	got, err := f.svc.GetBorrowing(ctx, f.alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.svc.GetBorrowing(ctx, f.staff, b.ID)
	require.NoError(t, err)

	_, err = f.svc.GetBorrowing(ctx, f.bob, b.ID)
	assert.ErrorIs(t, err, ErrNotPermitted)

	owner, err := f.svc.GetBorrowingOwner(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, owner)
}

func TestListBorrowingsScope(t *testing.T) {
	f := newFixture(t)
	book := f.book(t, 5)
	ctx := context.Background()
	a1, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(1))
	require.NoError(t, err)
	_, err = f.svc.CreateBorrowing(ctx, f.alice, book.ID, day.AddDays(2))
	require.NoError(t, err)
	_, err = f.svc.CreateBorrowing(ctx, f.bob, book.ID, day.AddDays(3))
	require.NoError(t, err)
	_, err = f.svc.ReturnBorrowing(ctx, f.alice, a1.ID, nil)
	require.NoError(t, err)

	list, metadata, err := f.svc.ListBorrowings(ctx, f.alice, data.BorrowingQuery{}, allBorrowings)
	require.NoError(t, err)
	assert.Equal(t, 2, metadata.TotalRecords)
	for _, b := range list {
		assert.Equal(t, f.alice.ID, b.UserID)
	}

	bobID := f.bob.ID
	list, _, err = f.svc.ListBorrowings(ctx, f.alice, data.BorrowingQuery{UserID: &bobID}, allBorrowings)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, _, err = f.svc.ListBorrowings(ctx, f.staff, data.BorrowingQuery{}, allBorrowings)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, _, err = f.svc.ListBorrowings(ctx, f.staff, data.BorrowingQuery{UserID: &bobID}, allBorrowings)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.bob.ID, list[0].UserID)

	active := true
	list, _, err = f.svc.ListBorrowings(ctx, f.alice, data.BorrowingQuery{IsActive: &active}, allBorrowings)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsActive())

	_, _, err = f.svc.ListBorrowings(ctx, data.AnonymousUser, data.BorrowingQuery{}, allBorrowings)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}
