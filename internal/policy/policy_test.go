package policy

import (
	"testing"

	"github.com/emzola/librarian/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	reader = &data.User{ID: 7, Email: "reader@library.test"}
	other  = &data.User{ID: 8, Email: "other@library.test"}
	staff  = &data.User{ID: 1, Email: "staff@library.test", IsStaff: true}
)

func TestRoleOf(t *testing.T) {
	assert.Equal(t, Anonymous, RoleOf(data.AnonymousUser))
	assert.Equal(t, Anonymous, RoleOf(nil))
	assert.Equal(t, Authenticated, RoleOf(reader))
	assert.Equal(t, Staff, RoleOf(staff))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		user     *data.User
		resource Resource
		action   Action
		want     error
	}{
		{"anonymous reads catalog", data.AnonymousUser, Catalog, Read, nil},
		{"anonymous writes catalog", data.AnonymousUser, Catalog, Write, ErrAuthenticationRequired},
		{"reader writes catalog", reader, Catalog, Write, ErrForbidden},
		{"staff writes catalog", staff, Catalog, Write, nil},
		{"anonymous lists borrowings", data.AnonymousUser, Borrowings, Read, ErrAuthenticationRequired},
		{"reader creates borrowing", reader, Borrowings, Create, nil},
		{"reader returns borrowing", reader, Borrowings, Return, nil},
		{"unknown action is staff only", reader, Borrowings, Write, ErrForbidden},
		{"staff unknown action", staff, Borrowings, Write, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Authorize(tt.user, tt.resource, tt.action), tt.want)
			if tt.want == nil {
				assert.NoError(t, Authorize(tt.user, tt.resource, tt.action))
			}
		})
	}
}

func TestScopeBorrowingsNeverLeaksOtherOwners(t *testing.T) {
	records := []*data.Borrowing{
		{ID: 1, UserID: reader.ID},
		{ID: 2, UserID: other.ID},
		{ID: 3, UserID: reader.ID},
	}

	scope, err := ScopeBorrowings(reader)
	require.NoError(t, err)
	q, ok := scope.Narrow(data.BorrowingQuery{})
	require.True(t, ok)

	var seen []int64
	for _, b := range records {
		if q.Matches(b) {
			assert.True(t, scope.Permits(b))
			seen = append(seen, b.ID)
		}
	}
	assert.Equal(t, []int64{1, 3}, seen)
}

func TestNarrowRejectsForeignOwnerFilter(t *testing.T) {
	scope, err := ScopeBorrowings(reader)
	require.NoError(t, err)

	foreign := other.ID
	_, ok := scope.Narrow(data.BorrowingQuery{UserID: &foreign})
	assert.False(t, ok)

	own := reader.ID
	q, ok := scope.Narrow(data.BorrowingQuery{UserID: &own})
	assert.True(t, ok)
	assert.Equal(t, reader.ID, *q.UserID)
}

func TestStaffScopeKeepsRequestedFilter(t *testing.T) {
	scope, err := ScopeBorrowings(staff)
	require.NoError(t, err)
	assert.True(t, scope.All)

	q, ok := scope.Narrow(data.BorrowingQuery{})
	assert.True(t, ok)
	assert.Nil(t, q.UserID)

	foreign := other.ID
	q, ok = scope.Narrow(data.BorrowingQuery{UserID: &foreign})
	assert.True(t, ok)
	assert.Equal(t, other.ID, *q.UserID)
}

func TestScopeBorrowingsAnonymous(t *testing.T) {
	_, err := ScopeBorrowings(data.AnonymousUser)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestCanReturn(t *testing.T) {
	b := &data.Borrowing{ID: 1, UserID: reader.ID}
	assert.NoError(t, CanReturn(reader, b))
	assert.NoError(t, CanReturn(staff, b))
	assert.ErrorIs(t, CanReturn(other, b), ErrForbidden)
	assert.ErrorIs(t, CanReturn(data.AnonymousUser, b), ErrAuthenticationRequired)
}

func TestCanView(t *testing.T) {
	b := &data.Borrowing{ID: 1, UserID: reader.ID}
	assert.NoError(t, CanView(reader, b))
	assert.NoError(t, CanView(staff, b))
	assert.ErrorIs(t, CanView(other, b), ErrForbidden)
}
