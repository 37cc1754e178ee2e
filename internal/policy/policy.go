// Package policy decides which role may perform which operation. Rules are declared
// in a single table; handlers and services ask the policy instead of branching on
// user attributes themselves.
package policy

import (
	"errors"

	"github.com/emzola/librarian/data"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
)

// Role is ordered: a higher role satisfies every rule a lower role does.
type Role int8

const (
	Anonymous Role = iota
	Authenticated
	Staff
)

func (r Role) String() string {
	switch r {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Staff:
		return "staff"
	default:
		return ""
	}
}

type Resource string

const (
	Catalog    Resource = "catalog"
	Borrowings Resource = "borrowings"
	Profile    Resource = "profile"
)

type Action string

const (
	Read   Action = "read"
	Write  Action = "write"
	Create Action = "create"
	Return Action = "return"
)

// rules maps each resource and action to the minimum role allowed to perform it.
// Anything not listed is staff only.
var rules = map[Resource]map[Action]Role{
	Catalog: {
		Read:  Anonymous,
		Write: Staff,
	},
	Borrowings: {
		Read:   Authenticated,
		Create: Authenticated,
		Return: Authenticated,
	},
	Profile: {
		Read:  Authenticated,
		Write: Authenticated,
	},
}

// RoleOf returns the role of a user.
func RoleOf(user *data.User) Role {
	switch {
	case user == nil || user.IsAnonymous():
		return Anonymous
	case user.IsStaff:
		return Staff
	default:
		return Authenticated
	}
}

// Required returns the minimum role for an action on a resource.
func Required(resource Resource, action Action) Role {
	if actions, ok := rules[resource]; ok {
		if role, ok := actions[action]; ok {
			return role
		}
	}
	return Staff
}

// Authorize returns nil when the user may perform the action, ErrAuthenticationRequired
// for an anonymous user who needs to sign in, and ErrForbidden otherwise.
func Authorize(user *data.User, resource Resource, action Action) error {
	role := RoleOf(user)
	if role >= Required(resource, action) {
		return nil
	}
	if role == Anonymous {
		return ErrAuthenticationRequired
	}
	return ErrForbidden
}

// BorrowingScope is the set of borrowings a user may see.
type BorrowingScope struct {
	All     bool
	OwnerID int64
}

// ScopeBorrowings returns the borrowing scope of a user: staff see every record,
// other authenticated users only the records they own.
func ScopeBorrowings(user *data.User) (BorrowingScope, error) {
	if err := Authorize(user, Borrowings, Read); err != nil {
		return BorrowingScope{}, err
	}
	if RoleOf(user) == Staff {
		return BorrowingScope{All: true}, nil
	}
	return BorrowingScope{OwnerID: user.ID}, nil
}

// Permits reports whether a single borrowing is inside the scope.
func (s BorrowingScope) Permits(b *data.Borrowing) bool {
	return s.All || b.UserID == s.OwnerID
}

// Narrow combines a client supplied list query with the scope. The returned query
// never selects records outside the scope. ok is false when the requested owner lies
// outside the scope, in which case the result set is empty.
func (s BorrowingScope) Narrow(q data.BorrowingQuery) (narrowed data.BorrowingQuery, ok bool) {
	if s.All {
		return q, true
	}
	if q.UserID != nil && *q.UserID != s.OwnerID {
		return q, false
	}
	owner := s.OwnerID
	q.UserID = &owner
	return q, true
}

// CanReturn decides whether a user may close a borrowing: staff always, other users
// only for borrowings they own.
func CanReturn(user *data.User, b *data.Borrowing) error {
	if err := Authorize(user, Borrowings, Return); err != nil {
		return err
	}
	if RoleOf(user) == Staff || b.UserID == user.ID {
		return nil
	}
	return ErrForbidden
}

// CanView decides whether a user may retrieve a single borrowing.
func CanView(user *data.User, b *data.Borrowing) error {
	scope, err := ScopeBorrowings(user)
	if err != nil {
		return err
	}
	if !scope.Permits(b) {
		return ErrForbidden
	}
	return nil
}
