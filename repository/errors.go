package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrDuplicateRecord    = errors.New("duplicate record")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrInventoryExhausted = errors.New("inventory exhausted")
)

// PostgreSQL error codes the repository reacts to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// inventoryConstraint is the CHECK constraint keeping books.inventory >= 0.
const inventoryConstraint = "books_inventory_check"

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// translate maps constraint violations to repository errors.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case codeUniqueViolation:
		return ErrDuplicateRecord
	case codeForeignKeyViolation:
		return ErrInvalidReference
	case codeCheckViolation:
		if pqErr.Constraint == inventoryConstraint {
			return ErrInventoryExhausted
		}
		return err
	default:
		return err
	}
}
