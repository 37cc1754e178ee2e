package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/emzola/librarian/internal/policy"
	"github.com/emzola/librarian/internal/validator"
)

var (
	ErrFailedValidation       = errors.New("failed validation")
	ErrRecordNotFound         = errors.New("record not found")
	ErrEditConflict           = errors.New("edit conflict")
	ErrDuplicateRecord        = errors.New("duplicate record")
	ErrNotPermitted           = errors.New("not permitted")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnsupportedMediaType   = errors.New("unsupported media type")
	ErrContentTooLarge        = errors.New("content too large")
	ErrBadRequest             = errors.New("bad request")

	// Kinds of borrowing validation failures.
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyInventory  = errors.New("empty inventory")
	ErrAlreadyReturned = errors.New("already returned")
)

// ValidationError reports field level problems with a request. It matches
// ErrFailedValidation and, when set, its Kind under errors.Is.
type ValidationError struct {
	Kind   error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "failed validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	if e.Kind == nil {
		return []error{ErrFailedValidation}
	}
	return []error{ErrFailedValidation, e.Kind}
}

// failedValidation wraps the errors collected by v.
func failedValidation(v *validator.Validator) error {
	return &ValidationError{Fields: v.Errors}
}

// failedValidationOf wraps the errors collected by v under a specific kind.
func failedValidationOf(kind error, v *validator.Validator) error {
	return &ValidationError{Kind: kind, Fields: v.Errors}
}

// fieldError is a single field validation failure.
func fieldError(key, message string) error {
	return &ValidationError{Fields: map[string]string{key: message}}
}

// policyError translates an access policy decision into a service error.
func policyError(err error) error {
	switch {
	case errors.Is(err, policy.ErrAuthenticationRequired):
		return ErrAuthenticationRequired
	case errors.Is(err, policy.ErrForbidden):
		return ErrNotPermitted
	default:
		return err
	}
}
