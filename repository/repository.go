package repository

import (
	"database/sql"
	"time"
)

// queryTimeout bounds every single statement issued by the repository.
const queryTimeout = 3 * time.Second

type Repository interface {
	authors
	books
	borrowings
	users
	tokens
	transactor
}

// Repository defines the app's repository layer.
type repository struct {
	db    *sql.DB
	retry RetryPolicy
}

// New creates a new instance of Repository.
func New(db *sql.DB) *repository {
	return &repository{db: db, retry: DefaultRetryPolicy}
}
