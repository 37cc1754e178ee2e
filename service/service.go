package service

import (
	"context"
	"sync"

	"github.com/emzola/librarian/config"
	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/internal/clock"
	"github.com/emzola/librarian/internal/jsonlog"
	"github.com/emzola/librarian/repository"
)

type Service interface {
	authors
	books
	borrowings
	users
	tokens
}

// Mailer sends templated emails.
type Mailer interface {
	Send(recipient, templateFile string, data interface{}) error
}

// ObjectStore keeps uploaded files and returns the URL they are served from.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// service defines the service layer.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
	clock  clock.Clock
	mailer Mailer
	store  ObjectStore
}

// New creates a new instance of Service. Background work started by the service
// is tracked on wg so the server can wait for it during shutdown.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository, clk clock.Clock, mailer Mailer, store ObjectStore) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
		clock:  clk,
		mailer: mailer,
		store:  store,
	}
}

// today is the current calendar date of the library.
func (s *service) today() data.Date {
	return data.DateOf(s.clock.Now())
}
