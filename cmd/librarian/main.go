package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/emzola/librarian/clients"
	"github.com/emzola/librarian/config"
	"github.com/emzola/librarian/handler"
	"github.com/emzola/librarian/internal/clock"
	"github.com/emzola/librarian/internal/jsonlog"
	"github.com/emzola/librarian/internal/mailer"
	"github.com/emzola/librarian/repository"
	"github.com/emzola/librarian/repository/memory"
	"github.com/emzola/librarian/repository/postgres"
	"github.com/emzola/librarian/service"
	"github.com/jellydator/ttlcache/v3"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

// @title Librarian API
// @version 1.0.0
// @description Library record service: authors, books and the borrowing lifecycle.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Initialize configuration
	cfg, err := config.Decode()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	level, err := jsonlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	logger = jsonlog.New(os.Stdout, level)

	ctx := context.Background()

	// Initialize storage
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer closeRepo()

	// Cover images go to S3; uploads fail cleanly when no bucket is configured.
	store, err := clients.NewS3Store(ctx, cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	var mail service.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
	}

	// Other shared resources: waitgroup and in-memory cache
	var wg sync.WaitGroup
	cache := ttlcache.New(ttlcache.WithTTL[string, int64](30 * time.Minute))
	go cache.Start()
	defer cache.Stop()

	// Application layers
	svc := service.New(cfg, &wg, logger, repo, clock.System{Location: cfg.Location()}, mail, store)
	err = svc.EnsureStaffUser(ctx)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	h := handler.New(cfg, logger, cache, svc)

	app := &app{
		config:  cfg,
		repo:    repo,
		service: svc,
		handler: h,
	}

	// Start HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// openRepository connects the configured storage driver. The returned function
// releases it.
func openRepository(ctx context.Context, cfg config.Config, logger *jsonlog.Logger) (repository.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.PrintInfo("using in-memory storage", nil)
		return memory.New(), func() {}, nil
	default:
		db, err := postgres.OpenDBConn(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.PrintInfo("database connection pool established", nil)
		return repository.New(db), func() { db.Close() }, nil
	}
}
