// Package server wires the MemoBoost API: it opens the configured storage
// backend, builds the services, and runs the HTTP API next to the gRPC
// health endpoint until the process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/config"
	"github.com/agahlya1812/memoboost/internal/server/httpapi"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
	"github.com/agahlya1812/memoboost/internal/server/services"

	gs "github.com/agahlya1812/memoboost/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	storage repomanager.RepositoryManager
	handler *httpapi.Handler
}

// openStorage is replaced in tests.
var openStorage = repomanager.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	m, err := openStorage(ctx, c.Storage, c.DatabaseDSN, c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if c.MigrateFrom != "" {
		imported, err := repomanager.ImportLegacyStore(ctx, m, c.MigrateFrom)
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("legacy import error: %w", err)
		}
		if imported {
			logger.Info(ctx, "Imported legacy store", "path", c.MigrateFrom)
		}
	}

	cards := services.NewCardService(m, logger)
	h := httpapi.NewHandler(httpapi.Services{
		Users:      services.NewUserService(m, c, logger),
		Categories: services.NewCategoryService(m, logger),
		Cards:      cards,
		State:      services.NewStateService(m),
		Transfer:   services.NewTransferService(m, logger),
		Images:     services.NewImageService(cards, c, logger),
		Storage:    m,
	}, c.AllowedOrigins, logger)

	return &App{config: c, logger: logger, storage: m, handler: h}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.HealthAddrGRPC == "" {
		return
	}

	s := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger, app.storage, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or one of the
// servers fails, then closes the storage.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.storage.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
