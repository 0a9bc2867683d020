// Package server initializes and runs the patrimonio server.
// It opens the database, applies migrations, wires the services and runs the
// HTTP API and the gRPC endpoint until the process receives a stop signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/config"
	"github.com/dmitrijs2005/patrimonio/internal/server/httpapi"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/patrimonio/internal/server/services"

	gs "github.com/dmitrijs2005/patrimonio/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	for _, w := range c.Warnings() {
		logger.Warn(ctx, "insecure configuration", "detail", w)
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens, err := auth.NewTokenService([]byte(c.SecretKey), c.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token service error: %w", err)
	}

	directory := rm.Users(db)

	us := services.NewUserService(db, rm, tokens)
	cs := services.NewCategoryService(db, rm)
	es := services.NewEntryService(db, rm)
	ss := services.NewSummaryService(db, rm)

	deps := httpapi.Deps{
		Gate:           auth.NewGate(tokens, directory, auth.DefaultHTTPPublicPrefixes, logger),
		Users:          us,
		Categories:     cs,
		Entries:        es,
		Summary:        ss,
		DB:             db,
		Logger:         logger,
		AllowedOrigins: c.CORSAllowedOrigins,
	}
	if c.ExportsEnabled() {
		deps.Exports = services.NewExportService(es, c)
	} else {
		logger.Warn(ctx, "object storage not configured, exports disabled")
	}

	grpcGate := auth.NewGate(tokens, directory, auth.DefaultGRPCPublicPrefixes, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpapi.NewHTTPServer(c.EndpointAddrHTTP, httpapi.NewRouter(deps), logger),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, grpcGate),
	}, nil
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
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a stop signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

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

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
