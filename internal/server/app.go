// Package server initializes and runs the adminboard application: it wires
// configuration, the database, the external directory integrations, and the
// HTTP API, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkravets/adminboard/internal/logging"
	"github.com/dkravets/adminboard/internal/server/api"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/directory"
	"github.com/dkravets/adminboard/internal/server/mailer"
	"github.com/dkravets/adminboard/internal/server/repositories/repomanager"
	"github.com/dkravets/adminboard/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *api.API
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ml := mailer.NewClient(cfg.MailEndpoint, cfg.MailAPIKey, cfg.SenderAddress)
	identity := directory.NewHTTPIdentityClient(cfg.IdentityEndpoint, cfg.IdentityAPIKey)

	docs, err := directory.NewS3DocumentStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("document store init error: %w", err)
	}

	authService := services.NewAuthService(db, rm, ml, cfg)
	adminService := services.NewAdminService(db, rm, authService, ml, logger, cfg)
	userService := services.NewUserService(identity, docs, ml, logger)

	a := api.New(authService, adminService, userService, logger, cfg)

	return &App{config: cfg, logger: logger, db: db, api: a}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	srv := api.NewServer(app.config.EndpointAddrHTTP, app.api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
