package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quokkaworks/ident/internal/ident/extauth"
	httpapi "github.com/quokkaworks/ident/internal/ident/http"
	"github.com/quokkaworks/ident/internal/ident/mail"
	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/internal/ident/store"
	"github.com/quokkaworks/ident/internal/ident/store/drivers/sqlite"
	"github.com/quokkaworks/ident/pkg/cryptox"
	"github.com/quokkaworks/ident/pkg/jwtx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	accountService      *service.AccountService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ident",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() error {
	signer, err := jwtx.NewSignerHS256(app.cfg.SigningSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewVerifierHS256(app.cfg.SigningSecret, app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.tokenService = &service.TokenService{
		Signer:    signer,
		Verifier:  verifier,
		Issuer:    app.cfg.Issuer,
		AccessTTL: app.cfg.TokenTTL,
	}

	app.accountService = &service.AccountService{
		Store:               app.db,
		Tokens:              app.tokenService,
		Mailer:              mail.NewLogMailer(app.logger, app.cfg.BaseURL),
		BootstrapAdminEmail: app.cfg.BootstrapAdminEmail,
		VerificationTTL:     app.cfg.VerificationTTL,
		MailTimeout:         app.cfg.MailTimeout,
	}
	if len(app.cfg.Providers) > 0 {
		app.accountService.Exchange = extauth.NewStub(app.cfg.Providers...)
	}

	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokenService.Verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Accounts = app.accountService
	router.Users = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
