// Package server wires configuration, storage, the account service and the
// HTTP API together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/clock"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *repomanager.Store
	accounts *services.AccountService
	server   *httpapi.HTTPServer
}

// NewApp validates c, opens the configured user store and builds the HTTP
// server. Log output goes to out (stdout when nil).
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	if out == nil {
		out = os.Stdout
	}
	logger := logging.New(c.LogFormat, out)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if c.IsDevSecret() {
		logger.Warn(ctx, "using the built-in development secret key; set AUTHKEEPER_SECRET_KEY before deploying")
	}

	hasher, err := password.New(c.PasswordHashAlgorithm, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer([]byte(c.SecretKey), clock.Real())
	if err != nil {
		return nil, err
	}

	store, err := repomanager.Open(ctx, c.StorageBackend, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	accounts := services.NewAccountService(store.Users, hasher, issuer, c.AccessTokenValidityDuration, logger.With("component", "accounts"))
	router := httpapi.NewRouter(accounts, logger.With("component", "http"))

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		accounts: accounts,
		server:   httpapi.NewHTTPServer(c.EndpointAddr, router, logger, c.ShutdownTimeout),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts the server down and closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...",
		"environment", app.config.Environment,
		"storage", app.config.StorageBackend,
		"password_hash", app.config.PasswordHashAlgorithm)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
	}

	if cerr := app.store.Close(); cerr != nil {
		app.logger.Error(context.Background(), "db close failed", "error", cerr)
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}
