package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/secretstore"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/clock"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/filex"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	serverservices "github.com/dmitrijs2005/authkeeper/internal/server/services"
)

// signingKeyFileName holds the token signing key of the embedded backend.
const signingKeyFileName = "embedded-signing.key"

type App struct {
	config   *config.Config
	auth     *services.AuthService
	secrets  secretstore.Store
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	userName string
	closers  []func() error
}

// NewApp prepares the data directory, opens the secret store and connects
// the account backend selected by c. It reads commands from stdin and logs
// to stderr.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdin, os.Stdout, logging.New(logging.FormatConsole, os.Stderr))
}

func newApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, logger logging.Logger) (*App, error) {
	a := &App{config: c, logger: logger, reader: bufio.NewReader(in), out: out}

	dataDir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	secrets, closeSecrets, err := secretstore.Open(ctx, secretstore.Options{
		Backend: c.SecretBackend,
		DataDir: dataDir,
		Sealer:  c.Sealer,
		KeyFile: c.KeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("secret store: %w", err)
	}
	a.closers = append(a.closers, closeSecrets)

	backend, err := a.openBackend(ctx, dataDir)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.secrets = secrets
	a.auth = services.NewAuthService(backend, secrets, clock.Real(), logger)
	return a, nil
}

func (a *App) openBackend(ctx context.Context, dataDir string) (services.AccountBackend, error) {
	if !a.config.Embedded() {
		return client.NewHTTPClient(a.config.ServerEndpointAddr, a.config.RequestTimeout), nil
	}

	key, err := cryptox.LoadOrCreateAESKey(filepath.Join(dataDir, signingKeyFileName))
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	issuer, err := auth.NewIssuer(key, clock.Real())
	if err != nil {
		return nil, err
	}
	hasher, err := password.New(password.AlgorithmBcrypt, 0)
	if err != nil {
		return nil, err
	}

	store, err := repomanager.Open(ctx, repomanager.BackendSQLite, a.config.EmbeddedUsersDB)
	if err != nil {
		return nil, fmt.Errorf("users db: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	a.logger.Info(ctx, "running with embedded accounts", "db", a.config.EmbeddedUsersDB)
	return serverservices.NewAccountService(store.Users, hasher, issuer, serverservices.DefaultTokenTTL, a.logger), nil
}

// Run resumes a stored session, if any, and serves commands until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	printlnFn("Welcome to authkeeper (type 'help' for commands)")

	if p, err := a.auth.CurrentUser(ctx); err != nil {
		a.logger.Warn(ctx, "could not resume session", "error", err)
	} else if p != nil {
		a.userName = p.UserName
		printlnFn("Logged in as", p.UserName)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

// Close releases the secret store and the embedded user store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State() == services.StateLoggedIn
}

func (a *App) getStatus() string {
	if a.isLoggedIn() && a.userName != "" {
		return "(" + a.userName + ")"
	}
	return ""
}
