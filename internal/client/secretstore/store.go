// Package secretstore persists the single session credential of the local
// user. Persistent stores seal the value with a cryptox.Sealer whose key is
// kept apart from the sealed data, so the credential never sits on disk in
// plaintext.
package secretstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
)

// Store holds at most one credential.
//
// Save replaces any existing value. Load returns common.ErrorNotFound when
// nothing is stored and ErrUnreadable when the stored value cannot be
// opened with the current key. Delete is idempotent.
type Store interface {
	Save(ctx context.Context, secret []byte) error
	Load(ctx context.Context) ([]byte, error)
	Delete(ctx context.Context) error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	ErrUnreadable     = errors.New("stored secret cannot be opened")
	ErrUnknownBackend = errors.New("unknown secret store backend")
	ErrKeyInDataDir   = errors.New("key file must not be inside the data directory")
)

// Timestamped is implemented by stores that record when the credential was
// last saved.
type Timestamped interface {
	SavedAt(ctx context.Context) (time.Time, error)
}

var (
	_ Timestamped = (*FileStore)(nil)
	_ Timestamped = (*SQLiteStore)(nil)
)

// Options selects and configures a Store.
type Options struct {
	Backend string
	// DataDir holds the credential file or the local database.
	DataDir string
	Sealer  string
	// KeyFile defaults to DefaultKeyFile. It may not be inside DataDir.
	KeyFile string
}

const (
	credentialFileName = "session.sealed"
	localDBFileName    = "local.db"
	keyFileName        = "secret.key"
	keyDirName         = "authkeeper"
)

// DefaultKeyFile is the sealing key location used when none is configured:
// authkeeper/secret.key under the user's config directory.
func DefaultKeyFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, keyDirName, keyFileName), nil
}

// Open builds the Store described by opts. The returned close function
// releases any database handle and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	backend := strings.ToLower(opts.Backend)
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	case BackendFile, "", BackendSQLite:
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	keyFile, err := resolveKeyFile(opts.KeyFile, opts.DataDir)
	if err != nil {
		return nil, noop, err
	}

	sealer, err := cryptox.NewSealer(opts.Sealer, keyFile)
	if err != nil {
		return nil, noop, fmt.Errorf("sealer: %w", err)
	}

	if backend == BackendSQLite {
		db, err := InitDatabase(ctx, filepath.Join(opts.DataDir, localDBFileName))
		if err != nil {
			return nil, noop, err
		}
		return NewSQLiteStore(db, sealer), db.Close, nil
	}
	return NewFileStore(filepath.Join(opts.DataDir, credentialFileName), sealer), noop, nil
}

// resolveKeyFile applies the default and keeps the key away from the data
// it seals.
func resolveKeyFile(keyFile, dataDir string) (string, error) {
	if keyFile == "" {
		def, err := DefaultKeyFile()
		if err != nil {
			return "", err
		}
		keyFile = def
	}

	absKey, err := filepath.Abs(keyFile)
	if err != nil {
		return "", fmt.Errorf("key file: %w", err)
	}
	absData, err := filepath.Abs(dataDir)
	if err != nil {
		return "", fmt.Errorf("data dir: %w", err)
	}

	if rel, err := filepath.Rel(absData, absKey); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrKeyInDataDir, keyFile)
	}
	return absKey, nil
}

func open(sealer cryptox.Sealer, sealed []byte) ([]byte, error) {
	secret, err := sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return secret, nil
}
