package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// Store is an opened user store. DB is nil for the memory backend.
type Store struct {
	Users users.Repository
	DB    *sql.DB
}

// Close releases the underlying database, if any.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

var sqlOpen = sql.Open

// Open connects to backend, runs migrations and returns the user store.
// dsn is a PostgreSQL connection string or a SQLite file path.
func Open(ctx context.Context, backend, dsn string) (*Store, error) {
	var (
		m      RepositoryManager
		driver string
	)

	switch backend {
	case "", BackendMemory:
		return &Store{Users: users.NewMemoryRepository()}, nil
	case BackendPostgres:
		m, driver = NewPostgresRepositoryManager(), "pgx"
	case BackendSQLite:
		m, driver = NewSQLiteRepositoryManager(), "sqlite"
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if backend == BackendSQLite {
		// SQLite allows a single writer; serialize in the pool instead of
		// surfacing SQLITE_BUSY to callers.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return &Store{Users: m.Users(db), DB: db}, nil
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}
