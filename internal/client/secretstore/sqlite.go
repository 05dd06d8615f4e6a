package secretstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/cryptox"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

const savedAtKey = common.SessionCredentialKey + "_saved_at"

// SQLiteStore keeps the sealed credential in the local metadata table.
type SQLiteStore struct {
	db     *sql.DB
	sealer cryptox.Sealer
	now    func() time.Time
}

func NewSQLiteStore(db *sql.DB, sealer cryptox.Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer, now: time.Now}
}

func (s *SQLiteStore) Save(ctx context.Context, secret []byte) error {
	sealed, err := s.sealer.Seal(secret)
	if err != nil {
		return fmt.Errorf("seal: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionCredentialKey, sealed); err != nil {
			return err
		}
		return repo.Set(ctx, savedAtKey, []byte(strconv.FormatInt(s.now().Unix(), 10)))
	})
}

func (s *SQLiteStore) Load(ctx context.Context) ([]byte, error) {
	sealed, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.SessionCredentialKey)
	if err != nil {
		return nil, err
	}
	return open(s.sealer, sealed)
}

func (s *SQLiteStore) Delete(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.SessionCredentialKey); err != nil {
			return err
		}
		return repo.Delete(ctx, savedAtKey)
	})
}

// SavedAt reports when the credential was last saved.
func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, savedAtKey)
	if err != nil {
		return time.Time{}, err
	}
	sec, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return time.Time{}, errors.Join(common.ErrorInternal, err)
	}
	return time.Unix(sec, 0), nil
}
