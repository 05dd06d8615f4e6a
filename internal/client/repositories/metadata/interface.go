// Package metadata stores small key/value blobs in the client's local
// SQLite database. The secret store keeps the sealed session credential
// here when the sqlite backend is selected.
package metadata

import (
	"context"
)

// Repository is a key/value table. Get returns common.ErrorNotFound for an
// absent key; Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
