// Package users stores account records keyed by username.
//
// Implementations guarantee atomic create-if-absent: of two concurrent
// Create calls for the same username exactly one succeeds and the other
// returns common.ErrConflict.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	// Create stores user and returns it with ID and CreatedAt filled in.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound for unknown usernames.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// Delete returns common.ErrorNotFound for unknown usernames.
	Delete(ctx context.Context, login string) error
}
