// Package users stores credentials and roles in users.json.
package users

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type Repository interface {
	All(ctx context.Context) (map[string]models.User, error)
	Get(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, username, password string, role auth.Role, createdBy string) (models.User, error)
	Delete(ctx context.Context, username string) error
	Verify(ctx context.Context, username, password string) (user models.User, upgraded bool, err error)
	ChangePassword(ctx context.Context, username, current, next string) error
	Stats(ctx context.Context) (models.UserStats, error)
}

// Snapshotter captures a backup of every backing file.
type Snapshotter interface {
	Capture(ctx context.Context) (models.Snapshot, error)
}
