// Package tasks stores schedule bars in tasks.json and expires old ones.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) (map[string]models.Task, error)
	Put(ctx context.Context, id string, task models.Task) error
	Update(ctx context.Context, id string, patch models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Snapshotter captures a backup of every backing file.
type Snapshotter interface {
	Capture(ctx context.Context) (models.Snapshot, error)
}
