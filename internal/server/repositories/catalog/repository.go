// Package catalog stores the goods catalog and the warehouse list in one
// xlsx workbook. Both are column projections of the same rows; every write
// carries the columns it does not own across unchanged.
package catalog

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type Repository interface {
	Catalog(ctx context.Context) (models.Catalog, error)
	AddItem(ctx context.Context, category string, item models.Item) error
	RenameOrMove(ctx context.Context, category, name, newCategory string, item models.Item) error
	DeleteItem(ctx context.Context, category, name string) error
	Replace(ctx context.Context, c models.Catalog) error
	Import(ctx context.Context, raw []byte) error
	ExportRaw(ctx context.Context) ([]byte, error)

	Warehouses(ctx context.Context) ([]string, error)
	AddWarehouse(ctx context.Context, name string) error
	RenameWarehouse(ctx context.Context, oldName, newName string) error
	DeleteWarehouse(ctx context.Context, name string) error
}
