package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// FileRepository owns goods.xlsx. The mutex is shared by the catalog and
// warehouse views.
type FileRepository struct {
	path   string
	mu     sync.Locker
	logger logging.Logger
}

func NewFileRepository(path string, mu sync.Locker, logger logging.Logger) *FileRepository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileRepository{path: path, mu: mu, logger: logger}
}

func (r *FileRepository) Path() string {
	return r.path
}

// load reads the workbook. A missing file is an empty table; an unreadable
// one is common.ErrorCorruptFile.
func (r *FileRepository) load() (*Table, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	t, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", r.path, common.ErrorCorruptFile, err)
	}
	return t, nil
}

// read is load for the read-only views: failures are logged and the view
// comes back empty.
func (r *FileRepository) read(ctx context.Context) *Table {
	t, err := r.load()
	if err != nil {
		r.logger.Warn(ctx, "catalog workbook unreadable, serving empty view", "path", r.path, "error", err)
		return &Table{}
	}
	return t
}

func (r *FileRepository) store(t *Table) error {
	data, err := encode(t)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

// mutateCatalog runs fn on the current catalog and writes the result back
// with the non-catalog columns preserved. Nothing is written when fn fails.
func (r *FileRepository) mutateCatalog(fn func(c *models.Catalog) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.load()
	if err != nil {
		return err
	}
	c := catalogOf(t)
	if err := fn(&c); err != nil {
		return err
	}
	return r.store(withCatalog(t, c))
}

func (r *FileRepository) mutateWarehouses(fn func(ws []string) ([]string, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.load()
	if err != nil {
		return err
	}
	ws, err := fn(warehousesOf(t))
	if err != nil {
		return err
	}
	return r.store(withWarehouses(t, ws))
}

func (r *FileRepository) Catalog(ctx context.Context) (models.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return catalogOf(r.read(ctx)), nil
}

// AddItem inserts item into category. A case-insensitive name clash inside
// the category is common.ErrorConflict.
func (r *FileRepository) AddItem(ctx context.Context, category string, item models.Item) error {
	category, item, err := NormalizeItem(category, item)
	if err != nil {
		return err
	}
	return r.mutateCatalog(func(c *models.Catalog) error {
		if !c.Add(category, item) {
			return common.ErrorConflict
		}
		return nil
	})
}

// RenameOrMove replaces the item called name in category with item, moving
// it to newCategory when that differs.
func (r *FileRepository) RenameOrMove(ctx context.Context, category, name, newCategory string, item models.Item) error {
	newCategory, item, err := NormalizeItem(newCategory, item)
	if err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	return r.mutateCatalog(func(c *models.Catalog) error {
		if _, ok := c.Find(category, name); !ok {
			return common.ErrorNotFound
		}
		if category == newCategory {
			if !models.SameName(name, item.Name) {
				if _, clash := c.Find(category, item.Name); clash {
					return common.ErrorConflict
				}
			}
			c.Set(category, name, item)
			return nil
		}
		if _, clash := c.Find(newCategory, item.Name); clash {
			return common.ErrorConflict
		}
		c.Remove(category, name)
		c.Add(newCategory, item)
		return nil
	})
}

// DeleteItem removes an item; the category goes away with its last item.
func (r *FileRepository) DeleteItem(ctx context.Context, category, name string) error {
	return r.mutateCatalog(func(c *models.Catalog) error {
		if !c.Remove(strings.TrimSpace(category), name) {
			return common.ErrorNotFound
		}
		return nil
	})
}

// Replace swaps the whole catalog, keeping the non-catalog columns.
func (r *FileRepository) Replace(ctx context.Context, next models.Catalog) error {
	next, err := NormalizeCatalog(next)
	if err != nil {
		return err
	}
	return r.mutateCatalog(func(c *models.Catalog) error {
		*c = next
		return nil
	})
}

// Import replaces the workbook with raw after checking that it carries
// every catalog column and no category repeats an item name.
func (r *FileRepository) Import(ctx context.Context, raw []byte) error {
	t, err := decode(raw)
	if err != nil {
		return common.NewValidationError("file", "invalid_file", "not a readable xlsx workbook")
	}
	if missing := t.Has(CatalogColumns...); len(missing) > 0 {
		return common.NewValidationError("file", "missing_columns",
			"missing columns: "+strings.Join(missing, ", "))
	}
	c := catalogOf(t)
	if category, name, dup := c.Duplicate(); dup {
		return common.NewValidationError("name", "duplicate",
			"duplicate item "+name+" in category "+category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := filex.WriteFileAtomic(r.path, raw, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	r.logger.Info(ctx, "catalog workbook imported", "path", r.path, "rows", t.Rows())
	return nil
}

// ExportRaw returns the workbook bytes, common.ErrorNotFound if there is no
// workbook yet.
func (r *FileRepository) ExportRaw(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return data, nil
}

// Seed writes c as the initial catalog. It refuses with
// common.ErrorConflict when the workbook already exists.
func (r *FileRepository) Seed(ctx context.Context, c models.Catalog, warehouses []string) error {
	c, err := NormalizeCatalog(c)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := filex.Exists(r.path)
	if err != nil {
		return err
	}
	if exists {
		return common.ErrorConflict
	}
	return r.store(withWarehouses(withCatalog(&Table{}, c), warehouses))
}

func (r *FileRepository) Warehouses(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return warehousesOf(r.read(ctx)), nil
}

func (r *FileRepository) AddWarehouse(ctx context.Context, name string) error {
	name, err := normalizeWarehouse(name)
	if err != nil {
		return err
	}
	return r.mutateWarehouses(func(ws []string) ([]string, error) {
		if slices.Contains(ws, name) {
			return nil, common.ErrorConflict
		}
		return append(ws, name), nil
	})
}

func (r *FileRepository) RenameWarehouse(ctx context.Context, oldName, newName string) error {
	newName, err := normalizeWarehouse(newName)
	if err != nil {
		return err
	}
	oldName = strings.TrimSpace(oldName)
	return r.mutateWarehouses(func(ws []string) ([]string, error) {
		i := slices.Index(ws, oldName)
		if i < 0 {
			return nil, common.ErrorNotFound
		}
		if newName != oldName && slices.Contains(ws, newName) {
			return nil, common.ErrorConflict
		}
		ws[i] = newName
		return ws, nil
	})
}

func (r *FileRepository) DeleteWarehouse(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	return r.mutateWarehouses(func(ws []string) ([]string, error) {
		i := slices.Index(ws, name)
		if i < 0 {
			return nil, common.ErrorNotFound
		}
		return slices.Delete(ws, i, i+1), nil
	})
}
