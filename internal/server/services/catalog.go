package services

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/catalog"
)

type CatalogService struct {
	repo catalog.Repository
}

func NewCatalogService(repo catalog.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) List(ctx context.Context) (models.Catalog, error) {
	if _, err := auth.Authorize(ctx, auth.OpCatalogRead); err != nil {
		return models.Catalog{}, err
	}
	return s.repo.Catalog(ctx)
}

func (s *CatalogService) AddItem(ctx context.Context, category string, item models.Item) error {
	if _, err := auth.Authorize(ctx, auth.OpCatalogManage); err != nil {
		return err
	}
	return s.repo.AddItem(ctx, category, item)
}

func (s *CatalogService) RenameOrMove(ctx context.Context, category, name, newCategory string, item models.Item) error {
	if _, err := auth.Authorize(ctx, auth.OpCatalogManage); err != nil {
		return err
	}
	return s.repo.RenameOrMove(ctx, category, name, newCategory, item)
}

func (s *CatalogService) DeleteItem(ctx context.Context, category, name string) error {
	if _, err := auth.Authorize(ctx, auth.OpCatalogManage); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, category, name)
}

func (s *CatalogService) Replace(ctx context.Context, c models.Catalog) error {
	if _, err := auth.Authorize(ctx, auth.OpCatalogManage); err != nil {
		return err
	}
	return s.repo.Replace(ctx, c)
}

func (s *CatalogService) Import(ctx context.Context, raw []byte) error {
	if _, err := auth.Authorize(ctx, auth.OpCatalogManage); err != nil {
		return err
	}
	return s.repo.Import(ctx, raw)
}

func (s *CatalogService) ExportRaw(ctx context.Context) ([]byte, error) {
	if _, err := auth.Authorize(ctx, auth.OpCatalogRead); err != nil {
		return nil, err
	}
	return s.repo.ExportRaw(ctx)
}

type WarehouseService struct {
	repo catalog.Repository
}

func NewWarehouseService(repo catalog.Repository) *WarehouseService {
	return &WarehouseService{repo: repo}
}

func (s *WarehouseService) List(ctx context.Context) ([]string, error) {
	if _, err := auth.Authorize(ctx, auth.OpWarehousesRead); err != nil {
		return nil, err
	}
	return s.repo.Warehouses(ctx)
}

func (s *WarehouseService) Add(ctx context.Context, name string) error {
	if _, err := auth.Authorize(ctx, auth.OpWarehousesManage); err != nil {
		return err
	}
	return s.repo.AddWarehouse(ctx, name)
}

func (s *WarehouseService) Rename(ctx context.Context, oldName, newName string) error {
	if _, err := auth.Authorize(ctx, auth.OpWarehousesManage); err != nil {
		return err
	}
	return s.repo.RenameWarehouse(ctx, oldName, newName)
}

func (s *WarehouseService) Delete(ctx context.Context, name string) error {
	if _, err := auth.Authorize(ctx, auth.OpWarehousesManage); err != nil {
		return err
	}
	return s.repo.DeleteWarehouse(ctx, name)
}
