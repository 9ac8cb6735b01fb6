package services

import (
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/repomanager"
)

// Services bundles every service over one repository manager.
type Services struct {
	Tasks      *TaskService
	Users      *UserService
	Catalog    *CatalogService
	Warehouses *WarehouseService
	ChangeLog  *ChangeLogService
	Backups    *BackupService
	Health     *HealthService
	Security   *SecurityService
}

func New(m repomanager.RepositoryManager, security *logging.SecurityLog) *Services {
	return &Services{
		Tasks:      NewTaskService(m.Tasks()),
		Users:      NewUserService(m.Users(), security),
		Catalog:    NewCatalogService(m.Catalog()),
		Warehouses: NewWarehouseService(m.Catalog()),
		ChangeLog:  NewChangeLogService(m.ChangeLog()),
		Backups:    NewBackupService(m.Backups(), security),
		Health:     NewHealthService(m),
		Security:   NewSecurityService(security),
	}
}
