// Package repomanager wires the flat-file repositories to their paths,
// their gate locks and the snapshot manager.
package repomanager

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/config"
	"github.com/dmitrijs2005/planboard/internal/server/gate"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/backups"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/changelog"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/users"
)

type RepositoryManager interface {
	Tasks() tasks.Repository
	Users() users.Repository
	Catalog() catalog.Repository
	ChangeLog() changelog.Repository
	Backups() *backups.Manager
	Health(ctx context.Context) models.HealthStatus
}

// FileRepositoryManager hands out the repositories of one data directory.
// All of them share one gate.
type FileRepositoryManager struct {
	gate      *gate.Gate
	tasks     *tasks.FileRepository
	users     *users.FileRepository
	catalog   *catalog.FileRepository
	changelog *changelog.FileRepository
	backups   *backups.Manager
	now       func() time.Time
}

type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now in every repository.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func NewFileRepositoryManager(cfg *config.Config, hasher auth.Hasher, logger logging.Logger, opts ...Option) (*FileRepositoryManager, error) {
	s := settings{now: time.Now}
	for _, o := range opts {
		o(&s)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if err := filex.EnsureDir(cfg.DataDir); err != nil {
		return nil, err
	}

	g := gate.New()
	tasksPath := cfg.Path(cfg.TasksFile)
	usersPath := cfg.Path(cfg.UsersFile)
	catalogPath := cfg.Path(cfg.CatalogFile)
	changelogPath := cfg.Path(cfg.ChangeLogFile)

	snap := backups.NewManager(cfg.Path(cfg.BackupDir), g, []backups.Source{
		{Name: filepath.Base(tasksPath), Path: tasksPath, Lock: gate.Tasks},
		{Name: filepath.Base(usersPath), Path: usersPath, Lock: gate.Users},
		{Name: filepath.Base(catalogPath), Path: catalogPath, Lock: gate.Catalog},
		{Name: filepath.Base(changelogPath), Path: changelogPath, Lock: gate.ChangeLog},
	},
		backups.WithKeep(cfg.BackupKeep),
		backups.WithClock(s.now),
		backups.WithLogger(logger.With("component", "backups")),
	)

	return &FileRepositoryManager{
		gate: g,
		tasks: tasks.NewFileRepository(tasksPath, g.For(gate.Tasks),
			tasks.WithRetention(cfg.TaskRetention),
			tasks.WithClock(s.now),
			tasks.WithLogger(logger.With("component", "tasks")),
			tasks.WithSnapshots(snap, cfg.TaskSnapshotEvery),
		),
		users: users.NewFileRepository(usersPath, g.For(gate.Users), hasher,
			users.WithClock(s.now),
			users.WithLogger(logger.With("component", "users")),
			users.WithSnapshots(snap),
		),
		catalog: catalog.NewFileRepository(catalogPath, g.For(gate.Catalog), logger.With("component", "catalog")),
		changelog: changelog.NewFileRepository(changelogPath, g.For(gate.ChangeLog),
			changelog.WithCap(cfg.ChangeLogCap),
			changelog.WithClock(s.now),
			changelog.WithLogger(logger.With("component", "changelog")),
		),
		backups: snap,
		now:     s.now,
	}, nil
}

func (m *FileRepositoryManager) Tasks() tasks.Repository         { return m.tasks }
func (m *FileRepositoryManager) Users() users.Repository         { return m.users }
func (m *FileRepositoryManager) Catalog() catalog.Repository     { return m.catalog }
func (m *FileRepositoryManager) ChangeLog() changelog.Repository { return m.changelog }
func (m *FileRepositoryManager) Backups() *backups.Manager       { return m.backups }

// CatalogFile exposes the concrete catalog repository for seeding.
func (m *FileRepositoryManager) CatalogFile() *catalog.FileRepository { return m.catalog }

// Health reports which backing files exist. The status is "healthy" when
// the task, user and catalog files are all present.
func (m *FileRepositoryManager) Health(ctx context.Context) models.HealthStatus {
	files := map[string]string{
		"tasks":     m.tasks.Path(),
		"users":     m.users.Path(),
		"catalog":   m.catalog.Path(),
		"changelog": m.changelog.Path(),
		"backups":   m.backups.Dir(),
	}
	h := models.HealthStatus{Status: "healthy", Timestamp: m.now(), Files: make(map[string]bool, len(files))}
	for name, p := range files {
		ok, err := filex.Exists(p)
		h.Files[name] = ok && err == nil
	}
	for _, required := range []string{"tasks", "users", "catalog"} {
		if !h.Files[required] {
			h.Status = "degraded"
		}
	}
	return h
}
