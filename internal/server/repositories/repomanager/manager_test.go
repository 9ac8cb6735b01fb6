package repomanager

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/config"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

func newManager(t *testing.T) (*FileRepositoryManager, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.TaskSnapshotEvery = 2

	h, err := auth.NewPasswordHasher(auth.MethodPBKDF2, auth.WithPBKDF2Iterations(1000))
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local) }

	m, err := NewFileRepositoryManager(cfg, h, nil, WithClock(now))
	require.NoError(t, err)
	return m, cfg
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	h := m.Health(ctx)
	assert.Equal(t, "degraded", h.Status)
	assert.False(t, h.Files["tasks"])

	_, err := m.Users().All(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Tasks().Put(ctx, "t1", models.Task{"id": "t1", "start": "2024-06-01"}))
	require.NoError(t, m.Catalog().AddItem(ctx, "Fruit", models.Item{Name: "Apple", Weight: 1}))

	h = m.Health(ctx)
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.Files["users"])
	assert.False(t, h.Files["changelog"])
}

func TestTaskWritesTriggerSnapshots(t *testing.T) {
	ctx := context.Background()
	m, cfg := newManager(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Tasks().Put(ctx, "t", models.Task{"n": i}))
	}
	n, err := m.Backups().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := m.Backups().List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.FileExists(t, filepath.Join(cfg.Path(cfg.BackupDir), list[0].ID, "tasks.json"))
}

func TestUserWritesAlwaysSnapshot(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Users().Create(ctx, "erin", "Str0ngPass", auth.RoleViewer, "admin")
	require.NoError(t, err)
	n, err := m.Backups().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRestoreThroughManager(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.Catalog().AddWarehouse(ctx, "Main"))
	snap, err := m.Backups().Capture(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Catalog().AddWarehouse(ctx, "Second"))
	_, err = m.Backups().Restore(ctx, snap.ID)
	require.NoError(t, err)

	ws, err := m.Catalog().Warehouses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main"}, ws)
}
