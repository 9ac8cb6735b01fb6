package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type fakeSnapshotter struct {
	calls int
	err   error
}

func (f *fakeSnapshotter) Capture(context.Context) (models.Snapshot, error) {
	f.calls++
	return models.Snapshot{}, f.err
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.Local) }
}

func newRepo(t *testing.T, opts ...Option) *FileRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "tasks.json")
	return NewFileRepository(path, &sync.Mutex{}, opts...)
}

func TestList_PrunesExpiredTasks(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, WithClock(fixedClock(2024, 1, 1)))

	require.NoError(t, r.Put(ctx, "old", models.Task{"id": "old", "start": "2023-01-01T08:00:00"}))
	require.NoError(t, r.Put(ctx, "edge", models.Task{"id": "edge", "start": "2023-10-03"}))
	require.NoError(t, r.Put(ctx, "recent", models.Task{"id": "recent", "start": "2023-12-20T00:00"}))
	require.NoError(t, r.Put(ctx, "nostart", models.Task{"id": "nostart"}))
	require.NoError(t, r.Put(ctx, "junk", models.Task{"id": "junk", "start": "soon"}))

	got, err := r.List(ctx)
	require.NoError(t, err)

	assert.NotContains(t, got, "old")
	assert.Contains(t, got, "edge", "the cutoff day itself is retained")
	assert.Contains(t, got, "recent")
	assert.Contains(t, got, "nostart")
	assert.Contains(t, got, "junk")

	raw, err := os.ReadFile(r.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"old"`, "pruned map is persisted")
}

func TestCutoff(t *testing.T) {
	r := newRepo(t, WithClock(fixedClock(2024, 1, 1)), WithRetention(90*24*time.Hour))
	assert.Equal(t, "2023-10-03", r.Cutoff().Format(time.DateOnly))
}

func TestUpdate_ShallowMergeAndNotFound(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.Put(ctx, "t1", models.Task{"id": "t1", "label": "Load", "color": "red"}))

	got, err := r.Update(ctx, "t1", models.Task{"label": "Unload"})
	require.NoError(t, err)
	assert.Equal(t, models.Task{"id": "t1", "label": "Unload", "color": "red"}, got)

	_, err = r.Update(ctx, "nope", models.Task{"label": "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, "nope")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.Put(ctx, "t1", models.Task{"id": "t1"}))

	found, err := r.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = r.Delete(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotEveryNthWrite(t *testing.T) {
	ctx := context.Background()
	snap := &fakeSnapshotter{}
	r := newRepo(t, WithSnapshots(snap, 10))

	for i := 0; i < 25; i++ {
		require.NoError(t, r.Put(ctx, "t", models.Task{"n": i}))
	}
	assert.Equal(t, 2, snap.calls)

	n, err := r.Writes()
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestSnapshotCounterSurvivesDeletes(t *testing.T) {
	ctx := context.Background()
	snap := &fakeSnapshotter{}
	r := newRepo(t, WithSnapshots(snap, 10))

	// The record count oscillates between 0 and 1, so a size-based trigger
	// would never fire.
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Put(ctx, "t", models.Task{}))
		_, err := r.Delete(ctx, "t")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, snap.calls)
}

func TestSnapshotFailureDoesNotBlockWrite(t *testing.T) {
	ctx := context.Background()
	snap := &fakeSnapshotter{err: os.ErrPermission}
	r := newRepo(t, WithSnapshots(snap, 1))

	require.NoError(t, r.Put(ctx, "t", models.Task{"id": "t"}))
	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, got, "t")
	assert.Equal(t, 1, snap.calls)
}

func TestCorruptFileIsQuarantined(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(r.Path()), 0o755))
	require.NoError(t, os.WriteFile(r.Path(), []byte("{{"), 0o644))

	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	matches, err := filepath.Glob(r.Path() + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
