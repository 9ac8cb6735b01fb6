package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/common"
)

type rec struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newStore(t *testing.T, opts ...Option[rec]) (*Store[rec], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "records.json")
	return New(path, &sync.Mutex{}, opts...), path
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s, path := newStore(t)

	m, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "plain load must not create the file")
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	require.NoError(t, s.Put(ctx, "a", rec{Name: "alpha", Count: 1}))
	require.NoError(t, s.Put(ctx, "b", rec{Name: "бета", Count: 2}))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, rec{Name: "бета", Count: 2}, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "бета", "non-ASCII is stored unescaped")

	found, err := s.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_UpsertAndUpdate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	add := func(old, patch rec) rec { return rec{Name: old.Name, Count: old.Count + patch.Count} }

	v, err := s.Upsert(ctx, "k", rec{Name: "k", Count: 1}, add)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Count)

	v, err = s.Upsert(ctx, "k", rec{Count: 5}, add)
	require.NoError(t, err)
	assert.Equal(t, rec{Name: "k", Count: 6}, v)

	_, err = s.Update(ctx, "missing", func(old rec) (rec, error) { return old, nil })
	assert.ErrorIs(t, err, common.ErrorNotFound)

	boom := errors.New("boom")
	_, err = s.Update(ctx, "k", func(old rec) (rec, error) { return rec{}, boom })
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 6, got.Count, "failed update leaves record untouched")
}

func TestStore_CorruptWithoutQuarantine(t *testing.T) {
	s, path := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, common.ErrorCorruptFile)
}

func TestStore_CorruptIsQuarantined(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s, path := newStore(t, WithQuarantine[rec](), WithClock[rec](func() time.Time { return now }))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[1,2"), 0o644))

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	aside := path + ".corrupt-20240506_070809.000000"
	raw, err := os.ReadFile(aside)
	require.NoError(t, err)
	assert.Equal(t, "[1,2", string(raw), "corrupt content is preserved")

	require.NoError(t, s.Put(ctx, "x", rec{Name: "x"}))
	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)
}

func TestStore_EmptyFileIsEmptyMap(t *testing.T) {
	s, path := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	m, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestStore_SeedPersistsWithoutHook(t *testing.T) {
	ctx := context.Background()
	hooks := 0
	s, path := newStore(t,
		WithSeed(func() (map[string]rec, error) {
			return map[string]rec{"root": {Name: "root"}}, nil
		}),
		WithBeforeWrite[rec](func(context.Context) error { hooks++; return nil }),
	)

	m, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, m, "root")
	assert.FileExists(t, path)
	assert.Zero(t, hooks)

	require.NoError(t, s.Put(ctx, "other", rec{}))
	assert.Equal(t, 1, hooks)
}

func TestStore_BeforeWriteErrorAbortsWrite(t *testing.T) {
	ctx := context.Background()
	fail := errors.New("no snapshot")
	s, path := newStore(t, WithBeforeWrite[rec](func(context.Context) error { return fail }))

	err := s.Put(ctx, "a", rec{})
	assert.ErrorIs(t, err, fail)
	assert.NoFileExists(t, path)
}

func TestStore_NormalizePersists(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Put(ctx, "keep", rec{Count: 1}))
	require.NoError(t, s.Put(ctx, "drop", rec{Count: -1}))

	pruning := New(s.Path(), &sync.Mutex{}, WithNormalize(func(_ context.Context, m map[string]rec) bool {
		changed := false
		for k, v := range m {
			if v.Count < 0 {
				delete(m, k)
				changed = true
			}
		}
		return changed
	}))
	m, err := pruning.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, m, "drop")

	m, err = s.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, m, "drop", "pruned map was written back")
}

func TestStore_ConcurrentUpsertsAreSerialized(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	add := func(old, patch rec) rec { return rec{Count: old.Count + patch.Count} }

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upsert(ctx, "n", rec{Count: 1}, add)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Count)
}
