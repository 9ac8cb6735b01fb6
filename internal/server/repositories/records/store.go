// Package records implements a keyed record store over one JSON file.
//
// The whole file is the unit of persistence: every operation loads the
// map, applies its change and writes the map back through an atomic
// rename, all while holding the store's gate mutex.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
)

// Store persists map[string]T as a JSON object.
type Store[T any] struct {
	path   string
	mu     sync.Locker
	logger logging.Logger
	now    func() time.Time

	quarantine  bool
	seed        func() (map[string]T, error)
	normalize   func(ctx context.Context, m map[string]T) bool
	beforeWrite func(ctx context.Context) error
}

type Option[T any] func(*Store[T])

func WithLogger[T any](l logging.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = l }
}

func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) { s.now = now }
}

// WithQuarantine makes a malformed file get renamed aside and the store
// continue empty, instead of failing every call with ErrorCorruptFile.
func WithQuarantine[T any]() Option[T] {
	return func(s *Store[T]) { s.quarantine = true }
}

// WithSeed supplies the initial records used when the file does not exist.
// The seeded map is persisted on first load.
func WithSeed[T any](seed func() (map[string]T, error)) Option[T] {
	return func(s *Store[T]) { s.seed = seed }
}

// WithNormalize runs fn on every loaded map; if fn reports a change the
// map is persisted before the operation continues.
func WithNormalize[T any](fn func(ctx context.Context, m map[string]T) bool) Option[T] {
	return func(s *Store[T]) { s.normalize = fn }
}

// WithBeforeWrite runs fn under the store lock before each persist. An
// error aborts the write.
func WithBeforeWrite[T any](fn func(ctx context.Context) error) Option[T] {
	return func(s *Store[T]) { s.beforeWrite = fn }
}

func New[T any](path string, mu sync.Locker, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		path:   path,
		mu:     mu,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store[T]) Path() string {
	return s.path
}

// Load returns every record.
func (s *Store[T]) Load(ctx context.Context) (map[string]T, error) {
	var out map[string]T
	err := s.Mutate(ctx, func(m map[string]T) (bool, error) {
		out = m
		return false, nil
	})
	return out, err
}

// Save replaces the file content with m.
func (s *Store[T]) Save(ctx context.Context, m map[string]T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, m, true)
}

// Get returns the record under key or common.ErrorNotFound.
func (s *Store[T]) Get(ctx context.Context, key string) (T, error) {
	m, err := s.Load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := m[key]
	if !ok {
		return v, common.ErrorNotFound
	}
	return v, nil
}

// Put creates or overwrites the record under key.
func (s *Store[T]) Put(ctx context.Context, key string, v T) error {
	return s.Mutate(ctx, func(m map[string]T) (bool, error) {
		m[key] = v
		return true, nil
	})
}

// Upsert stores v under key when absent, otherwise merge(old, v).
func (s *Store[T]) Upsert(ctx context.Context, key string, v T, merge func(old, patch T) T) (T, error) {
	var out T
	err := s.Mutate(ctx, func(m map[string]T) (bool, error) {
		if old, ok := m[key]; ok {
			out = merge(old, v)
		} else {
			out = v
		}
		m[key] = out
		return true, nil
	})
	return out, err
}

// Update replaces the record under key with fn(old). A missing key is
// common.ErrorNotFound and nothing is written.
func (s *Store[T]) Update(ctx context.Context, key string, fn func(old T) (T, error)) (T, error) {
	var out T
	err := s.Mutate(ctx, func(m map[string]T) (bool, error) {
		old, ok := m[key]
		if !ok {
			return false, common.ErrorNotFound
		}
		v, err := fn(old)
		if err != nil {
			return false, err
		}
		out = v
		m[key] = v
		return true, nil
	})
	return out, err
}

// Delete removes key. It reports whether the key existed; deleting a
// missing key writes nothing.
func (s *Store[T]) Delete(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.Mutate(ctx, func(m map[string]T) (bool, error) {
		_, found = m[key]
		delete(m, key)
		return found, nil
	})
	return found, err
}

// Mutate loads the map, hands it to fn and persists it when fn reports a
// change. The store lock is held for the whole cycle.
func (s *Store[T]) Mutate(ctx context.Context, fn func(m map[string]T) (changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, dirty, err := s.read(ctx)
	if err != nil {
		return err
	}
	if dirty {
		if err := s.write(ctx, m, true); err != nil {
			return err
		}
	}

	changed, err := fn(m)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.write(ctx, m, true)
}

// read loads and normalizes the file. dirty is true when the returned map
// differs from what is on disk and must be persisted.
func (s *Store[T]) read(ctx context.Context) (map[string]T, bool, error) {
	m := make(map[string]T)
	dirty := false

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if s.seed != nil {
			seeded, err := s.seed()
			if err != nil {
				return nil, false, fmt.Errorf("seed %s: %w", s.path, err)
			}
			if err := s.write(ctx, seeded, false); err != nil {
				return nil, false, err
			}
			m = seeded
			s.logger.Info(ctx, "seeded record file", "path", s.path, "records", len(m))
		}
	case err != nil:
		return nil, false, fmt.Errorf("read %s: %w", s.path, err)
	case len(bytes.TrimSpace(data)) == 0:
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			m = make(map[string]T)
			if qerr := s.quarantineFile(ctx, err); qerr != nil {
				return nil, false, qerr
			}
		}
	}

	if s.normalize != nil && s.normalize(ctx, m) {
		dirty = true
	}
	return m, dirty, nil
}

func (s *Store[T]) quarantineFile(ctx context.Context, cause error) error {
	if !s.quarantine {
		return fmt.Errorf("%s: %w: %v", s.path, common.ErrorCorruptFile, cause)
	}
	aside := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().Format("20060102_150405.000000"))
	if err := os.Rename(s.path, aside); err != nil {
		return fmt.Errorf("quarantine %s: %w", s.path, err)
	}
	s.logger.Error(ctx, "record file is corrupt, moved aside",
		"path", s.path, "quarantine", aside, "error", cause)
	return nil
}

func (s *Store[T]) write(ctx context.Context, m map[string]T, hook bool) error {
	if err := filex.EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}
	if hook && s.beforeWrite != nil {
		if err := s.beforeWrite(ctx); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	if err := filex.WriteFileAtomic(s.path, buf.Bytes(), 0o640); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
