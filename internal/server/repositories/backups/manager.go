// Package backups captures, lists, prunes and restores snapshots of the
// backing files. A snapshot is a directory under the backup root named
// backup_<timestamp>, so lexical order is chronological order.
package backups

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/gate"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

const (
	Prefix      = "backup_"
	DefaultKeep = 10

	secondsLayout = "20060102_150405"
)

// Source is one backing file included in every snapshot.
type Source struct {
	// Name is the file name inside the snapshot directory.
	Name string
	// Path is the live file.
	Path string
	// Lock is the gate name guarding Path.
	Lock string
}

type Manager struct {
	dir     string
	sources []Source
	keep    int
	gate    *gate.Gate
	now     func() time.Time
	logger  logging.Logger

	mu   sync.Mutex
	last time.Time
}

type Option func(*Manager)

func WithKeep(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(dir string, g *gate.Gate, sources []Source, opts ...Option) *Manager {
	m := &Manager{
		dir:     dir,
		sources: sources,
		keep:    DefaultKeep,
		gate:    g,
		now:     time.Now,
		logger:  logging.Discard(),
	}
	for _, o := range opts {
		o(m)
	}
	for _, s := range sources {
		g.For(s.Lock)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Capture copies every existing source file into a new snapshot and prunes
// the oldest snapshots beyond the retention count.
func (m *Manager) Capture(ctx context.Context) (models.Snapshot, error) {
	return m.capture(ctx, "")
}

func (m *Manager) capture(ctx context.Context, protect string) (models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := filex.EnsureDir(m.dir); err != nil {
		return models.Snapshot{}, err
	}

	ts, id, err := m.nextID()
	if err != nil {
		return models.Snapshot{}, err
	}
	dst := filepath.Join(m.dir, id)
	if err := filex.EnsureDir(dst); err != nil {
		return models.Snapshot{}, err
	}

	for _, s := range m.sources {
		ok, err := filex.Exists(s.Path)
		if err != nil {
			return models.Snapshot{}, err
		}
		if !ok {
			continue
		}
		if err := filex.CopyFile(s.Path, filepath.Join(dst, s.Name)); err != nil {
			return models.Snapshot{}, fmt.Errorf("snapshot %s: %w", s.Name, err)
		}
	}

	if err := m.prune(ctx, protect); err != nil {
		m.logger.Warn(ctx, "snapshot retention failed", "error", err)
	}

	snap, err := m.describe(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap.Timestamp = ts
	m.logger.Info(ctx, "snapshot captured", "id", id, "files", snap.Files, "size", snap.Size)
	return snap, nil
}

// nextID returns a timestamp strictly after the previous capture, bumped by
// a microsecond when the clock has not advanced or the name is taken.
func (m *Manager) nextID() (time.Time, string, error) {
	ts := m.now().Truncate(time.Microsecond)
	if !ts.After(m.last) {
		ts = m.last.Add(time.Microsecond)
	}
	for {
		id := FormatID(ts)
		ok, err := filex.Exists(filepath.Join(m.dir, id))
		if err != nil {
			return time.Time{}, "", err
		}
		if !ok {
			m.last = ts
			return ts, id, nil
		}
		ts = ts.Add(time.Microsecond)
	}
}

// ids lists snapshot directory names, newest first.
func (m *Manager) ids() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), Prefix) {
			ids = append(ids, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (m *Manager) prune(ctx context.Context, protect string) error {
	ids, err := m.ids()
	if err != nil {
		return err
	}
	kept := 0
	for _, id := range ids {
		if id == protect {
			continue
		}
		kept++
		if kept <= m.keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.dir, id)); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
		m.logger.Debug(ctx, "snapshot pruned", "id", id)
	}
	return nil
}

func (m *Manager) describe(id string) (models.Snapshot, error) {
	dir := filepath.Join(m.dir, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read %s: %w", id, err)
	}
	size, err := filex.DirSize(dir)
	if err != nil {
		return models.Snapshot{}, err
	}
	ts, _ := ParseID(id)
	files := 0
	for _, e := range entries {
		if !e.IsDir() {
			files++
		}
	}
	return models.Snapshot{ID: id, Timestamp: ts, Size: size, Files: files}, nil
}

// FormatID names the snapshot taken at ts: backup_YYYYMMDD_HHMMSS_ffffff.
func FormatID(ts time.Time) string {
	return fmt.Sprintf("%s%s_%06d", Prefix, ts.Format(secondsLayout), ts.Nanosecond()/1000)
}

// ParseID validates a snapshot id and returns its timestamp. Ids without
// the microsecond part are accepted for older snapshots.
func ParseID(id string) (time.Time, error) {
	invalid := common.NewValidationError("id", "invalid_id", "invalid backup id "+id)
	if !strings.HasPrefix(id, Prefix) || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return time.Time{}, invalid
	}
	raw := strings.TrimPrefix(id, Prefix)
	var micros int
	if len(raw) == len(secondsLayout)+7 && raw[len(secondsLayout)] == '_' {
		n, err := strconv.Atoi(raw[len(secondsLayout)+1:])
		if err != nil || n < 0 {
			return time.Time{}, invalid
		}
		micros, raw = n, raw[:len(secondsLayout)]
	}
	ts, err := time.ParseInLocation(secondsLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, invalid
	}
	return ts.Add(time.Duration(micros) * time.Microsecond), nil
}

// List returns at most the retention count of snapshots, newest first.
func (m *Manager) List(ctx context.Context) ([]models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	if len(ids) > m.keep {
		ids = ids[:m.keep]
	}
	out := make([]models.Snapshot, 0, len(ids))
	for _, id := range ids {
		s, err := m.describe(id)
		if err != nil {
			m.logger.Warn(ctx, "unreadable snapshot skipped", "id", id, "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Count returns the number of snapshot directories on disk.
func (m *Manager) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids, err := m.ids()
	return len(ids), err
}

// Restore overwrites every live file present in snapshot id. All store
// locks are held for the duration and the current state is captured first,
// so a restore can itself be undone.
func (m *Manager) Restore(ctx context.Context, id string) (models.Snapshot, error) {
	if _, err := ParseID(id); err != nil {
		return models.Snapshot{}, err
	}

	unlock := m.gate.LockAll()
	defer unlock()

	src := filepath.Join(m.dir, id)
	ok, err := filex.Exists(src)
	if err != nil {
		return models.Snapshot{}, err
	}
	if !ok {
		return models.Snapshot{}, common.ErrorNotFound
	}

	pre, err := m.capture(ctx, id)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("pre-restore snapshot: %w", err)
	}

	restored := 0
	for _, s := range m.sources {
		from := filepath.Join(src, s.Name)
		ok, err := filex.Exists(from)
		if err != nil {
			return pre, err
		}
		if !ok {
			continue
		}
		if err := filex.CopyFile(from, s.Path); err != nil {
			return pre, fmt.Errorf("restore %s: %w", s.Name, err)
		}
		restored++
	}

	// The restored snapshot was spared by the pre-restore prune.
	m.mu.Lock()
	if err := m.prune(ctx, ""); err != nil {
		m.logger.Warn(ctx, "snapshot retention failed", "error", err)
	}
	m.mu.Unlock()

	m.logger.Info(ctx, "snapshot restored", "id", id, "files", restored, "pre_restore", pre.ID)
	return pre, nil
}

// Stats reports the total number of snapshots and the listed ones.
func (m *Manager) Stats(ctx context.Context) (models.BackupStats, error) {
	total, err := m.Count(ctx)
	if err != nil {
		return models.BackupStats{}, err
	}
	list, err := m.List(ctx)
	if err != nil {
		return models.BackupStats{}, err
	}
	return models.BackupStats{Total: total, Snapshots: list}, nil
}
