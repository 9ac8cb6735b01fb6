// Package changelog keeps the newest user actions in a capped JSON list.
package changelog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

const (
	DefaultCap = 100
	// DateTimeLayout is the dateTime format the dashboard renders.
	DateTimeLayout = "2006.01.02 15:04:05"
)

type Repository interface {
	Append(ctx context.Context, entry models.ChangeEntry, actor string) (bool, error)
	List(ctx context.Context) ([]models.ChangeEntry, error)
}

// FileRepository stores entries newest first in one JSON array.
type FileRepository struct {
	path   string
	mu     sync.Locker
	cap    int
	now    func() time.Time
	logger logging.Logger
}

type Option func(*FileRepository)

func WithCap(n int) Option {
	return func(r *FileRepository) {
		if n > 0 {
			r.cap = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *FileRepository) { r.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(r *FileRepository) { r.logger = l }
}

func NewFileRepository(path string, mu sync.Locker, opts ...Option) *FileRepository {
	r := &FileRepository{
		path:   path,
		mu:     mu,
		cap:    DefaultCap,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *FileRepository) Path() string {
	return r.path
}

// load never fails on content: a missing or malformed file is an empty log.
func (r *FileRepository) load(ctx context.Context) []models.ChangeEntry {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.ChangeEntry{}
	}
	if err != nil {
		r.logger.Warn(ctx, "change-log unreadable", "path", r.path, "error", err)
		return []models.ChangeEntry{}
	}
	var entries []models.ChangeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn(ctx, "change-log is corrupt, starting over", "path", r.path, "error", err)
		return []models.ChangeEntry{}
	}
	if entries == nil {
		entries = []models.ChangeEntry{}
	}
	return entries
}

// List returns the stored entries, newest first.
func (r *FileRepository) List(ctx context.Context) ([]models.ChangeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx), nil
}

// Append records entry at the head of the log. View-only entries are not
// recorded and Append reports false for them. Missing dateTime, user and
// id fields are filled in.
func (r *FileRepository) Append(ctx context.Context, entry models.ChangeEntry, actor string) (bool, error) {
	if entry.IsViewOnly() {
		return false, nil
	}

	stored := make(models.ChangeEntry, len(entry)+3)
	for k, v := range entry {
		stored[k] = v
	}
	if stored.Missing("dateTime") {
		stored["dateTime"] = r.now().Format(DateTimeLayout)
	}
	if stored.Missing("user") {
		stored["user"] = actor
	}
	if stored.Missing("id") {
		stored["id"] = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := append([]models.ChangeEntry{stored}, r.load(ctx)...)
	if len(entries) > r.cap {
		entries = entries[:r.cap]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode change-log: %w", err)
	}
	if err := filex.WriteFileAtomic(r.path, data, 0o640); err != nil {
		return false, fmt.Errorf("write %s: %w", r.path, err)
	}
	return true, nil
}
