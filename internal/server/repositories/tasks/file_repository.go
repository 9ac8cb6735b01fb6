package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/records"
)

const (
	DefaultRetention     = 90 * 24 * time.Hour
	DefaultSnapshotEvery = 10
)

// FileRepository keeps tasks in a JSON file. Every load drops tasks that
// started before today minus the retention window; every Nth write is
// preceded by a snapshot.
type FileRepository struct {
	store     *records.Store[models.Task]
	counter   string
	retention time.Duration
	now       func() time.Time
	logger    logging.Logger
	snap      Snapshotter
	every     int
}

type Option func(*FileRepository)

func WithRetention(d time.Duration) Option {
	return func(r *FileRepository) { r.retention = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *FileRepository) { r.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(r *FileRepository) { r.logger = l }
}

// WithSnapshots captures a snapshot before every n-th write.
func WithSnapshots(s Snapshotter, n int) Option {
	return func(r *FileRepository) {
		r.snap = s
		r.every = n
	}
}

func NewFileRepository(path string, mu sync.Locker, opts ...Option) *FileRepository {
	r := &FileRepository{
		counter:   path + ".count",
		retention: DefaultRetention,
		now:       time.Now,
		logger:    logging.Discard(),
		every:     DefaultSnapshotEvery,
	}
	for _, o := range opts {
		o(r)
	}
	r.store = records.New(path, mu,
		records.WithLogger[models.Task](r.logger),
		records.WithClock[models.Task](r.now),
		records.WithQuarantine[models.Task](),
		records.WithNormalize(r.prune),
		records.WithBeforeWrite[models.Task](r.countWrite),
	)
	return r
}

// Cutoff is the first calendar day that is still retained.
func (r *FileRepository) Cutoff() time.Time {
	now := r.now().In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return today.AddDate(0, 0, -int(r.retention/(24*time.Hour)))
}

func (r *FileRepository) prune(ctx context.Context, m map[string]models.Task) bool {
	cutoff := r.Cutoff()
	removed := 0
	for id, t := range m {
		start, ok := t.StartDate()
		if ok && start.Before(cutoff) {
			delete(m, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info(ctx, "expired tasks removed", "count", removed, "cutoff", cutoff.Format(time.DateOnly))
	}
	return removed > 0
}

// countWrite bumps the persisted write counter and captures a snapshot when
// it reaches a multiple of the interval. A failed snapshot does not block
// the write.
func (r *FileRepository) countWrite(ctx context.Context) error {
	n, err := r.readCounter()
	if err != nil {
		r.logger.Warn(ctx, "task write counter unreadable, restarting", "path", r.counter, "error", err)
		n = 0
	}
	n++
	if err := filex.WriteFileAtomic(r.counter, []byte(strconv.Itoa(n)), 0o640); err != nil {
		return fmt.Errorf("write counter: %w", err)
	}
	if r.snap == nil || r.every <= 0 || n%r.every != 0 {
		return nil
	}
	if _, err := r.snap.Capture(ctx); err != nil {
		r.logger.Error(ctx, "snapshot before task write failed", "write", n, "error", err)
	}
	return nil
}

func (r *FileRepository) readCounter() (int, error) {
	data, err := os.ReadFile(r.counter)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// Writes returns the number of task writes recorded so far.
func (r *FileRepository) Writes() (int, error) {
	return r.readCounter()
}

func (r *FileRepository) Path() string {
	return r.store.Path()
}

func (r *FileRepository) List(ctx context.Context) (map[string]models.Task, error) {
	return r.store.Load(ctx)
}

func (r *FileRepository) Put(ctx context.Context, id string, task models.Task) error {
	return r.store.Put(ctx, id, task)
}

func (r *FileRepository) Update(ctx context.Context, id string, patch models.Task) (models.Task, error) {
	return r.store.Update(ctx, id, func(old models.Task) (models.Task, error) {
		return old.Merge(patch), nil
	})
}

func (r *FileRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}
