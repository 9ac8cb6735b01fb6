// Package scheduler runs periodic snapshot captures on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// specParser accepts descriptors (@every 24h, @daily) and cron specs with
// or without a leading seconds field.
var specParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Capturer interface {
	Capture(ctx context.Context) (models.Snapshot, error)
}

// BackupScheduler wraps a cron runner whose single job captures a snapshot.
type BackupScheduler struct {
	cron   *cron.Cron
	snap   Capturer
	logger logging.Logger
}

func New(loc *time.Location, snap Capturer, logger logging.Logger) *BackupScheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &BackupScheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithParser(specParser)),
		snap:   snap,
		logger: logger,
	}
}

// Validate reports whether spec is a usable schedule.
func Validate(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return nil
}

// Schedule registers the capture job on spec.
func (s *BackupScheduler) Schedule(spec string) (cron.EntryID, error) {
	if err := Validate(spec); err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) })
}

// RunOnce captures one snapshot and logs the outcome.
func (s *BackupScheduler) RunOnce(ctx context.Context) {
	snap, err := s.snap.Capture(ctx)
	if err != nil {
		s.logger.Error(ctx, "scheduled backup failed", "error", err)
		return
	}
	s.logger.Info(ctx, "scheduled backup created", "id", snap.ID, "size", snap.SizeKB())
}

// Next returns the next planned run, zero when nothing is scheduled.
func (s *BackupScheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

func (s *BackupScheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for a running capture to finish.
func (s *BackupScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
