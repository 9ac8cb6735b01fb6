package services

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// Snapshots is the snapshot manager as seen by the services.
type Snapshots interface {
	Capture(ctx context.Context) (models.Snapshot, error)
	Restore(ctx context.Context, id string) (models.Snapshot, error)
	List(ctx context.Context) ([]models.Snapshot, error)
	Stats(ctx context.Context) (models.BackupStats, error)
}

type BackupService struct {
	snap     Snapshots
	security *logging.SecurityLog
}

func NewBackupService(snap Snapshots, security *logging.SecurityLog) *BackupService {
	return &BackupService{snap: snap, security: security}
}

func (s *BackupService) Capture(ctx context.Context) (models.Snapshot, error) {
	p, err := auth.Authorize(ctx, auth.OpBackupsManage)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap, err := s.snap.Capture(ctx)
	if err != nil {
		s.security.Event(ctx, logging.EventBackupFailed, p.Username, err.Error())
		return models.Snapshot{}, err
	}
	s.security.Event(ctx, logging.EventBackupCreated, p.Username, snap.ID)
	return snap, nil
}

// Restore rolls every store back to snapshot id and returns the snapshot
// taken just before.
func (s *BackupService) Restore(ctx context.Context, id string) (models.Snapshot, error) {
	p, err := auth.Authorize(ctx, auth.OpBackupsManage)
	if err != nil {
		return models.Snapshot{}, err
	}
	pre, err := s.snap.Restore(ctx, id)
	if err != nil {
		s.security.Event(ctx, logging.EventBackupRestoreFailed, p.Username, id+": "+err.Error())
		return models.Snapshot{}, err
	}
	s.security.Event(ctx, logging.EventBackupRestored, p.Username, id+" (previous state in "+pre.ID+")")
	return pre, nil
}

func (s *BackupService) List(ctx context.Context) ([]models.Snapshot, error) {
	if _, err := auth.Authorize(ctx, auth.OpBackupsManage); err != nil {
		return nil, err
	}
	return s.snap.List(ctx)
}

func (s *BackupService) Stats(ctx context.Context) (models.BackupStats, error) {
	if _, err := auth.Authorize(ctx, auth.OpBackupsManage); err != nil {
		return models.BackupStats{}, err
	}
	return s.snap.Stats(ctx)
}
