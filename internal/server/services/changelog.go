package services

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/changelog"
)

type ChangeLogService struct {
	repo changelog.Repository
}

func NewChangeLogService(repo changelog.Repository) *ChangeLogService {
	return &ChangeLogService{repo: repo}
}

// Append records entry as an action of the acting principal. It returns
// false when the entry is a view event and was not stored.
func (s *ChangeLogService) Append(ctx context.Context, entry models.ChangeEntry) (bool, error) {
	p, err := auth.Authorize(ctx, auth.OpChangeLogAppend)
	if err != nil {
		return false, err
	}
	return s.repo.Append(ctx, entry, p.Username)
}

func (s *ChangeLogService) List(ctx context.Context) ([]models.ChangeEntry, error) {
	if _, err := auth.Authorize(ctx, auth.OpChangeLogRead); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}
