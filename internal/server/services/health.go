package services

import (
	"context"

	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type healthChecker interface {
	Health(ctx context.Context) models.HealthStatus
}

// HealthService reports backing file presence. It needs no principal.
type HealthService struct {
	checker healthChecker
}

func NewHealthService(c healthChecker) *HealthService {
	return &HealthService{checker: c}
}

func (s *HealthService) Check(ctx context.Context) models.HealthStatus {
	return s.checker.Health(ctx)
}

// SecurityService reads back the security event log.
type SecurityService struct {
	log *logging.SecurityLog
}

func NewSecurityService(log *logging.SecurityLog) *SecurityService {
	return &SecurityService{log: log}
}

// Tail returns the last n security events, oldest first.
func (s *SecurityService) Tail(ctx context.Context, n int) ([]string, error) {
	if _, err := auth.Authorize(ctx, auth.OpSecurityRead); err != nil {
		return nil, err
	}
	return s.log.Tail(n)
}
