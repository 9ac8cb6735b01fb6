package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/config"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/repomanager"
)

type env struct {
	svc      *Services
	mgr      *repomanager.FileRepositoryManager
	security *logging.SecurityLog
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()

	h, err := auth.NewPasswordHasher(auth.MethodPBKDF2, auth.WithPBKDF2Iterations(1000))
	require.NoError(t, err)
	now := func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local) }
	m, err := repomanager.NewFileRepositoryManager(cfg, h, nil, repomanager.WithClock(now))
	require.NoError(t, err)

	sec, err := logging.OpenSecurityLog(filepath.Join(cfg.DataDir, "logs", "security.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sec.Close() })

	return &env{svc: New(m, sec), mgr: m, security: sec}
}

func as(name string, role auth.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Username: name, Role: role})
}

var (
	admin  = as("admin", auth.RoleSuperAdmin)
	user   = as("user", auth.RoleUser)
	viewer = as("viewer", auth.RoleViewer)
	nobody = context.Background()
)

// events returns the security log lines mentioning event.
func (e *env) events(t *testing.T, event string) []string {
	t.Helper()
	lines, err := e.security.Tail(1000)
	require.NoError(t, err)
	var out []string
	for _, l := range lines {
		if strings.Contains(l, `"event":"`+event+`"`) {
			out = append(out, l)
		}
	}
	return out
}
