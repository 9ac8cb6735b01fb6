package server

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.HashMethod = "pbkdf2"
	return cfg
}

func TestNewApp_RejectsBadSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.HashMethod = "md5"
	_, err := NewAppWithOutput(cfg, &bytes.Buffer{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.BackupSchedule = "whenever"
	_, err = NewAppWithOutput(cfg, &bytes.Buffer{})
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.LogLevel = "loud"
	_, err = NewAppWithOutput(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_BootstrapsAndStops(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	app, err := NewAppWithOutput(cfg, &out)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return app.Repositories().Health(ctx).Files["users"]
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSystemContext(t *testing.T) {
	cfg := testConfig(t)
	app, err := NewAppWithOutput(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer app.Close()

	list, err := app.Services().Users.ListAll(SystemContext(context.Background()))
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestBootstrap_FailsOnCorruptUserFile(t *testing.T) {
	cfg := testConfig(t)
	body := `{"alice": {"password": "x", "role": "editor", "created_at": "2024-01-01T10:00:00Z"}}`
	require.NoError(t, os.WriteFile(cfg.Path(cfg.UsersFile), []byte(body), 0o644))

	app, err := NewAppWithOutput(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer app.Close()

	err = app.Bootstrap(context.Background())
	assert.ErrorIs(t, err, common.ErrorCorruptFile)

	raw, err := os.ReadFile(cfg.Path(cfg.UsersFile))
	require.NoError(t, err)
	assert.Equal(t, body, string(raw))
}
