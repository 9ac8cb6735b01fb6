package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("PLANBOARD_CONFIG", "")

	path := writeTempJSON(t, map[string]any{
		"data_dir":            "/srv/planboard",
		"catalog_file":        "catalog.xlsx",
		"task_retention":      "720h",
		"backup_keep":         3,
		"task_snapshot_every": 0,
		"backup_schedule":     "",
		"hash_method":         "argon2",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "/srv/planboard", cfg.DataDir)
		assert.Equal(t, "catalog.xlsx", cfg.CatalogFile)
		assert.Equal(t, "users.json", cfg.UsersFile, "absent keys keep defaults")
		assert.Equal(t, 30*24*time.Hour, cfg.TaskRetention)
		assert.Equal(t, 3, cfg.BackupKeep)
		assert.Equal(t, 0, cfg.TaskSnapshotEvery)
		assert.Equal(t, "", cfg.BackupSchedule, "explicit empty schedule disables backups")
		assert.Equal(t, "argon2", cfg.HashMethod)
	})

	t.Run("no config → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{DataDir: "keep", BackupKeep: 7}
		parseJson(cfg)

		assert.Equal(t, "keep", cfg.DataDir)
		assert.Equal(t, 7, cfg.BackupKeep)
	})

	t.Run("env var points at the file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("PLANBOARD_CONFIG", path)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "/srv/planboard", cfg.DataDir)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}

func TestLoadFile(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"changelog_cap": 25, "log_level": "debug"})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, LoadFile(cfg, path))
	assert.Equal(t, 25, cfg.ChangeLogCap)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "@every 24h", cfg.BackupSchedule)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Error(t, LoadFile(cfg, bad))
	assert.Error(t, LoadFile(cfg, filepath.Join(t.TempDir(), "missing.json")))
}
