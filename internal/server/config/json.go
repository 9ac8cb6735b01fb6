package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/planboard/internal/flagx"
	"github.com/dmitrijs2005/planboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-value fields that are absent leave the corresponding Config value
// untouched. TaskRetention uses timex.Duration so it can be written as
// "2160h" or as integer nanoseconds.
type JsonConfig struct {
	DataDir           string          `json:"data_dir"`
	TasksFile         string          `json:"tasks_file"`
	UsersFile         string          `json:"users_file"`
	CatalogFile       string          `json:"catalog_file"`
	ChangeLogFile     string          `json:"changelog_file"`
	BackupDir         string          `json:"backup_dir"`
	SecurityLogFile   string          `json:"security_log_file"`
	TaskRetention     *timex.Duration `json:"task_retention"`
	BackupKeep        *int            `json:"backup_keep"`
	TaskSnapshotEvery *int            `json:"task_snapshot_every"`
	ChangeLogCap      *int            `json:"changelog_cap"`
	BackupSchedule    *string         `json:"backup_schedule"`
	HashMethod        string          `json:"hash_method"`
	LogLevel          string          `json:"log_level"`
}

// parseJson overlays config with values from the JSON file named by -c /
// -config (or $PLANBOARD_CONFIG). Without a file nothing changes. Read or
// decode errors panic, matching parseFlags.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}
	if err := LoadFile(config, path); err != nil {
		panic(err)
	}
}

// LoadFile overlays config with the JSON file at path.
func LoadFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.apply(config)
	return nil
}

func (c JsonConfig) apply(config *Config) {
	setString(&config.DataDir, c.DataDir)
	setString(&config.TasksFile, c.TasksFile)
	setString(&config.UsersFile, c.UsersFile)
	setString(&config.CatalogFile, c.CatalogFile)
	setString(&config.ChangeLogFile, c.ChangeLogFile)
	setString(&config.BackupDir, c.BackupDir)
	setString(&config.SecurityLogFile, c.SecurityLogFile)
	setString(&config.HashMethod, c.HashMethod)
	setString(&config.LogLevel, c.LogLevel)
	if c.TaskRetention != nil {
		config.TaskRetention = c.TaskRetention.Duration
	}
	if c.BackupKeep != nil {
		config.BackupKeep = *c.BackupKeep
	}
	if c.TaskSnapshotEvery != nil {
		config.TaskSnapshotEvery = *c.TaskSnapshotEvery
	}
	if c.ChangeLogCap != nil {
		config.ChangeLogCap = *c.ChangeLogCap
	}
	// An explicit empty schedule disables periodic backups.
	if c.BackupSchedule != nil {
		config.BackupSchedule = *c.BackupSchedule
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
