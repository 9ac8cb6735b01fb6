// Package config handles configuration for the planboard server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the planboard store layer.
//
// Fields:
//   - DataDir: root directory; relative file paths below are resolved against it.
//   - TasksFile / UsersFile / CatalogFile / ChangeLogFile: backing files.
//   - BackupDir: directory holding backup_<timestamp> snapshot folders.
//   - SecurityLogFile: JSON-lines security event log.
//   - TaskRetention: age after which task records are pruned on read.
//   - BackupKeep: number of snapshots retained.
//   - TaskSnapshotEvery: task writes between automatic snapshots.
//   - ChangeLogCap: maximum number of change-log entries kept.
//   - BackupSchedule: cron spec for periodic snapshots; empty disables them.
//   - HashMethod: digest format for new passwords (scrypt, pbkdf2, argon2).
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DataDir           string
	TasksFile         string
	UsersFile         string
	CatalogFile       string
	ChangeLogFile     string
	BackupDir         string
	SecurityLogFile   string
	TaskRetention     time.Duration
	BackupKeep        int
	TaskSnapshotEvery int
	ChangeLogCap      int
	BackupSchedule    string
	HashMethod        string
	LogLevel          string
}

// LoadDefaults populates Config with the layout of the original deployment.
func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.TasksFile = filepath.Join("logs", "tasks.json")
	c.UsersFile = "users.json"
	c.CatalogFile = "goods.xlsx"
	c.ChangeLogFile = filepath.Join("logs", "changes_log.json")
	c.BackupDir = "backups"
	c.SecurityLogFile = filepath.Join("logs", "security.log")
	c.TaskRetention = 90 * 24 * time.Hour
	c.BackupKeep = 10
	c.TaskSnapshotEvery = 10
	c.ChangeLogCap = 100
	c.BackupSchedule = "@every 24h"
	c.HashMethod = "scrypt"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Path resolves p against DataDir unless it is already absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
