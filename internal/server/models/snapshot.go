package models

import (
	"fmt"
	"time"
)

// Snapshot describes one backup folder.
type Snapshot struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	Files     int       `json:"files"`
}

// SizeKB renders Size the way the admin panel shows it.
func (s Snapshot) SizeKB() string {
	return fmt.Sprintf("%.1f KB", float64(s.Size)/1024)
}

// BackupStats summarises the backup directory.
type BackupStats struct {
	Total     int        `json:"total_backups"`
	Snapshots []Snapshot `json:"backups"`
}

// HealthStatus reports which backing files are present.
type HealthStatus struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Files     map[string]bool `json:"files"`
}
