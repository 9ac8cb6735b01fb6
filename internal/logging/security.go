package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Security event names written to the security log.
const (
	EventLoginFailed          = "LOGIN_FAILED"
	EventLoginSucceeded       = "LOGIN_SUCCEEDED"
	EventPasswordUpgraded     = "PASSWORD_UPGRADED"
	EventUserAdded            = "USER_ADDED"
	EventUserAddFailed        = "USER_ADD_FAILED"
	EventUserDeleted          = "USER_DELETED"
	EventUserDeleteFailed     = "USER_DELETE_FAILED"
	EventPasswordChanged      = "PASSWORD_CHANGED"
	EventPasswordChangeFailed = "PASSWORD_CHANGE_FAILED"
	EventBackupCreated        = "BACKUP_CREATED"
	EventBackupFailed         = "BACKUP_FAILED"
	EventBackupRestored       = "BACKUP_RESTORED"
	EventBackupRestoreFailed  = "BACKUP_RESTORE_FAILED"
)

// SecurityLog records security events as JSON lines in an append-only file.
type SecurityLog struct {
	path string
	file *os.File
	log  Logger
}

// OpenSecurityLog opens (or creates) the security log at path.
func OpenSecurityLog(path string) (*SecurityLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open security log: %w", err)
	}
	l, err := New(&lockedWriter{w: f}, "info")
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &SecurityLog{path: path, file: f, log: l}, nil
}

// NewSecurityLog wraps an existing logger; Tail is unavailable.
func NewSecurityLog(l Logger) *SecurityLog {
	return &SecurityLog{log: l}
}

// Event records one security event. details is free text.
func (s *SecurityLog) Event(ctx context.Context, event, username, details string) {
	if s == nil {
		return
	}
	s.log.Info(ctx, event, "event", event, "user", username, "details", details)
}

// Tail returns the last n lines of the security log, oldest first.
func (s *SecurityLog) Tail(n int) ([]string, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}
	return TailLines(s.path, n)
}

func (s *SecurityLog) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// TailLines returns the last n lines of the file at path, oldest first.
// A missing file yields no lines.
func TailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], sc.Text())
			continue
		}
		ring = append(ring, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ring, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
