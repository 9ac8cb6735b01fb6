// Package models holds the records persisted by the planboard stores.
package models

import (
	"strings"
	"time"
)

// Task is one schedule bar. Only "id" and "start" mean anything to the
// store; the remaining keys belong to the dashboard.
type Task map[string]any

// StartDate returns the calendar date of the "start" field, read from the
// text before "T". ok is false when start is missing or unparseable.
func (t Task) StartDate() (time.Time, bool) {
	raw, ok := t["start"].(string)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	day, _, _ := strings.Cut(raw, "T")
	d, err := time.ParseInLocation(time.DateOnly, day, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Merge copies every key of patch over t (shallow, no nested merge).
func (t Task) Merge(patch Task) Task {
	out := make(Task, len(t)+len(patch))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
