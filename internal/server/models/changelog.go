package models

// ChangeEntry is one change-log record: an open attribute bag in which
// "dateTime" and "user" are always present once stored.
type ChangeEntry map[string]any

// IsViewOnly reports whether the entry describes a read-only view, which
// the change-log does not record.
func (e ChangeEntry) IsViewOnly() bool {
	if t, _ := e["type"].(string); t == "view" {
		return true
	}
	v, _ := e["isViewOnly"].(bool)
	return v
}

// Missing reports whether key is absent or holds an empty value.
func (e ChangeEntry) Missing(key string) bool {
	v, ok := e[key]
	if !ok || v == nil {
		return true
	}
	s, isString := v.(string)
	return isString && s == ""
}
