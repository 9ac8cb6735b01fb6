package common

// SystemPrincipal is the acting username recorded for operations that are
// not performed on behalf of a logged-in user (bootstrap, scheduled jobs,
// command-line maintenance).
const SystemPrincipal = "system"

// DefaultCategory receives catalog items whose category cell is empty.
const DefaultCategory = "Other"
