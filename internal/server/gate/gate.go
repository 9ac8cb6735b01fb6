// Package gate serialises read-modify-write cycles on the backing files.
//
// Each backing file has one mutex. A store holds its mutex for the whole
// load-mutate-persist cycle, not just the write. Operations that touch every
// file (restore) take all mutexes in a fixed order through LockAll.
package gate

import (
	"sort"
	"sync"
)

// Names of the guarded backing files.
const (
	Tasks     = "tasks"
	Users     = "users"
	Catalog   = "catalog"
	ChangeLog = "changelog"
)

// Gate owns the per-file mutexes.
type Gate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Gate {
	return &Gate{locks: make(map[string]*sync.Mutex)}
}

// For returns the mutex guarding the named file, creating it on first use.
func (g *Gate) For(name string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.locks[name]
	if !ok {
		m = &sync.Mutex{}
		g.locks[name] = m
	}
	return m
}

// LockAll acquires every known mutex in name order and returns the
// function that releases them.
func (g *Gate) LockAll() (unlock func()) {
	g.mu.Lock()
	names := make([]string, 0, len(g.locks))
	for n := range g.locks {
		names = append(names, n)
	}
	g.mu.Unlock()
	sort.Strings(names)

	held := make([]*sync.Mutex, 0, len(names))
	for _, n := range names {
		m := g.For(n)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
