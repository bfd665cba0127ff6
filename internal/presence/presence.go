// Package presence tracks which users currently hold at least one live
// connection. Connections are refcounted per user, so a user with several
// open tabs stays online until the last one drops.
package presence

import (
	"sort"
	"sync"
)

type Registry struct {
	mu    sync.RWMutex
	conns map[string]int
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]int)}
}

// Add records one more live connection for the user.
func (r *Registry) Add(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID]++
}

// Remove releases one connection; the user goes offline when the count
// reaches zero.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] <= 1 {
		delete(r.conns, userID)
		return
	}
	r.conns[userID]--
}

func (r *Registry) Contains(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Snapshot returns the online user ids, sorted so payloads are stable.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.conns))
	for id := range r.conns {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}
