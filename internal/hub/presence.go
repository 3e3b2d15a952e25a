package hub

import "sync"

// Presence tracks which users currently have at least one live
// connection. A user appears in the table iff their connection set is
// non-empty; empty sets are pruned inside the same critical section so
// IsOnline stays a pure membership test.
type Presence struct {
	mu    sync.RWMutex
	users map[int64]map[string]struct{}
	conns int
}

func NewPresence() *Presence {
	return &Presence{users: make(map[int64]map[string]struct{})}
}

// Register adds a connection to the user's set, creating it if absent.
func (p *Presence) Register(userID int64, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.users[userID]
	if !ok {
		set = make(map[string]struct{})
		p.users[userID] = set
	}
	if _, dup := set[connID]; !dup {
		set[connID] = struct{}{}
		p.conns++
	}
}

// Unregister removes a connection from the user's set and prunes the
// user entry when the set empties. It reports whether the user just
// went offline.
func (p *Presence) Unregister(userID int64, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.users[userID]
	if !ok {
		return false
	}
	if _, exists := set[connID]; !exists {
		return false
	}
	delete(set, connID)
	p.conns--
	if len(set) == 0 {
		delete(p.users, userID)
		return true
	}
	return false
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[userID]
	return ok
}

// OnlineCount returns the number of distinct online users. A user with
// three tabs open counts once.
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}

// ConnectionCount returns the number of live connections across all users.
func (p *Presence) ConnectionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conns
}

// Each calls fn for every (user, connection) pair in the table. The
// lock is held for the duration; fn must not call back into Presence.
func (p *Presence) Each(fn func(userID int64, connID string)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for userID, set := range p.users {
		for connID := range set {
			fn(userID, connID)
		}
	}
}
