package service

import "sync"

// Locks serializes read-modify-write sequences per group. Services that
// share a store must share one Locks so member removal cannot race with
// an expense naming that member.
type Locks struct {
	mu     sync.Mutex
	groups map[string]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{groups: make(map[string]*sync.Mutex)}
}

// Lock acquires the group's write lock and returns its release func.
func (l *Locks) Lock(groupID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.groups[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.groups[groupID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
