// Package session holds transient per-participant conversation state.
// It is keyed by Telegram identity and lives outside the durable store:
// losing it only resets an unfinished prompt.
package session

import (
	"context"
	"sync"
	"time"
)

// State is the conversation position of a participant.
type State int

const (
	StateIdle State = iota
	StateAwaitingNickname
)

type entry struct {
	state   State
	touched time.Time
}

// Manager manages conversation state with idle eviction
type Manager struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[int64]entry
	now func() time.Time
}

// NewManager creates a manager evicting sessions idle longer than ttl.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl: ttl,
		m:   make(map[int64]entry),
		now: time.Now,
	}
}

// Set sets a participant's state
func (m *Manager) Set(userID int64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[userID] = entry{state: state, touched: m.now()}
}

// Get returns a participant's current state. Unknown or expired
// participants are Idle.
func (m *Manager) Get(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.m[userID]
	if !ok {
		return StateIdle
	}
	if m.ttl > 0 && m.now().Sub(e.touched) > m.ttl {
		return StateIdle
	}
	return e.state
}

// Clear removes a participant's state
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, userID)
}

// Run sweeps expired sessions until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	if m.ttl <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	for id, e := range m.m {
		if e.touched.Before(cutoff) {
			delete(m.m, id)
		}
	}
}
