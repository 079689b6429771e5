package timers

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run on the goroutine calling Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	entries map[string]*manualEntry
	seq     uint64
	stopped bool
}

type manualEntry struct {
	id uint64
	at time.Duration
	fn func()
}

var _ Scheduler = &Manual{}

func NewManual() *Manual {
	return &Manual{
		entries: make(map[string]*manualEntry),
	}
}

func (m *Manual) Schedule(key string, d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.seq++
	m.entries[key] = &manualEntry{id: m.seq, at: m.now + d, fn: fn}
}

func (m *Manual) Cancel(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

func (m *Manual) Pending(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*manualEntry)
	m.stopped = true
}

// Elapsed returns the total time advanced so far.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, running due callbacks in deadline
// order (ties in scheduling order).
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		fn, ok := m.next(target)
		if !ok {
			break
		}
		fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

func (m *Manual) next(target time.Duration) (func(), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dueKey string
	var due *manualEntry
	for key, e := range m.entries {
		if e.at > target {
			continue
		}
		if due == nil || e.at < due.at || (e.at == due.at && e.id < due.id) {
			dueKey, due = key, e
		}
	}
	if due == nil {
		return nil, false
	}
	delete(m.entries, dueKey)
	m.now = due.at
	return due.fn, true
}
