package timers

import (
	"sync"
	"time"
)

// Scheduler runs callbacks after a delay. Timers are identified by a key;
// scheduling a key that is already pending replaces the pending timer.
type Scheduler interface {
	// Schedule arms fn to run after d under key.
	Schedule(key string, d time.Duration, fn func())
	// Cancel disarms key and reports whether it was pending.
	Cancel(key string) bool
	// Pending reports whether key is armed.
	Pending(key string) bool
	// Stop disarms every timer. Later calls to Schedule are ignored.
	Stop()
}

// Timers is a Scheduler backed by time.AfterFunc.
//
// Callbacks are handed to the dispatch function given to New, which lets the
// owner run them on its own goroutine or under its own lock. A callback whose
// timer was cancelled or replaced before it reached the owner is dropped.
type Timers struct {
	mu       sync.Mutex
	dispatch func(func())
	entries  map[string]*entry
	seq      uint64
	stopped  bool
}

type entry struct {
	id    uint64
	timer *time.Timer
}

var _ Scheduler = &Timers{}

// New creates a Timers. If dispatch is nil callbacks run on the timer goroutine.
func New(dispatch func(func())) *Timers {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	return &Timers{
		dispatch: dispatch,
		entries:  make(map[string]*entry),
	}
}

func (t *Timers) Schedule(key string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if e, ok := t.entries[key]; ok {
		e.timer.Stop()
	}
	t.seq++
	id := t.seq
	e := &entry{id: id}
	t.entries[key] = e
	e.timer = time.AfterFunc(d, func() {
		t.dispatch(func() {
			if t.claim(key, id) {
				fn()
			}
		})
	})
}

// claim removes the entry if it is still the one armed under key.
func (t *Timers) claim(key string, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok || e.id != id {
		return false
	}
	delete(t.entries, key)
	return true
}

func (t *Timers) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(t.entries, key)
	return true
}

func (t *Timers) Pending(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[key]
	return ok
}

func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, key)
	}
	t.stopped = true
}
