package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/google/uuid"
)

// Manager runs one session per dispatched room and indexes them by id until
// they end.
type Manager struct {
	lock     sync.RWMutex
	sessions map[string]*Session
	basePath string
	settings Settings
}

type NewManagerOptions struct {
	// BasePath prefixes the session channel paths
	BasePath string
	Settings Settings
}

func NewManager(opts NewManagerOptions) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		basePath: opts.BasePath,
		settings: opts.Settings,
	}
}

// SessionPath is the channel path of the session with id.
func (m *Manager) SessionPath(id string) string {
	return fmt.Sprintf("%s/game/%s", m.basePath, id)
}

// CreateSession starts a session for the tickets of a dispatched room.
// The session runs until it ends or ctx is cancelled.
func (m *Manager) CreateSession(ctx context.Context, roomID int, ts []tickets.Ticket) (*Session, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("failed to create session for room %d: no tickets", roomID)
	}
	id := uuid.NewString()
	if len(ts) < m.settings.MinPlayers {
		log.Warn("Room %d dispatched %d tickets to session %s, below the minimum of %d", roomID, len(ts), id, m.settings.MinPlayers)
	}
	s := NewSession(NewSessionOptions{
		ID:       id,
		Path:     m.SessionPath(id),
		RoomID:   roomID,
		Tickets:  ts,
		Settings: m.settings,
		OnEnd:    m.remove,
	})

	m.lock.Lock()
	m.sessions[id] = s
	m.lock.Unlock()

	go s.Run(ctx)
	return s, nil
}

func (m *Manager) remove(s *Session) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.sessions, s.ID)
	log.Debug("Removed session %s", s.ID)
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns the running sessions ordered by room id.
func (m *Manager) List() []Info {
	m.lock.RLock()
	infos := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.lock.RUnlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].RoomID < infos[j].RoomID })
	return infos
}

func (m *Manager) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions)
}
