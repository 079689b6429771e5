package network

import (
	"sync"
)

// ClientManager tracks the open connections of every channel so they can be
// counted and closed together on shutdown.
type ClientManager struct {
	clients     map[string]Conn
	clientsLock sync.RWMutex
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]Conn),
	}
}

// ConnectClient registers conn until DisconnectClient is called for it.
func (cm *ClientManager) ConnectClient(conn Conn) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()
	cm.clients[conn.ID()] = conn
}

func (cm *ClientManager) DisconnectClient(conn Conn) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()
	delete(cm.clients, conn.ID())
}

func (cm *ClientManager) Exists(id string) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[id]
	return ok
}

func (cm *ClientManager) Len() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

// CloseAll closes every registered connection.
func (cm *ClientManager) CloseAll() {
	cm.clientsLock.RLock()
	conns := make([]Conn, 0, len(cm.clients))
	for _, c := range cm.clients {
		conns = append(conns, c)
	}
	cm.clientsLock.RUnlock()
	for _, c := range conns {
		c.Close()
	}
}

// Track wraps h so connections are registered for the duration of Serve.
func (cm *ClientManager) Track(h Handler) Handler {
	return &trackedHandler{Handler: h, clients: cm}
}

type trackedHandler struct {
	Handler
	clients *ClientManager
}

func (t *trackedHandler) HandleDisconnect(conn Conn) {
	t.clients.DisconnectClient(conn)
	t.Handler.HandleDisconnect(conn)
}
