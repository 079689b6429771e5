// Package matchmaking turns confirmed tickets into waiting rooms and hands
// every ready room to a game session exactly once.
package matchmaking

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/rooms"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/cbodonnell/skwarz/pkg/timers"
)

// RoomState is the lifecycle of a waiting room.
type RoomState string

const (
	RoomWaiting    RoomState = "waiting"
	RoomCountdown  RoomState = "countdown"
	RoomDispatched RoomState = "dispatched"
)

// Member is a confirmed connection seated in a waiting room.
type Member struct {
	Ticket tickets.Ticket
	Conn   network.Conn
	Room   *rooms.Room[*Member]
}

// DispatchFunc starts a session for the tickets of a ready room and returns
// the channel path its members connect to.
type DispatchFunc func(roomID int, ts []tickets.Ticket) (string, error)

// ErrAlreadyConfirmed is returned when a connection confirms a second ticket.
type ErrAlreadyConfirmed struct {
	ConnID string
}

func (e *ErrAlreadyConfirmed) Error() string {
	return fmt.Sprintf("connection %s already confirmed", e.ConnID)
}

func IsAlreadyConfirmed(err error) bool {
	_, ok := err.(*ErrAlreadyConfirmed)
	return ok
}

// Coordinator is shared by every matchmaking connection. All state is guarded
// by mu, timer callbacks included.
type Coordinator struct {
	mu         sync.Mutex
	registry   *tickets.Registry
	rooms      []*rooms.Room[*Member]
	states     map[int]RoomState
	members    map[network.Conn]*Member
	seated     map[int]*Member
	nextRoomID int
	minPlayers int
	maxPlayers int
	delay      time.Duration
	ttl        time.Duration
	timers     timers.Scheduler
	dispatch   DispatchFunc
	dispatched int
}

type NewCoordinatorOptions struct {
	Registry      *tickets.Registry
	MinPlayers    int
	MaxPlayers    int
	DispatchDelay time.Duration
	// TicketTTL is how long a ticket may stay unconfirmed. Zero disables expiry.
	TicketTTL time.Duration
	// Timers defaults to wall clock timers
	Timers   timers.Scheduler
	Dispatch DispatchFunc
}

func NewCoordinator(opts NewCoordinatorOptions) *Coordinator {
	scheduler := opts.Timers
	if scheduler == nil {
		scheduler = timers.New(nil)
	}
	return &Coordinator{
		registry:   opts.Registry,
		states:     make(map[int]RoomState),
		members:    make(map[network.Conn]*Member),
		seated:     make(map[int]*Member),
		minPlayers: opts.MinPlayers,
		maxPlayers: opts.MaxPlayers,
		delay:      opts.DispatchDelay,
		ttl:        opts.TicketTTL,
		timers:     scheduler,
		dispatch:   opts.Dispatch,
	}
}

// IssueTicket creates a ticket for the queue endpoint.
func (c *Coordinator) IssueTicket() (tickets.Ticket, error) {
	t, err := c.registry.Issue()
	if err != nil {
		return tickets.Ticket{}, fmt.Errorf("failed to issue ticket: %v", err)
	}
	log.Trace("Issued ticket %d", t.ID)
	return t, nil
}

// Confirm seats conn in a waiting room if the ticket is valid and unused.
// Rejected claims receive "not confirmed" and leave every room untouched.
func (c *Coordinator) Confirm(conn network.Conn, id int, secret string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.members[conn]; ok {
		c.emit(conn, messages.EventNotConfirmed, nil)
		return &ErrAlreadyConfirmed{ConnID: conn.ID()}
	}
	ticket, ok := c.registry.Validate(id, secret)
	if !ok {
		c.emit(conn, messages.EventNotConfirmed, nil)
		return &tickets.ErrInvalidTicket{ID: id}
	}
	if _, ok := c.seated[id]; ok {
		c.emit(conn, messages.EventNotConfirmed, nil)
		return &tickets.ErrInvalidTicket{ID: id}
	}

	room := rooms.Available(c.rooms)
	if room == nil {
		c.nextRoomID++
		room = rooms.New[*Member](c.nextRoomID, c.minPlayers, c.maxPlayers)
		c.rooms = append(c.rooms, room)
		c.states[room.ID] = RoomWaiting
		log.Debug("Opened room %d", room.ID)
	}
	member := &Member{Ticket: ticket, Conn: conn}
	if err := room.Join(member); err != nil {
		c.emit(conn, messages.EventNotConfirmed, nil)
		return fmt.Errorf("failed to join room %d: %v", room.ID, err)
	}
	member.Room = room
	c.members[conn] = member
	c.seated[id] = member
	log.Debug("Ticket %d joined room %d (%d/%d)", id, room.ID, room.Size(), room.Max)

	c.broadcast(room)
	c.evaluate(room)
	return nil
}

// Leave removes the member of conn from its room and revokes its ticket.
func (c *Coordinator) Leave(conn network.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, ok := c.members[conn]
	if !ok {
		return
	}
	delete(c.members, conn)
	delete(c.seated, member.Ticket.ID)
	c.registry.Revoke(member.Ticket.ID)
	member.Room.Leave(member)
	log.Debug("Ticket %d left room %d (%d/%d)", member.Ticket.ID, member.Room.ID, member.Room.Size(), member.Room.Max)
	c.broadcast(member.Room)
}

// evaluate applies the readiness policy after a join.
func (c *Coordinator) evaluate(room *rooms.Room[*Member]) {
	key := timerKey(room.ID)
	if room.IsFull() {
		c.timers.Cancel(key)
		c.dispatchRoom(room)
		return
	}
	if room.PlayersEnough() && c.states[room.ID] == RoomWaiting {
		c.states[room.ID] = RoomCountdown
		c.timers.Schedule(key, c.delay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.countdownElapsed(room)
		})
		log.Debug("Room %d dispatches in %s", room.ID, c.delay)
	}
}

func (c *Coordinator) countdownElapsed(room *rooms.Room[*Member]) {
	if c.states[room.ID] != RoomCountdown {
		return
	}
	if room.Size() == 0 {
		log.Debug("Discarding empty room %d", room.ID)
		c.removeRoom(room)
		return
	}
	c.dispatchRoom(room)
}

func (c *Coordinator) dispatchRoom(room *rooms.Room[*Member]) {
	if state, ok := c.states[room.ID]; !ok || state == RoomDispatched {
		return
	}
	c.states[room.ID] = RoomDispatched
	members := room.Members()
	ts := make([]tickets.Ticket, 0, len(members))
	ids := make([]int, 0, len(members))
	for _, m := range members {
		ts = append(ts, m.Ticket)
		ids = append(ids, m.Ticket.ID)
		delete(c.members, m.Conn)
		delete(c.seated, m.Ticket.ID)
	}
	c.removeRoom(room)
	c.registry.Remove(ids...)
	c.dispatched++

	if c.dispatch == nil {
		log.Warn("No dispatcher for room %d", room.ID)
		return
	}
	path, err := c.dispatch(room.ID, ts)
	if err != nil {
		log.Error("Failed to dispatch room %d: %v", room.ID, err)
		for _, m := range members {
			m.Conn.Close()
		}
		return
	}
	log.Info("Dispatched room %d with %d players to %s", room.ID, len(ts), path)
	for _, m := range members {
		c.emit(m.Conn, messages.EventGame, messages.Game{Path: path})
	}
}

func (c *Coordinator) removeRoom(room *rooms.Room[*Member]) {
	for i, r := range c.rooms {
		if r == room {
			c.rooms = append(c.rooms[:i], c.rooms[i+1:]...)
			break
		}
	}
	delete(c.states, room.ID)
}

// broadcast sends the current occupancy to every member of room.
func (c *Coordinator) broadcast(room *rooms.Room[*Member]) {
	waiting := messages.WaitingOnQueue{PlayersCount: room.Size()}
	count := messages.Players{Count: room.Size()}
	for _, m := range room.Members() {
		c.emit(m.Conn, messages.EventWaitingOnQueue, waiting)
		c.emit(m.Conn, messages.EventPlayers, count)
	}
}

func (c *Coordinator) emit(conn network.Conn, event string, data interface{}) {
	if err := conn.Emit(event, data); err != nil {
		log.Warn("Failed to emit %s to %s: %v", event, conn.ID(), err)
	}
}

// ExpireTickets removes tickets older than the ttl that are not seated.
func (c *Coordinator) ExpireTickets(now time.Time) int {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Expire(now.Add(-c.ttl), func(id int) bool {
		_, ok := c.seated[id]
		return ok
	})
}

// RoomInfo describes a waiting room.
type RoomInfo struct {
	ID      int       `json:"id"`
	Players int       `json:"players"`
	Min     int       `json:"min"`
	Max     int       `json:"max"`
	State   RoomState `json:"state"`
}

// Rooms lists the rooms that are still waiting, ordered by id.
func (c *Coordinator) Rooms() []RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	infos := make([]RoomInfo, 0, len(c.rooms))
	for _, r := range c.rooms {
		infos = append(infos, RoomInfo{
			ID:      r.ID,
			Players: r.Size(),
			Min:     r.Min,
			Max:     r.Max,
			State:   c.states[r.ID],
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Dispatched returns how many rooms were handed to sessions.
func (c *Coordinator) Dispatched() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatched
}

// Stop disarms every countdown.
func (c *Coordinator) Stop() {
	c.timers.Stop()
}

var _ network.Handler = &Coordinator{}

func (c *Coordinator) HandleEvent(conn network.Conn, event string, data json.RawMessage) {
	switch event {
	case messages.EventConfirm:
		claim := messages.TicketClaim{}
		if err := messages.DecodePayload(&messages.Envelope{Event: event, Data: data}, &claim); err != nil {
			log.Debug("Invalid confirm from %s: %v", conn.ID(), err)
			c.emit(conn, messages.EventNotConfirmed, nil)
			return
		}
		if err := c.Confirm(conn, claim.ID, claim.Secret); err != nil {
			log.Debug("Rejected confirm from %s: %v", conn.ID(), err)
		}
	default:
		log.Debug("Unhandled event %q from %s", event, conn.ID())
	}
}

func (c *Coordinator) HandleDisconnect(conn network.Conn) {
	c.Leave(conn)
}

func timerKey(roomID int) string {
	return fmt.Sprintf("room-%d", roomID)
}
