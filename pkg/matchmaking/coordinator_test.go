package matchmaking

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	mocks "github.com/cbodonnell/skwarz/mocks/github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/cbodonnell/skwarz/pkg/timers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	event string
	data  interface{}
}

type recorder struct {
	id string

	mu     sync.Mutex
	events []emitted
	closed bool
}

func newRecorder(id string) *recorder {
	return &recorder{id: id}
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Emit(event string, data interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{event: event, data: data})
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) all(event string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interface{}
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e.data)
		}
	}
	return out
}

func (r *recorder) last(event string) (interface{}, bool) {
	all := r.all(event)
	if len(all) == 0 {
		return nil, false
	}
	return all[len(all)-1], true
}

type dispatchCall struct {
	roomID  int
	tickets []tickets.Ticket
}

type harness struct {
	*Coordinator
	registry *tickets.Registry
	timers   *timers.Manual
	calls    []dispatchCall
	now      time.Time
}

func newHarness(t *testing.T, min, max int) *harness {
	t.Helper()
	h := &harness{
		timers: timers.NewManual(),
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.registry = tickets.NewRegistry(tickets.NewRegistryOptions{
		Path: "/skwarz/ws",
		Now:  func() time.Time { return h.now },
	})
	h.Coordinator = NewCoordinator(NewCoordinatorOptions{
		Registry:      h.registry,
		MinPlayers:    min,
		MaxPlayers:    max,
		DispatchDelay: 5 * time.Second,
		TicketTTL:     time.Minute,
		Timers:        h.timers,
		Dispatch: func(roomID int, ts []tickets.Ticket) (string, error) {
			h.calls = append(h.calls, dispatchCall{roomID: roomID, tickets: ts})
			return fmt.Sprintf("/skwarz/game/session-%d", roomID), nil
		},
	})
	return h
}

func (h *harness) issue(t *testing.T) tickets.Ticket {
	t.Helper()
	ticket, err := h.IssueTicket()
	require.NoError(t, err)
	return ticket
}

func (h *harness) join(t *testing.T, id string) (*recorder, tickets.Ticket) {
	t.Helper()
	conn := newRecorder(id)
	ticket := h.issue(t)
	require.NoError(t, h.Confirm(conn, ticket.ID, ticket.Secret))
	return conn, ticket
}

func ticketIDs(ts []tickets.Ticket) []int {
	ids := make([]int, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestCoordinator_WrongSecretIsNotConfirmed(t *testing.T) {
	h := newHarness(t, 2, 10)
	ticket := h.issue(t)
	assert.Equal(t, 1, ticket.ID)

	conn := mocks.NewConn(t)
	conn.EXPECT().ID().Return("conn").Maybe()
	conn.EXPECT().Emit(messages.EventNotConfirmed, nil).Return(nil).Once()

	err := h.Confirm(conn, ticket.ID, "wrong")
	assert.True(t, tickets.IsInvalidTicket(err))
	assert.Empty(t, h.Rooms())
	assert.Equal(t, 1, h.registry.Len())
}

func TestCoordinator_DispatchAfterDelay(t *testing.T) {
	h := newHarness(t, 2, 10)
	a, ta := h.join(t, "a")
	b, tb := h.join(t, "b")

	assert.Equal(t, []interface{}{
		messages.WaitingOnQueue{PlayersCount: 1},
		messages.WaitingOnQueue{PlayersCount: 2},
	}, a.all(messages.EventWaitingOnQueue))
	assert.Equal(t, []interface{}{
		messages.WaitingOnQueue{PlayersCount: 2},
	}, b.all(messages.EventWaitingOnQueue))
	for _, c := range []*recorder{a, b} {
		waiting, ok := c.last(messages.EventWaitingOnQueue)
		require.True(t, ok)
		assert.Equal(t, messages.WaitingOnQueue{PlayersCount: 2}, waiting)
		players, ok := c.last(messages.EventPlayers)
		require.True(t, ok)
		assert.Equal(t, messages.Players{Count: 2}, players)
	}

	rooms := h.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, RoomCountdown, rooms[0].State)

	h.timers.Advance(5*time.Second - time.Millisecond)
	assert.Empty(t, h.calls)

	h.timers.Advance(time.Millisecond)
	require.Len(t, h.calls, 1)
	assert.Equal(t, []int{ta.ID, tb.ID}, ticketIDs(h.calls[0].tickets))
	assert.Empty(t, h.Rooms())
	assert.Zero(t, h.registry.Len())

	for _, c := range []*recorder{a, b} {
		game, ok := c.last(messages.EventGame)
		require.True(t, ok)
		assert.Equal(t, messages.Game{Path: "/skwarz/game/session-1"}, game)
	}
}

func TestCoordinator_FullRoomDispatchesImmediately(t *testing.T) {
	h := newHarness(t, 2, 10)
	for i := 0; i < 9; i++ {
		h.join(t, fmt.Sprintf("c%d", i))
	}
	assert.Empty(t, h.calls)
	assert.True(t, h.timers.Pending(timerKey(1)))

	h.join(t, "c9")
	require.Len(t, h.calls, 1)
	assert.Len(t, h.calls[0].tickets, 10)
	assert.False(t, h.timers.Pending(timerKey(1)))

	h.timers.Advance(time.Minute)
	assert.Len(t, h.calls, 1)
	assert.Equal(t, 1, h.Dispatched())
}

func TestCoordinator_OverflowOpensNewRoom(t *testing.T) {
	h := newHarness(t, 2, 3)
	for i := 0; i < 4; i++ {
		h.join(t, fmt.Sprintf("c%d", i))
	}
	require.Len(t, h.calls, 1)
	assert.Equal(t, 1, h.calls[0].roomID)
	assert.Len(t, h.calls[0].tickets, 3)

	rooms := h.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].ID)
	assert.Equal(t, 1, rooms[0].Players)
	assert.Equal(t, RoomWaiting, rooms[0].State)
}

func TestCoordinator_RejectsSeatedTicketAndSecondConfirm(t *testing.T) {
	h := newHarness(t, 3, 10)
	a, ticket := h.join(t, "a")

	other := newRecorder("other")
	err := h.Confirm(other, ticket.ID, ticket.Secret)
	assert.True(t, tickets.IsInvalidTicket(err))
	_, ok := other.last(messages.EventNotConfirmed)
	assert.True(t, ok)

	fresh := h.issue(t)
	err = h.Confirm(a, fresh.ID, fresh.Secret)
	assert.True(t, IsAlreadyConfirmed(err))

	rooms := h.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].Players)
}

func TestCoordinator_LeaveRevokesTicket(t *testing.T) {
	h := newHarness(t, 3, 10)
	a, ta := h.join(t, "a")
	b, _ := h.join(t, "b")

	h.HandleDisconnect(a)
	players, ok := b.last(messages.EventPlayers)
	require.True(t, ok)
	assert.Equal(t, messages.Players{Count: 1}, players)
	waiting, ok := b.last(messages.EventWaitingOnQueue)
	require.True(t, ok)
	assert.Equal(t, messages.WaitingOnQueue{PlayersCount: 1}, waiting)

	_, ok = h.registry.Validate(ta.ID, ta.Secret)
	assert.False(t, ok)
	err := h.Confirm(newRecorder("again"), ta.ID, ta.Secret)
	assert.True(t, tickets.IsInvalidTicket(err))

	h.HandleDisconnect(a)
	assert.Equal(t, 1, h.Rooms()[0].Players)
}

func TestCoordinator_LeaveDuringCountdown(t *testing.T) {
	h := newHarness(t, 2, 10)
	a, _ := h.join(t, "a")
	_, tb := h.join(t, "b")

	h.Leave(a)
	assert.True(t, h.timers.Pending(timerKey(1)))

	h.timers.Advance(5 * time.Second)
	require.Len(t, h.calls, 1)
	assert.Equal(t, []int{tb.ID}, ticketIDs(h.calls[0].tickets))
}

func TestCoordinator_EmptyRoomDiscardedAtExpiry(t *testing.T) {
	h := newHarness(t, 2, 10)
	a, _ := h.join(t, "a")
	b, _ := h.join(t, "b")
	h.Leave(a)
	h.Leave(b)

	h.timers.Advance(5 * time.Second)
	assert.Empty(t, h.calls)
	assert.Empty(t, h.Rooms())
	assert.Zero(t, h.Dispatched())
}

func TestCoordinator_DispatchFailureClosesMembers(t *testing.T) {
	h := newHarness(t, 1, 1)
	h.Coordinator.dispatch = func(int, []tickets.Ticket) (string, error) {
		return "", errors.New("boom")
	}
	a, _ := h.join(t, "a")

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	assert.True(t, closed)
	_, ok := a.last(messages.EventGame)
	assert.False(t, ok)
	assert.Empty(t, h.Rooms())
}

func TestCoordinator_ExpireTickets(t *testing.T) {
	h := newHarness(t, 3, 10)
	_, seated := h.join(t, "a")
	stale := h.issue(t)
	h.now = h.now.Add(30 * time.Second)
	recent := h.issue(t)

	assert.Zero(t, h.ExpireTickets(h.now))

	removed := h.ExpireTickets(h.now.Add(45 * time.Second))
	assert.Equal(t, 1, removed)
	_, ok := h.registry.Validate(stale.ID, stale.Secret)
	assert.False(t, ok)
	_, ok = h.registry.Validate(seated.ID, seated.Secret)
	assert.True(t, ok)
	_, ok = h.registry.Validate(recent.ID, recent.Secret)
	assert.True(t, ok)
}

func TestCoordinator_HandleEvent(t *testing.T) {
	h := newHarness(t, 2, 10)
	ticket := h.issue(t)
	conn := newRecorder("a")

	h.HandleEvent(conn, messages.EventConfirm, json.RawMessage(`{"id":`))
	_, ok := conn.last(messages.EventNotConfirmed)
	assert.True(t, ok)

	claim, err := json.Marshal(messages.TicketClaim{ID: ticket.ID, Secret: ticket.Secret})
	require.NoError(t, err)
	h.HandleEvent(conn, messages.EventConfirm, claim)
	waiting, ok := conn.last(messages.EventWaitingOnQueue)
	require.True(t, ok)
	assert.Equal(t, messages.WaitingOnQueue{PlayersCount: 1}, waiting)
}
