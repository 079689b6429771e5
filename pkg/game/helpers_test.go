package game

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/skwarz/pkg/game/types"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/cbodonnell/skwarz/pkg/timers"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	event string
	data  interface{}
}

// fakeConn records everything emitted to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []emitted
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string {
	return c.id
}

func (c *fakeConn) Emit(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, emitted{event: event, data: data})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	events := make([]string, 0, len(c.events))
	for _, e := range c.events {
		events = append(events, e.event)
	}
	return events
}

func (c *fakeConn) Count(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.events {
		if e.event == event {
			n++
		}
	}
	return n
}

// Last returns the payload of the last event of the given name.
func (c *fakeConn) Last(event string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].event == event {
			return c.events[i].data, true
		}
	}
	return nil, false
}

func testSettings() Settings {
	settings := DefaultSettings()
	settings.Seed = 12345
	return settings
}

func testTickets(n int) []tickets.Ticket {
	ts := make([]tickets.Ticket, n)
	for i := range ts {
		ts[i] = tickets.Ticket{ID: i + 1, Secret: fmt.Sprintf("secret-%d", i+1)}
	}
	return ts
}

type testSession struct {
	*Session
	timers  *timers.Manual
	tickets []tickets.Ticket
	now     time.Time
}

func newTestSession(t *testing.T, n int, settings Settings) *testSession {
	t.Helper()
	manual := timers.NewManual()
	ts := testTickets(n)
	s := NewSession(NewSessionOptions{
		ID:       "test",
		Path:     "/skwarz/game/test",
		RoomID:   1,
		Tickets:  ts,
		Settings: settings,
		Timers:   manual,
	})
	t.Cleanup(func() {
		if s.status != StatusEnded {
			s.end()
		}
	})
	return &testSession{Session: s, timers: manual, tickets: ts, now: time.Unix(1700000000, 0)}
}

// runPending runs the closures posted to the session so far.
func (ts *testSession) runPending() {
	for {
		select {
		case fn := <-ts.inbox:
			fn()
		default:
			return
		}
	}
}

func claimPayload(t *testing.T, id int, secret string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(messages.TicketClaim{ID: id, Secret: secret})
	require.NoError(t, err)
	return b
}

func payload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// enter sends enterGame for ticket i (zero based) on conn.
func (ts *testSession) enter(t *testing.T, conn *fakeConn, i int) {
	t.Helper()
	ts.HandleEvent(conn, messages.EventEnterGame, claimPayload(t, ts.tickets[i].ID, ts.tickets[i].Secret))
	ts.runPending()
}

func (ts *testSession) advance(d time.Duration) {
	ts.timers.Advance(d)
}

func (ts *testSession) step() {
	ts.now = ts.now.Add(ts.settings.TickInterval)
	ts.tick(ts.now)
}

// start enters one connection per ticket and runs the session up to its
// first running tick.
func (ts *testSession) start(t *testing.T) []*fakeConn {
	t.Helper()
	conns := make([]*fakeConn, len(ts.tickets))
	for i := range ts.tickets {
		conns[i] = newFakeConn(fmt.Sprintf("conn-%d", i+1))
		ts.enter(t, conns[i], i)
	}
	ts.advance(ts.settings.ConfirmDelay)
	require.Equal(t, StatusSettingUp, ts.Status())
	ts.advance(ts.settings.SetupDelay)
	require.Equal(t, StatusStarting, ts.Status())
	ts.step()
	require.Equal(t, StatusRunning, ts.Status())
	return conns
}

func (ts *testSession) player(t *testing.T, conn *fakeConn) *types.Player {
	t.Helper()
	p, ok := ts.entities.PlayerByConn(conn)
	require.True(t, ok)
	return p
}

// hazardX is a world x coordinate outside the initial ring but inside the world.
func hazardX(settings Settings) float64 {
	return (settings.MaxGridRadius + 5) * settings.GridSide
}
