package game

import (
	"encoding/json"

	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/cbodonnell/skwarz/pkg/network"
)

var _ network.Handler = &Session{}

// HandleEvent is called on the connection goroutine. Handshakes are posted to
// the session goroutine; inputs are queued for the next tick.
func (s *Session) HandleEvent(conn network.Conn, event string, data json.RawMessage) {
	env := &messages.Envelope{Event: event, Data: data}
	switch event {
	case messages.EventEnterGame:
		claim := messages.TicketClaim{}
		if err := messages.DecodePayload(env, &claim); err != nil {
			s.logger.Debug("Invalid enterGame from %s: %v", conn.ID(), err)
			emit(s.logger, conn, messages.EventNotConfirmed, nil)
			return
		}
		s.post(func() { s.enterGame(conn, claim) })
	case messages.EventMovement:
		movement := &messages.Movement{}
		if err := messages.DecodePayload(env, movement); err != nil {
			s.logger.Debug("Invalid movement from %s: %v", conn.ID(), err)
			return
		}
		s.enqueue(command{conn: conn, movement: movement})
	case messages.EventShoot:
		if s.Status() != StatusRunning {
			return
		}
		shoot := &messages.Shoot{}
		if err := messages.DecodePayload(env, shoot); err != nil {
			s.logger.Debug("Invalid shoot from %s: %v", conn.ID(), err)
			return
		}
		s.enqueue(command{conn: conn, shoot: shoot})
	default:
		s.logger.Debug("Unhandled event %q from %s", event, conn.ID())
	}
}

// HandleDisconnect removes the player of conn before any later tick runs.
func (s *Session) HandleDisconnect(conn network.Conn) {
	s.post(func() { s.leaveGame(conn) })
}

func (s *Session) enqueue(cmd command) {
	if err := s.commands.Enqueue(cmd); err != nil {
		s.logger.Warn("Dropped %s input: %v", cmd.conn.ID(), err)
	}
}
