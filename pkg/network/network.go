package network

import (
	"encoding/json"
	"errors"
)

// ErrSendBufferFull is returned by Emit when the connection cannot keep up.
var ErrSendBufferFull = errors.New("send buffer full")

// ErrConnClosed is returned by Emit after the connection was closed.
var ErrConnClosed = errors.New("connection closed")

// Conn is one client connection on a realtime channel.
type Conn interface {
	// ID uniquely identifies the connection for logging.
	ID() string
	// Emit queues an event for the client. It never blocks.
	Emit(event string, data interface{}) error
	// Close terminates the connection. The channel handler still receives
	// HandleDisconnect for it.
	Close() error
}

// Handler receives the events of a realtime channel. Calls for one
// connection are sequential; calls for different connections are concurrent.
type Handler interface {
	HandleEvent(conn Conn, event string, data json.RawMessage)
	HandleDisconnect(conn Conn)
}
