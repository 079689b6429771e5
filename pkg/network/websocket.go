package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/messages"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	// DefaultSendBufferSize is used when NewWSConnOptions.SendBufferSize is zero
	DefaultSendBufferSize = 64
	// WriteTimeout bounds a single frame write
	WriteTimeout = 5 * time.Second
)

// WSConn is a Conn over a websocket. Events are written by a dedicated
// goroutine from a bounded buffer so Emit never blocks the caller.
type WSConn struct {
	id       string
	ws       *websocket.Conn
	compress bool
	out      chan []byte

	closeOnce sync.Once
	closing   chan struct{}
}

var _ Conn = &WSConn{}

type NewWSConnOptions struct {
	// Compress sends zstd compressed binary frames instead of text frames
	Compress       bool
	SendBufferSize int
}

func NewWSConn(ws *websocket.Conn, opts NewWSConnOptions) *WSConn {
	size := opts.SendBufferSize
	if size <= 0 {
		size = DefaultSendBufferSize
	}
	return &WSConn{
		id:       uuid.NewString(),
		ws:       ws,
		compress: opts.Compress,
		out:      make(chan []byte, size),
		closing:  make(chan struct{}),
	}
}

// Accept upgrades the request to a websocket connection.
func Accept(w http.ResponseWriter, r *http.Request, originPatterns []string, opts NewWSConnOptions) (*WSConn, error) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept websocket: %v", err)
	}
	return NewWSConn(ws, opts), nil
}

func (c *WSConn) ID() string {
	return c.id
}

func (c *WSConn) Emit(event string, data interface{}) error {
	b, err := messages.SerializeMessage(event, data)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %v", event, err)
	}
	select {
	case <-c.closing:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- b:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close flushes the queued events and closes the websocket normally.
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closing)
	})
	return nil
}

// Serve reads events from the connection and hands them to h until the
// connection fails, is closed or ctx is done. h.HandleDisconnect is called
// exactly once before Serve returns.
func (c *WSConn) Serve(ctx context.Context, h Handler) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.ws.SetReadLimit(messages.MessageBufferSize)

	written := make(chan struct{})
	go func() {
		defer close(written)
		c.writeLoop(ctx)
	}()

	defer func() {
		h.HandleDisconnect(c)
		c.Close()
		<-written
	}()

	for {
		typ, b, err := c.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Trace("Connection %s closed", c.id)
			default:
				if !errors.Is(err, context.Canceled) {
					log.Debug("Failed to read from %s: %v", c.id, err)
				}
			}
			return
		}
		if typ == websocket.MessageBinary {
			if b, err = messages.Decompress(b); err != nil {
				log.Debug("Failed to decompress frame from %s: %v", c.id, err)
				continue
			}
		}
		env, err := messages.DeserializeMessage(b)
		if err != nil {
			log.Debug("Failed to deserialize frame from %s: %v", c.id, err)
			continue
		}
		h.HandleEvent(c, env.Event, env.Data)
	}
}

func (c *WSConn) writeLoop(ctx context.Context) {
	for {
		select {
		case b := <-c.out:
			if err := c.write(ctx, b); err != nil {
				log.Debug("Failed to write to %s: %v", c.id, err)
				c.ws.Close(websocket.StatusInternalError, "write failed")
				return
			}
		case <-c.closing:
			for {
				select {
				case b := <-c.out:
					if err := c.write(ctx, b); err != nil {
						c.ws.Close(websocket.StatusInternalError, "write failed")
						return
					}
				default:
					c.ws.Close(websocket.StatusNormalClosure, "")
					return
				}
			}
		case <-ctx.Done():
			c.ws.Close(websocket.StatusGoingAway, "")
			return
		}
	}
}

func (c *WSConn) write(ctx context.Context, b []byte) error {
	typ := websocket.MessageText
	if c.compress {
		compressed, err := messages.Compress(b)
		if err != nil {
			return fmt.Errorf("failed to compress frame: %v", err)
		}
		b, typ = compressed, websocket.MessageBinary
	}
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	return c.ws.Write(ctx, typ, b)
}
