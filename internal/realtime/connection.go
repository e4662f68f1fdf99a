// File: internal/realtime/connection.go
package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
	sendBufSize   = 128
	maxFrameBytes = 64 << 10
)

// Socket is the subset of *websocket.Conn the realtime layer depends on.
type Socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	Close() error
}

// Connection wraps a socket and coordinates outbound writes via a buffered
// channel. A connection is bound to at most one authenticated user at a time
// and is safe for concurrent use.
type Connection struct {
	ID     string
	UserID uint // set once by the session after a successful handshake

	sock  Socket
	send  chan []byte
	once  sync.Once
	close chan struct{}

	// closeCode and closeReason are written inside the once, before the
	// close channel is closed, and read only after it is.
	closeCode   int
	closeReason string
}

// NewConnection constructs an unbound Connection over the given socket.
func NewConnection(sock Socket) *Connection {
	return &Connection{
		ID:    uuid.NewString(),
		sock:  sock,
		send:  make(chan []byte, sendBufSize),
		close: make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer is
// full, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection. It is safe to call multiple times. The
// write loop drains frames queued before Close, sends the close frame and
// shuts the socket, so a final error or handshake result still reaches the
// client.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.close)
	})
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	select {
	case <-c.close:
		return true
	default:
		return false
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.teardown()

	for {
		select {
		case <-c.close:
			c.flushPending()
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

// flushPending writes frames that were enqueued before the close signal.
func (c *Connection) flushPending() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) teardown() {
	// Covers the write-error exit path, where nobody called Close yet.
	c.Close(websocket.CloseAbnormalClosure, "write failure")

	deadline := time.Now().Add(writeWait)
	_ = c.sock.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason), deadline)
	_ = c.sock.Close()
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.sock.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.sock.WriteMessage(websocket.PingMessage, nil)
}
