// Package ws wraps a gorilla websocket connection with write serialization.
//
// A session owns its connection exclusively, but the receive loop and an
// in-flight turn goroutine may both write to it. All writes go through one
// mutex, carry a deadline, and become no-ops once the connection is closed so
// a turn finishing after disconnect cannot crash the session.
package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var ErrClosed = errors.New("ws: connection closed")

type Conn struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func Wrap(c *websocket.Conn) *Conn {
	return &Conn{conn: c}
}

// SendJSON writes v as a text frame. Returns ErrClosed after Close.
func (c *Conn) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// SendBinary writes raw bytes as a binary frame. Returns ErrClosed after Close.
func (c *Conn) SendBinary(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close marks the wrapper closed and closes the underlying connection.
// Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
