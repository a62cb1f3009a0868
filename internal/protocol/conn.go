package protocol

import (
	"net"
	"sync"
	"time"
)

// Conn wraps a net.Conn with a write mutex so concurrent goroutines (a
// handler loop and a broadcast from the room registry, for instance) can
// each send a frame without interleaving bytes on the wire.
type Conn struct {
	nc net.Conn

	writeMu sync.Mutex
}

// NewConn wraps nc for framed message exchange.
func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc}
}

// Read blocks until one full frame has arrived.
func (c *Conn) Read() (*Message, error) {
	return ReadMessage(c.nc)
}

// Write serializes msg and sends it, safe for concurrent use.
func (c *Conn) Write(msg *Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteMessage(c.nc, msg)
}

// WriteRaw sends pre-encoded bytes under the same write lock, used by
// download streaming to avoid re-encoding each chunk's envelope twice.
func (c *Conn) WriteRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.nc.Write(data)
	return err
}

// SetDeadline proxies to the underlying connection.
func (c *Conn) SetDeadline(t time.Time) error { return c.nc.SetDeadline(t) }

// RemoteAddr proxies to the underlying connection.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.nc.Close() }
