// Package connection wraps a network connection with Diameter stream
// framing: ReadFrame returns exactly one message per call, sliced by
// the header's declared length, regardless of how the bytes arrived
// on the socket.
package connection

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"
)

// Config holds configuration for a connection.
type Config struct {
	ReadTimeout  time.Duration // per-frame read deadline; 0 disables (watchdog owns liveness)
	WriteTimeout time.Duration // per-write deadline
	MaxFrameSize int           // largest acceptable declared message length
}

// DefaultConfig returns default connection configuration.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:  0,
		WriteTimeout: 10 * time.Second,
		MaxFrameSize: 1 << 20,
	}
}

// conn wraps a network connection with buffered framing. Used for
// both dialed and accepted connections.
type conn struct {
	rwc    net.Conn
	buf    *bufio.ReadWriter
	config *Config

	wmu sync.Mutex

	ctx   context.Context
	ctxMu sync.Mutex
}

// New creates a new connection wrapper.
func New(rwc net.Conn, config *Config) Conn {
	if config == nil {
		config = DefaultConfig()
	}
	c := &conn{
		rwc:    rwc,
		config: config,
		ctx:    context.Background(),
	}
	c.buf = bufio.NewReadWriter(bufio.NewReader(rwc), bufio.NewWriter(rwc))
	return c
}

// Write sends one serialized message. The buffered writer is always
// flushed so a message is never left sitting in userspace.
func (c *conn) Write(b []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.config.WriteTimeout > 0 {
		c.rwc.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	n, err := c.buf.Writer.Write(b)
	if err != nil {
		return 0, err
	}
	if err = c.buf.Writer.Flush(); err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying connection.
func (c *conn) Close() error {
	return c.rwc.Close()
}

// LocalAddr returns the local address of the connection.
func (c *conn) LocalAddr() net.Addr {
	return c.rwc.LocalAddr()
}

// RemoteAddr returns the peer address of the connection.
func (c *conn) RemoteAddr() net.Addr {
	return c.rwc.RemoteAddr()
}

// Context returns the internal context or a new context.Background.
func (c *conn) Context() context.Context {
	c.ctxMu.Lock()
	defer c.ctxMu.Unlock()
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c.ctx
}

// SetContext replaces the internal context with the given one.
func (c *conn) SetContext(ctx context.Context) {
	c.ctxMu.Lock()
	c.ctx = ctx
	c.ctxMu.Unlock()
}

// Connection returns the underlying network connection.
func (c *conn) Connection() net.Conn {
	return c.rwc
}

// ReadFrame reads the next complete message from the stream.
func (c *conn) ReadFrame() ([]byte, error) {
	if c.config.ReadTimeout > 0 {
		c.rwc.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
	return readFrame(c.buf.Reader, c.config.MaxFrameSize)
}
