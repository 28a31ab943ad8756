package connection

import (
	"context"
	"net"
)

// Conn is the transport surface the peer layer talks through. One
// goroutine reads frames; writes may come from any goroutine.
type Conn interface {
	ReadFrame() ([]byte, error)     // Reads the next complete message
	Write(b []byte) (int, error)    // Writes one serialized message
	Close() error                   // Close the connection
	LocalAddr() net.Addr            // Returns the local address
	RemoteAddr() net.Addr           // Returns the remote address
	Context() context.Context       // Returns the internal context
	SetContext(ctx context.Context) // Stores a new context
	Connection() net.Conn           // Returns the network connection
}
