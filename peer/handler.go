package peer

import (
	"runtime/debug"

	"github.com/telcoflow/diampeer/commands/base"
	"github.com/telcoflow/diampeer/pkg/logger"
)

// Handler receives application messages, anything that is not a base
// protocol command. Handlers run on the connection's read goroutine:
// a slow handler stalls that one peer, never the node.
type Handler interface {
	Handle(c *Conn, m base.Message)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(c *Conn, m base.Message)

// Handle calls f(c, m).
func (f HandlerFunc) Handle(c *Conn, m base.Message) { f(c, m) }

// Middleware wraps a Handler with cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain applies middleware to h, first element outermost.
func Chain(h Handler, mw ...Middleware) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logging logs every message reaching the application handler.
func Logging(log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(c *Conn, m base.Message) {
			log.Debugw("application message",
				"remote", c.RemoteAddr().String(),
				"host", c.HostIdentity(),
				"msg", m.String())
			next.Handle(c, m)
		})
	}
}

// Recovery converts a handler panic into a logged error so one bad
// message cannot take the read loop down.
func Recovery(log logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(c *Conn, m base.Message) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("handler panic",
						"remote", c.RemoteAddr().String(),
						"msg", m.String(),
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			next.Handle(c, m)
		})
	}
}
