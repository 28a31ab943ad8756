package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/telcoflow/diampeer/commands/base"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/connection"
	"github.com/telcoflow/diampeer/pkg/logger"
	"github.com/telcoflow/diampeer/pkg/metrics"
)

// ErrNodeClosed is returned by Listen and DialPeer after Close.
var ErrNodeClosed = errors.New("peer: node closed")

// Node is a Diameter node: it accepts and dials peer connections,
// drives capabilities exchange and the watchdog on each, and routes
// application messages to the configured Handler. One Node runs one
// sweep goroutine for all its connections' timers.
type Node struct {
	identity  Identity
	cfg       *Config
	dict      *dict.Registry
	commands  *base.Registry
	handler   Handler
	log       logger.Logger
	collector *metrics.Collector

	lnMu sync.Mutex
	ln   net.Listener

	connMu sync.Mutex
	conns  map[*Conn]struct{}

	events chan DisconnectEvent

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	sweepOnce sync.Once
	closeOnce sync.Once
}

// Option configures a Node.
type Option func(*Node)

// WithConfig sets the peer-layer timers and transport configuration.
func WithConfig(cfg *Config) Option {
	return func(n *Node) { n.cfg = cfg }
}

// WithLogger sets the node's logger.
func WithLogger(log logger.Logger) Option {
	return func(n *Node) { n.log = log }
}

// WithMetrics attaches a metrics collector. Without one, metric calls
// are no-ops.
func WithMetrics(c *metrics.Collector) Option {
	return func(n *Node) { n.collector = c }
}

// WithHandler sets the application message handler.
func WithHandler(h Handler) Option {
	return func(n *Node) { n.handler = h }
}

// WithDictionary sets the AVP dictionary used for decoding.
func WithDictionary(d *dict.Registry) Option {
	return func(n *Node) { n.dict = d }
}

// WithCommands sets the command registry. Extend base.Default with the
// application's descriptors so their messages decode into typed
// classes instead of UndefinedMessage.
func WithCommands(r *base.Registry) Option {
	return func(n *Node) { n.commands = r }
}

// NewNode builds a Node advertising identity. Defaults: base dictionary
// and command registry, default timers, the package logger, no metrics,
// and a handler that logs and drops application messages.
func NewNode(identity Identity, opts ...Option) *Node {
	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		identity: identity,
		cfg:      DefaultConfig(),
		dict:     dict.Base(),
		commands: base.Default(),
		log:      logger.Log,
		conns:    make(map[*Conn]struct{}),
		events:   make(chan DisconnectEvent, 64),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, o := range opts {
		o(n)
	}
	if n.handler == nil {
		n.handler = HandlerFunc(func(c *Conn, m base.Message) {
			n.log.Warnw("no handler for application message",
				"remote", c.RemoteAddr().String(), "msg", m.String())
		})
	}
	return n
}

// Identity returns the node's advertised identity.
func (n *Node) Identity() Identity { return n.identity }

// Events delivers one DisconnectEvent per closed connection. The
// channel is buffered; if the consumer falls behind, events are logged
// and dropped rather than blocking the peer layer. Closed by Close.
func (n *Node) Events() <-chan DisconnectEvent { return n.events }

// Listen starts accepting peer connections on addr. Each accepted
// connection waits in Connected for the peer's CER.
func (n *Node) Listen(addr string) error {
	if n.ctx.Err() != nil {
		return ErrNodeClosed
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	n.lnMu.Lock()
	n.ln = ln
	n.lnMu.Unlock()
	n.log.Infow("listening", "addr", ln.Addr().String())
	n.startSweep()
	n.wg.Add(1)
	go n.acceptLoop(ln)
	return nil
}

// Addr returns the listener address, or nil before Listen.
func (n *Node) Addr() net.Addr {
	n.lnMu.Lock()
	defer n.lnMu.Unlock()
	if n.ln == nil {
		return nil
	}
	return n.ln.Addr()
}

func (n *Node) acceptLoop(ln net.Listener) {
	defer n.wg.Done()
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				n.log.Warnw("accept failed", "err", err)
			}
			return
		}
		n.startConn(nc, nil, false)
	}
}

// DialPeer connects to p, sends CER and waits for a successful CEA.
// The returned connection is Ready. A failed handshake closes the
// connection and returns the cause.
func (n *Node) DialPeer(ctx context.Context, p *Peer) (*Conn, error) {
	if n.ctx.Err() != nil {
		return nil, ErrNodeClosed
	}
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", p.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial peer %s: %w", p.Addr(), err)
	}
	n.startSweep()
	c := n.startConn(nc, p, true)

	cer := base.NewCapabilitiesExchangeRequest()
	n.fillCapabilities(&cer.OriginHost, &cer.OriginRealm, &cer.VendorId, &cer.ProductName,
		&cer.OriginStateId, &cer.FirmwareRevision, &cer.AuthApplicationId, &cer.AcctApplicationId)
	cer.HostIpAddress = c.advertisedAddresses()
	if err := c.SendRequest(cer); err != nil {
		return nil, fmt.Errorf("send CER to %s: %w", p.Addr(), err)
	}
	if err := c.waitReady(ctx); err != nil {
		c.close(CauseFailedConnectCE, err)
		return nil, fmt.Errorf("capabilities exchange with %s: %w", p.Addr(), err)
	}
	n.log.Infow("peer ready", "host", c.HostIdentity(), "remote", c.RemoteAddr().String())
	return c, nil
}

func (n *Node) startConn(nc net.Conn, p *Peer, outbound bool) *Conn {
	tc := connection.New(nc, n.cfg.Connection)
	c := newConn(n, tc, p, outbound)
	n.connMu.Lock()
	n.conns[c] = struct{}{}
	n.connMu.Unlock()
	n.collector.ConnOpened()
	if p != nil {
		p.attach(c)
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		c.readLoop()
	}()
	return c
}

// Conns returns a snapshot of the open connections.
func (n *Node) Conns() []*Conn {
	n.connMu.Lock()
	defer n.connMu.Unlock()
	out := make([]*Conn, 0, len(n.conns))
	for c := range n.conns {
		out = append(out, c)
	}
	return out
}

// ConnByHost finds the open connection whose peer advertised host, or
// nil.
func (n *Node) ConnByHost(host string) *Conn {
	for _, c := range n.Conns() {
		if c.HostIdentity() == host {
			return c
		}
	}
	return nil
}

func (n *Node) connClosed(c *Conn, cause DisconnectCause, err error) {
	n.connMu.Lock()
	delete(n.conns, c)
	n.connMu.Unlock()
	n.collector.ConnClosed(cause.String())
	n.log.Infow("peer connection closed",
		"remote", c.RemoteAddr().String(),
		"host", c.HostIdentity(),
		"cause", cause.String(),
		"err", err)
	if n.ctx.Err() != nil {
		// Close has taken over; it closes the events channel once the
		// node's goroutines have drained.
		return
	}
	ev := DisconnectEvent{Conn: c, HostIdentity: c.HostIdentity(), Cause: cause, Err: err}
	select {
	case n.events <- ev:
	default:
		n.log.Warnw("disconnect event dropped, slow consumer",
			"host", ev.HostIdentity, "cause", cause.String())
	}
}

func (n *Node) startSweep() {
	n.sweepOnce.Do(func() {
		n.wg.Add(1)
		go n.sweepLoop()
	})
}

// sweepLoop drives every connection's timers from one goroutine, so
// timer work stays O(connections) per tick with no per-peer timers.
func (n *Node) sweepLoop() {
	defer n.wg.Done()
	t := time.NewTicker(n.cfg.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-n.ctx.Done():
			return
		case now := <-t.C:
			for _, c := range n.Conns() {
				c.checkTimers(now)
			}
		}
	}
}

// Close stops the listener, disconnects every peer with DPR
// (DISCONNECT-CAUSE REBOOTING), waits for the node's goroutines, and
// closes the events channel. Safe to call more than once.
func (n *Node) Close() error {
	var errs error
	n.closeOnce.Do(func() {
		n.lnMu.Lock()
		if n.ln != nil {
			if err := n.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = multierr.Append(errs, err)
			}
		}
		n.lnMu.Unlock()

		var dwg sync.WaitGroup
		for _, c := range n.Conns() {
			dwg.Add(1)
			go func(c *Conn) {
				defer dwg.Done()
				c.shutdown()
			}(c)
		}
		dwg.Wait()

		n.cancel()
		n.wg.Wait()
		close(n.events)
		n.log.Infow("node stopped", "host", n.identity.OriginHost)
	})
	return errs
}

// fillCapabilities copies the node identity into the capability fields
// shared by CER and CEA.
func (n *Node) fillCapabilities(host, realm *models_base.DiameterIdentity,
	vendor *models_base.Unsigned32, product *models_base.UTF8String,
	stateID, firmware *models_base.Unsigned32, auth, acct *[]models_base.Unsigned32) {
	*host = models_base.DiameterIdentity(n.identity.OriginHost)
	*realm = models_base.DiameterIdentity(n.identity.OriginRealm)
	*vendor = models_base.Unsigned32(n.identity.VendorID)
	*product = models_base.UTF8String(n.identity.ProductName)
	*stateID = models_base.Unsigned32(n.identity.OriginStateID)
	*firmware = models_base.Unsigned32(n.identity.FirmwareRevision)
	for _, id := range n.identity.AuthApplicationIDs {
		*auth = append(*auth, models_base.Unsigned32(id))
	}
	for _, id := range n.identity.AcctApplicationIDs {
		*acct = append(*acct, models_base.Unsigned32(id))
	}
}
