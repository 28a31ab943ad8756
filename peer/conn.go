package peer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/commands/base"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/connection"
	"github.com/telcoflow/diampeer/pkg/logger"
)

// ErrConnectionClosed is returned by Send after the connection closed.
var ErrConnectionClosed = errors.New("peer: connection closed")

// Conn is one established peer connection. A single goroutine owned by
// the Node reads and dispatches frames; Send is safe from any
// goroutine. All base-protocol commands (CER/CEA, DWR/DWA, DPR/DPA)
// are handled internally and never reach the application handler.
type Conn struct {
	node     *Node
	tc       connection.Conn
	peer     *Peer // nil for accepted connections
	outbound bool

	state atomic.Int32

	hostIdentity atomic.Value // string, set after capabilities exchange

	openedAt     time.Time
	lastActivity atomic.Int64 // unix nanos of the last message in or out
	dwrSentAt    atomic.Int64 // unix nanos, zero when no watchdog outstanding

	hopByHop atomic.Uint32
	endToEnd atomic.Uint32

	msgsIn   atomic.Uint64
	msgsOut  atomic.Uint64
	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
	closed    chan struct{}
	closeOnce sync.Once
	cause     DisconnectCause
	closeErr  error

	log logger.Logger
}

func newConn(n *Node, tc connection.Conn, p *Peer, outbound bool) *Conn {
	now := time.Now()
	c := &Conn{
		node:     n,
		tc:       tc,
		peer:     p,
		outbound: outbound,
		openedAt: now,
		ready:    make(chan struct{}),
		closed:   make(chan struct{}),
		log:      n.log.With("remote", tc.RemoteAddr().String()),
	}
	c.state.Store(int32(StateConnected))
	c.lastActivity.Store(now.UnixNano())
	// RFC 6733 section 3: seed End-to-End with time in the high bits so
	// ids stay unique across restarts.
	c.endToEnd.Store(uint32(now.Unix()) << 20)
	return c
}

// State returns the current connection state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

func (c *Conn) transition(to State) {
	from := State(c.state.Swap(int32(to)))
	if from == to {
		return
	}
	c.node.collector.Transition(from.String(), to.String())
	c.log.Debugw("peer state transition", "from", from.String(), "to", to.String())
}

// HostIdentity returns the peer's Origin-Host learned during
// capabilities exchange, or "" before the exchange completes.
func (c *Conn) HostIdentity() string {
	if v := c.hostIdentity.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// Node returns the Node owning this connection.
func (c *Conn) Node() *Node { return c.node }

// Peer returns the dialed peer entry, or nil for accepted connections.
func (c *Conn) Peer() *Peer { return c.peer }

// Outbound reports whether this node initiated the connection.
func (c *Conn) Outbound() bool { return c.outbound }

// LocalAddr returns the local transport address.
func (c *Conn) LocalAddr() net.Addr { return c.tc.LocalAddr() }

// RemoteAddr returns the remote transport address.
func (c *Conn) RemoteAddr() net.Addr { return c.tc.RemoteAddr() }

// Done is closed when the connection reaches Closed.
func (c *Conn) Done() <-chan struct{} { return c.closed }

// Cause returns the disconnect cause, valid once Done is closed.
func (c *Conn) Cause() DisconnectCause { return c.cause }

// NextHopByHopID allocates a hop-by-hop identifier for a request.
func (c *Conn) NextHopByHopID() uint32 { return c.hopByHop.Add(1) }

// NextEndToEndID allocates an end-to-end identifier for a request.
func (c *Conn) NextEndToEndID() uint32 { return c.endToEnd.Add(1) }

func (c *Conn) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// Send serializes and writes one message. A transport failure closes
// the connection with CauseSocketFail.
func (c *Conn) Send(m base.Message) error {
	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", m.String(), err)
	}
	if _, err := c.tc.Write(data); err != nil {
		c.close(CauseSocketFail, err)
		return err
	}
	c.touch()
	c.msgsOut.Add(1)
	c.bytesOut.Add(uint64(len(data)))
	c.node.collector.MessageOut(m.GetHeader().CommandCode)
	return nil
}

// Stats is a snapshot of the connection's traffic counters.
type Stats struct {
	MessagesIn  uint64
	MessagesOut uint64
	BytesIn     uint64
	BytesOut    uint64
}

// Stats returns the connection's traffic counters.
func (c *Conn) Stats() Stats {
	return Stats{
		MessagesIn:  c.msgsIn.Load(),
		MessagesOut: c.msgsOut.Load(),
		BytesIn:     c.bytesIn.Load(),
		BytesOut:    c.bytesOut.Load(),
	}
}

// SendRequest stamps fresh hop-by-hop and end-to-end identifiers on a
// request before sending it. Identifiers already set are kept, so
// retransmissions keep their end-to-end id.
func (c *Conn) SendRequest(m base.Message) error {
	h := m.GetHeader()
	if !h.Flags.Request {
		return base.ErrInvalidMessage{Reason: "SendRequest on an answer"}
	}
	if h.HopByHopID == 0 {
		h.HopByHopID = c.NextHopByHopID()
	}
	if h.EndToEndID == 0 {
		h.EndToEndID = c.NextEndToEndID()
	}
	return c.Send(m)
}

// Close tears the connection down immediately, without the DPR
// handshake.
func (c *Conn) Close() error {
	c.close(CauseCleanDisconnect, nil)
	return nil
}

func (c *Conn) close(cause DisconnectCause, err error) {
	c.closeOnce.Do(func() {
		c.cause = cause
		c.closeErr = err
		c.transition(StateClosed)
		_ = c.tc.Close()
		close(c.closed)
		if c.peer != nil {
			c.peer.detach(c)
		}
		c.node.connClosed(c, cause, err)
	})
}

func (c *Conn) signalReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// waitReady blocks until the capabilities exchange completes, the
// connection closes, or ctx expires.
func (c *Conn) waitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.closed:
		if c.closeErr != nil {
			return c.closeErr
		}
		return fmt.Errorf("peer: connection closed during handshake (%s)", c.cause)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readLoop is the single reader for this connection. It exits by
// closing the connection; every exit path carries a cause.
func (c *Conn) readLoop() {
	for {
		data, err := c.tc.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				c.close(CauseCleanDisconnect, nil)
			case errors.Is(err, net.ErrClosed):
				// our own Close raced the read
				c.close(CauseCleanDisconnect, nil)
			default:
				c.close(CauseSocketFail, err)
			}
			return
		}
		msg, err := base.Decode(data, c.node.commands, c.node.dict)
		if err != nil {
			c.node.collector.DecodeError()
			c.close(CauseSocketFail, fmt.Errorf("decode frame: %w", err))
			return
		}
		c.touch()
		c.msgsIn.Add(1)
		c.bytesIn.Add(uint64(len(data)))
		c.node.collector.MessageIn(msg.GetHeader().CommandCode)
		c.dispatch(msg)
	}
}

func (c *Conn) dispatch(m base.Message) {
	switch msg := m.(type) {
	case *base.CapabilitiesExchangeRequest:
		c.handleCER(msg)
	case *base.CapabilitiesExchangeAnswer:
		c.handleCEA(msg)
	case *base.DeviceWatchdogRequest:
		c.handleDWR(msg)
	case *base.DeviceWatchdogAnswer:
		c.handleDWA(msg)
	case *base.DisconnectPeerRequest:
		c.handleDPR(msg)
	case *base.DisconnectPeerAnswer:
		c.handleDPA(msg)
	case *base.UndefinedMessage:
		// A registered command may decode into the generic class when
		// its descriptor constructs one; that still belongs to the
		// application. Only truly unknown codes get the 3001 answer.
		if _, registered := c.node.commands.Lookup(msg.Header.CommandCode); registered {
			c.node.handler.Handle(c, m)
		} else if msg.Header.Flags.Request {
			c.answerUnsupported(msg)
		} else {
			c.log.Warnw("answer for unknown command", "code", msg.Header.CommandCode)
		}
	default:
		c.node.handler.Handle(c, m)
	}
}

func (c *Conn) handleCER(req *base.CapabilitiesExchangeRequest) {
	if c.outbound {
		// We initiated; a CER from the responder side is out of order.
		// Connection election is not implemented, answer it anyway.
		c.log.Warnw("CER on an initiated connection", "origin_host", string(req.OriginHost))
	}
	c.hostIdentity.Store(string(req.OriginHost))

	cea := req.ToAnswer()
	cea.ResultCode = models_base.Unsigned32(base.ResultCodeSuccess)
	c.node.fillCapabilities(&cea.OriginHost, &cea.OriginRealm, &cea.VendorId, &cea.ProductName,
		&cea.OriginStateId, &cea.FirmwareRevision, &cea.AuthApplicationId, &cea.AcctApplicationId)
	cea.HostIpAddress = c.advertisedAddresses()
	if err := c.Send(cea); err != nil {
		return
	}
	if c.State() == StateConnected {
		c.transition(StateReady)
		c.signalReady()
	}
}

func (c *Conn) handleCEA(ans *base.CapabilitiesExchangeAnswer) {
	if !base.ResultCode(ans.ResultCode).IsSuccess() {
		c.close(CauseCerRejected, fmt.Errorf("peer %s rejected capabilities exchange: result code %d",
			ans.OriginHost, uint32(ans.ResultCode)))
		return
	}
	c.hostIdentity.Store(string(ans.OriginHost))
	if c.State() == StateConnected {
		c.transition(StateReady)
	}
	c.signalReady()
}

func (c *Conn) handleDWR(req *base.DeviceWatchdogRequest) {
	dwa := req.ToAnswer()
	dwa.ResultCode = models_base.Unsigned32(base.ResultCodeSuccess)
	dwa.OriginHost = models_base.DiameterIdentity(c.node.identity.OriginHost)
	dwa.OriginRealm = models_base.DiameterIdentity(c.node.identity.OriginRealm)
	dwa.OriginStateId = models_base.Unsigned32(c.node.identity.OriginStateID)
	_ = c.Send(dwa)
}

func (c *Conn) handleDWA(ans *base.DeviceWatchdogAnswer) {
	if c.dwrSentAt.Swap(0) == 0 {
		c.log.Debugw("unsolicited DWA", "result", uint32(ans.ResultCode))
		return
	}
	// Any answer, success or not, proves the peer is alive.
	if c.State() == StateReadyWaitingDWA {
		c.transition(StateReady)
	}
}

func (c *Conn) handleDPR(req *base.DisconnectPeerRequest) {
	c.log.Infow("peer requested disconnect", "origin_host", string(req.OriginHost),
		"cause", uint32(req.DisconnectCause))
	dpa := req.ToAnswer()
	dpa.ResultCode = models_base.Unsigned32(base.ResultCodeSuccess)
	dpa.OriginHost = models_base.DiameterIdentity(c.node.identity.OriginHost)
	dpa.OriginRealm = models_base.DiameterIdentity(c.node.identity.OriginRealm)
	_ = c.Send(dpa)
	c.close(CauseCleanDisconnect, nil)
}

func (c *Conn) handleDPA(ans *base.DisconnectPeerAnswer) {
	if c.State() == StateClosing {
		c.close(CauseNodeShutdown, nil)
		return
	}
	c.log.Debugw("unsolicited DPA", "result", uint32(ans.ResultCode))
}

// answerUnsupported replies 3001 to a request this node has no command
// class for. The connection stays up; unknown commands are a peer
// capability gap, not a transport fault.
func (c *Conn) answerUnsupported(req *base.UndefinedMessage) {
	ans := req.ToAnswer()
	ans.Header.Flags.Error = true
	for _, spec := range []struct {
		code  uint32
		value models_base.Type
	}{
		{dict.CodeResultCode, models_base.Unsigned32(base.ResultCodeCommandUnsupported)},
		{dict.CodeOriginHost, models_base.DiameterIdentity(c.node.identity.OriginHost)},
		{dict.CodeOriginRealm, models_base.DiameterIdentity(c.node.identity.OriginRealm)},
	} {
		a, err := avp.New(c.node.dict, spec.code, 0, spec.value)
		if err != nil {
			c.log.Errorw("build protocol error answer", "err", err)
			return
		}
		ans.AVPs = append(ans.AVPs, a)
	}
	c.log.Warnw("unsupported command", "code", req.Header.CommandCode)
	_ = c.Send(ans)
}

// checkTimers advances the connection's timers. Called from the Node's
// sweep goroutine; now is the sweep tick time.
func (c *Conn) checkTimers(now time.Time) {
	switch c.State() {
	case StateConnected:
		if now.Sub(c.openedAt) >= c.node.cfg.CEATimeout {
			c.close(CauseFailedConnectCE,
				fmt.Errorf("no capabilities exchange within %s", c.node.cfg.CEATimeout))
		}
	case StateReady:
		if now.Sub(time.Unix(0, c.lastActivity.Load())) >= c.node.cfg.IdleTimeout {
			c.sendWatchdog(now)
		}
	case StateReadyWaitingDWA:
		sent := c.dwrSentAt.Load()
		if sent != 0 && now.Sub(time.Unix(0, sent)) >= c.node.cfg.DWATimeout {
			c.close(CauseDwaTimeout,
				fmt.Errorf("no watchdog answer within %s", c.node.cfg.DWATimeout))
		}
	}
}

func (c *Conn) sendWatchdog(now time.Time) {
	dwr := base.NewDeviceWatchdogRequest()
	dwr.OriginHost = models_base.DiameterIdentity(c.node.identity.OriginHost)
	dwr.OriginRealm = models_base.DiameterIdentity(c.node.identity.OriginRealm)
	dwr.OriginStateId = models_base.Unsigned32(c.node.identity.OriginStateID)
	c.dwrSentAt.Store(now.UnixNano())
	c.transition(StateReadyWaitingDWA)
	_ = c.SendRequest(dwr)
}

// shutdown runs the orderly local disconnect: DPR, wait for the DPA
// (or the peer's close), then tear down. Used by Node.Close.
func (c *Conn) shutdown() {
	if !c.State().IsActive() {
		c.close(CauseNodeShutdown, nil)
		return
	}
	c.transition(StateClosing)
	dpr := base.NewDisconnectPeerRequest()
	dpr.OriginHost = models_base.DiameterIdentity(c.node.identity.OriginHost)
	dpr.OriginRealm = models_base.DiameterIdentity(c.node.identity.OriginRealm)
	dpr.DisconnectCause = models_base.Enumerated(base.DisconnectCauseRebooting)
	if err := c.SendRequest(dpr); err != nil {
		return
	}
	select {
	case <-c.closed:
	case <-time.After(c.node.cfg.DisconnectTimeout):
		c.close(CauseNodeShutdown,
			fmt.Errorf("no disconnect answer within %s", c.node.cfg.DisconnectTimeout))
	}
}

// advertisedAddresses resolves the Host-IP-Address set for this
// connection: configured addresses win, otherwise the socket's local
// address.
func (c *Conn) advertisedAddresses() []models_base.Address {
	if len(c.node.identity.HostIPAddresses) > 0 {
		out := make([]models_base.Address, 0, len(c.node.identity.HostIPAddresses))
		for _, s := range c.node.identity.HostIPAddresses {
			out = append(out, models_base.ParseAddress(s))
		}
		return out
	}
	if ta, ok := c.tc.LocalAddr().(*net.TCPAddr); ok {
		return []models_base.Address{models_base.ParseAddress(ta.IP.String())}
	}
	return nil
}
