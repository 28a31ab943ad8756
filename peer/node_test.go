package peer_test

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/commands/base"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/peer"
	"github.com/telcoflow/diampeer/pkg/connection"
	"github.com/telcoflow/diampeer/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.SetLevel("error")
	goleak.VerifyTestMain(m)
}

func testIdentity(host string) peer.Identity {
	return peer.Identity{
		OriginHost:         host,
		OriginRealm:        "example.com",
		ProductName:        "diampeer-test",
		VendorID:           99999,
		OriginStateID:      1,
		AuthApplicationIDs: []uint32{4},
	}
}

func newTestNode(t *testing.T, host string, opts ...peer.Option) *peer.Node {
	t.Helper()
	n := peer.NewNode(testIdentity(host), opts...)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func shortConfig() *peer.Config {
	cfg := peer.DefaultConfig()
	cfg.SweepInterval = 10 * time.Millisecond
	cfg.IdleTimeout = 50 * time.Millisecond
	cfg.DWATimeout = 150 * time.Millisecond
	cfg.CEATimeout = time.Second
	return cfg
}

func dialTo(t *testing.T, n *peer.Node, target *peer.Node) *peer.Conn {
	t.Helper()
	addr := target.Addr().(*net.TCPAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := n.DialPeer(ctx, &peer.Peer{Name: "target", Host: "127.0.0.1", Port: addr.Port})
	if err != nil {
		t.Fatalf("DialPeer: %v", err)
	}
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCapabilitiesExchange(t *testing.T) {
	a := newTestNode(t, "a.example.com")
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	b := newTestNode(t, "b.example.com")

	conn := dialTo(t, b, a)
	if got := conn.State(); got != peer.StateReady {
		t.Fatalf("dialer state = %s, want Ready", got)
	}
	if got := conn.HostIdentity(); got != "a.example.com" {
		t.Fatalf("dialer HostIdentity = %q, want a.example.com", got)
	}
	if !conn.Outbound() {
		t.Fatal("dialer connection not marked outbound")
	}

	waitFor(t, "accepted connection ready", func() bool {
		c := a.ConnByHost("b.example.com")
		return c != nil && c.State() == peer.StateReady
	})
	accepted := a.ConnByHost("b.example.com")
	if accepted.Outbound() {
		t.Fatal("accepted connection marked outbound")
	}

	// CER out, CEA in at minimum.
	st := conn.Stats()
	if st.MessagesOut == 0 || st.MessagesIn == 0 || st.BytesOut == 0 || st.BytesIn == 0 {
		t.Errorf("traffic counters not advancing: %+v", st)
	}
}

func TestWatchdogKeepsIdleConnectionAlive(t *testing.T) {
	cfg := shortConfig()
	a := newTestNode(t, "a.example.com", peer.WithConfig(cfg))
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	b := newTestNode(t, "b.example.com", peer.WithConfig(shortConfig()))

	conn := dialTo(t, b, a)

	// Stay quiet across several idle periods. The watchdog fires and is
	// answered, so the connection never leaves the active states.
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		if s := conn.State(); !s.IsActive() {
			t.Fatalf("connection left active state: %s (cause %s)", s, conn.Cause())
		}
		time.Sleep(10 * time.Millisecond)
	}
	waitFor(t, "connection back in Ready", func() bool {
		return conn.State() == peer.StateReady
	})
}

func TestWatchdogTimeoutClosesConnection(t *testing.T) {
	// A hand-driven peer that completes capabilities exchange, then
	// swallows every message without answering.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	sawDWR := make(chan struct{})
	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		tc := connection.New(nc, connection.DefaultConfig())
		defer tc.Close()
		frame, err := tc.ReadFrame()
		if err != nil {
			return
		}
		cer := &base.CapabilitiesExchangeRequest{}
		if err := cer.Unmarshal(frame); err != nil {
			return
		}
		cea := cer.ToAnswer()
		cea.ResultCode = models_base.Unsigned32(base.ResultCodeSuccess)
		cea.OriginHost = "silent.example.com"
		cea.OriginRealm = "example.com"
		cea.HostIpAddress = []models_base.Address{models_base.ParseAddress("127.0.0.1")}
		cea.VendorId = 99999
		cea.ProductName = "silent"
		data, err := cea.Marshal()
		if err != nil {
			return
		}
		if _, err := tc.Write(data); err != nil {
			return
		}
		seen := false
		for {
			frame, err := tc.ReadFrame()
			if err != nil {
				return
			}
			h, err := base.ParseHeader(frame)
			if err != nil {
				return
			}
			if h.CommandCode == base.CodeDeviceWatchdog && !seen {
				seen = true
				close(sawDWR)
			}
		}
	}()

	b := newTestNode(t, "b.example.com", peer.WithConfig(shortConfig()))
	addr := ln.Addr().(*net.TCPAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := b.DialPeer(ctx, &peer.Peer{Host: "127.0.0.1", Port: addr.Port})
	if err != nil {
		t.Fatalf("DialPeer: %v", err)
	}

	select {
	case <-sawDWR:
	case <-time.After(5 * time.Second):
		t.Fatal("peer never received a DWR")
	}
	select {
	case <-conn.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("connection not closed after unanswered watchdog")
	}
	if got := conn.Cause(); got != peer.CauseDwaTimeout {
		t.Fatalf("disconnect cause = %s, want DwaTimeout", got)
	}

	select {
	case ev := <-b.Events():
		if ev.Cause != peer.CauseDwaTimeout {
			t.Fatalf("event cause = %s, want DwaTimeout", ev.Cause)
		}
		if ev.HostIdentity != "silent.example.com" {
			t.Fatalf("event host = %q, want silent.example.com", ev.HostIdentity)
		}
	case <-time.After(time.Second):
		t.Fatal("no disconnect event delivered")
	}
}

func TestNodeShutdownRunsDisconnectHandshake(t *testing.T) {
	a := newTestNode(t, "a.example.com")
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	b := newTestNode(t, "b.example.com")
	conn := dialTo(t, b, a)

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := conn.Cause(); got != peer.CauseNodeShutdown {
		t.Fatalf("initiator cause = %s, want NodeShutdown", got)
	}

	select {
	case ev := <-a.Events():
		if ev.Cause != peer.CauseCleanDisconnect {
			t.Fatalf("responder cause = %s, want CleanDisconnect", ev.Cause)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("responder never saw the disconnect")
	}
}

func TestUnknownCommandAnswered3001(t *testing.T) {
	a := newTestNode(t, "a.example.com")
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	nc, err := net.Dial("tcp", a.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	tc := connection.New(nc, connection.DefaultConfig())
	defer tc.Close()

	cer := base.NewCapabilitiesExchangeRequest()
	cer.Header.HopByHopID = 1
	cer.Header.EndToEndID = 1
	cer.OriginHost = "raw.example.com"
	cer.OriginRealm = "example.com"
	cer.HostIpAddress = []models_base.Address{models_base.ParseAddress("127.0.0.1")}
	cer.VendorId = 99999
	cer.ProductName = "raw"
	data, err := cer.Marshal()
	if err != nil {
		t.Fatalf("marshal CER: %v", err)
	}
	if _, err := tc.Write(data); err != nil {
		t.Fatalf("write CER: %v", err)
	}
	frame, err := tc.ReadFrame()
	if err != nil {
		t.Fatalf("read CEA: %v", err)
	}
	cea := &base.CapabilitiesExchangeAnswer{}
	if err := cea.Unmarshal(frame); err != nil {
		t.Fatalf("unmarshal CEA: %v", err)
	}
	if !base.ResultCode(cea.ResultCode).IsSuccess() {
		t.Fatalf("CEA result = %d, want success", uint32(cea.ResultCode))
	}

	req := &base.UndefinedMessage{Header: base.Header{
		Version:     base.DiameterVersion,
		CommandCode: 9999,
		Flags:       base.Flags{Request: true},
		HopByHopID:  7,
		EndToEndID:  9,
	}}
	data, err = req.Marshal()
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if _, err := tc.Write(data); err != nil {
		t.Fatalf("write request: %v", err)
	}
	frame, err = tc.ReadFrame()
	if err != nil {
		t.Fatalf("read answer: %v", err)
	}
	ans := &base.UndefinedMessage{}
	if err := ans.Unmarshal(frame); err != nil {
		t.Fatalf("unmarshal answer: %v", err)
	}
	if ans.Header.Flags.Request {
		t.Fatal("answer has the request flag set")
	}
	if !ans.Header.Flags.Error {
		t.Fatal("protocol error answer missing the E flag")
	}
	if ans.Header.HopByHopID != 7 || ans.Header.EndToEndID != 9 {
		t.Fatalf("correlation ids = %d/%d, want 7/9", ans.Header.HopByHopID, ans.Header.EndToEndID)
	}
	var result uint32
	for _, a := range ans.AVPs {
		if a.Code == dict.CodeResultCode {
			result = binary.BigEndian.Uint32(a.Data.Serialize())
		}
	}
	if result != uint32(base.ResultCodeCommandUnsupported) {
		t.Fatalf("Result-Code = %d, want 3001", result)
	}

	// The connection survives the unsupported command.
	dwr := base.NewDeviceWatchdogRequest()
	dwr.Header.HopByHopID = 2
	dwr.Header.EndToEndID = 2
	dwr.OriginHost = "raw.example.com"
	dwr.OriginRealm = "example.com"
	data, err = dwr.Marshal()
	if err != nil {
		t.Fatalf("marshal DWR: %v", err)
	}
	if _, err := tc.Write(data); err != nil {
		t.Fatalf("write DWR: %v", err)
	}
	if _, err := tc.ReadFrame(); err != nil {
		t.Fatalf("read DWA: %v", err)
	}
}

func TestRegisteredCommandReachesHandler(t *testing.T) {
	const pingCode = 9000

	descs := []base.CommandDescriptor{{
		Code: pingCode, Name: "Ping", Abbrev: "PG",
		NewRequest: func() base.Message { return &base.UndefinedMessage{} },
		NewAnswer:  func() base.Message { return &base.UndefinedMessage{} },
	}}
	regA, err := base.Default().Extend(descs)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	regB, err := base.Default().Extend(descs)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}

	echo := peer.HandlerFunc(func(c *peer.Conn, m base.Message) {
		req, ok := m.(*base.UndefinedMessage)
		if !ok || !req.Header.Flags.Request {
			return
		}
		ans := req.ToAnswer()
		ans.AVPs = req.AVPs
		_ = c.Send(ans)
	})
	a := newTestNode(t, "a.example.com", peer.WithCommands(regA), peer.WithHandler(echo))
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	answers := make(chan *base.UndefinedMessage, 1)
	collect := peer.HandlerFunc(func(c *peer.Conn, m base.Message) {
		if um, ok := m.(*base.UndefinedMessage); ok && !um.Header.Flags.Request {
			answers <- um
		}
	})
	b := newTestNode(t, "b.example.com", peer.WithCommands(regB), peer.WithHandler(collect))
	conn := dialTo(t, b, a)

	user, err := avp.New(dict.Base(), dict.CodeUserName, 0, models_base.UTF8String("alice"))
	if err != nil {
		t.Fatalf("avp.New: %v", err)
	}
	req := &base.UndefinedMessage{
		Header: base.Header{
			Version:     base.DiameterVersion,
			CommandCode: pingCode,
			Flags:       base.Flags{Request: true},
		},
		AVPs: []*avp.AVP{user},
	}
	if err := conn.SendRequest(req); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if req.Header.HopByHopID == 0 || req.Header.EndToEndID == 0 {
		t.Fatal("SendRequest did not stamp correlation ids")
	}

	select {
	case ans := <-answers:
		if ans.Header.CommandCode != pingCode {
			t.Fatalf("answer command = %d, want %d", ans.Header.CommandCode, pingCode)
		}
		if ans.Header.HopByHopID != req.Header.HopByHopID {
			t.Fatalf("hop-by-hop = %d, want %d", ans.Header.HopByHopID, req.Header.HopByHopID)
		}
		if len(ans.AVPs) != 1 || ans.AVPs[0].Code != dict.CodeUserName {
			t.Fatalf("answer AVPs = %v, want the echoed User-Name", ans.AVPs)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no answer reached the handler")
	}
}

func TestSendOnClosedConnection(t *testing.T) {
	a := newTestNode(t, "a.example.com")
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	b := newTestNode(t, "b.example.com")
	conn := dialTo(t, b, a)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	dwr := base.NewDeviceWatchdogRequest()
	dwr.OriginHost = "b.example.com"
	dwr.OriginRealm = "example.com"
	if err := conn.SendRequest(dwr); err != peer.ErrConnectionClosed {
		t.Fatalf("Send after close = %v, want ErrConnectionClosed", err)
	}
}

func TestDialAfterNodeClose(t *testing.T) {
	a := newTestNode(t, "a.example.com")
	if err := a.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	port := a.Addr().(*net.TCPAddr).Port

	b := newTestNode(t, "b.example.com")
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := b.DialPeer(ctx, &peer.Peer{Name: "a", Host: "127.0.0.1", Port: port})
	if err != peer.ErrNodeClosed {
		t.Fatalf("DialPeer after Close = %v, want ErrNodeClosed", err)
	}
	if err := b.Listen("127.0.0.1:0"); err != peer.ErrNodeClosed {
		t.Fatalf("Listen after Close = %v, want ErrNodeClosed", err)
	}
}
