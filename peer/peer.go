package peer

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/telcoflow/diampeer/pkg/connection"
)

// Identity is the local node's capabilities, advertised in every
// CER/CEA this node sends. Zero-valued fields are omitted on the wire,
// so OriginHost, OriginRealm, ProductName and VendorID must be set for
// capabilities exchange to encode.
type Identity struct {
	OriginHost       string
	OriginRealm      string
	ProductName      string
	VendorID         uint32
	FirmwareRevision uint32
	OriginStateID    uint32

	// AuthApplicationIDs lists the applications this node supports.
	AuthApplicationIDs []uint32
	AcctApplicationIDs []uint32

	// HostIPAddresses are the addresses advertised in Host-IP-Address.
	// When empty, the local address of each connection's socket is
	// advertised instead.
	HostIPAddresses []string
}

// Config carries the peer-layer timers. The zero value is not usable;
// call DefaultConfig and override fields as needed.
type Config struct {
	// CEATimeout bounds how long a connection may sit in Connected
	// without completing capabilities exchange.
	CEATimeout time.Duration
	// DWATimeout bounds how long a sent DWR may go unanswered.
	DWATimeout time.Duration
	// IdleTimeout is the quiet period after which a DWR is sent.
	IdleTimeout time.Duration
	// SweepInterval is the cadence of the node's timer sweep.
	SweepInterval time.Duration
	// DisconnectTimeout bounds how long Close waits for a DPA after
	// sending DPR before tearing the transport down.
	DisconnectTimeout time.Duration

	// Connection configures the transport layer.
	Connection *connection.Config
}

// DefaultConfig returns the stock timer set.
func DefaultConfig() *Config {
	return &Config{
		CEATimeout:        5 * time.Second,
		DWATimeout:        10 * time.Second,
		IdleTimeout:       30 * time.Second,
		SweepInterval:     time.Second,
		DisconnectTimeout: 2 * time.Second,
		Connection:        connection.DefaultConfig(),
	}
}

// Peer describes a remote Diameter node this node dials. Inbound
// connections are accepted without a Peer entry.
type Peer struct {
	Name  string
	Host  string
	Port  int
	Realm string
	// Persistent marks this peer for redial after disconnect. The
	// redial itself is driven by the embedder off the Events channel.
	Persistent bool

	mu   sync.Mutex
	conn *Conn
}

// Addr returns the host:port dial target.
func (p *Peer) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Conn returns the connection currently attached to this peer, or nil.
func (p *Peer) Conn() *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

func (p *Peer) attach(c *Conn) {
	p.mu.Lock()
	p.conn = c
	p.mu.Unlock()
}

func (p *Peer) detach(c *Conn) {
	p.mu.Lock()
	if p.conn == c {
		p.conn = nil
	}
	p.mu.Unlock()
}
