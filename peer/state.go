// Package peer implements the RFC 6733 peer connection layer: the
// per-connection state machine with capabilities exchange, watchdog
// and disconnect handling, and the Node that owns listeners, dialed
// peers and the periodic timer sweep.
package peer

import "fmt"

// State is the lifecycle position of one peer connection.
type State int32

const (
	// StateConnecting indicates the transport is being established.
	StateConnecting State = iota
	// StateConnected indicates transport up, capabilities exchange pending.
	StateConnected
	// StateReady indicates the connection carries traffic.
	StateReady
	// StateReadyWaitingDWA indicates a watchdog request is outstanding.
	StateReadyWaitingDWA
	// StateClosing indicates a local disconnect is in progress.
	StateClosing
	// StateClosed is terminal; a closed connection is never reused.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateReady:
		return "Ready"
	case StateReadyWaitingDWA:
		return "ReadyWaitingDWA"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// IsActive reports whether the connection can carry application
// traffic. A connection waiting on a watchdog answer still can.
func (s State) IsActive() bool {
	return s == StateReady || s == StateReadyWaitingDWA
}

// DisconnectCause tags why a connection closed. Every close carries
// exactly one cause; the Node surfaces it in a DisconnectEvent so the
// embedding application can drive logging and reconnect policy.
type DisconnectCause int

const (
	// CauseCerRejected: the peer answered our CER with a failure.
	CauseCerRejected DisconnectCause = iota
	// CauseFailedConnectCE: no valid capabilities exchange within the
	// CEA timeout.
	CauseFailedConnectCE
	// CauseDwaTimeout: the peer stopped answering the watchdog.
	CauseDwaTimeout
	// CauseSocketFail: transport error, including undecodable bytes.
	CauseSocketFail
	// CauseCleanDisconnect: the peer disconnected deliberately (DPR
	// or orderly EOF).
	CauseCleanDisconnect
	// CauseNodeShutdown: local shutdown.
	CauseNodeShutdown
)

// String returns the string representation of the cause.
func (c DisconnectCause) String() string {
	switch c {
	case CauseCerRejected:
		return "CerRejected"
	case CauseFailedConnectCE:
		return "FailedConnectCE"
	case CauseDwaTimeout:
		return "DwaTimeout"
	case CauseSocketFail:
		return "SocketFail"
	case CauseCleanDisconnect:
		return "CleanDisconnect"
	case CauseNodeShutdown:
		return "NodeShutdown"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// DisconnectEvent reports a closed connection to the Node's consumer.
type DisconnectEvent struct {
	Conn         *Conn
	HostIdentity string
	Cause        DisconnectCause
	Err          error // underlying error, nil for clean causes
}
