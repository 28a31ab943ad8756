package peer_test

import (
	"testing"

	"github.com/telcoflow/diampeer/peer"
)

func TestStateString(t *testing.T) {
	cases := []struct {
		state peer.State
		want  string
	}{
		{peer.StateConnecting, "Connecting"},
		{peer.StateConnected, "Connected"},
		{peer.StateReady, "Ready"},
		{peer.StateReadyWaitingDWA, "ReadyWaitingDWA"},
		{peer.StateClosing, "Closing"},
		{peer.StateClosed, "Closed"},
		{peer.State(42), "Unknown(42)"},
	}
	for _, c := range cases {
		if got := c.state.String(); got != c.want {
			t.Errorf("State(%d).String() = %q, want %q", c.state, got, c.want)
		}
	}
}

func TestStateIsActive(t *testing.T) {
	active := map[peer.State]bool{
		peer.StateConnecting:      false,
		peer.StateConnected:       false,
		peer.StateReady:           true,
		peer.StateReadyWaitingDWA: true,
		peer.StateClosing:         false,
		peer.StateClosed:          false,
	}
	for s, want := range active {
		if got := s.IsActive(); got != want {
			t.Errorf("%s.IsActive() = %v, want %v", s, got, want)
		}
	}
}

func TestDisconnectCauseString(t *testing.T) {
	cases := []struct {
		cause peer.DisconnectCause
		want  string
	}{
		{peer.CauseCerRejected, "CerRejected"},
		{peer.CauseFailedConnectCE, "FailedConnectCE"},
		{peer.CauseDwaTimeout, "DwaTimeout"},
		{peer.CauseSocketFail, "SocketFail"},
		{peer.CauseCleanDisconnect, "CleanDisconnect"},
		{peer.CauseNodeShutdown, "NodeShutdown"},
	}
	for _, c := range cases {
		if got := c.cause.String(); got != c.want {
			t.Errorf("cause %d String() = %q, want %q", c.cause, got, c.want)
		}
	}
}
