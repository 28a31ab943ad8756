// Package base implements the RFC 6733 base-protocol commands: the
// 20-octet message header, the capabilities-exchange, watchdog and
// disconnect-peer command pairs, and the registry that routes decoded
// bytes to the right typed message. Field layouts are data-only
// tables; one shared engine does all marshal and unmarshal traversal.
package base

import (
	"fmt"
)

// HeaderLen is the fixed Diameter message header size.
const HeaderLen = 20

// DiameterVersion is the only version RFC 6733 defines.
const DiameterVersion = 1

// Command-flag bits from RFC 6733 section 3.
const (
	flagRequest    uint8 = 0x80
	flagProxiable  uint8 = 0x40
	flagError      uint8 = 0x20
	flagRetransmit uint8 = 0x10
)

// Flags holds the command-flags octet split into its bits.
type Flags struct {
	Request    bool
	Proxiable  bool
	Error      bool
	Retransmit bool
}

func (f Flags) octet() uint8 {
	var b uint8
	if f.Request {
		b |= flagRequest
	}
	if f.Proxiable {
		b |= flagProxiable
	}
	if f.Error {
		b |= flagError
	}
	if f.Retransmit {
		b |= flagRetransmit
	}
	return b
}

// ErrInvalidMessage reports a message that violates the base-protocol
// framing or header rules.
type ErrInvalidMessage struct {
	Reason string
}

func (e ErrInvalidMessage) Error() string {
	return fmt.Sprintf("invalid message: %s", e.Reason)
}

// Header is the 20-octet Diameter message header. Length is derived
// from the AVP content on every Marshal; the stored value reflects
// the last encode or decode.
type Header struct {
	Version       uint8
	Length        uint32
	Flags         Flags
	CommandCode   uint32
	ApplicationID uint32
	HopByHopID    uint32
	EndToEndID    uint32
}

// ParseHeader decodes and validates the first 20 octets. The declared
// length is authoritative for stream framing, so it is checked for
// sanity here rather than trusted blindly downstream.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderLen {
		return nil, ErrInvalidMessage{Reason: "message too short for header"}
	}
	h := &Header{
		Version:       data[0],
		Length:        uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]),
		CommandCode:   uint32(data[5])<<16 | uint32(data[6])<<8 | uint32(data[7]),
		ApplicationID: uint32(data[8])<<24 | uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11]),
		HopByHopID:    uint32(data[12])<<24 | uint32(data[13])<<16 | uint32(data[14])<<8 | uint32(data[15]),
		EndToEndID:    uint32(data[16])<<24 | uint32(data[17])<<16 | uint32(data[18])<<8 | uint32(data[19]),
	}
	fl := data[4]
	h.Flags = Flags{
		Request:    fl&flagRequest != 0,
		Proxiable:  fl&flagProxiable != 0,
		Error:      fl&flagError != 0,
		Retransmit: fl&flagRetransmit != 0,
	}
	if h.Version != DiameterVersion {
		return nil, ErrInvalidMessage{Reason: fmt.Sprintf("unsupported version: %d", h.Version)}
	}
	if h.Length < HeaderLen {
		return nil, ErrInvalidMessage{Reason: fmt.Sprintf("invalid length: %d", h.Length)}
	}
	return h, nil
}

// marshal encodes the header for a message whose serialized AVPs
// occupy bodyLen octets. Length is recomputed here, never taken from
// caller state.
func (h *Header) marshal(bodyLen int) []byte {
	h.Version = DiameterVersion
	h.Length = uint32(HeaderLen + bodyLen)
	b := make([]byte, HeaderLen, HeaderLen+bodyLen)
	b[0] = h.Version
	b[1] = byte(h.Length >> 16)
	b[2] = byte(h.Length >> 8)
	b[3] = byte(h.Length)
	b[4] = h.Flags.octet()
	b[5] = byte(h.CommandCode >> 16)
	b[6] = byte(h.CommandCode >> 8)
	b[7] = byte(h.CommandCode)
	b[8] = byte(h.ApplicationID >> 24)
	b[9] = byte(h.ApplicationID >> 16)
	b[10] = byte(h.ApplicationID >> 8)
	b[11] = byte(h.ApplicationID)
	b[12] = byte(h.HopByHopID >> 24)
	b[13] = byte(h.HopByHopID >> 16)
	b[14] = byte(h.HopByHopID >> 8)
	b[15] = byte(h.HopByHopID)
	b[16] = byte(h.EndToEndID >> 24)
	b[17] = byte(h.EndToEndID >> 16)
	b[18] = byte(h.EndToEndID >> 8)
	b[19] = byte(h.EndToEndID)
	return b
}

// answer derives the answer header for this request header: same
// code, application and correlation ids, R cleared, P mirrored, E and
// T never set on a fresh answer (RFC 6733 section 6.2).
func (h *Header) answer() Header {
	return Header{
		Version:       DiameterVersion,
		CommandCode:   h.CommandCode,
		ApplicationID: h.ApplicationID,
		HopByHopID:    h.HopByHopID,
		EndToEndID:    h.EndToEndID,
		Flags:         Flags{Proxiable: h.Flags.Proxiable},
	}
}

func (h *Header) String() string {
	kind := "Answer"
	if h.Flags.Request {
		kind = "Request"
	}
	return fmt.Sprintf("%s(Code=%d, AppID=%d, H2H=0x%X, E2E=0x%X)",
		kind, h.CommandCode, h.ApplicationID, h.HopByHopID, h.EndToEndID)
}
