package models_base

import (
	"fmt"
	"net"
)

// Address families from the IANA AddressFamilyNumbers registry that
// RFC 6733 section 4.3.1 admits here.
const (
	AddrFamilyIPv4 uint16 = 1
	AddrFamilyIPv6 uint16 = 2
	AddrFamilyE164 uint16 = 8
)

// Address data type: two octets of address family followed by the
// address itself. The Go value carries only the address part; the
// family is derived from its shape. A 4- or 16-octet value that is a
// net.IP encodes as IPv4/IPv6, anything else as an E.164 digit string.
// Build IP addresses with net.ParseIP (or ParseAddress) so they carry
// the 16-octet form; E.164 numbers are at most 15 digits, so the two
// representations cannot collide. IPv4-mapped IPv6 addresses normalize
// to family 1 on the wire.
type Address []byte

// ParseAddress builds an Address from a textual IP address or, when s
// does not parse as one, from an E.164 digit string.
func ParseAddress(s string) Address {
	if ip := net.ParseIP(s); ip != nil {
		return Address(ip)
	}
	return Address(s)
}

// DecodeAddress decodes an Address from a byte array.
func DecodeAddress(b []byte) (Type, error) {
	if len(b) < 2 {
		return nil, decodeErrorf(AddressType, "need at least 2 bytes for the family, have %d", len(b))
	}
	family := uint16(b[0])<<8 | uint16(b[1])
	payload := b[2:]
	switch family {
	case AddrFamilyIPv4:
		if len(payload) != net.IPv4len {
			return nil, decodeErrorf(AddressType, "IPv4 needs 4 address bytes, have %d", len(payload))
		}
		return Address(net.IPv4(payload[0], payload[1], payload[2], payload[3])), nil
	case AddrFamilyIPv6:
		if len(payload) != net.IPv6len {
			return nil, decodeErrorf(AddressType, "IPv6 needs 16 address bytes, have %d", len(payload))
		}
		d := make(net.IP, net.IPv6len)
		copy(d, payload)
		return Address(d), nil
	case AddrFamilyE164:
		if len(payload) == 0 || len(payload) > 15 {
			return nil, decodeErrorf(AddressType, "E.164 numbers carry 1..15 digits, have %d bytes", len(payload))
		}
		for _, c := range payload {
			if c < '0' || c > '9' {
				return nil, decodeErrorf(AddressType, "E.164 numbers are ASCII digits, have %#x", c)
			}
		}
		d := make([]byte, len(payload))
		copy(d, payload)
		return Address(d), nil
	}
	return nil, decodeErrorf(AddressType, "unsupported address family %d", family)
}

// Family reports the address family the value will encode with.
func (a Address) Family() uint16 {
	switch {
	case len(a) == net.IPv6len && net.IP(a).To4() != nil:
		return AddrFamilyIPv4
	case len(a) == net.IPv6len:
		return AddrFamilyIPv6
	case len(a) == net.IPv4len && !allDigits(a):
		return AddrFamilyIPv4
	default:
		return AddrFamilyE164
	}
}

// IP returns the value as a net.IP, or nil for E.164 values.
func (a Address) IP() net.IP {
	if f := a.Family(); f != AddrFamilyIPv4 && f != AddrFamilyIPv6 {
		return nil
	}
	return net.IP(a)
}

// E164 returns the digit string, or "" for IP values.
func (a Address) E164() string {
	if a.Family() != AddrFamilyE164 {
		return ""
	}
	return string(a)
}

// Serialize implements the Type interface.
func (a Address) Serialize() []byte {
	family := a.Family()
	payload := []byte(a)
	if family == AddrFamilyIPv4 {
		if v4 := net.IP(a).To4(); v4 != nil {
			payload = v4
		}
	}
	b := make([]byte, 2+len(payload))
	b[0] = byte(family >> 8)
	b[1] = byte(family)
	copy(b[2:], payload)
	return b
}

// Len implements the Type interface.
func (a Address) Len() int {
	if a.Family() == AddrFamilyIPv4 {
		return 2 + net.IPv4len
	}
	return 2 + len(a)
}

// Padding implements the Type interface.
func (a Address) Padding() int {
	l := a.Len()
	return pad4(l) - l
}

// Type implements the Type interface.
func (a Address) Type() TypeID {
	return AddressType
}

// String implements the Type interface.
func (a Address) String() string {
	if ip := a.IP(); ip != nil {
		return fmt.Sprintf("Address{%s},Padding:%d", ip, a.Padding())
	}
	return fmt.Sprintf("Address{%s},Padding:%d", string(a), a.Padding())
}

func allDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(b) > 0
}
