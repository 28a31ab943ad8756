package models_base

import (
	"fmt"
	"net"
)

// IPv4 is a bare four-octet address with no family prefix. A few
// application dictionaries (RADIUS-derived AVPs) use it instead of
// Address.
type IPv4 net.IP

// DecodeIPv4 decodes an IPv4 from a byte array.
func DecodeIPv4(b []byte) (Type, error) {
	if len(b) != net.IPv4len {
		return nil, badLength(IPv4Type, net.IPv4len, len(b))
	}
	return IPv4(net.IPv4(b[0], b[1], b[2], b[3])), nil
}

// Serialize implements the Type interface.
func (ip IPv4) Serialize() []byte {
	if v4 := net.IP(ip).To4(); v4 != nil {
		return v4
	}
	return []byte(ip)
}

// Len implements the Type interface.
func (ip IPv4) Len() int {
	return net.IPv4len
}

// Padding implements the Type interface.
func (ip IPv4) Padding() int {
	return 0
}

// Type implements the Type interface.
func (ip IPv4) Type() TypeID {
	return IPv4Type
}

// String implements the Type interface.
func (ip IPv4) String() string {
	return fmt.Sprintf("IPv4{%s}", net.IP(ip))
}
