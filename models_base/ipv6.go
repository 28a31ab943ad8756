package models_base

import (
	"fmt"
	"net"
)

// IPv6 is a bare sixteen-octet address with no family prefix.
type IPv6 net.IP

// DecodeIPv6 decodes an IPv6 from a byte array.
func DecodeIPv6(b []byte) (Type, error) {
	if len(b) != net.IPv6len {
		return nil, badLength(IPv6Type, net.IPv6len, len(b))
	}
	d := make(net.IP, net.IPv6len)
	copy(d, b)
	return IPv6(d), nil
}

// Serialize implements the Type interface.
func (ip IPv6) Serialize() []byte {
	return []byte(net.IP(ip).To16())
}

// Len implements the Type interface.
func (ip IPv6) Len() int {
	return net.IPv6len
}

// Padding implements the Type interface.
func (ip IPv6) Padding() int {
	return 0
}

// Type implements the Type interface.
func (ip IPv6) Type() TypeID {
	return IPv6Type
}

// String implements the Type interface.
func (ip IPv6) String() string {
	return fmt.Sprintf("IPv6{%s}", net.IP(ip))
}
