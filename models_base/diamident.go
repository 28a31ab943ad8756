package models_base

import "fmt"

// DiameterIdentity data type, a FQDN or realm as defined in RFC 6733
// section 4.3.1. Identities compare case-insensitively at the peer
// layer; the codec preserves the octets as received.
type DiameterIdentity OctetString

// DecodeDiameterIdentity decodes a DiameterIdentity from a byte array.
func DecodeDiameterIdentity(b []byte) (Type, error) {
	return DiameterIdentity(b), nil
}

// Serialize implements the Type interface.
func (s DiameterIdentity) Serialize() []byte {
	return []byte(s)
}

// Len implements the Type interface.
func (s DiameterIdentity) Len() int {
	return len(s)
}

// Padding implements the Type interface.
func (s DiameterIdentity) Padding() int {
	l := len(s)
	return pad4(l) - l
}

// Type implements the Type interface.
func (s DiameterIdentity) Type() TypeID {
	return DiameterIdentityType
}

// String implements the Type interface.
func (s DiameterIdentity) String() string {
	return fmt.Sprintf("DiameterIdentity{%s},Padding:%d", string(s), s.Padding())
}
