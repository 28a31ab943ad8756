package models_base

import "fmt"

// DiameterURI data type, e.g. "aaa://host.example.com:3868;transport=tcp".
// The codec does not parse the URI; routing layers that need the pieces
// split it themselves.
type DiameterURI OctetString

// DecodeDiameterURI decodes a DiameterURI from a byte array.
func DecodeDiameterURI(b []byte) (Type, error) {
	return DiameterURI(b), nil
}

// Serialize implements the Type interface.
func (s DiameterURI) Serialize() []byte {
	return []byte(s)
}

// Len implements the Type interface.
func (s DiameterURI) Len() int {
	return len(s)
}

// Padding implements the Type interface.
func (s DiameterURI) Padding() int {
	l := len(s)
	return pad4(l) - l
}

// Type implements the Type interface.
func (s DiameterURI) Type() TypeID {
	return DiameterURIType
}

// String implements the Type interface.
func (s DiameterURI) String() string {
	return fmt.Sprintf("DiameterURI{%s},Padding:%d", string(s), s.Padding())
}
