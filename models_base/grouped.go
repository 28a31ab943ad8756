package models_base

import "fmt"

// Grouped carries the raw concatenated-AVP payload of a Grouped AVP.
// This package cannot parse the children (AVP framing lives a layer
// up); the avp package decodes a Grouped into its member list and
// re-encodes from it. Keeping the original bytes here means an
// untouched grouped value re-serializes byte for byte.
type Grouped []byte

// DecodeGrouped decodes a Grouped payload from a byte array.
func DecodeGrouped(b []byte) (Type, error) {
	d := make([]byte, len(b))
	copy(d, b)
	return Grouped(d), nil
}

// Serialize implements the Type interface.
func (g Grouped) Serialize() []byte {
	return []byte(g)
}

// Len implements the Type interface.
func (g Grouped) Len() int {
	return len(g)
}

// Padding implements the Type interface.
func (g Grouped) Padding() int {
	l := len(g)
	return pad4(l) - l
}

// Type implements the Type interface.
func (g Grouped) Type() TypeID {
	return GroupedType
}

// String implements the Type interface.
func (g Grouped) String() string {
	return fmt.Sprintf("Grouped{%d bytes},Padding:%d", len(g), g.Padding())
}
