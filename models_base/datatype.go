// Package models_base implements the Diameter base data formats from
// RFC 6733 section 4. Every format satisfies the Type interface;
// values serialize to network byte order and decode back with strict
// length validation.
package models_base

import "fmt"

type Type interface {
	Serialize() []byte
	Len() int
	Padding() int
	Type() TypeID
	String() string
}

// Validator is implemented by types whose values can be out of the
// representable wire range even when well-typed in Go (e.g. Time).
// Encoders call Validate before serializing when it is available.
type Validator interface {
	Validate() error
}

type TypeID int

const (
	UnknownType TypeID = iota
	AddressType
	DiameterIdentityType
	DiameterURIType
	EnumeratedType
	Float32Type
	Float64Type
	GroupedType
	IPFilterRuleType
	IPv4Type
	Integer32Type
	Integer64Type
	OctetStringType
	QoSFilterRuleType
	TimeType
	UTF8StringType
	Unsigned32Type
	Unsigned64Type
	IPv6Type
)

var typeNames = map[TypeID]string{
	UnknownType:          "Unknown",
	AddressType:          "Address",
	DiameterIdentityType: "DiameterIdentity",
	DiameterURIType:      "DiameterURI",
	EnumeratedType:       "Enumerated",
	Float32Type:          "Float32",
	Float64Type:          "Float64",
	GroupedType:          "Grouped",
	IPFilterRuleType:     "IPFilterRule",
	IPv4Type:             "IPv4",
	Integer32Type:        "Integer32",
	Integer64Type:        "Integer64",
	OctetStringType:      "OctetString",
	QoSFilterRuleType:    "QoSFilterRule",
	TimeType:             "Time",
	UTF8StringType:       "UTF8String",
	Unsigned32Type:       "Unsigned32",
	Unsigned64Type:       "Unsigned64",
	IPv6Type:             "IPv6",
}

func (id TypeID) String() string {
	if s, ok := typeNames[id]; ok {
		return s
	}
	return fmt.Sprintf("TypeID(%d)", int(id))
}

var Available = map[string]TypeID{
	"Address":          AddressType,
	"DiameterIdentity": DiameterIdentityType,
	"DiameterURI":      DiameterURIType,
	"Enumerated":       EnumeratedType,
	"Float32":          Float32Type,
	"Float64":          Float64Type,
	"Grouped":          GroupedType,
	"IPFilterRule":     IPFilterRuleType,
	"IPv4":             IPv4Type,
	"IPv6":             IPv6Type,
	"Integer32":        Integer32Type,
	"Integer64":        Integer64Type,
	"OctetString":      OctetStringType,
	"QoSFilterRule":    QoSFilterRuleType,
	"Time":             TimeType,
	"UTF8String":       UTF8StringType,
	"Unsigned32":       Unsigned32Type,
	"Unsigned64":       Unsigned64Type,
}

// DecodeError reports a payload that cannot be decoded as the declared
// data format.
type DecodeError struct {
	TypeName string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("diameter: cannot decode %s: %s", e.TypeName, e.Reason)
}

func decodeErrorf(id TypeID, format string, args ...interface{}) error {
	return &DecodeError{TypeName: id.String(), Reason: fmt.Sprintf(format, args...)}
}

func badLength(id TypeID, want, got int) error {
	return decodeErrorf(id, "need %d bytes, have %d", want, got)
}

// Decode decodes b as the data format named by kind. Unknown payloads
// are preserved byte for byte as OctetString; every other branch
// validates the payload before constructing the value.
func Decode(kind TypeID, b []byte) (Type, error) {
	switch kind {
	case AddressType:
		return DecodeAddress(b)
	case DiameterIdentityType:
		return DecodeDiameterIdentity(b)
	case DiameterURIType:
		return DecodeDiameterURI(b)
	case EnumeratedType:
		return DecodeEnumerated(b)
	case Float32Type:
		return DecodeFloat32(b)
	case Float64Type:
		return DecodeFloat64(b)
	case GroupedType:
		return DecodeGrouped(b)
	case IPFilterRuleType:
		return DecodeIPFilterRule(b)
	case IPv4Type:
		return DecodeIPv4(b)
	case IPv6Type:
		return DecodeIPv6(b)
	case Integer32Type:
		return DecodeInteger32(b)
	case Integer64Type:
		return DecodeInteger64(b)
	case OctetStringType:
		return DecodeOctetString(b)
	case QoSFilterRuleType:
		return DecodeQoSFilterRule(b)
	case TimeType:
		return DecodeTime(b)
	case UTF8StringType:
		return DecodeUTF8String(b)
	case Unsigned32Type:
		return DecodeUnsigned32(b)
	case Unsigned64Type:
		return DecodeUnsigned64(b)
	case UnknownType:
		return DecodeOctetString(b)
	}
	return nil, decodeErrorf(kind, "no decoder for this type")
}
