// Package avp implements the Diameter AVP codec: the 8- or 12-octet
// header, flag handling, payload padding and the dictionary-driven
// mapping from (vendor-id, code) to a typed value. Unknown AVPs decode
// to raw octets and re-encode byte for byte; outbound AVPs built with
// New must be present in the dictionary.
package avp

import (
	"fmt"
	"strings"

	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/wire"
)

// AVP flag bits from RFC 6733 section 4.1.
const (
	FlagVendor    uint8 = 0x80
	FlagMandatory uint8 = 0x40
	FlagPrivate   uint8 = 0x20
)

// Header sizes with and without the Vendor-ID field.
const (
	headerLen       = 8
	headerLenVendor = 12
)

// AVP is one attribute-value pair. Data holds the typed value; for
// codes missing from the dictionary it is a models_base.OctetString
// with the raw payload, so nothing is lost on a round trip.
type AVP struct {
	Code     uint32
	VendorID uint32
	Flags    uint8
	Name     string // dictionary name, empty for unknown codes
	Data     models_base.Type
}

// UnknownAVPError reports an outbound construction attempt for a code
// the dictionary does not carry.
type UnknownAVPError struct {
	Code     uint32
	VendorID uint32
}

func (e *UnknownAVPError) Error() string {
	return fmt.Sprintf("avp: code %d vendor %d not in dictionary", e.Code, e.VendorID)
}

// TypeMismatchError reports a value whose data format disagrees with
// the dictionary's declared format for that code.
type TypeMismatchError struct {
	Code     uint32
	VendorID uint32
	Want     models_base.TypeID
	Got      models_base.TypeID
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("avp: code %d vendor %d declares %s, value is %s",
		e.Code, e.VendorID, e.Want, e.Got)
}

// MalformedAVPError reports an AVP header or payload that cannot be
// parsed. The framing layer treats this as fatal to the connection.
type MalformedAVPError struct {
	Code   uint32
	Reason string
}

func (e *MalformedAVPError) Error() string {
	return fmt.Sprintf("avp: malformed AVP %d: %s", e.Code, e.Reason)
}

// FlagError reports an inconsistency between the V flag and the
// vendor-id field. RFC 6733: the flag is set if and only if the
// Vendor-ID field is present.
type FlagError struct {
	Code     uint32
	VendorID uint32
	Flags    uint8
}

func (e *FlagError) Error() string {
	return fmt.Sprintf("avp: code %d flags %#x inconsistent with vendor %d",
		e.Code, e.Flags, e.VendorID)
}

// Option adjusts flags on an AVP built by New.
type Option func(*AVP)

// Mandatory overrides the dictionary's default M bit.
func Mandatory(set bool) Option {
	return func(a *AVP) {
		if set {
			a.Flags |= FlagMandatory
		} else {
			a.Flags &^= FlagMandatory
		}
	}
}

// Private sets the P bit.
func Private(set bool) Option {
	return func(a *AVP) {
		if set {
			a.Flags |= FlagPrivate
		} else {
			a.Flags &^= FlagPrivate
		}
	}
}

// New builds an outbound AVP from the dictionary. The caller controls
// what it sends, so an unknown (vendor-id, code) pair is an
// UnknownAVPError, never a silent raw fallback, and a value of the
// wrong data format is rejected here instead of producing a malformed
// AVP on the wire.
func New(d *dict.Registry, code, vendorID uint32, value models_base.Type, opts ...Option) (*AVP, error) {
	entry, ok := d.Lookup(code, vendorID)
	if !ok {
		return nil, &UnknownAVPError{Code: code, VendorID: vendorID}
	}
	if got := value.Type(); got != entry.Kind {
		return nil, &TypeMismatchError{Code: code, VendorID: vendorID, Want: entry.Kind, Got: got}
	}
	a := &AVP{
		Code:     code,
		VendorID: vendorID,
		Name:     entry.Name,
		Data:     value,
	}
	if vendorID != 0 {
		a.Flags |= FlagVendor
	}
	if entry.Mandatory {
		a.Flags |= FlagMandatory
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// DecodeFromUnpacker reads one AVP. A nil registry (or an unknown
// code) keeps the payload as raw octets; known codes decode to their
// declared format, with grouped payloads parsed recursively.
func DecodeFromUnpacker(u *wire.Unpacker, d *dict.Registry) (*AVP, error) {
	code, err := u.UnpackUint()
	if err != nil {
		return nil, err
	}
	fl, err := u.UnpackUint()
	if err != nil {
		return nil, err
	}
	a := &AVP{Code: code, Flags: uint8(fl >> 24)}
	length := int(fl & 0x00FFFFFF)

	hdr := headerLen
	if a.Flags&FlagVendor != 0 {
		hdr = headerLenVendor
		if a.VendorID, err = u.UnpackUint(); err != nil {
			return nil, err
		}
		if a.VendorID == 0 {
			return nil, &FlagError{Code: code, VendorID: 0, Flags: a.Flags}
		}
	}
	if length < hdr {
		return nil, &MalformedAVPError{Code: code, Reason: fmt.Sprintf("declared length %d below header size %d", length, hdr)}
	}
	payload, err := u.UnpackFopaque(length - hdr)
	if err != nil {
		return nil, err
	}

	var entry *dict.Entry
	if d != nil {
		entry, _ = d.Lookup(code, a.VendorID)
	}
	if entry == nil {
		a.Data, _ = models_base.DecodeOctetString(payload)
		return a, nil
	}
	a.Name = entry.Name
	if entry.Kind == models_base.GroupedType {
		children, err := DecodeAll(payload, d)
		if err != nil {
			return nil, &MalformedAVPError{Code: code, Reason: err.Error()}
		}
		a.Data = &GroupedAVP{AVPs: children}
		return a, nil
	}
	if a.Data, err = models_base.Decode(entry.Kind, payload); err != nil {
		return nil, err
	}
	return a, nil
}

// DecodeAll parses a flat AVP sequence until the buffer is exhausted.
func DecodeAll(b []byte, d *dict.Registry) ([]*AVP, error) {
	u := wire.NewUnpacker(b)
	var avps []*AVP
	for !u.Done() {
		a, err := DecodeFromUnpacker(u, d)
		if err != nil {
			return nil, err
		}
		avps = append(avps, a)
	}
	return avps, nil
}

// Len reports the full on-wire size including header and pad octets.
func (a *AVP) Len() int {
	hdr := headerLen
	if a.VendorID != 0 || a.Flags&FlagVendor != 0 {
		hdr = headerLenVendor
	}
	return hdr + a.Data.Len() + a.Data.Padding()
}

// Mandatory reports the M bit.
func (a *AVP) IsMandatory() bool {
	return a.Flags&FlagMandatory != 0
}

// SerializeTo appends the AVP's wire form to p. The length field is
// always recomputed from the value; a V flag that disagrees with the
// vendor-id, or a value outside its representable range, fails before
// anything is written.
func (a *AVP) SerializeTo(p *wire.Packer) error {
	if (a.Flags&FlagVendor != 0) != (a.VendorID != 0) {
		return &FlagError{Code: a.Code, VendorID: a.VendorID, Flags: a.Flags}
	}
	if v, ok := a.Data.(models_base.Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	payload := a.Data.Serialize()
	hdr := headerLen
	if a.VendorID != 0 {
		hdr = headerLenVendor
	}
	p.PackUint(a.Code)
	p.PackUint(uint32(a.Flags)<<24 | uint32(hdr+len(payload))&0x00FFFFFF)
	if a.VendorID != 0 {
		p.PackUint(a.VendorID)
	}
	return p.PackFopaque(len(payload), payload)
}

// Serialize returns the AVP's wire form.
func (a *AVP) Serialize() ([]byte, error) {
	p := wire.NewPacker(a.Len())
	if err := a.SerializeTo(p); err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

// String renders the AVP for diagnostics.
func (a *AVP) String() string {
	var b strings.Builder
	if a.Name != "" {
		fmt.Fprintf(&b, "%s(%d", a.Name, a.Code)
	} else {
		fmt.Fprintf(&b, "AVP(%d", a.Code)
	}
	if a.VendorID != 0 {
		fmt.Fprintf(&b, ",v%d", a.VendorID)
	}
	fmt.Fprintf(&b, ")=%s", a.Data)
	return b.String()
}
