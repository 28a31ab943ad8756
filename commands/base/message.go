package base

import (
	"fmt"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/pkg/wire"
)

// Message is one Diameter command instance, request or answer.
type Message interface {
	GetHeader() *Header
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
	AllAVPs() ([]*avp.AVP, error)
	Len() int
	String() string
}

// marshalMessage serializes the field table plus any additional AVPs
// behind a freshly computed header.
func marshalMessage(h *Header, cmd string, bindings []FieldBinding, additional []*avp.AVP) ([]byte, error) {
	avps, err := buildFields(cmd, bindings)
	if err != nil {
		return nil, err
	}
	avps = append(avps, additional...)

	p := wire.NewPacker(256)
	for _, a := range avps {
		if err := a.SerializeTo(p); err != nil {
			return nil, err
		}
	}
	out := h.marshal(p.Len())
	return append(out, p.Bytes()...), nil
}

// unmarshalMessage parses data into the header and field table. The
// body is decoded without a dictionary: each declared field carries
// its own data format, and everything undeclared is preserved raw so
// re-encoding reproduces the input bytes.
func unmarshalMessage(h *Header, cmd string, code uint32, bindings []FieldBinding, data []byte) ([]*avp.AVP, error) {
	parsed, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if parsed.CommandCode != code {
		return nil, ErrInvalidMessage{Reason: fmt.Sprintf("command code %d, want %d for %s", parsed.CommandCode, code, cmd)}
	}
	if int(parsed.Length) > len(data) {
		return nil, ErrInvalidMessage{Reason: fmt.Sprintf("declared length %d exceeds %d available bytes", parsed.Length, len(data))}
	}
	avps, err := avp.DecodeAll(data[HeaderLen:parsed.Length], nil)
	if err != nil {
		return nil, err
	}
	additional, err := assignFields(cmd, bindings, avps)
	if err != nil {
		return nil, err
	}
	*h = *parsed
	return additional, nil
}

// messageLen sums the header and AVP sizes without serializing.
func messageLen(cmd string, bindings []FieldBinding, additional []*avp.AVP) int {
	n := HeaderLen
	avps, err := buildFields(cmd, bindings)
	if err != nil {
		return n
	}
	for _, a := range avps {
		n += a.Len()
	}
	for _, a := range additional {
		n += a.Len()
	}
	return n
}

// allAVPs is the shared AllAVPs implementation.
func allAVPs(cmd string, bindings []FieldBinding, additional []*avp.AVP) ([]*avp.AVP, error) {
	avps, err := buildFields(cmd, bindings)
	if err != nil {
		return nil, err
	}
	return append(avps, additional...), nil
}

// UndefinedMessage carries a command this node has no typed class
// for. Diameter mandates forward compatibility: unknown commands
// decode into a generic AVP list and re-encode byte-identically, and
// the peer layer answers them with a protocol-level error instead of
// dropping the connection.
type UndefinedMessage struct {
	Header Header
	AVPs   []*avp.AVP
}

func (m *UndefinedMessage) GetHeader() *Header { return &m.Header }

func (m *UndefinedMessage) Marshal() ([]byte, error) {
	p := wire.NewPacker(256)
	for _, a := range m.AVPs {
		if err := a.SerializeTo(p); err != nil {
			return nil, err
		}
	}
	out := m.Header.marshal(p.Len())
	return append(out, p.Bytes()...), nil
}

func (m *UndefinedMessage) Unmarshal(data []byte) error {
	return m.unmarshal(data, nil)
}

func (m *UndefinedMessage) unmarshal(data []byte, d *dict.Registry) error {
	h, err := ParseHeader(data)
	if err != nil {
		return err
	}
	if int(h.Length) > len(data) {
		return ErrInvalidMessage{Reason: fmt.Sprintf("declared length %d exceeds %d available bytes", h.Length, len(data))}
	}
	avps, err := avp.DecodeAll(data[HeaderLen:h.Length], d)
	if err != nil {
		return err
	}
	m.Header = *h
	m.AVPs = avps
	return nil
}

func (m *UndefinedMessage) AllAVPs() ([]*avp.AVP, error) { return m.AVPs, nil }

func (m *UndefinedMessage) Len() int {
	n := HeaderLen
	for _, a := range m.AVPs {
		n += a.Len()
	}
	return n
}

func (m *UndefinedMessage) String() string {
	return fmt.Sprintf("Undefined%s AVPs=%d", m.Header.String(), len(m.AVPs))
}

// ToAnswer derives an empty answer shell for this request, keeping
// the correlation ids. The caller fills in Result-Code and origin
// AVPs before sending.
func (m *UndefinedMessage) ToAnswer() *UndefinedMessage {
	return &UndefinedMessage{Header: m.Header.answer()}
}

// CommandDescriptor ties a command code to constructors for its
// request and answer classes.
type CommandDescriptor struct {
	Code       uint32
	Name       string
	Abbrev     string
	NewRequest func() Message
	NewAnswer  func() Message
}

// DuplicateCommandError reports two descriptors claiming a code.
type DuplicateCommandError struct {
	Code uint32
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("base: duplicate command descriptor for code %d", e.Code)
}

// Registry maps command codes to descriptors. Built once, read-only
// afterwards, safe for unsynchronized concurrent lookups.
type Registry struct {
	byCode map[uint32]*CommandDescriptor
}

// NewRegistry builds a command registry from descriptors.
func NewRegistry(descs []CommandDescriptor) (*Registry, error) {
	r := &Registry{byCode: make(map[uint32]*CommandDescriptor, len(descs))}
	for i := range descs {
		d := descs[i]
		if _, dup := r.byCode[d.Code]; dup {
			return nil, &DuplicateCommandError{Code: d.Code}
		}
		r.byCode[d.Code] = &d
	}
	return r, nil
}

// Extend returns a new registry with extra descriptors added.
func (r *Registry) Extend(extra []CommandDescriptor) (*Registry, error) {
	merged := make([]CommandDescriptor, 0, len(r.byCode)+len(extra))
	for _, d := range r.byCode {
		merged = append(merged, *d)
	}
	merged = append(merged, extra...)
	return NewRegistry(merged)
}

// Lookup finds the descriptor for a command code.
func (r *Registry) Lookup(code uint32) (*CommandDescriptor, bool) {
	d, ok := r.byCode[code]
	return d, ok
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry([]CommandDescriptor{
		{
			Code: CodeCapabilitiesExchange, Name: "Capabilities-Exchange", Abbrev: "CE",
			NewRequest: func() Message { return NewCapabilitiesExchangeRequest() },
			NewAnswer:  func() Message { return NewCapabilitiesExchangeAnswer() },
		},
		{
			Code: CodeDeviceWatchdog, Name: "Device-Watchdog", Abbrev: "DW",
			NewRequest: func() Message { return NewDeviceWatchdogRequest() },
			NewAnswer:  func() Message { return NewDeviceWatchdogAnswer() },
		},
		{
			Code: CodeDisconnectPeer, Name: "Disconnect-Peer", Abbrev: "DP",
			NewRequest: func() Message { return NewDisconnectPeerRequest() },
			NewAnswer:  func() Message { return NewDisconnectPeerAnswer() },
		},
	})
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the registry of RFC 6733 base commands.
func Default() *Registry {
	return defaultRegistry
}

// Decode routes raw bytes to the registered typed class, selected by
// command code and the R bit. Unregistered codes decode into an
// UndefinedMessage with d resolving whatever AVPs it can; this never
// fails on an unknown command, only on malformed bytes.
func Decode(data []byte, r *Registry, d *dict.Registry) (Message, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	desc, ok := r.Lookup(h.CommandCode)
	if !ok {
		m := &UndefinedMessage{}
		if err := m.unmarshal(data, d); err != nil {
			return nil, err
		}
		return m, nil
	}
	var m Message
	if h.Flags.Request {
		m = desc.NewRequest()
	} else {
		m = desc.NewAnswer()
	}
	if err := m.Unmarshal(data); err != nil {
		return nil, err
	}
	return m, nil
}

// NewAnswerFor builds the registered answer class for a request with
// the correlation ids copied over. This is the sanctioned way to
// construct an answer, so hop-by-hop and end-to-end ids are never
// hand-typed.
func (r *Registry) NewAnswerFor(req Message) (Message, error) {
	h := req.GetHeader()
	if !h.Flags.Request {
		return nil, ErrInvalidMessage{Reason: "cannot derive an answer from an answer"}
	}
	desc, ok := r.Lookup(h.CommandCode)
	if !ok {
		return nil, ErrInvalidMessage{Reason: fmt.Sprintf("no descriptor for command %d", h.CommandCode)}
	}
	m := desc.NewAnswer()
	*m.GetHeader() = h.answer()
	return m, nil
}
