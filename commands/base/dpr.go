package base

import (
	"fmt"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
)

// DisconnectPeerRequest is the DPR command (RFC 6733 section 5.4.1).
type DisconnectPeerRequest struct {
	Header Header

	OriginHost      models_base.DiameterIdentity
	OriginRealm     models_base.DiameterIdentity
	DisconnectCause models_base.Enumerated

	AdditionalAVPs []*avp.AVP
}

// NewDisconnectPeerRequest creates a DPR with the header prefilled.
func NewDisconnectPeerRequest() *DisconnectPeerRequest {
	return &DisconnectPeerRequest{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeDisconnectPeer,
			Flags:       Flags{Request: true},
		},
	}
}

func (m *DisconnectPeerRequest) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Disconnect-Cause", Code: dict.CodeDisconnectCause, Required: true, Mandatory: true, Kind: models_base.EnumeratedType}, &m.DisconnectCause},
	}
}

func (m *DisconnectPeerRequest) GetHeader() *Header { return &m.Header }

func (m *DisconnectPeerRequest) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "DPR", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerRequest) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "DPR", CodeDisconnectPeer, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *DisconnectPeerRequest) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("DPR", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerRequest) Len() int {
	return messageLen("DPR", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerRequest) String() string {
	return fmt.Sprintf("DPR[%s cause=%d] %s", m.OriginHost, m.DisconnectCause, m.Header.String())
}

// ToAnswer derives the matching DPA.
func (m *DisconnectPeerRequest) ToAnswer() *DisconnectPeerAnswer {
	a := NewDisconnectPeerAnswer()
	a.Header = m.Header.answer()
	return a
}

// DisconnectPeerAnswer is the DPA command (RFC 6733 section 5.4.2).
type DisconnectPeerAnswer struct {
	Header Header

	ResultCode   models_base.Unsigned32
	OriginHost   models_base.DiameterIdentity
	OriginRealm  models_base.DiameterIdentity
	ErrorMessage models_base.UTF8String
	FailedAVP    *FailedAVP

	AdditionalAVPs []*avp.AVP
}

// NewDisconnectPeerAnswer creates a DPA with the header prefilled.
func NewDisconnectPeerAnswer() *DisconnectPeerAnswer {
	return &DisconnectPeerAnswer{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeDisconnectPeer,
		},
	}
}

func (m *DisconnectPeerAnswer) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Result-Code", Code: dict.CodeResultCode, Required: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.ResultCode},
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Error-Message", Code: dict.CodeErrorMessage, Kind: models_base.UTF8StringType}, &m.ErrorMessage},
		{FieldDef{Name: "Failed-AVP", Code: dict.CodeFailedAVP, Mandatory: true, Kind: models_base.GroupedType}, &m.FailedAVP},
	}
}

func (m *DisconnectPeerAnswer) GetHeader() *Header { return &m.Header }

func (m *DisconnectPeerAnswer) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "DPA", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerAnswer) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "DPA", CodeDisconnectPeer, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *DisconnectPeerAnswer) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("DPA", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerAnswer) Len() int {
	return messageLen("DPA", m.bindings(), m.AdditionalAVPs)
}

func (m *DisconnectPeerAnswer) String() string {
	return fmt.Sprintf("DPA[%s result=%d] %s", m.OriginHost, m.ResultCode, m.Header.String())
}
