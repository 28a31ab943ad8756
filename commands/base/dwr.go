package base

import (
	"fmt"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
)

// DeviceWatchdogRequest is the DWR command (RFC 6733 section 5.5.1).
type DeviceWatchdogRequest struct {
	Header Header

	OriginHost    models_base.DiameterIdentity
	OriginRealm   models_base.DiameterIdentity
	OriginStateId models_base.Unsigned32

	AdditionalAVPs []*avp.AVP
}

// NewDeviceWatchdogRequest creates a DWR with the header prefilled.
func NewDeviceWatchdogRequest() *DeviceWatchdogRequest {
	return &DeviceWatchdogRequest{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeDeviceWatchdog,
			Flags:       Flags{Request: true},
		},
	}
}

func (m *DeviceWatchdogRequest) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Origin-State-Id", Code: dict.CodeOriginStateID, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.OriginStateId},
	}
}

func (m *DeviceWatchdogRequest) GetHeader() *Header { return &m.Header }

func (m *DeviceWatchdogRequest) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "DWR", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogRequest) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "DWR", CodeDeviceWatchdog, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *DeviceWatchdogRequest) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("DWR", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogRequest) Len() int {
	return messageLen("DWR", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogRequest) String() string {
	return fmt.Sprintf("DWR[%s] %s", m.OriginHost, m.Header.String())
}

// ToAnswer derives the matching DWA.
func (m *DeviceWatchdogRequest) ToAnswer() *DeviceWatchdogAnswer {
	a := NewDeviceWatchdogAnswer()
	a.Header = m.Header.answer()
	return a
}

// DeviceWatchdogAnswer is the DWA command (RFC 6733 section 5.5.2).
type DeviceWatchdogAnswer struct {
	Header Header

	ResultCode    models_base.Unsigned32
	OriginHost    models_base.DiameterIdentity
	OriginRealm   models_base.DiameterIdentity
	ErrorMessage  models_base.UTF8String
	FailedAVP     *FailedAVP
	OriginStateId models_base.Unsigned32

	AdditionalAVPs []*avp.AVP
}

// NewDeviceWatchdogAnswer creates a DWA with the header prefilled.
func NewDeviceWatchdogAnswer() *DeviceWatchdogAnswer {
	return &DeviceWatchdogAnswer{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeDeviceWatchdog,
		},
	}
}

func (m *DeviceWatchdogAnswer) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Result-Code", Code: dict.CodeResultCode, Required: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.ResultCode},
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Error-Message", Code: dict.CodeErrorMessage, Kind: models_base.UTF8StringType}, &m.ErrorMessage},
		{FieldDef{Name: "Failed-AVP", Code: dict.CodeFailedAVP, Mandatory: true, Kind: models_base.GroupedType}, &m.FailedAVP},
		{FieldDef{Name: "Origin-State-Id", Code: dict.CodeOriginStateID, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.OriginStateId},
	}
}

func (m *DeviceWatchdogAnswer) GetHeader() *Header { return &m.Header }

func (m *DeviceWatchdogAnswer) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "DWA", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogAnswer) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "DWA", CodeDeviceWatchdog, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *DeviceWatchdogAnswer) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("DWA", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogAnswer) Len() int {
	return messageLen("DWA", m.bindings(), m.AdditionalAVPs)
}

func (m *DeviceWatchdogAnswer) String() string {
	return fmt.Sprintf("DWA[%s result=%d] %s", m.OriginHost, m.ResultCode, m.Header.String())
}
