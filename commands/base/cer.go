package base

import (
	"fmt"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
)

// CapabilitiesExchangeRequest is the CER command (RFC 6733 section
// 5.3.1). Fields not set keep their zero value and are not emitted;
// AVPs on the wire that match no field survive in AdditionalAVPs.
type CapabilitiesExchangeRequest struct {
	Header Header

	OriginHost                  models_base.DiameterIdentity
	OriginRealm                 models_base.DiameterIdentity
	HostIpAddress               []models_base.Address
	VendorId                    models_base.Unsigned32
	ProductName                 models_base.UTF8String
	OriginStateId               models_base.Unsigned32
	SupportedVendorId           []models_base.Unsigned32
	AuthApplicationId           []models_base.Unsigned32
	InbandSecurityId            []models_base.Unsigned32
	AcctApplicationId           []models_base.Unsigned32
	VendorSpecificApplicationId []VendorSpecificApplicationId
	FirmwareRevision            models_base.Unsigned32

	AdditionalAVPs []*avp.AVP
}

// NewCapabilitiesExchangeRequest creates a CER with the header
// prefilled.
func NewCapabilitiesExchangeRequest() *CapabilitiesExchangeRequest {
	return &CapabilitiesExchangeRequest{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeCapabilitiesExchange,
			Flags:       Flags{Request: true},
		},
	}
}

func (m *CapabilitiesExchangeRequest) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Host-IP-Address", Code: dict.CodeHostIPAddress, Required: true, Repeated: true, Mandatory: true, Kind: models_base.AddressType}, &m.HostIpAddress},
		{FieldDef{Name: "Vendor-Id", Code: dict.CodeVendorID, Required: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.VendorId},
		{FieldDef{Name: "Product-Name", Code: dict.CodeProductName, Required: true, Kind: models_base.UTF8StringType}, &m.ProductName},
		{FieldDef{Name: "Origin-State-Id", Code: dict.CodeOriginStateID, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.OriginStateId},
		{FieldDef{Name: "Supported-Vendor-Id", Code: dict.CodeSupportedVendorID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.SupportedVendorId},
		{FieldDef{Name: "Auth-Application-Id", Code: dict.CodeAuthApplicationID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.AuthApplicationId},
		{FieldDef{Name: "Inband-Security-Id", Code: dict.CodeInbandSecurityID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.InbandSecurityId},
		{FieldDef{Name: "Acct-Application-Id", Code: dict.CodeAcctApplicationID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.AcctApplicationId},
		{FieldDef{Name: "Vendor-Specific-Application-Id", Code: dict.CodeVendorSpecificApplicationID, Repeated: true, Mandatory: true, Kind: models_base.GroupedType}, &m.VendorSpecificApplicationId},
		{FieldDef{Name: "Firmware-Revision", Code: dict.CodeFirmwareRevision, Kind: models_base.Unsigned32Type}, &m.FirmwareRevision},
	}
}

func (m *CapabilitiesExchangeRequest) GetHeader() *Header { return &m.Header }

func (m *CapabilitiesExchangeRequest) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "CER", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeRequest) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "CER", CodeCapabilitiesExchange, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *CapabilitiesExchangeRequest) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("CER", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeRequest) Len() int {
	return messageLen("CER", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeRequest) String() string {
	return fmt.Sprintf("CER[%s %s] %s", m.OriginHost, m.OriginRealm, m.Header.String())
}

// ToAnswer derives the matching CEA, copying the correlation ids and
// clearing the request flag.
func (m *CapabilitiesExchangeRequest) ToAnswer() *CapabilitiesExchangeAnswer {
	a := NewCapabilitiesExchangeAnswer()
	a.Header = m.Header.answer()
	return a
}

// CapabilitiesExchangeAnswer is the CEA command (RFC 6733 section
// 5.3.2).
type CapabilitiesExchangeAnswer struct {
	Header Header

	ResultCode                  models_base.Unsigned32
	OriginHost                  models_base.DiameterIdentity
	OriginRealm                 models_base.DiameterIdentity
	HostIpAddress               []models_base.Address
	VendorId                    models_base.Unsigned32
	ProductName                 models_base.UTF8String
	OriginStateId               models_base.Unsigned32
	ErrorMessage                models_base.UTF8String
	FailedAVP                   *FailedAVP
	SupportedVendorId           []models_base.Unsigned32
	AuthApplicationId           []models_base.Unsigned32
	InbandSecurityId            []models_base.Unsigned32
	AcctApplicationId           []models_base.Unsigned32
	VendorSpecificApplicationId []VendorSpecificApplicationId
	FirmwareRevision            models_base.Unsigned32

	AdditionalAVPs []*avp.AVP
}

// NewCapabilitiesExchangeAnswer creates a CEA with the header
// prefilled.
func NewCapabilitiesExchangeAnswer() *CapabilitiesExchangeAnswer {
	return &CapabilitiesExchangeAnswer{
		Header: Header{
			Version:     DiameterVersion,
			CommandCode: CodeCapabilitiesExchange,
		},
	}
}

func (m *CapabilitiesExchangeAnswer) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Result-Code", Code: dict.CodeResultCode, Required: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.ResultCode},
		{FieldDef{Name: "Origin-Host", Code: dict.CodeOriginHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginHost},
		{FieldDef{Name: "Origin-Realm", Code: dict.CodeOriginRealm, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &m.OriginRealm},
		{FieldDef{Name: "Host-IP-Address", Code: dict.CodeHostIPAddress, Required: true, Repeated: true, Mandatory: true, Kind: models_base.AddressType}, &m.HostIpAddress},
		{FieldDef{Name: "Vendor-Id", Code: dict.CodeVendorID, Required: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.VendorId},
		{FieldDef{Name: "Product-Name", Code: dict.CodeProductName, Required: true, Kind: models_base.UTF8StringType}, &m.ProductName},
		{FieldDef{Name: "Origin-State-Id", Code: dict.CodeOriginStateID, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.OriginStateId},
		{FieldDef{Name: "Error-Message", Code: dict.CodeErrorMessage, Kind: models_base.UTF8StringType}, &m.ErrorMessage},
		{FieldDef{Name: "Failed-AVP", Code: dict.CodeFailedAVP, Mandatory: true, Kind: models_base.GroupedType}, &m.FailedAVP},
		{FieldDef{Name: "Supported-Vendor-Id", Code: dict.CodeSupportedVendorID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.SupportedVendorId},
		{FieldDef{Name: "Auth-Application-Id", Code: dict.CodeAuthApplicationID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.AuthApplicationId},
		{FieldDef{Name: "Inband-Security-Id", Code: dict.CodeInbandSecurityID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.InbandSecurityId},
		{FieldDef{Name: "Acct-Application-Id", Code: dict.CodeAcctApplicationID, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &m.AcctApplicationId},
		{FieldDef{Name: "Vendor-Specific-Application-Id", Code: dict.CodeVendorSpecificApplicationID, Repeated: true, Mandatory: true, Kind: models_base.GroupedType}, &m.VendorSpecificApplicationId},
		{FieldDef{Name: "Firmware-Revision", Code: dict.CodeFirmwareRevision, Kind: models_base.Unsigned32Type}, &m.FirmwareRevision},
	}
}

func (m *CapabilitiesExchangeAnswer) GetHeader() *Header { return &m.Header }

func (m *CapabilitiesExchangeAnswer) Marshal() ([]byte, error) {
	return marshalMessage(&m.Header, "CEA", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeAnswer) Unmarshal(data []byte) error {
	additional, err := unmarshalMessage(&m.Header, "CEA", CodeCapabilitiesExchange, m.bindings(), data)
	if err != nil {
		return err
	}
	m.AdditionalAVPs = additional
	return nil
}

func (m *CapabilitiesExchangeAnswer) AllAVPs() ([]*avp.AVP, error) {
	return allAVPs("CEA", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeAnswer) Len() int {
	return messageLen("CEA", m.bindings(), m.AdditionalAVPs)
}

func (m *CapabilitiesExchangeAnswer) String() string {
	return fmt.Sprintf("CEA[%s result=%d] %s", m.OriginHost, m.ResultCode, m.Header.String())
}
