package base

import (
	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
)

// VendorSpecificApplicationId is the Vendor-Specific-Application-Id
// grouped AVP (RFC 6733 section 6.11).
type VendorSpecificApplicationId struct {
	VendorId          []models_base.Unsigned32
	AuthApplicationId models_base.Unsigned32
	AcctApplicationId models_base.Unsigned32

	AdditionalAVPs []*avp.AVP
}

func (v *VendorSpecificApplicationId) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Vendor-Id", Code: dict.CodeVendorID, Required: true, Repeated: true, Mandatory: true, Kind: models_base.Unsigned32Type}, &v.VendorId},
		{FieldDef{Name: "Auth-Application-Id", Code: dict.CodeAuthApplicationID, Mandatory: true, Kind: models_base.Unsigned32Type}, &v.AuthApplicationId},
		{FieldDef{Name: "Acct-Application-Id", Code: dict.CodeAcctApplicationID, Mandatory: true, Kind: models_base.Unsigned32Type}, &v.AcctApplicationId},
	}
}

func (v *VendorSpecificApplicationId) assignFromAVPs(avps []*avp.AVP) error {
	additional, err := assignFields("Vendor-Specific-Application-Id", v.bindings(), avps)
	if err != nil {
		return err
	}
	v.AdditionalAVPs = additional
	return nil
}

func (v *VendorSpecificApplicationId) buildAVPs() ([]*avp.AVP, error) {
	avps, err := buildFields("Vendor-Specific-Application-Id", v.bindings())
	if err != nil {
		return nil, err
	}
	return append(avps, v.AdditionalAVPs...), nil
}

// FailedAVP is the Failed-AVP grouped AVP (RFC 6733 section 7.5). Its
// members are whatever offending AVPs the answer needs to point at,
// so there is no field table: everything lives in AVPs verbatim.
type FailedAVP struct {
	AVPs []*avp.AVP
}

func (f *FailedAVP) assignFromAVPs(avps []*avp.AVP) error {
	f.AVPs = avps
	return nil
}

func (f *FailedAVP) buildAVPs() ([]*avp.AVP, error) {
	return f.AVPs, nil
}

// ProxyInfo is the Proxy-Info grouped AVP (RFC 6733 section 6.7.2).
type ProxyInfo struct {
	ProxyHost  models_base.DiameterIdentity
	ProxyState models_base.OctetString

	AdditionalAVPs []*avp.AVP
}

func (p *ProxyInfo) bindings() []FieldBinding {
	return []FieldBinding{
		{FieldDef{Name: "Proxy-Host", Code: dict.CodeProxyHost, Required: true, Mandatory: true, Kind: models_base.DiameterIdentityType}, &p.ProxyHost},
		{FieldDef{Name: "Proxy-State", Code: dict.CodeProxyState, Required: true, Mandatory: true, Kind: models_base.OctetStringType}, &p.ProxyState},
	}
}

func (p *ProxyInfo) assignFromAVPs(avps []*avp.AVP) error {
	additional, err := assignFields("Proxy-Info", p.bindings(), avps)
	if err != nil {
		return err
	}
	p.AdditionalAVPs = additional
	return nil
}

func (p *ProxyInfo) buildAVPs() ([]*avp.AVP, error) {
	avps, err := buildFields("Proxy-Info", p.bindings())
	if err != nil {
		return nil, err
	}
	return append(avps, p.AdditionalAVPs...), nil
}
