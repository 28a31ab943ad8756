package dict

import "github.com/telcoflow/diampeer/models_base"

// Vendor3GPP is the 3GPP enterprise number used by the S6a/Gx/Rx
// family of application dictionaries.
const Vendor3GPP uint32 = 10415

// 3GPP AVP codes (TS 29.272 / TS 29.229 subset).
const (
	CodeMSISDN              uint32 = 701
	CodeRATType             uint32 = 1032
	CodeSubscriptionData    uint32 = 1400
	CodeTerminalInformation uint32 = 1401
	CodeIMEI                uint32 = 1402
	CodeSoftwareVersion     uint32 = 1403
	CodeULRFlags            uint32 = 1405
	CodeVisitedPLMNID       uint32 = 1407
	CodeSupportedFeatures   uint32 = 628
	CodeFeatureListID       uint32 = 629
	CodeFeatureList         uint32 = 630
)

var tgppEntries = []Entry{
	{Code: CodeSupportedFeatures, VendorID: Vendor3GPP, Name: "Supported-Features", Kind: models_base.GroupedType},
	{Code: CodeFeatureListID, VendorID: Vendor3GPP, Name: "Feature-List-ID", Kind: models_base.Unsigned32Type},
	{Code: CodeFeatureList, VendorID: Vendor3GPP, Name: "Feature-List", Kind: models_base.Unsigned32Type},
	{Code: CodeMSISDN, VendorID: Vendor3GPP, Name: "MSISDN", Kind: models_base.OctetStringType, Mandatory: true},
	{Code: CodeRATType, VendorID: Vendor3GPP, Name: "RAT-Type", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeSubscriptionData, VendorID: Vendor3GPP, Name: "Subscription-Data", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeTerminalInformation, VendorID: Vendor3GPP, Name: "Terminal-Information", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeIMEI, VendorID: Vendor3GPP, Name: "IMEI", Kind: models_base.UTF8StringType, Mandatory: true},
	{Code: CodeSoftwareVersion, VendorID: Vendor3GPP, Name: "Software-Version", Kind: models_base.UTF8StringType, Mandatory: true},
	{Code: CodeULRFlags, VendorID: Vendor3GPP, Name: "ULR-Flags", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeVisitedPLMNID, VendorID: Vendor3GPP, Name: "Visited-PLMN-Id", Kind: models_base.OctetStringType, Mandatory: true},
}

var with3GPP = mustNewRegistry(append(append([]Entry{}, baseEntries...), tgppEntries...))

// With3GPP returns the base dictionary extended with a 3GPP vendor
// subset, mainly for nodes that terminate S6a-style applications and
// for exercising vendor-flagged AVPs in tests.
func With3GPP() *Registry {
	return with3GPP
}
