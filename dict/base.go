package dict

import "github.com/telcoflow/diampeer/models_base"

// AVP codes from RFC 6733 and the RADIUS-inherited range.
const (
	CodeUserName                    uint32 = 1
	CodeProxyState                  uint32 = 33
	CodeEventTimestamp              uint32 = 55
	CodeAcctInterimInterval         uint32 = 85
	CodeHostIPAddress               uint32 = 257
	CodeAuthApplicationID           uint32 = 258
	CodeAcctApplicationID           uint32 = 259
	CodeVendorSpecificApplicationID uint32 = 260
	CodeRedirectHostUsage           uint32 = 261
	CodeRedirectMaxCacheTime        uint32 = 262
	CodeSessionID                   uint32 = 263
	CodeOriginHost                  uint32 = 264
	CodeSupportedVendorID           uint32 = 265
	CodeVendorID                    uint32 = 266
	CodeFirmwareRevision            uint32 = 267
	CodeResultCode                  uint32 = 268
	CodeProductName                 uint32 = 269
	CodeDisconnectCause             uint32 = 273
	CodeAuthSessionState            uint32 = 277
	CodeOriginStateID               uint32 = 278
	CodeFailedAVP                   uint32 = 279
	CodeProxyHost                   uint32 = 280
	CodeErrorMessage                uint32 = 281
	CodeRouteRecord                 uint32 = 282
	CodeDestinationRealm            uint32 = 283
	CodeProxyInfo                   uint32 = 284
	CodeAccountingSubSessionID      uint32 = 287
	CodeAuthorizationLifetime       uint32 = 291
	CodeRedirectHost                uint32 = 292
	CodeDestinationHost             uint32 = 293
	CodeErrorReportingHost          uint32 = 294
	CodeTerminationCause            uint32 = 295
	CodeOriginRealm                 uint32 = 296
	CodeExperimentalResult          uint32 = 297
	CodeExperimentalResultCode      uint32 = 298
	CodeInbandSecurityID            uint32 = 299
	CodeAccountingRecordType        uint32 = 480
	CodeAccountingRecordNumber      uint32 = 485
)

var baseEntries = []Entry{
	{Code: CodeUserName, Name: "User-Name", Kind: models_base.UTF8StringType, Mandatory: true},
	{Code: CodeProxyState, Name: "Proxy-State", Kind: models_base.OctetStringType, Mandatory: true},
	{Code: CodeEventTimestamp, Name: "Event-Timestamp", Kind: models_base.TimeType, Mandatory: true},
	{Code: CodeAcctInterimInterval, Name: "Acct-Interim-Interval", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeHostIPAddress, Name: "Host-IP-Address", Kind: models_base.AddressType, Mandatory: true},
	{Code: CodeAuthApplicationID, Name: "Auth-Application-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeAcctApplicationID, Name: "Acct-Application-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeVendorSpecificApplicationID, Name: "Vendor-Specific-Application-Id", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeRedirectHostUsage, Name: "Redirect-Host-Usage", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeRedirectMaxCacheTime, Name: "Redirect-Max-Cache-Time", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeSessionID, Name: "Session-Id", Kind: models_base.UTF8StringType, Mandatory: true},
	{Code: CodeOriginHost, Name: "Origin-Host", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeSupportedVendorID, Name: "Supported-Vendor-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeVendorID, Name: "Vendor-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeFirmwareRevision, Name: "Firmware-Revision", Kind: models_base.Unsigned32Type},
	{Code: CodeResultCode, Name: "Result-Code", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeProductName, Name: "Product-Name", Kind: models_base.UTF8StringType},
	{Code: CodeDisconnectCause, Name: "Disconnect-Cause", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeAuthSessionState, Name: "Auth-Session-State", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeOriginStateID, Name: "Origin-State-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeFailedAVP, Name: "Failed-AVP", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeProxyHost, Name: "Proxy-Host", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeErrorMessage, Name: "Error-Message", Kind: models_base.UTF8StringType},
	{Code: CodeRouteRecord, Name: "Route-Record", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeDestinationRealm, Name: "Destination-Realm", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeProxyInfo, Name: "Proxy-Info", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeAccountingSubSessionID, Name: "Accounting-Sub-Session-Id", Kind: models_base.Unsigned64Type, Mandatory: true},
	{Code: CodeAuthorizationLifetime, Name: "Authorization-Lifetime", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeRedirectHost, Name: "Redirect-Host", Kind: models_base.DiameterURIType, Mandatory: true},
	{Code: CodeDestinationHost, Name: "Destination-Host", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeErrorReportingHost, Name: "Error-Reporting-Host", Kind: models_base.DiameterIdentityType},
	{Code: CodeTerminationCause, Name: "Termination-Cause", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeOriginRealm, Name: "Origin-Realm", Kind: models_base.DiameterIdentityType, Mandatory: true},
	{Code: CodeExperimentalResult, Name: "Experimental-Result", Kind: models_base.GroupedType, Mandatory: true},
	{Code: CodeExperimentalResultCode, Name: "Experimental-Result-Code", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeInbandSecurityID, Name: "Inband-Security-Id", Kind: models_base.Unsigned32Type, Mandatory: true},
	{Code: CodeAccountingRecordType, Name: "Accounting-Record-Type", Kind: models_base.EnumeratedType, Mandatory: true},
	{Code: CodeAccountingRecordNumber, Name: "Accounting-Record-Number", Kind: models_base.Unsigned32Type, Mandatory: true},
}

var base = mustNewRegistry(baseEntries)

// Base returns the RFC 6733 base-protocol dictionary. The registry is
// shared and immutable; extend it with Extend when an application
// dictionary is needed.
func Base() *Registry {
	return base
}
