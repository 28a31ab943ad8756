package dict

import (
	"errors"
	"testing"

	"github.com/telcoflow/diampeer/models_base"
)

func TestBaseLookup(t *testing.T) {
	d := Base()
	e, ok := d.Lookup(CodeOriginHost, 0)
	if !ok {
		t.Fatal("Origin-Host missing from the base dictionary")
	}
	if e.Name != "Origin-Host" || e.Kind != models_base.DiameterIdentityType || !e.Mandatory {
		t.Fatalf("Unexpected entry: %+v", e)
	}

	if _, ok := d.Lookup(CodeOriginHost, Vendor3GPP); ok {
		t.Fatal("Vendor lookup must not fall back to vendor 0")
	}

	e, ok = d.LookupName("Result-Code")
	if !ok || e.Code != CodeResultCode {
		t.Fatalf("LookupName(Result-Code) = %+v, %v", e, ok)
	}
}

func TestWith3GPPLookup(t *testing.T) {
	d := With3GPP()
	e, ok := d.Lookup(CodeMSISDN, Vendor3GPP)
	if !ok || e.Kind != models_base.OctetStringType {
		t.Fatalf("MSISDN lookup = %+v, %v", e, ok)
	}
	// The base rows must survive the merge.
	if _, ok := d.Lookup(CodeOriginRealm, 0); !ok {
		t.Fatal("Origin-Realm missing after vendor merge")
	}
	if d.Len() <= Base().Len() {
		t.Fatalf("Merged dictionary not larger: %d vs %d", d.Len(), Base().Len())
	}
}

func TestExtendRejectsDuplicates(t *testing.T) {
	_, err := Base().Extend([]Entry{{
		Code: CodeOriginHost, Name: "Origin-Host-Again", Kind: models_base.DiameterIdentityType,
	}})
	var dup *DuplicateEntryError
	if !errors.As(err, &dup) {
		t.Fatalf("Want DuplicateEntryError, have %v", err)
	}

	ext, err := Base().Extend([]Entry{{
		Code: 9001, VendorID: 4242, Name: "X-Test", Kind: models_base.Unsigned32Type,
	}})
	if err != nil {
		t.Fatalf("Extend failed: %v", err)
	}
	if _, ok := ext.Lookup(9001, 4242); !ok {
		t.Fatal("Extended entry missing")
	}
	if _, ok := Base().Lookup(9001, 4242); ok {
		t.Fatal("Extend mutated the base registry")
	}
}
