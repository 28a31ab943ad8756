package models_base

import (
	"bytes"
	"net"
	"testing"
)

func TestAddressIPv4(t *testing.T) {
	a := ParseAddress("10.0.0.1")
	b := a.Serialize()
	if want := []byte{0x00, 0x01, 10, 0, 0, 1}; !bytes.Equal(b, want) {
		t.Fatalf("Unexpected bytes. Want %x, have %x", want, b)
	}
	if a.Len() != 6 || a.Padding() != 2 {
		t.Fatalf("Unexpected geometry. Len=%d Padding=%d", a.Len(), a.Padding())
	}
	back, err := DecodeAddress(b)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if !back.(Address).IP().Equal(net.ParseIP("10.0.0.1")) {
		t.Fatalf("Roundtrip drifted: %s", back)
	}
	if !bytes.Equal(back.Serialize(), b) {
		t.Fatalf("Re-encode drifted. Want %x, have %x", b, back.Serialize())
	}
}

func TestAddressIPv6(t *testing.T) {
	a := ParseAddress("2001:db8::1")
	b := a.Serialize()
	if b[0] != 0 || b[1] != byte(AddrFamilyIPv6) || len(b) != 18 {
		t.Fatalf("Unexpected encoding: %x", b)
	}
	back, err := DecodeAddress(b)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if !back.(Address).IP().Equal(net.ParseIP("2001:db8::1")) {
		t.Fatalf("Roundtrip drifted: %s", back)
	}
}

func TestAddressE164(t *testing.T) {
	a := ParseAddress("48600700800")
	if a.Family() != AddrFamilyE164 {
		t.Fatalf("Want E.164 family, have %d", a.Family())
	}
	b := a.Serialize()
	if b[0] != 0 || b[1] != byte(AddrFamilyE164) {
		t.Fatalf("Unexpected family bytes: %x", b[:2])
	}
	back, err := DecodeAddress(b)
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if back.(Address).E164() != "48600700800" {
		t.Fatalf("Roundtrip drifted: %s", back)
	}
}

func TestAddressShortE164DoesNotLookLikeIPv4(t *testing.T) {
	// Four ASCII digits are also four bytes; they must stay E.164.
	a := ParseAddress("1234")
	if a.Family() != AddrFamilyE164 {
		t.Fatalf("Want E.164 family, have %d", a.Family())
	}
	back, err := DecodeAddress(a.Serialize())
	if err != nil {
		t.Fatalf("DecodeAddress failed: %v", err)
	}
	if back.(Address).E164() != "1234" {
		t.Fatalf("Roundtrip drifted: %s", back)
	}
}

func TestAddressDecodeErrors(t *testing.T) {
	for name, give := range map[string][]byte{
		"short":          {0x00},
		"bad family":     {0x00, 0x07, 1, 2, 3, 4},
		"short ipv4":     {0x00, 0x01, 1, 2, 3},
		"short ipv6":     {0x00, 0x02, 1, 2, 3, 4},
		"e164 non-digit": {0x00, 0x08, 'a', 'b'},
		"e164 too long":  append([]byte{0x00, 0x08}, bytes.Repeat([]byte{'1'}, 16)...),
	} {
		if _, err := DecodeAddress(give); err == nil {
			t.Errorf("DecodeAddress(%s) accepted %x", name, give)
		}
	}
}
