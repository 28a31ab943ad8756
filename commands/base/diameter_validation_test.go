package base

import (
	"bytes"
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/dict"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/wire"
)

func TestMarshalRejectsMissingRequiredAVPs(t *testing.T) {
	cer := NewCapabilitiesExchangeRequest()
	cer.OriginHost = "client.example.com"
	// Origin-Realm, Host-IP-Address, Vendor-Id and Product-Name are
	// all absent.
	if _, err := cer.Marshal(); err == nil {
		t.Fatal("Marshal accepted a CER without required AVPs")
	} else {
		// Every missing field is reported, not just the first.
		errs := multierr.Errors(err)
		if len(errs) < 4 {
			t.Errorf("expected at least 4 missing-AVP errors, got %d: %v", len(errs), err)
		}
		for _, e := range errs {
			var missing *MissingAVPError
			if !errors.As(e, &missing) {
				t.Errorf("error %v is not a MissingAVPError", e)
			}
		}
	}
}

func TestUnmarshalToleratesMissingRequiredAVPs(t *testing.T) {
	// An incoming DWA with only a Result-Code still decodes; rejecting
	// it is the peer layer's call, not the codec's.
	dwa := NewDeviceWatchdogAnswer()
	dwa.ResultCode = models_base.Unsigned32(ResultCodeTooBusy)
	dwa.OriginHost = "server.example.com"
	dwa.OriginRealm = "example.com"
	data, err := dwa.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	got := &DeviceWatchdogAnswer{}
	if err := got.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ResultCode != models_base.Unsigned32(ResultCodeTooBusy) {
		t.Errorf("ResultCode = %d", got.ResultCode)
	}
	if got.OriginStateId != 0 {
		t.Errorf("absent Origin-State-Id = %d, want zero", got.OriginStateId)
	}
}

func TestUnknownAVPsSurviveRoundTrip(t *testing.T) {
	dwr := NewDeviceWatchdogRequest()
	dwr.OriginHost = "client.example.com"
	dwr.OriginRealm = "example.com"
	dwr.AdditionalAVPs = []*avp.AVP{
		{Code: 65000, Flags: avp.FlagMandatory, Data: models_base.OctetString("opaque")},
		{Code: 3, VendorID: 42, Flags: avp.FlagVendor, Data: models_base.OctetString("vendor-data")},
	}
	first, err := dwr.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded := &DeviceWatchdogRequest{}
	if err := decoded.Unmarshal(first); err != nil {
		t.Fatal(err)
	}
	if len(decoded.AdditionalAVPs) != 2 {
		t.Fatalf("AdditionalAVPs = %d, want 2", len(decoded.AdditionalAVPs))
	}
	if decoded.AdditionalAVPs[0].Code != 65000 || !decoded.AdditionalAVPs[0].IsMandatory() {
		t.Errorf("first additional AVP = %+v", decoded.AdditionalAVPs[0])
	}
	if decoded.AdditionalAVPs[1].VendorID != 42 {
		t.Errorf("vendor AVP = %+v", decoded.AdditionalAVPs[1])
	}

	second, err := decoded.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("unknown AVPs did not re-encode byte-identically")
	}
}

func TestDecodeUnknownCommand(t *testing.T) {
	msg := &UndefinedMessage{Header: Header{
		Version:     DiameterVersion,
		CommandCode: 9999,
		Flags:       Flags{Request: true},
		HopByHopID:  3,
		EndToEndID:  4,
	}}
	data, err := msg.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Decode(data, Default(), nil)
	if err != nil {
		t.Fatalf("Decode rejected an unknown command: %v", err)
	}
	um, ok := decoded.(*UndefinedMessage)
	if !ok {
		t.Fatalf("Decode produced %T", decoded)
	}
	if um.Header.CommandCode != 9999 || !um.Header.Flags.Request {
		t.Errorf("header = %+v", um.Header)
	}
}

func TestUnmarshalRejectsWrongCommandCode(t *testing.T) {
	dwr := NewDeviceWatchdogRequest()
	dwr.OriginHost = "client.example.com"
	dwr.OriginRealm = "example.com"
	data, err := dwr.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	cer := &CapabilitiesExchangeRequest{}
	if err := cer.Unmarshal(data); err == nil {
		t.Fatal("CER Unmarshal accepted a DWR")
	}
}

func TestParseHeaderValidation(t *testing.T) {
	dwr := NewDeviceWatchdogRequest()
	dwr.OriginHost = "client.example.com"
	dwr.OriginRealm = "example.com"
	data, err := dwr.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("truncated", func(t *testing.T) {
		if _, err := ParseHeader(data[:10]); err == nil {
			t.Error("ParseHeader accepted 10 bytes")
		}
	})
	t.Run("bad version", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 2
		var invalid ErrInvalidMessage
		if _, err := ParseHeader(bad); !errors.As(err, &invalid) {
			t.Errorf("ParseHeader err = %v", err)
		}
	})
	t.Run("undersized declared length", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[1], bad[2], bad[3] = 0, 0, 12
		if _, err := ParseHeader(bad); err == nil {
			t.Error("ParseHeader accepted a 12-byte declared length")
		}
	})
	t.Run("declared length beyond data", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[3] += 100
		msg := &DeviceWatchdogRequest{}
		if err := msg.Unmarshal(bad); err == nil {
			t.Error("Unmarshal accepted a declared length beyond the buffer")
		}
	})
}

func TestUnmarshalFailureLeavesMessageUntouched(t *testing.T) {
	// A malformed AVP late in the message must not leave earlier fields
	// half-assigned: the decode fails with the target untouched.
	dwr := NewDeviceWatchdogRequest()
	dwr.OriginHost = "client.example.com"
	dwr.OriginRealm = "example.com"
	data, err := dwr.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	// Splice in an Origin-State-Id carrying a 6-byte payload, which is
	// not a valid Unsigned32, and fix the message length.
	p := wire.NewPacker(16)
	p.PackUint(dict.CodeOriginStateID)
	p.PackUint(uint32(avp.FlagMandatory)<<24 | 14)
	if err := p.PackFopaque(6, []byte("sixchr")); err != nil {
		t.Fatal(err)
	}
	spliced := append(append([]byte(nil), data...), p.Bytes()...)
	total := uint32(len(spliced))
	spliced[1] = byte(total >> 16)
	spliced[2] = byte(total >> 8)
	spliced[3] = byte(total)

	got := &DeviceWatchdogRequest{}
	if err := got.Unmarshal(spliced); err == nil {
		t.Fatal("Unmarshal accepted a 6-byte Unsigned32 payload")
	}
	if got.OriginHost != "" || got.OriginRealm != "" {
		t.Errorf("failed Unmarshal wrote fields: host %q, realm %q",
			got.OriginHost, got.OriginRealm)
	}
}

func TestDuplicateScalarAVPTolerated(t *testing.T) {
	// Two Origin-State-Id AVPs: the first wins, the second is skipped.
	dwr := NewDeviceWatchdogRequest()
	dwr.OriginHost = "client.example.com"
	dwr.OriginRealm = "example.com"
	dwr.OriginStateId = 7
	data, err := dwr.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	// Append a second Origin-State-Id by marshalling another copy and
	// splicing its last AVP on, then fixing the message length.
	extra := NewDeviceWatchdogRequest()
	extra.OriginHost = "x"
	extra.OriginRealm = "y"
	extra.OriginStateId = 99
	extraData, err := extra.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	// Origin-State-Id is the final AVP: 8-byte header + 4-byte value.
	dup := extraData[len(extraData)-12:]
	spliced := append(append([]byte(nil), data...), dup...)
	total := uint32(len(spliced))
	spliced[1] = byte(total >> 16)
	spliced[2] = byte(total >> 8)
	spliced[3] = byte(total)

	got := &DeviceWatchdogRequest{}
	if err := got.Unmarshal(spliced); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.OriginStateId != 7 {
		t.Errorf("OriginStateId = %d, want the first occurrence 7", got.OriginStateId)
	}
}
