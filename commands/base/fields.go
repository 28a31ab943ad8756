package base

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/telcoflow/diampeer/avp"
	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/logger"
)

// FieldDef is one row of a command's field table: which AVP the field
// binds to, its cardinality, and how to interpret the payload. Tables
// are data only; assignFields and buildFields own all traversal.
type FieldDef struct {
	Name      string
	Code      uint32
	VendorID  uint32
	Required  bool
	Repeated  bool
	Mandatory bool
	Kind      models_base.TypeID
}

// FieldBinding pairs a FieldDef with a pointer to the Go field it
// populates. Ref types form a closed set handled by the shared
// engine; adding a new field shape means extending both switches.
type FieldBinding struct {
	FieldDef
	Ref any
}

// MissingAVPError reports a required field with no value at encode
// time. Encode stays strict so a malformed message is never emitted;
// decode tolerates absence (see assignFields).
type MissingAVPError struct {
	Command string
	Field   string
}

func (e *MissingAVPError) Error() string {
	return fmt.Sprintf("%s: required AVP %s has no value", e.Command, e.Field)
}

// groupedValue is implemented by the grouped AVP classes in this
// package so the engine can recurse without knowing each type.
type groupedValue interface {
	assignFromAVPs(avps []*avp.AVP) error
	buildAVPs() ([]*avp.AVP, error)
}

// assignFields populates bound fields from a decoded flat AVP list.
// Scalar fields take the first match; later duplicates are a peer
// protocol anomaly that is logged and skipped rather than fatal.
// Repeated fields collect matches in encounter order. AVPs matching
// no row are returned for the caller's AdditionalAVPs, preserving
// unknown and newer AVPs verbatim across a round trip. All values are
// resolved before any bound field is written, so a failed decode
// leaves the target object untouched.
func assignFields(cmd string, bindings []FieldBinding, avps []*avp.AVP) ([]*avp.AVP, error) {
	var additional []*avp.AVP
	var applies []func()
	seen := make([]bool, len(bindings))

	for _, a := range avps {
		idx := -1
		for i := range bindings {
			if bindings[i].Code == a.Code && bindings[i].VendorID == a.VendorID {
				idx = i
				break
			}
		}
		if idx < 0 {
			additional = append(additional, a)
			continue
		}
		b := &bindings[idx]
		if seen[idx] && !b.Repeated {
			logger.Log.Debugw("duplicate scalar AVP ignored",
				"command", cmd, "avp", b.Name, "code", a.Code)
			continue
		}
		apply, err := assignOne(b, a)
		if err != nil {
			return nil, err
		}
		applies = append(applies, apply)
		seen[idx] = true
	}
	for _, apply := range applies {
		apply()
	}
	return additional, nil
}

// assignOne decodes a's payload as the binding's declared format and
// returns the write into the typed reference for the caller to run
// once the whole AVP list has resolved.
func assignOne(b *FieldBinding, a *avp.AVP) (func(), error) {
	raw := a.Data.Serialize()

	// Grouped fields recurse into the nested class's own field table.
	// They decode into a fresh value, so the staging discipline holds
	// for their members too.
	switch ref := b.Ref.(type) {
	case *[]VendorSpecificApplicationId:
		var v VendorSpecificApplicationId
		if err := assignGrouped(&v, raw); err != nil {
			return nil, err
		}
		return func() { *ref = append(*ref, v) }, nil
	case *[]ProxyInfo:
		var v ProxyInfo
		if err := assignGrouped(&v, raw); err != nil {
			return nil, err
		}
		return func() { *ref = append(*ref, v) }, nil
	case **FailedAVP:
		var v FailedAVP
		if err := assignGrouped(&v, raw); err != nil {
			return nil, err
		}
		return func() { *ref = &v }, nil
	}

	dv, err := models_base.Decode(b.Kind, raw)
	if err != nil {
		return nil, err
	}
	switch ref := b.Ref.(type) {
	case *models_base.DiameterIdentity:
		v := dv.(models_base.DiameterIdentity)
		return func() { *ref = v }, nil
	case *models_base.DiameterURI:
		v := dv.(models_base.DiameterURI)
		return func() { *ref = v }, nil
	case *models_base.UTF8String:
		v := dv.(models_base.UTF8String)
		return func() { *ref = v }, nil
	case *models_base.OctetString:
		v := dv.(models_base.OctetString)
		return func() { *ref = v }, nil
	case *models_base.Unsigned32:
		v := dv.(models_base.Unsigned32)
		return func() { *ref = v }, nil
	case *models_base.Unsigned64:
		v := dv.(models_base.Unsigned64)
		return func() { *ref = v }, nil
	case *models_base.Integer32:
		v := dv.(models_base.Integer32)
		return func() { *ref = v }, nil
	case *models_base.Integer64:
		v := dv.(models_base.Integer64)
		return func() { *ref = v }, nil
	case *models_base.Enumerated:
		v := dv.(models_base.Enumerated)
		return func() { *ref = v }, nil
	case *models_base.Time:
		v := dv.(models_base.Time)
		return func() { *ref = v }, nil
	case *models_base.Address:
		v := dv.(models_base.Address)
		return func() { *ref = v }, nil
	case *[]models_base.DiameterIdentity:
		v := dv.(models_base.DiameterIdentity)
		return func() { *ref = append(*ref, v) }, nil
	case *[]models_base.UTF8String:
		v := dv.(models_base.UTF8String)
		return func() { *ref = append(*ref, v) }, nil
	case *[]models_base.OctetString:
		v := dv.(models_base.OctetString)
		return func() { *ref = append(*ref, v) }, nil
	case *[]models_base.Unsigned32:
		v := dv.(models_base.Unsigned32)
		return func() { *ref = append(*ref, v) }, nil
	case *[]models_base.Address:
		v := dv.(models_base.Address)
		return func() { *ref = append(*ref, v) }, nil
	default:
		return nil, fmt.Errorf("field %s: unhandled reference type %T", b.Name, b.Ref)
	}
}

func assignGrouped(g groupedValue, raw []byte) error {
	children, err := avp.DecodeAll(raw, nil)
	if err != nil {
		return err
	}
	return g.assignFromAVPs(children)
}

// buildFields constructs AVPs in field-declaration order. Required
// fields with no value aggregate into one error; nothing is emitted
// on failure.
func buildFields(cmd string, bindings []FieldBinding) ([]*avp.AVP, error) {
	var avps []*avp.AVP
	var errs error

	for i := range bindings {
		b := &bindings[i]
		values, err := extractValues(b)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if len(values) == 0 {
			if b.Required {
				errs = multierr.Append(errs, &MissingAVPError{Command: cmd, Field: b.Name})
			}
			continue
		}
		for _, v := range values {
			a := &avp.AVP{Code: b.Code, VendorID: b.VendorID, Name: b.Name, Data: v}
			if b.VendorID != 0 {
				a.Flags |= avp.FlagVendor
			}
			if b.Mandatory {
				a.Flags |= avp.FlagMandatory
			}
			avps = append(avps, a)
		}
	}
	if errs != nil {
		return nil, errs
	}
	return avps, nil
}

// extractValues reads the bound field and returns the value(s) to
// emit. Zero values mean "not set": empty strings and slices, zero
// numbers and times are omitted, which matches how the typed command
// structs are populated.
func extractValues(b *FieldBinding) ([]models_base.Type, error) {
	var out []models_base.Type
	add := func(v models_base.Type) { out = append(out, v) }

	switch ref := b.Ref.(type) {
	case groupedValue:
		children, err := ref.buildAVPs()
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			add(&avp.GroupedAVP{AVPs: children})
		}
	case *[]VendorSpecificApplicationId:
		for i := range *ref {
			children, err := (*ref)[i].buildAVPs()
			if err != nil {
				return nil, err
			}
			add(&avp.GroupedAVP{AVPs: children})
		}
	case *[]ProxyInfo:
		for i := range *ref {
			children, err := (*ref)[i].buildAVPs()
			if err != nil {
				return nil, err
			}
			add(&avp.GroupedAVP{AVPs: children})
		}
	case **FailedAVP:
		if *ref != nil {
			children, err := (*ref).buildAVPs()
			if err != nil {
				return nil, err
			}
			add(&avp.GroupedAVP{AVPs: children})
		}
	case *models_base.DiameterIdentity:
		if *ref != "" {
			add(*ref)
		}
	case *models_base.DiameterURI:
		if *ref != "" {
			add(*ref)
		}
	case *models_base.UTF8String:
		if *ref != "" {
			add(*ref)
		}
	case *models_base.OctetString:
		if *ref != "" {
			add(*ref)
		}
	case *models_base.Unsigned32:
		if *ref != 0 {
			add(*ref)
		}
	case *models_base.Unsigned64:
		if *ref != 0 {
			add(*ref)
		}
	case *models_base.Integer32:
		if *ref != 0 {
			add(*ref)
		}
	case *models_base.Integer64:
		if *ref != 0 {
			add(*ref)
		}
	case *models_base.Enumerated:
		// Enumerations legitimately use zero (e.g. Disconnect-Cause
		// REBOOTING), so presence follows Required instead: a required
		// enum always encodes, an optional one encodes when non-zero.
		if b.Required || *ref != 0 {
			add(*ref)
		}
	case *models_base.Time:
		if !timeIsZero(*ref) {
			add(*ref)
		}
	case *models_base.Address:
		if len(*ref) != 0 {
			add(*ref)
		}
	case *[]models_base.DiameterIdentity:
		for _, v := range *ref {
			add(v)
		}
	case *[]models_base.UTF8String:
		for _, v := range *ref {
			add(v)
		}
	case *[]models_base.OctetString:
		for _, v := range *ref {
			add(v)
		}
	case *[]models_base.Unsigned32:
		for _, v := range *ref {
			add(v)
		}
	case *[]models_base.Address:
		for _, v := range *ref {
			add(v)
		}
	default:
		return nil, fmt.Errorf("field %s: unhandled reference type %T", b.Name, b.Ref)
	}
	return out, nil
}

func timeIsZero(t models_base.Time) bool {
	return time.Time(t).IsZero()
}
