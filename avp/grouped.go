package avp

import (
	"fmt"
	"strings"

	"github.com/telcoflow/diampeer/models_base"
	"github.com/telcoflow/diampeer/pkg/wire"
)

// GroupedAVP holds the decoded member list of a Grouped AVP. It
// satisfies models_base.Type so it can sit in an AVP's Data slot;
// serializing re-encodes the members, so an untouched group
// reproduces its original bytes and an edited one re-lengths itself.
type GroupedAVP struct {
	AVPs []*AVP
}

// Serialize implements the models_base.Type interface. Member encode
// failures cannot surface through this signature; SerializeTo on the
// enclosing AVP runs Validate first, which applies the same member
// checks, so this only runs on values that already passed.
func (g *GroupedAVP) Serialize() []byte {
	p := wire.NewPacker(g.Len())
	for _, a := range g.AVPs {
		if err := a.SerializeTo(p); err != nil {
			return nil
		}
	}
	return p.Bytes()
}

// Len implements the models_base.Type interface.
func (g *GroupedAVP) Len() int {
	n := 0
	for _, a := range g.AVPs {
		n += a.Len()
	}
	return n
}

// Padding implements the models_base.Type interface. Members are
// individually padded, so the group is always aligned.
func (g *GroupedAVP) Padding() int {
	return 0
}

// Type implements the models_base.Type interface.
func (g *GroupedAVP) Type() models_base.TypeID {
	return models_base.GroupedType
}

// Validate implements models_base.Validator. It applies the same
// checks SerializeTo would to every member, so a group that passes
// here encodes without error.
func (g *GroupedAVP) Validate() error {
	for _, a := range g.AVPs {
		if (a.Flags&FlagVendor != 0) != (a.VendorID != 0) {
			return &FlagError{Code: a.Code, VendorID: a.VendorID, Flags: a.Flags}
		}
		if v, ok := a.Data.(models_base.Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// String implements the models_base.Type interface.
func (g *GroupedAVP) String() string {
	parts := make([]string, len(g.AVPs))
	for i, a := range g.AVPs {
		parts[i] = a.String()
	}
	return fmt.Sprintf("Grouped{%s}", strings.Join(parts, ","))
}
