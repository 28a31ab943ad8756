package models_base

import "fmt"

// UTF8String is human-readable text. Decode does not re-validate the
// encoding; peers that send malformed UTF-8 are a problem for the
// application, not the codec.
type UTF8String OctetString

func DecodeUTF8String(b []byte) (Type, error) {
	return UTF8String(b), nil
}

func (s UTF8String) Serialize() []byte {
	return []byte(s)
}

func (s UTF8String) Len() int {
	return len(s)
}

func (s UTF8String) Padding() int {
	l := len(s)
	return pad4(l) - l
}

func (s UTF8String) Type() TypeID {
	return UTF8StringType
}

func (s UTF8String) String() string {
	return fmt.Sprintf("UTF8String{%s},Padding:%d", string(s), s.Padding())
}
