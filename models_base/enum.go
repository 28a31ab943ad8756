package models_base

import "fmt"

type Enumerated Integer32

func DecodeEnumerated(b []byte) (Type, error) {
	if len(b) != 4 {
		return nil, badLength(EnumeratedType, 4, len(b))
	}
	v, err := DecodeInteger32(b)
	if err != nil {
		return nil, err
	}
	return Enumerated(v.(Integer32)), nil
}

func (n Enumerated) Serialize() []byte {
	return Integer32(n).Serialize()
}

func (n Enumerated) Len() int {
	return 4
}

func (n Enumerated) Padding() int {
	return 0
}

func (n Enumerated) Type() TypeID {
	return EnumeratedType
}

func (n Enumerated) String() string {
	return fmt.Sprintf("Enumerated{%d}", int32(n))
}
