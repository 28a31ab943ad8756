package models_base

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Time data type: four octets of NTP seconds. RFC 6733 section 4.3.1
// borrows the SNTP era rule from RFC 2030: timestamps with the high
// bit set count from 1900, timestamps with it clear belong to the
// next era and count from 2036. That window spans 1968-01-20 through
// 2104-02-26; values outside it are not representable.
type Time time.Time

const (
	rfc868offset  = 2208988800 // seconds between 1900-01-01 and the Unix epoch
	rfc2030offset = 2085978496 // Unix seconds at the era-1 rollover, 2036-02-07

	minTimeUnix = int64(0x80000000) - rfc868offset  // 1968-01-20 03:14:08 UTC
	maxTimeUnix = int64(0x7FFFFFFF) + rfc2030offset // 2104-02-26 09:42:23 UTC
)

// TimeRangeError reports a timestamp that does not fit the four-octet
// NTP window.
type TimeRangeError struct {
	Value time.Time
}

func (e *TimeRangeError) Error() string {
	return fmt.Sprintf("diameter: time %s outside the representable window [1968-01-20, 2104-02-26]", e.Value.UTC())
}

// NewTime validates that t is representable on the wire. Direct
// conversions skip this check; Serialize assumes it already ran.
func NewTime(t time.Time) (Time, error) {
	if sec := t.Unix(); sec < minTimeUnix || sec > maxTimeUnix {
		return Time{}, &TimeRangeError{Value: t}
	}
	return Time(t), nil
}

func DecodeTime(b []byte) (Type, error) {
	if len(b) != 4 {
		return nil, badLength(TimeType, 4, len(b))
	}
	ts := int64(binary.BigEndian.Uint32(b))
	if (b[0] >> 7) == 0 {
		ts += rfc2030offset
	} else {
		ts -= rfc868offset
	}
	return Time(time.Unix(ts, 0).UTC()), nil
}

func (t Time) Serialize() []byte {
	b := make([]byte, 4)
	sec := time.Time(t).Unix()
	if sec > int64(0xFFFFFFFF)-rfc868offset {
		// Era 1: high bit clear, seconds from the 2036 rollover.
		binary.BigEndian.PutUint32(b, uint32(sec-rfc2030offset))
	} else {
		binary.BigEndian.PutUint32(b, uint32(sec+rfc868offset))
	}
	return b
}

// Validate implements the Validator interface.
func (t Time) Validate() error {
	if sec := time.Time(t).Unix(); sec < minTimeUnix || sec > maxTimeUnix {
		return &TimeRangeError{Value: time.Time(t)}
	}
	return nil
}

func (t Time) Len() int {
	return 4
}

func (t Time) Padding() int {
	return 0
}

func (t Time) Type() TypeID {
	return TimeType
}

func (t Time) String() string {
	return fmt.Sprintf("Time{%s}", time.Time(t))
}
