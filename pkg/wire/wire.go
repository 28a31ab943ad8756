// Package wire provides the primitive big-endian packing used by every
// Diameter codec in this module. All multi-octet fields are network
// byte order and all opaque fields align to 4-octet boundaries; the
// 24-bit length fields in AVP and message headers are carried inside
// full 32-bit reads and split by the caller.
package wire

import "fmt"

// UnderflowError reports a read past the end of the buffer. Framing
// guarantees whole messages, so an underflow means a corrupt length
// field, not a short socket read.
type UnderflowError struct {
	Need int
	Have int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("diameter wire: need %d bytes, %d remain", e.Need, e.Have)
}

// LengthError reports a declared opaque length that disagrees with the
// bytes actually supplied to the packer.
type LengthError struct {
	Declared int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("diameter wire: declared %d bytes, packing %d", e.Declared, e.Actual)
}

// Packer accumulates wire bytes. The zero value is ready to use.
type Packer struct {
	buf []byte
}

// NewPacker returns a packer with room for sizeHint bytes.
func NewPacker(sizeHint int) *Packer {
	return &Packer{buf: make([]byte, 0, sizeHint)}
}

// PackUint appends v as four big-endian octets.
func (p *Packer) PackUint(v uint32) {
	p.buf = append(p.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// PackFopaque appends b and zero-pads to the next 4-octet boundary.
// The padding is computed from the actual byte count; declared only
// validates that the caller's bookkeeping agrees with the data.
func (p *Packer) PackFopaque(declared int, b []byte) error {
	if declared != len(b) {
		return &LengthError{Declared: declared, Actual: len(b)}
	}
	p.buf = append(p.buf, b...)
	for n := len(b); n%4 != 0; n++ {
		p.buf = append(p.buf, 0)
	}
	return nil
}

// Len reports the number of bytes packed so far.
func (p *Packer) Len() int {
	return len(p.buf)
}

// Bytes returns the packed buffer. The slice aliases the packer's
// internal storage.
func (p *Packer) Bytes() []byte {
	return p.buf
}

// Unpacker reads wire bytes sequentially.
type Unpacker struct {
	buf []byte
	off int
}

func NewUnpacker(b []byte) *Unpacker {
	return &Unpacker{buf: b}
}

// UnpackUint reads four big-endian octets.
func (u *Unpacker) UnpackUint() (uint32, error) {
	if u.Remaining() < 4 {
		return 0, &UnderflowError{Need: 4, Have: u.Remaining()}
	}
	v := uint32(u.buf[u.off])<<24 | uint32(u.buf[u.off+1])<<16 |
		uint32(u.buf[u.off+2])<<8 | uint32(u.buf[u.off+3])
	u.off += 4
	return v, nil
}

// UnpackFopaque reads exactly length bytes and then skips the pad
// octets that realign the cursor. The returned slice aliases the
// unpacker's buffer; callers that retain it must copy.
func (u *Unpacker) UnpackFopaque(length int) ([]byte, error) {
	if length < 0 {
		return nil, &UnderflowError{Need: length, Have: u.Remaining()}
	}
	padded := (length + 3) &^ 3
	if u.Remaining() < padded {
		return nil, &UnderflowError{Need: padded, Have: u.Remaining()}
	}
	b := u.buf[u.off : u.off+length]
	u.off += padded
	return b, nil
}

// Done reports whether the cursor sits exactly at the end of the
// buffer. Trailing bytes mean a framing bug upstream; the caller
// decides how loudly to fail.
func (u *Unpacker) Done() bool {
	return u.off == len(u.buf)
}

// Remaining reports how many bytes are left to read.
func (u *Unpacker) Remaining() int {
	return len(u.buf) - u.off
}
