package connection

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

const headerLen = 20

// FrameSizeError reports a declared message length outside the
// acceptable window. Recovery is impossible once framing is off, so
// the caller tears the connection down.
type FrameSizeError struct {
	Length int
	Max    int
}

func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("connection: declared message length %d outside [%d, %d]", e.Length, headerLen, e.Max)
}

// Buffer pool for frame reading.
var readerBufferPool sync.Pool

const pooledBufferSize = 1 << 12 // 4096 bytes

func newReaderBuffer() *bytes.Buffer {
	if v := readerBufferPool.Get(); v != nil {
		return v.(*bytes.Buffer)
	}
	return bytes.NewBuffer(make([]byte, pooledBufferSize))
}

func putReaderBuffer(b *bytes.Buffer) {
	if cap(b.Bytes()) == pooledBufferSize {
		b.Reset()
		readerBufferPool.Put(b)
	}
}

func readerBufferSlice(buf *bytes.Buffer, l int) []byte {
	b := buf.Bytes()
	if l <= pooledBufferSize && cap(b) >= pooledBufferSize {
		return b[:l]
	}
	return make([]byte, l)
}

// ReadFrame reads one complete Diameter message from r: the 20-octet
// header first, then exactly the body the header's 24-bit length
// declares. Partial TCP segments block inside io.ReadFull without
// disturbing message boundaries, and back-to-back messages in the
// reader's buffer are returned one per call.
func ReadFrame(r io.Reader, maxFrameSize int) ([]byte, error) {
	return readFrame(r, maxFrameSize)
}

func readFrame(r io.Reader, maxFrameSize int) ([]byte, error) {
	buf := newReaderBuffer()
	defer putReaderBuffer(buf)

	hdr := buf.Bytes()[:headerLen]
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, err
	}

	length := int(hdr[1])<<16 | int(hdr[2])<<8 | int(hdr[3])
	if length < headerLen || (maxFrameSize > 0 && length > maxFrameSize) {
		return nil, &FrameSizeError{Length: length, Max: maxFrameSize}
	}

	msg := make([]byte, length)
	copy(msg, hdr)
	if length > headerLen {
		b := readerBufferSlice(buf, length-headerLen)
		n, err := io.ReadFull(r, b)
		if err != nil {
			return nil, fmt.Errorf("connection: short body read (%d of %d bytes): %w", n, length-headerLen, err)
		}
		copy(msg[headerLen:], b)
	}
	return msg, nil
}
