package wav

import (
	"encoding/binary"
)

// ByteWriter writes little-endian values into a fixed buffer, advancing its
// own cursor. Writing past the end of the buffer panics.
type ByteWriter struct {
	buf    []byte
	offset int
}

func NewByteWriter(size int) *ByteWriter {
	return &ByteWriter{
		buf: make([]byte, size),
	}
}

func (w *ByteWriter) WriteFourCC(s string) {
	if len(s) != 4 {
		panic("a FourCC must be exactly 4 bytes long: " + s)
	}
	copy(w.buf[w.offset:w.offset+4], s)
	w.offset += 4
}

func (w *ByteWriter) WriteU16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.offset:], v)
	w.offset += 2
}

func (w *ByteWriter) WriteU32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.offset:], v)
	w.offset += 4
}

func (w *ByteWriter) WriteS16(v int16) {
	w.WriteU16(uint16(v))
}

func (w *ByteWriter) Offset() int {
	return w.offset
}

func (w *ByteWriter) Bytes() []byte {
	return w.buf
}
