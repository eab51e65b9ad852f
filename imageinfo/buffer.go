package imageinfo

import (
	"bytes"
)

// Buffer is an owned, immutable block of bytes read from a source at a given
// absolute offset. Integer reads take an explicit width and byte order per
// call because several containers mix byte orders.
//
// Reads are not bounds-checked beyond the slice itself: callers validate the
// requested range against the source length before reading.
type Buffer struct {
	data   []byte
	offset int64
}

// NewBuffer wraps data as a Buffer located at offset. The slice is not copied.
func NewBuffer(data []byte, offset int64) Buffer {
	return Buffer{data: data, offset: offset}
}

// Len returns the number of bytes in the buffer.
func (b Buffer) Len() int { return len(b.data) }

// Offset returns the absolute source offset of the first byte.
func (b Buffer) Offset() int64 { return b.offset }

// Bytes returns a copy of the buffer content.
func (b Buffer) Bytes() []byte {
	return bytes.Clone(b.data)
}

// At returns the byte at off.
func (b Buffer) At(off int) byte { return b.data[off] }

// Uint reads an unsigned integer of width bytes (1..8) at off. With bigEndian
// false the bytes are taken least significant first; otherwise the byte
// order is reversed.
func (b Buffer) Uint(off, width int, bigEndian bool) uint64 {
	src := b.data[off : off+width]
	var v uint64
	for k := 0; k < width; k++ {
		idx := k
		if !bigEndian {
			idx = width - 1 - k
		}
		v = v<<8 | uint64(src[idx])
	}
	return v
}

// Int reads a two's complement signed integer of width bytes at off.
func (b Buffer) Int(off, width int, bigEndian bool) int64 {
	v := b.Uint(off, width, bigEndian)
	shift := uint(64 - 8*width)
	return int64(v<<shift) >> shift
}

func (b Buffer) U8(off int) uint8 { return b.data[off] }
func (b Buffer) S8(off int) int8  { return int8(b.data[off]) }

func (b Buffer) U16LE(off int) uint16 { return uint16(b.Uint(off, 2, false)) }
func (b Buffer) U16BE(off int) uint16 { return uint16(b.Uint(off, 2, true)) }
func (b Buffer) S16LE(off int) int16  { return int16(b.Int(off, 2, false)) }
func (b Buffer) S16BE(off int) int16  { return int16(b.Int(off, 2, true)) }

func (b Buffer) U32LE(off int) uint32 { return uint32(b.Uint(off, 4, false)) }
func (b Buffer) U32BE(off int) uint32 { return uint32(b.Uint(off, 4, true)) }
func (b Buffer) S32LE(off int) int32  { return int32(b.Int(off, 4, false)) }
func (b Buffer) S32BE(off int) int32  { return int32(b.Int(off, 4, true)) }

func (b Buffer) U64LE(off int) uint64 { return b.Uint(off, 8, false) }
func (b Buffer) U64BE(off int) uint64 { return b.Uint(off, 8, true) }
func (b Buffer) S64LE(off int) int64  { return b.Int(off, 8, false) }
func (b Buffer) S64BE(off int) int64  { return b.Int(off, 8, true) }

// U16 reads a 16-bit value in the given byte order.
func (b Buffer) U16(off int, bigEndian bool) uint16 { return uint16(b.Uint(off, 2, bigEndian)) }

// U32 reads a 32-bit value in the given byte order.
func (b Buffer) U32(off int, bigEndian bool) uint32 { return uint32(b.Uint(off, 4, bigEndian)) }

// Cmp reports whether the bytes at off equal pattern.
func (b Buffer) Cmp(off int, pattern string) bool {
	if off < 0 || off+len(pattern) > len(b.data) {
		return false
	}
	return string(b.data[off:off+len(pattern)]) == pattern
}

// CmpAnyOf reports whether the size bytes at off equal any of patterns.
// Each pattern must be at least size bytes long; only its first size bytes
// are compared.
func (b Buffer) CmpAnyOf(off, size int, patterns ...string) bool {
	if off < 0 || off+size > len(b.data) {
		return false
	}
	window := string(b.data[off : off+size])
	for _, p := range patterns {
		if len(p) >= size && p[:size] == window {
			return true
		}
	}
	return false
}

// ReadString returns size bytes at off as a string. No terminator is expected.
func (b Buffer) ReadString(off, size int) string {
	return string(b.data[off : off+size])
}
