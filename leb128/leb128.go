// Package leb128 decodes and encodes the variable-length integers used by the
// WebAssembly binary format.
//
// Decoders read from the front of a byte slice and report how many bytes were
// consumed; the caller advances with b[n:]. Every failure is an
// errors.KindMalformedVarint whose Offset is relative to the start of b.
package leb128

import (
	"github.com/wippyai/wasm-decoder/errors"
)

const (
	maxLen32 = 5
	maxLen64 = 10
)

// DecodeU32 reads an unsigned LEB128 value of at most 32 bits.
func DecodeU32(b []byte) (uint32, int, error) {
	var result uint32
	for i := 0; i < maxLen32; i++ {
		if i >= len(b) {
			return 0, i, truncated(i)
		}
		c := b[i]
		if i == maxLen32-1 && c&0xf0 != 0 {
			return 0, i + 1, overflow(i, 32)
		}
		result |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, maxLen32, overflow(maxLen32-1, 32)
}

// DecodeU64 reads an unsigned LEB128 value of at most 64 bits.
func DecodeU64(b []byte) (uint64, int, error) {
	var result uint64
	for i := 0; i < maxLen64; i++ {
		if i >= len(b) {
			return 0, i, truncated(i)
		}
		c := b[i]
		if i == maxLen64-1 && c&0xfe != 0 {
			return 0, i + 1, overflow(i, 64)
		}
		result |= uint64(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, maxLen64, overflow(maxLen64-1, 64)
}

// DecodeS32 reads a signed LEB128 value of at most 32 bits.
func DecodeS32(b []byte) (int32, int, error) {
	var result int32
	var shift uint
	for i := 0; i < maxLen32; i++ {
		if i >= len(b) {
			return 0, i, truncated(i)
		}
		c := b[i]
		if i == maxLen32-1 {
			// Bits 4-6 of the final group must repeat the sign bit (bit 3).
			unused := c & 0x70
			if c&0x80 != 0 || (c&0x08 == 0 && unused != 0) || (c&0x08 != 0 && unused != 0x70) {
				return 0, i + 1, overflow(i, 32)
			}
		}
		result |= int32(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 32 && c&0x40 != 0 {
				result |= ^int32(0) << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, maxLen32, overflow(maxLen32-1, 32)
}

// DecodeS64 reads a signed LEB128 value of at most 64 bits.
func DecodeS64(b []byte) (int64, int, error) {
	var result int64
	var shift uint
	for i := 0; i < maxLen64; i++ {
		if i >= len(b) {
			return 0, i, truncated(i)
		}
		c := b[i]
		if i == maxLen64-1 {
			unused := c & 0x7e
			if c&0x80 != 0 || (c&0x01 == 0 && unused != 0) || (c&0x01 != 0 && unused != 0x7e) {
				return 0, i + 1, overflow(i, 64)
			}
		}
		result |= int64(c&0x7f) << shift
		shift += 7
		if c&0x80 == 0 {
			if shift < 64 && c&0x40 != 0 {
				result |= ^int64(0) << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, maxLen64, overflow(maxLen64-1, 64)
}

func truncated(at int) error {
	return errors.MalformedVarint(at, "input ends before terminating byte")
}

func overflow(at int, bits int) error {
	e := errors.MalformedVarint(at, "value overflows integer width")
	e.Value = bits
	return e
}

// AppendU32 appends the unsigned LEB128 encoding of v to dst.
func AppendU32(dst []byte, v uint32) []byte {
	return AppendU64(dst, uint64(v))
}

// AppendU64 appends the unsigned LEB128 encoding of v to dst.
func AppendU64(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendS32 appends the signed LEB128 encoding of v to dst.
func AppendS32(dst []byte, v int32) []byte {
	return AppendS64(dst, int64(v))
}

// AppendS64 appends the signed LEB128 encoding of v to dst.
func AppendS64(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// EncodeU32 encodes an unsigned 32-bit value.
func EncodeU32(v uint32) []byte { return AppendU32(nil, v) }

// EncodeU64 encodes an unsigned 64-bit value.
func EncodeU64(v uint64) []byte { return AppendU64(nil, v) }

// EncodeS32 encodes a signed 32-bit value.
func EncodeS32(v int32) []byte { return AppendS32(nil, v) }

// EncodeS64 encodes a signed 64-bit value.
func EncodeS64(v int64) []byte { return AppendS64(nil, v) }

// SizeU32 returns the number of bytes EncodeU32(v) produces.
func SizeU32(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
