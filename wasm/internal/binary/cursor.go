package binary

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/leb128"
)

// Cursor reads forward through an immutable byte slice and tracks the
// absolute offset of every read. Slices returned by a Cursor alias the
// underlying buffer; nothing is copied.
type Cursor struct {
	buf  []byte
	pos  int
	base int
}

// NewCursor creates a Cursor over buf whose first byte sits at absolute
// offset base.
func NewCursor(buf []byte, base int) *Cursor {
	return &Cursor{buf: buf, base: base}
}

// Offset returns the absolute offset of the next unread byte.
func (c *Cursor) Offset() int {
	return c.base + c.pos
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Remaining returns the unread bytes without consuming them.
func (c *Cursor) Remaining() []byte {
	return c.buf[c.pos:len(c.buf):len(c.buf)]
}

// ReadByte reads a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, errors.Truncated(c.Offset(), 1, 0)
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, errors.Truncated(c.Offset(), 1, 0)
	}
	return c.buf[c.pos], nil
}

// ReadBytes takes exactly n bytes. The result aliases the buffer and has its
// capacity clipped so appends cannot overwrite later input.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Len() {
		return nil, errors.Truncated(c.Offset(), n, c.Len())
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Expect reports whether the next len(tag) bytes equal tag, consuming them
// either way. It only fails when the input is too short.
func (c *Cursor) Expect(tag []byte) (bool, error) {
	got, err := c.ReadBytes(len(tag))
	if err != nil {
		return false, err
	}
	for i := range tag {
		if got[i] != tag[i] {
			return false, nil
		}
	}
	return true, nil
}

// Sub carves the next n bytes into a closed child cursor and advances past
// them. The child cannot read beyond its region.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	at := c.Offset()
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return NewCursor(b, at), nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	v, _, err := c.ReadU32N()
	return v, err
}

// ReadU32N reads an unsigned LEB128 encoded uint32 and reports its encoded size.
func (c *Cursor) ReadU32N() (uint32, int, error) {
	v, n, err := leb128.DecodeU32(c.buf[c.pos:])
	if err != nil {
		return 0, n, c.rebase(err)
	}
	c.pos += n
	return v, n, nil
}

// ReadU64 reads an unsigned LEB128 encoded uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	v, n, err := leb128.DecodeU64(c.buf[c.pos:])
	if err != nil {
		return 0, c.rebase(err)
	}
	c.pos += n
	return v, nil
}

// ReadS32 reads a signed LEB128 encoded int32.
func (c *Cursor) ReadS32() (int32, error) {
	v, n, err := leb128.DecodeS32(c.buf[c.pos:])
	if err != nil {
		return 0, c.rebase(err)
	}
	c.pos += n
	return v, nil
}

// ReadS64 reads a signed LEB128 encoded int64.
func (c *Cursor) ReadS64() (int64, error) {
	v, n, err := leb128.DecodeS64(c.buf[c.pos:])
	if err != nil {
		return 0, c.rebase(err)
	}
	c.pos += n
	return v, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (c *Cursor) ReadU32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (c *Cursor) ReadF32() (float32, error) {
	bits, err := c.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads a little-endian IEEE 754 float64.
func (c *Cursor) ReadF64() (float64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadName reads a length-prefixed name.
func (c *Cursor) ReadName() (string, error) {
	n, err := c.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rebase turns an offset relative to the unread input into an absolute one.
func (c *Cursor) rebase(err error) error {
	e, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	out := *e
	out.Offset = c.Offset() + e.Offset
	return &out
}

// Repeat runs parse exactly n times. The index of the entry being parsed is
// passed to parse for error context.
func Repeat[T any](c *Cursor, n uint32, parse func(c *Cursor, i int) (T, error)) ([]T, error) {
	// Every entry occupies at least one byte, so a count larger than the
	// remaining input cannot be satisfied and must not drive the allocation.
	hint := int(n)
	if hint > c.Len() {
		hint = c.Len()
	}
	out := make([]T, 0, hint)
	for i := 0; i < int(n); i++ {
		v, err := parse(c, i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Until runs parse until one of the sentinel bytes is next in the input. The
// sentinel is consumed and returned so callers can tell which one ended the
// run.
func Until[T any](c *Cursor, sentinels []byte, parse func(c *Cursor) (T, error)) ([]T, byte, error) {
	var out []T
	for {
		b, err := c.PeekByte()
		if err != nil {
			return nil, 0, err
		}
		for _, s := range sentinels {
			if b == s {
				c.pos++
				return out, b, nil
			}
		}
		v, err := parse(c)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
}

// Cond runs parse only when present is true and returns nil otherwise.
func Cond[T any](c *Cursor, present bool, parse func(c *Cursor) (T, error)) (*T, error) {
	if !present {
		return nil, nil
	}
	v, err := parse(c)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
