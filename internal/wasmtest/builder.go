// Package wasmtest assembles binary module fixtures for tests.
package wasmtest

import (
	"bytes"
	"encoding/binary"

	"github.com/wippyai/wasm-decoder/leb128"
)

// Builder provides buffered writing utilities for binary module fixtures.
type Builder struct {
	buf bytes.Buffer
}

// New creates a new Builder.
func New() *Builder {
	return &Builder{}
}

// Bytes returns the written bytes.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// Len returns the number of bytes written.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// Byte writes raw bytes.
func (b *Builder) Byte(v ...byte) *Builder {
	b.buf.Write(v)
	return b
}

// U32 writes an unsigned LEB128 encoded uint32.
func (b *Builder) U32(v uint32) *Builder {
	b.buf.Write(leb128.EncodeU32(v))
	return b
}

// S32 writes a signed LEB128 encoded int32.
func (b *Builder) S32(v int32) *Builder {
	b.buf.Write(leb128.EncodeS32(v))
	return b
}

// S64 writes a signed LEB128 encoded int64.
func (b *Builder) S64(v int64) *Builder {
	b.buf.Write(leb128.EncodeS64(v))
	return b
}

// Name writes a length-prefixed name.
func (b *Builder) Name(s string) *Builder {
	b.U32(uint32(len(s)))
	b.buf.WriteString(s)
	return b
}

// U32LE writes a little-endian uint32 (fixed 4 bytes).
func (b *Builder) U32LE(v uint32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

// Preamble writes the magic literal followed by version.
func (b *Builder) Preamble(version uint32) *Builder {
	return b.Byte(0x00, 0x61, 0x73, 0x6d).U32LE(version)
}

// Section writes a framed section whose body is the concatenation of entries
// and whose entry count is len(entries).
func (b *Builder) Section(id byte, entries ...[]byte) *Builder {
	return b.Byte(Section(id, entries...)...)
}

// Module returns a version 1 module made of the given framed sections.
func Module(sections ...[]byte) []byte {
	b := New().Preamble(1)
	for _, s := range sections {
		b.Byte(s...)
	}
	return b.Bytes()
}

// Section frames entries as a section with an entry count of len(entries).
func Section(id byte, entries ...[]byte) []byte {
	count := leb128.EncodeU32(uint32(len(entries)))
	size := len(count)
	for _, e := range entries {
		size += len(e)
	}
	b := New().Byte(id).U32(uint32(size)).Byte(count...)
	for _, e := range entries {
		b.Byte(e...)
	}
	return b.Bytes()
}

// FuncType encodes a function signature entry.
func FuncType(params, results []byte) []byte {
	return New().Byte(0x60).
		U32(uint32(len(params))).Byte(params...).
		U32(uint32(len(results))).Byte(results...).
		Bytes()
}

// Limits encodes memory limits. A max is written only when given.
func Limits(min uint32, max ...uint32) []byte {
	b := New()
	if len(max) == 0 {
		return b.U32(0).U32(min).Bytes()
	}
	return b.U32(1).U32(min).U32(max[0]).Bytes()
}

// ImportFunc encodes a function import entry.
func ImportFunc(module, name string, typeIdx uint32) []byte {
	return New().Name(module).Name(name).Byte(0x00).U32(typeIdx).Bytes()
}

// ImportMemory encodes a memory import entry.
func ImportMemory(module, name string, min uint32, max ...uint32) []byte {
	return New().Name(module).Name(name).Byte(0x02).Byte(Limits(min, max...)...).Bytes()
}

// Export encodes an export entry.
func Export(name string, kind byte, idx uint32) []byte {
	return New().Name(name).Byte(kind).U32(idx).Bytes()
}

// Local is one run of identically typed locals.
type Local struct {
	Count uint32
	Type  byte
}

// Code encodes a size-prefixed code entry. instrs must include the closing end.
func Code(locals []Local, instrs ...byte) []byte {
	body := New().U32(uint32(len(locals)))
	for _, l := range locals {
		body.U32(l.Count).Byte(l.Type)
	}
	body.Byte(instrs...)
	return New().U32(uint32(body.Len())).Byte(body.Bytes()...).Bytes()
}

// ActiveData encodes a flags=0 data segment with the given offset expression,
// which must include its closing end.
func ActiveData(offset []byte, init []byte) []byte {
	return New().U32(0).Byte(offset...).U32(uint32(len(init))).Byte(init...).Bytes()
}

// PassiveData encodes a flags=1 data segment.
func PassiveData(init []byte) []byte {
	return New().U32(1).U32(uint32(len(init))).Byte(init...).Bytes()
}

// ExplicitData encodes a flags=2 data segment targeting mem.
func ExplicitData(mem uint32, offset []byte, init []byte) []byte {
	return New().U32(2).U32(mem).Byte(offset...).U32(uint32(len(init))).Byte(init...).Bytes()
}
