package wasm

import (
	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// Code is one entry of the code section. Body starts as RawCode and becomes
// a *Function once resolved.
type Code struct {
	Body   CodeBody
	Offset int // absolute offset of the size varint
	Size   uint32
}

// CodeBody is either RawCode or *Function.
type CodeBody interface {
	codeBody()
}

// RawCode is an unresolved function body borrowed from the module buffer.
type RawCode struct {
	Bytes  []byte
	Offset int // absolute offset of Bytes
}

// Function is a resolved function body. Code excludes the closing end,
// which is kept in Trailer.
type Function struct {
	Locals  []LocalGroup
	Code    []byte
	Trailer []byte
	Offset  int // absolute offset of Code

	maxNesting int
}

func (RawCode) codeBody() {}
func (*Function) codeBody() {}

// Resolved reports whether the body has been decoded into a *Function.
func (c Code) Resolved() bool {
	_, ok := c.Body.(*Function)
	return ok
}

// Function returns the resolved body, or nil if the entry is still raw.
func (c Code) Function() *Function {
	f, _ := c.Body.(*Function)
	return f
}

// Resolve decodes the local declarations and splits off the instruction
// payload. The body must end with the end opcode.
func (r RawCode) Resolve() (*Function, error) {
	return r.resolve(0)
}

func (r RawCode) resolve(maxNesting int) (*Function, error) {
	c := binary.NewCursor(r.Bytes, r.Offset)

	n, err := c.ReadU32()
	if err != nil {
		return nil, errors.Overrun(errors.InPhase(err, errors.PhaseFunction))
	}
	locals, err := binary.Repeat(c, n, func(c *binary.Cursor, _ int) (LocalGroup, error) {
		count, err := c.ReadU32()
		if err != nil {
			return LocalGroup{}, err
		}
		t, err := readValType(c)
		if err != nil {
			return LocalGroup{}, err
		}
		return LocalGroup{Count: count, Type: t}, nil
	})
	if err != nil {
		return nil, errors.Overrun(errors.InPhase(err, errors.PhaseFunction))
	}

	at := c.Offset()
	rest := c.Remaining()
	if len(rest) == 0 || rest[len(rest)-1] != OpEnd {
		return nil, errors.New(errors.PhaseFunction, errors.KindSectionLengthMismatch).
			Section(SectionCode.String()).
			Offset(at + len(rest)).
			Detail("function body not closed by end").
			Build()
	}

	return &Function{
		Locals:     locals,
		Code:       rest[:len(rest)-1 : len(rest)-1],
		Trailer:    rest[len(rest)-1:],
		Offset:     at,
		maxNesting: maxNesting,
	}, nil
}

// NumLocals returns the total number of declared locals.
func (f *Function) NumLocals() uint64 {
	var n uint64
	for _, g := range f.Locals {
		n += uint64(g.Count)
	}
	return n
}

// Instructions returns a lazy stream over the instruction payload. An
// instruction running past the end of the payload is reported as a section
// length mismatch, since the body size was declared by the code entry.
func (f *Function) Instructions() *InstructionStream {
	s := newStream(f.Code, f.Offset, f.maxNesting)
	s.bounded = true
	return s
}

// Decode decodes the whole instruction payload.
func (f *Function) Decode() ([]Instruction, error) {
	var out []Instruction
	for in, err := range f.Instructions().All() {
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
