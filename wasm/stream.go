package wasm

import (
	"io"
	"iter"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// InstructionStream decodes one instruction per call to Next. After a decode
// error the stream reports that error once and is exhausted afterwards.
type InstructionStream struct {
	d       *decoder
	done    bool
	bounded bool // payload of a function body with a declared size
}

// NewInstructionStream creates a stream over raw instruction bytes.
func NewInstructionStream(code []byte) *InstructionStream {
	return newStream(code, 0, 0)
}

func newStream(code []byte, base, maxNesting int) *InstructionStream {
	return &InstructionStream{d: newDecoder(binary.NewCursor(code, base), maxNesting)}
}

// Next returns the next instruction, or io.EOF once the stream is exhausted.
func (s *InstructionStream) Next() (Instruction, error) {
	if s.done || s.d.c.Len() == 0 {
		s.done = true
		return nil, io.EOF
	}
	in, err := s.d.instruction()
	if err != nil {
		s.done = true
		if s.bounded {
			err = errors.Overrun(err)
		}
		return nil, err
	}
	return in, nil
}

// Offset returns the absolute offset of the next undecoded byte.
func (s *InstructionStream) Offset() int {
	return s.d.c.Offset()
}

// All yields the remaining instructions. A decode error is yielded once,
// paired with a nil instruction, and ends the sequence.
func (s *InstructionStream) All() iter.Seq2[Instruction, error] {
	return func(yield func(Instruction, error) bool) {
		for {
			in, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(in, err) || err != nil {
				return
			}
		}
	}
}
