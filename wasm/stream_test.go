package wasm_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	werrors "github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/internal/wasmtest"
	"github.com/wippyai/wasm-decoder/wasm"
)

func TestInstructionStream(t *testing.T) {
	s := wasm.NewInstructionStream([]byte{0x01, 0x41, 0x05, 0x1a})

	in, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, wasm.Simple{Op: wasm.OpNop}, in)
	require.Equal(t, 1, s.Offset())

	in, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, wasm.I32Const{Value: 5}, in)

	in, err = s.Next()
	require.NoError(t, err)
	require.Equal(t, wasm.Simple{Op: wasm.OpDrop}, in)

	for i := 0; i < 2; i++ {
		in, err = s.Next()
		require.ErrorIs(t, err, io.EOF)
		require.Nil(t, in)
	}
}

func TestInstructionStreamEmpty(t *testing.T) {
	_, err := wasm.NewInstructionStream(nil).Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestInstructionStreamErrorOnce(t *testing.T) {
	s := wasm.NewInstructionStream([]byte{0x01, 0xff, 0x01, 0x01})

	_, err := s.Next()
	require.NoError(t, err)

	_, err = s.Next()
	require.ErrorIs(t, err, werrors.ErrUnknownOpcode)

	for i := 0; i < 3; i++ {
		_, err = s.Next()
		require.ErrorIs(t, err, io.EOF, "stream must not resynchronize after an error")
	}
}

func TestInstructionStreamAll(t *testing.T) {
	var got []wasm.Instruction
	var errs []error
	for in, err := range wasm.NewInstructionStream([]byte{0x20, 0x00, 0x0c, 0x00, 0x11, 0x00}).All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, in)
	}

	require.Equal(t, []wasm.Instruction{
		wasm.Variable{Op: wasm.OpLocalGet, Index: 0},
		wasm.Branch{Op: wasm.OpBr, Label: 0},
	}, got)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], werrors.ErrMalformedVarint)
}

func TestInstructionStreamAllBreak(t *testing.T) {
	s := wasm.NewInstructionStream([]byte{0x01, 0x01, 0x01})
	n := 0
	for range s.All() {
		n++
		if n == 1 {
			break
		}
	}
	require.Equal(t, 1, n)

	in, err := s.Next()
	require.NoError(t, err, "breaking out leaves the stream where it stopped")
	require.Equal(t, wasm.Simple{Op: wasm.OpNop}, in)
}

func TestFunctionInstructions(t *testing.T) {
	data := wasmtest.Module(wasmtest.Section(10, wasmtest.Code(nil,
		0x02, 0x40, 0x41, 0x00, 0x0d, 0x00, 0x0b,
		0x0f,
		0x0b,
	)))

	m, err := wasm.Decode(data)
	require.NoError(t, err)
	require.NoError(t, m.ResolveSections())
	f, err := m.ResolveCode(0)
	require.NoError(t, err)

	s := f.Instructions()
	require.Equal(t, f.Offset, s.Offset())

	first, err := s.Next()
	require.NoError(t, err)
	block := first.(wasm.Block)
	require.Len(t, block.Body.Instructions, 2)

	second, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, wasm.Simple{Op: wasm.OpReturn}, second)

	_, err = s.Next()
	require.ErrorIs(t, err, io.EOF, "the closing end is not part of the payload")
}
