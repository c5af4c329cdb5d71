package wasmdecoder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	wasmdecoder "github.com/wippyai/wasm-decoder"
	werrors "github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/internal/wasmtest"
	"github.com/wippyai/wasm-decoder/wasm"
)

func TestDecode(t *testing.T) {
	data := wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType([]byte{0x7f}, nil)),
		wasmtest.Section(3, []byte{0x00}),
		wasmtest.Section(7, wasmtest.Export("run", 0x00, 0)),
		wasmtest.Section(10, wasmtest.Code(nil, 0x20, 0x00, 0x1a, 0x0b)),
	)

	m, err := wasmdecoder.Decode(data, nil)
	require.NoError(t, err)
	require.True(t, m.Resolved())
	require.Len(t, m.Code, 1)
	require.True(t, m.Code[0].Resolved())

	idx, ft, err := m.ExportedFunction("run")
	require.NoError(t, err)
	require.Equal(t, uint32(0), idx)
	require.Equal(t, []wasm.ValType{wasm.ValI32}, ft.Params)
}

func TestDecodeInstructionError(t *testing.T) {
	data := wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}, []byte{0x00}),
		wasmtest.Section(10,
			wasmtest.Code(nil, 0x0b),
			wasmtest.Code(nil, 0x01, 0xff, 0x0b),
		),
	)

	_, err := wasmdecoder.Decode(data, nil)
	require.ErrorIs(t, err, werrors.ErrUnknownOpcode)

	var e *werrors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, werrors.PhaseInstruction, e.Phase)
	require.Equal(t, "code", e.Section)
	require.Equal(t, []string{"1"}, e.Path)
	require.Equal(t, byte(0xff), e.Value)
}

func TestDecodeStopsAtFirstFailure(t *testing.T) {
	_, err := wasmdecoder.Decode([]byte{0x00, 0x61, 0x73}, nil)
	require.ErrorIs(t, err, werrors.ErrMalformedPreamble)

	_, err = wasmdecoder.Decode(wasmtest.Module(wasmtest.Section(1, []byte{0x60, 0x01, 0x7d, 0x00})), nil)
	require.ErrorIs(t, err, werrors.ErrUnknownValueType)

	_, err = wasmdecoder.Decode(wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}),
		wasmtest.Section(10, wasmtest.Code(nil, 0x02, 0x40, 0x02, 0x40, 0x0b, 0x0b, 0x0b)),
	), &wasm.Config{MaxNesting: 1})
	require.ErrorIs(t, err, werrors.ErrNestingTooDeep)
}
