package leb128_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	werrors "github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/leb128"
)

func TestDecodeU32(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected uint32
		n        int
	}{
		{name: "zero", input: []byte{0x00}, expected: 0, n: 1},
		{name: "one", input: []byte{0x01}, expected: 1, n: 1},
		{name: "127", input: []byte{0x7f}, expected: 127, n: 1},
		{name: "128", input: []byte{0x80, 0x01}, expected: 128, n: 2},
		{name: "624485", input: []byte{0xe5, 0x8e, 0x26}, expected: 624485, n: 3},
		{name: "max", input: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, expected: math.MaxUint32, n: 5},
		{name: "padded zero", input: []byte{0x80, 0x80, 0x00}, expected: 0, n: 3},
		{name: "trailing bytes ignored", input: []byte{0x02, 0xaa, 0xbb}, expected: 2, n: 1},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			v, n, err := leb128.DecodeU32(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, v)
			require.Equal(t, tc.n, n)
		})
	}
}

func TestDecodeU32_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "only continuation", input: []byte{0x80}},
		{name: "continuation run", input: []byte{0xff, 0xff, 0xff}},
		{name: "fifth byte too wide", input: []byte{0xff, 0xff, 0xff, 0xff, 0x1f}},
		{name: "six bytes", input: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := leb128.DecodeU32(tc.input)
			require.Error(t, err)
			require.True(t, errors.Is(err, werrors.ErrMalformedVarint), "got %v", err)
		})
	}
}

func TestDecodeU64(t *testing.T) {
	tests := []struct {
		input    []byte
		expected uint64
	}{
		{input: []byte{0x00}, expected: 0},
		{input: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, expected: math.MaxUint32},
		{input: []byte{0x80, 0x80, 0x80, 0x80, 0x10}, expected: 1 << 32},
		{input: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, expected: math.MaxUint64},
	}

	for _, tc := range tests {
		v, n, err := leb128.DecodeU64(tc.input)
		require.NoError(t, err)
		require.Equal(t, tc.expected, v)
		require.Equal(t, len(tc.input), n)
	}

	_, _, err := leb128.DecodeU64([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02})
	require.ErrorIs(t, err, werrors.ErrMalformedVarint)

	_, _, err = leb128.DecodeU64([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	require.ErrorIs(t, err, werrors.ErrMalformedVarint)
}

func TestDecodeS32(t *testing.T) {
	tests := []struct {
		input    []byte
		expected int32
	}{
		{input: []byte{0x00}, expected: 0},
		{input: []byte{0x01}, expected: 1},
		{input: []byte{0x7f}, expected: -1},
		{input: []byte{0x3f}, expected: 63},
		{input: []byte{0xc0, 0x00}, expected: 64},
		{input: []byte{0x40}, expected: -64},
		{input: []byte{0xbf, 0x7f}, expected: -65},
		{input: []byte{0x80, 0x7f}, expected: -128},
		{input: []byte{0xff, 0xff, 0xff, 0xff, 0x07}, expected: math.MaxInt32},
		{input: []byte{0x80, 0x80, 0x80, 0x80, 0x78}, expected: math.MinInt32},
		{input: []byte{0xff, 0xff, 0xff, 0xff, 0x7f}, expected: -1},
	}

	for _, tc := range tests {
		v, n, err := leb128.DecodeS32(tc.input)
		require.NoError(t, err, "input %x", tc.input)
		require.Equal(t, tc.expected, v, "input %x", tc.input)
		require.Equal(t, len(tc.input), n)
	}
}

func TestDecodeS32_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: []byte{}},
		{name: "truncated", input: []byte{0xff, 0xff}},
		{name: "positive with high garbage", input: []byte{0xff, 0xff, 0xff, 0xff, 0x17}},
		{name: "negative missing extension", input: []byte{0x80, 0x80, 0x80, 0x80, 0x48}},
		{name: "too long", input: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := leb128.DecodeS32(tc.input)
			require.ErrorIs(t, err, werrors.ErrMalformedVarint)
		})
	}
}

func TestDecodeS64(t *testing.T) {
	tests := []int64{0, 1, -1, 63, 64, -64, -65, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, v := range tests {
		enc := leb128.EncodeS64(v)
		got, n, err := leb128.DecodeS64(enc)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(enc), n)
	}

	_, _, err := leb128.DecodeS64([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x41})
	require.ErrorIs(t, err, werrors.ErrMalformedVarint)
}

func TestEncode(t *testing.T) {
	require.Equal(t, []byte{0x00}, leb128.EncodeU32(0))
	require.Equal(t, []byte{0xe5, 0x8e, 0x26}, leb128.EncodeU32(624485))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, leb128.EncodeU32(math.MaxUint32))
	require.Equal(t, []byte{0x7f}, leb128.EncodeS32(-1))
	require.Equal(t, []byte{0xc0, 0x00}, leb128.EncodeS32(64))
	require.Equal(t, []byte{0x40}, leb128.EncodeS32(-64))
	require.Equal(t, []byte{0x80, 0x80, 0x80, 0x80, 0x10}, leb128.EncodeU64(1<<32))

	buf := leb128.AppendU32([]byte{0xaa}, 300)
	require.Equal(t, []byte{0xaa, 0xac, 0x02}, buf)
}

func TestSizeU32(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, math.MaxUint32} {
		require.Equal(t, len(leb128.EncodeU32(v)), leb128.SizeU32(v), "value %d", v)
	}
}

func TestMalformedOffset(t *testing.T) {
	_, n, err := leb128.DecodeU32([]byte{0x80, 0x80})
	require.Equal(t, 2, n)

	var e *werrors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, 2, e.Offset)
}
