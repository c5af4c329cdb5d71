package wasm

import (
	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// DecodePreamble reads the magic literal and version from the front of data
// and returns the bytes that follow. Any version is accepted.
func DecodePreamble(data []byte) (Preamble, []byte, error) {
	c := binary.NewCursor(data, 0)
	p, err := readPreamble(c)
	if err != nil {
		return Preamble{}, nil, err
	}
	return p, c.Remaining(), nil
}

func readPreamble(c *binary.Cursor) (Preamble, error) {
	ok, err := c.Expect(Magic[:])
	if err != nil {
		return Preamble{}, errors.New(errors.PhasePreamble, errors.KindMalformedPreamble).
			Offset(0).
			Detail("module shorter than magic").
			Cause(err).
			Build()
	}
	if !ok {
		return Preamble{}, errors.New(errors.PhasePreamble, errors.KindMalformedPreamble).
			Offset(0).
			Detail("magic is not \\0asm").
			Build()
	}

	version, err := c.ReadU32LE()
	if err != nil {
		return Preamble{}, errors.New(errors.PhasePreamble, errors.KindMalformedPreamble).
			Offset(4).
			Detail("module shorter than version").
			Cause(err).
			Build()
	}

	return Preamble{Magic: Magic, Version: version}, nil
}

func checkVersion(p Preamble) error {
	if p.IsDefault() {
		return nil
	}
	return errors.New(errors.PhasePreamble, errors.KindMalformedPreamble).
		Offset(4).
		Value(p.Version).
		Detail("version 0x%08x, want 0x%08x", p.Version, Version).
		Build()
}
