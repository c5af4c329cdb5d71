package wasm

import (
	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// Section is a framed but unresolved section. Body holds exactly
// Size - CountLen bytes borrowed from the module buffer.
type Section struct {
	Body     []byte
	Offset   int // absolute offset of the kind byte
	BodyAt   int // absolute offset of Body
	Size     uint32
	Count    uint32
	CountLen int // encoded length of the Count varint
	Kind     SectionKind
}

// DecodeSection frames one section from the front of data and returns the
// bytes after it. Offsets are relative to data.
func DecodeSection(data []byte) (Section, []byte, error) {
	c := binary.NewCursor(data, 0)
	s, err := readSection(c)
	if err != nil {
		return Section{}, nil, err
	}
	return s, c.Remaining(), nil
}

// DecodeSections frames sections until data is exhausted. Zero sections is
// valid. Offsets are relative to data.
func DecodeSections(data []byte) ([]Section, error) {
	return readSections(binary.NewCursor(data, 0))
}

func readSections(c *binary.Cursor) ([]Section, error) {
	var sections []Section
	var last SectionKind
	for c.Len() > 0 {
		s, err := readSection(c)
		if err != nil {
			return nil, err
		}
		if last != 0 && s.Kind.order() <= last.order() {
			return nil, errors.New(errors.PhaseFrame, errors.KindSectionOrder).
				Section(s.Kind.String()).
				Offset(s.Offset).
				Detail("%s section after %s section", s.Kind, last).
				Build()
		}
		last = s.Kind
		sections = append(sections, s)
	}
	return sections, nil
}

func readSection(c *binary.Cursor) (Section, error) {
	at := c.Offset()

	id, err := c.ReadByte()
	if err != nil {
		return Section{}, errors.InPhase(err, errors.PhaseFrame)
	}
	kind := SectionKind(id)
	if kind.order() == 0 {
		return Section{}, errors.New(errors.PhaseFrame, errors.KindUnknownSectionKind).
			Offset(at).
			Value(id).
			Detail("section id %d", id).
			Build()
	}

	size, err := c.ReadU32()
	if err != nil {
		return Section{}, errors.Within(errors.InPhase(err, errors.PhaseFrame), kind.String())
	}

	count, countLen, err := c.ReadU32N()
	if err != nil {
		return Section{}, errors.Within(errors.InPhase(err, errors.PhaseFrame), kind.String(), "count")
	}
	if uint32(countLen) > size {
		return Section{}, errors.New(errors.PhaseFrame, errors.KindSectionLengthMismatch).
			Section(kind.String()).
			Offset(at).
			Value(size).
			Detail("declared size %d smaller than %d-byte entry count", size, countLen).
			Build()
	}

	bodyAt := c.Offset()
	body, err := c.ReadBytes(int(size) - countLen)
	if err != nil {
		return Section{}, errors.New(errors.PhaseFrame, errors.KindSectionLengthMismatch).
			Section(kind.String()).
			Offset(at).
			Value(size).
			Detail("declared size %d exceeds remaining input", size).
			Cause(err).
			Build()
	}

	return Section{
		Kind:     kind,
		Size:     size,
		Count:    count,
		CountLen: countLen,
		Body:     body,
		Offset:   at,
		BodyAt:   bodyAt,
	}, nil
}
