package wasm

import (
	"strconv"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// SectionItems is the typed content of a resolved section. Only the list
// matching the section kind is set.
type SectionItems struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []Func
	Memories []MemoryType
	Exports  []Export
	Code     []Code
	Data     []DataSegment
	Kind     SectionKind
}

// Len returns the number of entries in the populated list.
func (it SectionItems) Len() int {
	switch it.Kind {
	case SectionType:
		return len(it.Types)
	case SectionImport:
		return len(it.Imports)
	case SectionFunction:
		return len(it.Funcs)
	case SectionMemory:
		return len(it.Memories)
	case SectionExport:
		return len(it.Exports)
	case SectionCode:
		return len(it.Code)
	case SectionData:
		return len(it.Data)
	}
	return 0
}

// Resolve decodes the section body into exactly Count typed entries.
// Bytes left over after the last entry mean the declared size was wrong.
func (s Section) Resolve() (SectionItems, error) {
	c := binary.NewCursor(s.Body, s.BodyAt)
	items := SectionItems{Kind: s.Kind}

	var err error
	switch s.Kind {
	case SectionType:
		items.Types, err = entries(c, s, readFuncType)
	case SectionImport:
		items.Imports, err = entries(c, s, readImport)
	case SectionFunction:
		items.Funcs, err = entries(c, s, readFunc)
	case SectionMemory:
		items.Memories, err = entries(c, s, readMemoryType)
	case SectionExport:
		items.Exports, err = entries(c, s, readExport)
	case SectionCode:
		items.Code, err = entries(c, s, readCode)
	case SectionData:
		items.Data, err = entries(c, s, readDataSegment)
	default:
		return SectionItems{}, errors.New(errors.PhaseSection, errors.KindUnknownSectionKind).
			Offset(s.Offset).
			Value(byte(s.Kind)).
			Build()
	}
	if err != nil {
		return SectionItems{}, err
	}

	if c.Len() != 0 {
		return SectionItems{}, errors.New(errors.PhaseSection, errors.KindSectionLengthMismatch).
			Section(s.Kind.String()).
			Offset(c.Offset()).
			Value(c.Len()).
			Detail("%d trailing bytes after %d entries", c.Len(), s.Count).
			Build()
	}
	return items, nil
}

// entries runs parse Count times, tagging failures with the section and entry.
// An entry that needs more bytes than the body holds is a length mismatch.
func entries[T any](c *binary.Cursor, s Section, parse func(*binary.Cursor) (T, error)) ([]T, error) {
	return binary.Repeat(c, s.Count, func(c *binary.Cursor, i int) (T, error) {
		v, err := parse(c)
		if err != nil {
			return v, errors.Overrun(errors.Within(err, s.Kind.String(), strconv.Itoa(i)))
		}
		return v, nil
	})
}

func readFuncType(c *binary.Cursor) (FuncType, error) {
	at := c.Offset()
	tag, err := c.ReadByte()
	if err != nil {
		return FuncType{}, err
	}
	if tag != FuncTypeTag {
		return FuncType{}, errors.New(errors.PhaseSection, errors.KindUnknownValueType).
			Offset(at).
			Value(tag).
			Detail("type tag 0x%02x, want 0x%02x", tag, FuncTypeTag).
			Build()
	}

	params, err := readValTypes(c)
	if err != nil {
		return FuncType{}, errors.Within(err, "", "params")
	}
	results, err := readValTypes(c)
	if err != nil {
		return FuncType{}, errors.Within(err, "", "results")
	}
	return FuncType{Params: params, Results: results}, nil
}

func readValTypes(c *binary.Cursor) ([]ValType, error) {
	n, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	return binary.Repeat(c, n, func(c *binary.Cursor, _ int) (ValType, error) {
		return readValType(c)
	})
}

func readValType(c *binary.Cursor) (ValType, error) {
	at := c.Offset()
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch v := ValType(b); v {
	case ValI32, ValI64:
		return v, nil
	default:
		return 0, errors.UnknownValueType("", at, b)
	}
}

func readLimits(c *binary.Cursor) (Limits, error) {
	at := c.Offset()
	flags, err := c.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	if flags > LimitsHasMax {
		return Limits{}, errors.New(errors.PhaseSection, errors.KindUnsupportedPayload).
			Offset(at).
			Value(flags).
			Detail("limits flags 0x%x", flags).
			Build()
	}

	min, err := c.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	max, err := binary.Cond(c, flags&LimitsHasMax != 0, func(c *binary.Cursor) (uint32, error) {
		return c.ReadU32()
	})
	if err != nil {
		return Limits{}, err
	}
	return Limits{Flags: flags, Min: min, Max: max}, nil
}

func readMemoryType(c *binary.Cursor) (MemoryType, error) {
	l, err := readLimits(c)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: l}, nil
}

func readImport(c *binary.Cursor) (Import, error) {
	module, err := c.ReadName()
	if err != nil {
		return Import{}, err
	}
	name, err := c.ReadName()
	if err != nil {
		return Import{}, err
	}
	at := c.Offset()
	kind, err := c.ReadByte()
	if err != nil {
		return Import{}, err
	}

	imp := Import{Module: module, Name: name, Kind: ExternKind(kind)}
	switch imp.Kind {
	case ExternFunc:
		idx, err := c.ReadU32()
		if err != nil {
			return Import{}, err
		}
		imp.TypeIdx = &idx
	case ExternMemory:
		mt, err := readMemoryType(c)
		if err != nil {
			return Import{}, err
		}
		imp.Memory = &mt
	case ExternTable, ExternGlobal:
		e := errors.Unsupported(errors.PhaseSection, at, imp.Kind.String()+" import")
		e.Value = kind
		return Import{}, e
	default:
		return Import{}, unknownExtern(at, kind)
	}
	return imp, nil
}

func readExport(c *binary.Cursor) (Export, error) {
	name, err := c.ReadName()
	if err != nil {
		return Export{}, err
	}
	at := c.Offset()
	kind, err := c.ReadByte()
	if err != nil {
		return Export{}, err
	}
	if kind > byte(ExternGlobal) {
		return Export{}, unknownExtern(at, kind)
	}
	idx, err := c.ReadU32()
	if err != nil {
		return Export{}, err
	}
	return Export{Name: name, Kind: ExternKind(kind), Index: idx}, nil
}

func unknownExtern(at int, kind byte) error {
	return errors.New(errors.PhaseSection, errors.KindUnknownExternKind).
		Offset(at).
		Value(kind).
		Detail("extern kind 0x%02x", kind).
		Build()
}

func readFunc(c *binary.Cursor) (Func, error) {
	idx, err := c.ReadU32()
	if err != nil {
		return Func{}, err
	}
	return Func{TypeIdx: idx}, nil
}

func readCode(c *binary.Cursor) (Code, error) {
	at := c.Offset()
	size, err := c.ReadU32()
	if err != nil {
		return Code{}, err
	}
	bodyAt := c.Offset()
	body, err := c.ReadBytes(int(size))
	if err != nil {
		return Code{}, errors.New(errors.PhaseSection, errors.KindSectionLengthMismatch).
			Offset(at).
			Value(size).
			Detail("body size %d exceeds section", size).
			Cause(err).
			Build()
	}
	return Code{Size: size, Offset: at, Body: RawCode{Bytes: body, Offset: bodyAt}}, nil
}

func readDataSegment(c *binary.Cursor) (DataSegment, error) {
	at := c.Offset()
	flags, err := c.ReadU32()
	if err != nil {
		return DataSegment{}, err
	}
	if flags > DataActiveExplicit {
		return DataSegment{}, errors.New(errors.PhaseSection, errors.KindUnsupportedPayload).
			Offset(at).
			Value(flags).
			Detail("data segment flags %d", flags).
			Build()
	}

	seg := DataSegment{Flags: flags}
	seg.MemIdx, err = binary.Cond(c, flags == DataActiveExplicit, func(c *binary.Cursor) (uint32, error) {
		return c.ReadU32()
	})
	if err != nil {
		return DataSegment{}, err
	}
	seg.Offset, err = binary.Cond(c, seg.IsActive(), readConstExpr)
	if err != nil {
		return DataSegment{}, errors.Within(err, "", "offset")
	}

	n, err := c.ReadU32()
	if err != nil {
		return DataSegment{}, err
	}
	seg.Init, err = c.ReadBytes(int(n))
	if err != nil {
		return DataSegment{}, err
	}
	return seg, nil
}

// readConstExpr decodes an initializer expression. Only constant opcodes are
// permitted before the closing end.
func readConstExpr(c *binary.Cursor) (ConstExpr, error) {
	start := c.Remaining()
	from := c.Pos()

	d := newDecoder(c, 0)
	var instrs []Instruction
	for {
		at := c.Offset()
		op, err := c.PeekByte()
		if err != nil {
			return ConstExpr{}, err
		}
		if op == OpEnd {
			_, _ = c.ReadByte()
			break
		}
		switch op {
		case OpI32Const, OpI64Const, OpF32Const, OpF64Const, OpGlobalGet:
		default:
			e := errors.Unsupported(errors.PhaseSection, at, "non-constant opcode in initializer")
			e.Value = op
			return ConstExpr{}, e
		}
		in, err := d.instruction()
		if err != nil {
			return ConstExpr{}, err
		}
		instrs = append(instrs, in)
	}

	return ConstExpr{
		Raw:          start[:c.Pos()-from],
		Instructions: instrs,
		Terminator:   OpEnd,
	}, nil
}
