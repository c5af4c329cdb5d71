package wasm

import "fmt"

// Preamble is the fixed eight-byte module header.
type Preamble struct {
	Magic   [4]byte
	Version uint32
}

// IsDefault reports whether the preamble carries the core module version.
func (p Preamble) IsDefault() bool {
	return p.Version == Version
}

// IsComponent reports whether the preamble announces a component-model binary.
func (p Preamble) IsComponent() bool {
	return p.Version == ComponentVersion
}

// FuncType represents a function signature with parameter and result types.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// String renders the signature as "(i32, i64) -> (i32)".
func (f FuncType) String() string {
	return fmt.Sprintf("(%s) -> (%s)", joinTypes(f.Params), joinTypes(f.Results))
}

// Limits holds memory size bounds in pages.
type Limits struct {
	Max   *uint32 // present iff Flags has LimitsHasMax
	Flags uint32
	Min   uint32
}

// MemoryType describes a linear memory.
type MemoryType struct {
	Limits Limits
}

// Import is one entry of the import section. Exactly one of TypeIdx and
// Memory is set, matching Kind.
type Import struct {
	TypeIdx *uint32     // ExternFunc
	Memory  *MemoryType // ExternMemory
	Module  string
	Name    string
	Kind    ExternKind
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ExternKind
	Index uint32
}

// Func is one entry of the function section. Func i pairs with Code i.
type Func struct {
	TypeIdx uint32
}

// LocalGroup declares Count locals of the same type.
type LocalGroup struct {
	Count uint32
	Type  ValType
}

// DataSegment is one entry of the data section.
type DataSegment struct {
	MemIdx *uint32    // present iff Flags == DataActiveExplicit
	Offset *ConstExpr // present iff the segment is active
	Init   []byte
	Flags  uint32
}

// IsActive reports whether the segment is applied at instantiation.
func (d DataSegment) IsActive() bool {
	return d.Flags == DataActive || d.Flags == DataActiveExplicit
}

// Memory returns the target memory index, 0 when implied.
func (d DataSegment) Memory() uint32 {
	if d.MemIdx != nil {
		return *d.MemIdx
	}
	return 0
}

// ConstExpr is an initializer expression. Raw spans the instructions and
// the terminator.
type ConstExpr struct {
	Raw          []byte
	Instructions []Instruction
	Terminator   byte
}

func (k SectionKind) String() string {
	switch k {
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionMemory:
		return "memory"
	case SectionExport:
		return "export"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	default:
		return fmt.Sprintf("section(%d)", byte(k))
	}
}

// order returns the canonical position of the section, or 0 if unknown.
func (k SectionKind) order() int {
	switch k {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionMemory:
		return 4
	case SectionExport:
		return 5
	case SectionCode:
		return 6
	case SectionData:
		return 7
	default:
		return 0
	}
}

func (k ExternKind) String() string {
	switch k {
	case ExternFunc:
		return "func"
	case ExternTable:
		return "table"
	case ExternMemory:
		return "memory"
	case ExternGlobal:
		return "global"
	default:
		return fmt.Sprintf("extern(%d)", byte(k))
	}
}

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	default:
		return "unknown"
	}
}

func (b BlockType) String() string {
	switch b {
	case BlockVoid:
		return ""
	case BlockI32:
		return "i32"
	case BlockI64:
		return "i64"
	case BlockF32:
		return "f32"
	case BlockF64:
		return "f64"
	default:
		return fmt.Sprintf("blocktype(0x%02x)", byte(b))
	}
}

func joinTypes(ts []ValType) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}
