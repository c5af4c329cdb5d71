package wasm

// Magic is the module preamble literal "\0asm".
var Magic = [4]byte{0x00, 0x61, 0x73, 0x6d}

// Preamble versions.
const (
	// Version is the core module format version.
	Version uint32 = 0x01

	// ComponentVersion is the version and layer word of a component-model
	// binary (version 0x0d, layer 1).
	ComponentVersion uint32 = 0x0001000d
)

// SectionKind is the one-byte identifier of a module section.
type SectionKind byte

// Section kinds this decoder models. Sections must appear in this order,
// each at most once.
const (
	SectionType     SectionKind = 1  // function signatures
	SectionImport   SectionKind = 2  // imported definitions
	SectionFunction SectionKind = 3  // type indices of defined functions
	SectionMemory   SectionKind = 5  // linear memories
	SectionExport   SectionKind = 7  // exported definitions
	SectionCode     SectionKind = 10 // function bodies
	SectionData     SectionKind = 11 // data segments
)

// ExternKind identifies the kind of an imported or exported item.
type ExternKind byte

const (
	ExternFunc   ExternKind = 0
	ExternTable  ExternKind = 1
	ExternMemory ExternKind = 2
	ExternGlobal ExternKind = 3
)

// ValType is a value type tag. The zero value is not a valid decode result.
type ValType byte

const (
	ValI32 ValType = 0x7F // 32-bit integer
	ValI64 ValType = 0x7E // 64-bit integer
)

// BlockType is the result type tag of a structured control instruction.
type BlockType byte

const (
	BlockVoid BlockType = 0x40
	BlockI32  BlockType = 0x7F
	BlockI64  BlockType = 0x7E
	BlockF32  BlockType = 0x7D
	BlockF64  BlockType = 0x7C
)

// FuncTypeTag opens every entry of the type section.
const FuncTypeTag byte = 0x60

// LimitsHasMax is the limits flag bit announcing a maximum.
const LimitsHasMax uint32 = 0x01

// Data segment flags.
const (
	DataActive         uint32 = 0 // active, memory 0 implied
	DataPassive        uint32 = 1 // passive, no offset
	DataActiveExplicit uint32 = 2 // active, explicit memory index
)

// Control flow opcodes
const (
	OpUnreachable  byte = 0x00
	OpNop          byte = 0x01
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpElse         byte = 0x05
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpBrIf         byte = 0x0D
	OpBrTable      byte = 0x0E
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
)

// Parametric opcodes
const (
	OpDrop   byte = 0x1A
	OpSelect byte = 0x1B
)

// Variable access opcodes
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Memory opcodes
const (
	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

// Constant opcodes
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44
)

// Numeric opcodes
const (
	OpI32Eqz byte = 0x45
	OpI32Eq  byte = 0x46
	OpI32Ne  byte = 0x47
	OpI32LtS byte = 0x48
	OpI32LtU byte = 0x49
	OpI32GtS byte = 0x4A
	OpI32GtU byte = 0x4B
	OpI64Eqz byte = 0x50
	OpI32Add byte = 0x6A
	OpI32Sub byte = 0x6B
	OpI32Mul byte = 0x6C
	OpI64Add byte = 0x7C
	OpI64Sub byte = 0x7D
	OpI64Mul byte = 0x7E
)
