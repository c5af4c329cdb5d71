package wasm

// Instruction is a decoded instruction. The concrete type is fixed by the
// opcode: one struct per operand shape.
type Instruction interface {
	Opcode() byte
	String() string
	instruction()
}

// Body is an instruction sequence together with the sentinel that closed it.
type Body struct {
	Instructions []Instruction
	Terminator   byte // OpEnd, or OpElse for an if's then region
}

// Simple is an instruction without immediates.
type Simple struct {
	Op byte
}

// Branch holds the label index for br and br_if.
type Branch struct {
	Op    byte
	Label uint32
}

// BrTable holds the label table for br_table.
type BrTable struct {
	Labels  []uint32
	Default uint32
}

// Call holds the function index for call.
type Call struct {
	FuncIdx uint32
}

// CallIndirect holds type and table indices for call_indirect.
type CallIndirect struct {
	TypeIdx  uint32
	TableIdx uint32
}

// Variable holds the local or global index for local.* and global.*.
type Variable struct {
	Op    byte
	Index uint32
}

// Memory holds the memarg of a load or store.
type Memory struct {
	Op     byte
	Align  uint32
	Offset uint32
}

// MemoryIndex holds the memory operand of memory.size and memory.grow.
type MemoryIndex struct {
	Op  byte
	Mem byte
}

// I32Const holds the value of i32.const.
type I32Const struct {
	Value int32
}

// I64Const holds the value of i64.const.
type I64Const struct {
	Value int64
}

// F32Const holds the value of f32.const.
type F32Const struct {
	Value float32
}

// F64Const holds the value of f64.const.
type F64Const struct {
	Value float64
}

// Block is a block with its nested body.
type Block struct {
	Body Body
	Type BlockType
}

// Loop is a loop with its nested body.
type Loop struct {
	Body Body
	Type BlockType
}

// If is a conditional. Else is non-nil iff Then ended with the else marker.
type If struct {
	Else *Body
	Then Body
	Type BlockType
}

func (i Simple) Opcode() byte { return i.Op }
func (i Branch) Opcode() byte { return i.Op }
func (BrTable) Opcode() byte { return OpBrTable }
func (Call) Opcode() byte { return OpCall }
func (CallIndirect) Opcode() byte { return OpCallIndirect }
func (i Variable) Opcode() byte { return i.Op }
func (i Memory) Opcode() byte { return i.Op }
func (i MemoryIndex) Opcode() byte { return i.Op }
func (I32Const) Opcode() byte { return OpI32Const }
func (I64Const) Opcode() byte { return OpI64Const }
func (F32Const) Opcode() byte { return OpF32Const }
func (F64Const) Opcode() byte { return OpF64Const }
func (Block) Opcode() byte { return OpBlock }
func (Loop) Opcode() byte { return OpLoop }
func (If) Opcode() byte { return OpIf }
func (Simple) instruction() {}
func (Branch) instruction() {}
func (BrTable) instruction() {}
func (Call) instruction() {}
func (CallIndirect) instruction() {}
func (Variable) instruction() {}
func (Memory) instruction() {}
func (MemoryIndex) instruction() {}
func (I32Const) instruction() {}
func (I64Const) instruction() {}
func (F32Const) instruction() {}
func (F64Const) instruction() {}
func (Block) instruction() {}
func (Loop) instruction() {}
func (If) instruction() {}

// Walk calls fn for every instruction in the sequence, descending into
// nested bodies in order. Returning false stops the walk.
func Walk(instrs []Instruction, fn func(Instruction) bool) bool {
	for _, in := range instrs {
		if !fn(in) {
			return false
		}
		ok := true
		switch v := in.(type) {
		case Block:
			ok = Walk(v.Body.Instructions, fn)
		case Loop:
			ok = Walk(v.Body.Instructions, fn)
		case If:
			ok = Walk(v.Then.Instructions, fn)
			if ok && v.Else != nil {
				ok = Walk(v.Else.Instructions, fn)
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
