package wasm

import (
	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// operand shapes; the zero value marks an opcode this decoder does not model
type shape uint8

const (
	shapeUnknown shape = iota
	shapeNone
	shapeBranch
	shapeBrTable
	shapeCall
	shapeCallIndirect
	shapeVariable
	shapeMemory
	shapeMemoryIndex
	shapeI32
	shapeI64
	shapeF32
	shapeF64
	shapeBlock
	shapeLoop
	shapeIf
)

type opcodeInfo struct {
	name  string
	shape shape
}

// opcodes maps every modeled opcode byte to its mnemonic and operand shape.
// else and end are sentinels, not instructions, and stay unlisted.
var opcodes = [256]opcodeInfo{
	OpUnreachable:  {"unreachable", shapeNone},
	OpNop:          {"nop", shapeNone},
	OpBlock:        {"block", shapeBlock},
	OpLoop:         {"loop", shapeLoop},
	OpIf:           {"if", shapeIf},
	OpBr:           {"br", shapeBranch},
	OpBrIf:         {"br_if", shapeBranch},
	OpBrTable:      {"br_table", shapeBrTable},
	OpReturn:       {"return", shapeNone},
	OpCall:         {"call", shapeCall},
	OpCallIndirect: {"call_indirect", shapeCallIndirect},
	OpDrop:         {"drop", shapeNone},
	OpSelect:       {"select", shapeNone},
	OpLocalGet:     {"local.get", shapeVariable},
	OpLocalSet:     {"local.set", shapeVariable},
	OpLocalTee:     {"local.tee", shapeVariable},
	OpGlobalGet:    {"global.get", shapeVariable},
	OpGlobalSet:    {"global.set", shapeVariable},
	OpI32Load:      {"i32.load", shapeMemory},
	OpI64Load:      {"i64.load", shapeMemory},
	OpI32Store:     {"i32.store", shapeMemory},
	OpI64Store:     {"i64.store", shapeMemory},
	OpMemorySize:   {"memory.size", shapeMemoryIndex},
	OpMemoryGrow:   {"memory.grow", shapeMemoryIndex},
	OpI32Const:     {"i32.const", shapeI32},
	OpI64Const:     {"i64.const", shapeI64},
	OpF32Const:     {"f32.const", shapeF32},
	OpF64Const:     {"f64.const", shapeF64},
	OpI32Eqz:       {"i32.eqz", shapeNone},
	OpI32Eq:        {"i32.eq", shapeNone},
	OpI32Ne:        {"i32.ne", shapeNone},
	OpI32LtS:       {"i32.lt_s", shapeNone},
	OpI32LtU:       {"i32.lt_u", shapeNone},
	OpI32GtS:       {"i32.gt_s", shapeNone},
	OpI32GtU:       {"i32.gt_u", shapeNone},
	OpI64Eqz:       {"i64.eqz", shapeNone},
	OpI32Add:       {"i32.add", shapeNone},
	OpI32Sub:       {"i32.sub", shapeNone},
	OpI32Mul:       {"i32.mul", shapeNone},
	OpI64Add:       {"i64.add", shapeNone},
	OpI64Sub:       {"i64.sub", shapeNone},
	OpI64Mul:       {"i64.mul", shapeNone},
}

// OpcodeName returns the mnemonic of op, or "" if op is not modeled.
func OpcodeName(op byte) string {
	switch op {
	case OpElse:
		return "else"
	case OpEnd:
		return "end"
	}
	return opcodes[op].name
}

// decoder decodes instructions from a cursor. maxDepth bounds how many
// structured instructions may be open at once; 0 means unlimited.
type decoder struct {
	c        *binary.Cursor
	maxDepth int
}

func newDecoder(c *binary.Cursor, maxDepth int) *decoder {
	return &decoder{c: c, maxDepth: maxDepth}
}

// DecodeInstruction decodes one instruction from the front of code and
// reports how many bytes it occupied.
func DecodeInstruction(code []byte) (Instruction, int, error) {
	c := binary.NewCursor(code, 0)
	in, err := newDecoder(c, 0).instruction()
	if err != nil {
		return nil, 0, err
	}
	return in, c.Pos(), nil
}

// DecodeExpr decodes instructions until the closing end and reports how many
// bytes were consumed, end included.
func DecodeExpr(code []byte) (Body, int, error) {
	c := binary.NewCursor(code, 0)
	body, err := newDecoder(c, 0).body(OpEnd)
	if err != nil {
		return Body{}, 0, err
	}
	return body, c.Pos(), nil
}

func (d *decoder) instruction() (Instruction, error) {
	at := d.c.Offset()
	op, err := d.c.ReadByte()
	if err != nil {
		return nil, errors.InPhase(err, errors.PhaseInstruction)
	}

	in, err := d.operands(op)
	if err != nil {
		return nil, errors.InPhase(err, errors.PhaseInstruction)
	}
	if in == nil {
		return nil, errors.UnknownOpcode(at, op)
	}
	return in, nil
}

// operands decodes the immediates of op. A nil instruction with a nil error
// means op is not modeled.
func (d *decoder) operands(op byte) (Instruction, error) {
	c := d.c
	switch opcodes[op].shape {
	case shapeNone:
		return Simple{Op: op}, nil

	case shapeBranch:
		label, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return Branch{Op: op, Label: label}, nil

	case shapeBrTable:
		n, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		labels, err := binary.Repeat(c, n, func(c *binary.Cursor, _ int) (uint32, error) {
			return c.ReadU32()
		})
		if err != nil {
			return nil, err
		}
		def, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return BrTable{Labels: labels, Default: def}, nil

	case shapeCall:
		idx, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return Call{FuncIdx: idx}, nil

	case shapeCallIndirect:
		typeIdx, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		tableIdx, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return CallIndirect{TypeIdx: typeIdx, TableIdx: tableIdx}, nil

	case shapeVariable:
		idx, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return Variable{Op: op, Index: idx}, nil

	case shapeMemory:
		align, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		offset, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		return Memory{Op: op, Align: align, Offset: offset}, nil

	case shapeMemoryIndex:
		at := c.Offset()
		mem, err := c.ReadByte()
		if err != nil {
			return nil, err
		}
		if mem != 0 {
			return nil, errors.Unsupported(errors.PhaseInstruction, at, "non-zero memory index")
		}
		return MemoryIndex{Op: op, Mem: mem}, nil

	case shapeI32:
		v, err := c.ReadS32()
		if err != nil {
			return nil, err
		}
		return I32Const{Value: v}, nil

	case shapeI64:
		v, err := c.ReadS64()
		if err != nil {
			return nil, err
		}
		return I64Const{Value: v}, nil

	case shapeF32:
		v, err := c.ReadF32()
		if err != nil {
			return nil, err
		}
		return F32Const{Value: v}, nil

	case shapeF64:
		v, err := c.ReadF64()
		if err != nil {
			return nil, err
		}
		return F64Const{Value: v}, nil

	case shapeBlock, shapeLoop, shapeIf:
		return d.structured(op)
	}

	return nil, nil
}

// frame is a block, loop or if whose body is still open.
type frame struct {
	then   *Body // set once an if reaches its else
	instrs []Instruction
	op     byte
	bt     BlockType
}

func (f *frame) close() Instruction {
	body := Body{Instructions: f.instrs, Terminator: OpEnd}
	switch f.op {
	case OpLoop:
		return Loop{Type: f.bt, Body: body}
	case OpIf:
		if f.then != nil {
			return If{Type: f.bt, Then: *f.then, Else: &body}
		}
		return If{Type: f.bt, Then: body}
	default:
		return Block{Type: f.bt, Body: body}
	}
}

// structured decodes a block, loop or if together with everything nested
// inside it. Open constructs live on an explicit stack, so depth is bounded
// by MaxNesting and memory rather than by the goroutine stack.
func (d *decoder) structured(op byte) (Instruction, error) {
	var stack []frame
	open := func(op byte) error {
		bt, err := d.blockType()
		if err != nil {
			return err
		}
		if d.maxDepth > 0 && len(stack) >= d.maxDepth {
			return errors.New(errors.PhaseInstruction, errors.KindNestingTooDeep).
				Offset(d.c.Offset()).
				Value(len(stack)).
				Detail("nesting exceeds %d levels", d.maxDepth).
				Build()
		}
		stack = append(stack, frame{op: op, bt: bt})
		return nil
	}
	if err := open(op); err != nil {
		return nil, err
	}

	for {
		top := &stack[len(stack)-1]
		at := d.c.Offset()
		next, err := d.c.ReadByte()
		if err != nil {
			return nil, err
		}

		switch {
		case next == OpEnd:
			in := top.close()
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return in, nil
			}
			parent := &stack[len(stack)-1]
			parent.instrs = append(parent.instrs, in)

		case next == OpElse && top.op == OpIf && top.then == nil:
			top.then = &Body{Instructions: top.instrs, Terminator: OpElse}
			top.instrs = nil

		case isStructured(next):
			if err := open(next); err != nil {
				return nil, err
			}

		default:
			in, err := d.operands(next)
			if err != nil {
				return nil, err
			}
			if in == nil {
				return nil, errors.UnknownOpcode(at, next)
			}
			top.instrs = append(top.instrs, in)
		}
	}
}

func isStructured(op byte) bool {
	switch opcodes[op].shape {
	case shapeBlock, shapeLoop, shapeIf:
		return true
	}
	return false
}

// body decodes instructions until one of terminators is read.
func (d *decoder) body(terminators ...byte) (Body, error) {
	instrs, term, err := binary.Until(d.c, terminators, func(*binary.Cursor) (Instruction, error) {
		return d.instruction()
	})
	if err != nil {
		return Body{}, errors.InPhase(err, errors.PhaseInstruction)
	}
	return Body{Instructions: instrs, Terminator: term}, nil
}

func (d *decoder) blockType() (BlockType, error) {
	at := d.c.Offset()
	b, err := d.c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch bt := BlockType(b); bt {
	case BlockVoid, BlockI32, BlockI64, BlockF32, BlockF64:
		return bt, nil
	default:
		return 0, errors.UnknownValueType(errors.PhaseInstruction, at, b)
	}
}
