package wasm

import (
	"fmt"
	"strconv"
	"strings"
)

func (i Simple) String() string { return OpcodeName(i.Op) }

func (i Branch) String() string { return fmt.Sprintf("%s %d", OpcodeName(i.Op), i.Label) }

func (i BrTable) String() string {
	var b strings.Builder
	b.WriteString("br_table")
	for _, l := range i.Labels {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(uint64(l), 10))
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(uint64(i.Default), 10))
	return b.String()
}

func (i Call) String() string { return fmt.Sprintf("call %d", i.FuncIdx) }

func (i CallIndirect) String() string {
	return fmt.Sprintf("call_indirect %d (type %d)", i.TableIdx, i.TypeIdx)
}

func (i Variable) String() string { return fmt.Sprintf("%s %d", OpcodeName(i.Op), i.Index) }

func (i Memory) String() string {
	s := OpcodeName(i.Op)
	if i.Offset != 0 {
		s += fmt.Sprintf(" offset=%d", i.Offset)
	}
	return s + fmt.Sprintf(" align=%d", uint64(1)<<(i.Align&63))
}

func (i MemoryIndex) String() string { return OpcodeName(i.Op) }

func (i I32Const) String() string { return fmt.Sprintf("i32.const %d", i.Value) }

func (i I64Const) String() string { return fmt.Sprintf("i64.const %d", i.Value) }

func (i F32Const) String() string {
	return "f32.const " + strconv.FormatFloat(float64(i.Value), 'g', -1, 32)
}

func (i F64Const) String() string {
	return "f64.const " + strconv.FormatFloat(i.Value, 'g', -1, 64)
}

func (i Block) String() string { return headline("block", i.Type) }

func (i Loop) String() string { return headline("loop", i.Type) }

func (i If) String() string { return headline("if", i.Type) }

func headline(name string, bt BlockType) string {
	if bt == BlockVoid {
		return name
	}
	return fmt.Sprintf("%s (result %s)", name, bt)
}

// Format renders instrs one per line, indenting nested bodies and closing
// them with else and end.
func Format(instrs []Instruction) string {
	var b strings.Builder
	format(&b, instrs, 0)
	return b.String()
}

func format(b *strings.Builder, instrs []Instruction, depth int) {
	for _, in := range instrs {
		line(b, depth, in.String())
		switch v := in.(type) {
		case Block:
			format(b, v.Body.Instructions, depth+1)
			line(b, depth, "end")
		case Loop:
			format(b, v.Body.Instructions, depth+1)
			line(b, depth, "end")
		case If:
			format(b, v.Then.Instructions, depth+1)
			if v.Else != nil {
				line(b, depth, "else")
				format(b, v.Else.Instructions, depth+1)
			}
			line(b, depth, "end")
		}
	}
}

func line(b *strings.Builder, depth int, s string) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(s)
	b.WriteByte('\n')
}
