// Package wasm decodes WebAssembly binary modules.
//
// Decoding happens in layers, each deferred until asked for:
//
//	module, err := wasm.Decode(data)       // preamble + framed sections
//	err = module.ResolveSections()         // typed entry lists
//	fn, err := module.ResolveCode(0)       // locals + instruction payload
//	instrs, err := fn.Decode()             // instruction tree
//
// Section bodies, code payloads and data segment contents borrow from data
// rather than copying it, so data must not be modified while the module is
// in use.
//
// # Sections
//
// The decoder models the type, import, function, memory, export, code and
// data sections. Any other section id fails with errors.ErrUnknownSectionKind,
// and sections must appear in canonical order at most once.
//
// A framed Section carries its entry count and an opaque body:
//
//	s, rest, err := wasm.DecodeSection(buf)
//	items, err := s.Resolve()
//
// # Code
//
// A code entry starts out as RawCode and becomes a *Function once resolved.
// Module.ResolveCode swaps the body in place and returns the cached
// *Function on later calls.
//
// # Instructions
//
// Instructions are a closed set of structs implementing Instruction, one per
// operand shape. Block, Loop and If carry their nested bodies:
//
//	wasm.Walk(instrs, func(in wasm.Instruction) bool {
//	    if call, ok := in.(wasm.Call); ok {
//	        fmt.Println("calls", call.FuncIdx)
//	    }
//	    return true
//	})
//
// Function.Instructions streams top-level instructions lazily. After a
// decode error the stream returns that error once and io.EOF afterwards.
//
// # Errors
//
// Every failure is an *errors.Error carrying a phase, kind, section, entry
// path and absolute byte offset. Match kinds with errors.Is:
//
//	if errors.Is(err, werrors.ErrUnknownOpcode) { ... }
package wasm
