// Package wasmdecoder decodes WebAssembly binary modules into typed Go values.
//
// Decoding is staged. A module is first framed into sections, each section is
// resolved into its typed entries on demand, and function bodies are decoded
// into instruction trees only when asked for. Byte payloads such as section
// bodies and data segment contents borrow from the input buffer.
//
// # Architecture Overview
//
//	wasmdecoder/         Root package with one-shot eager decoding
//	├── wasm/            Preamble, sections, entries, code and instructions
//	├── leb128/          Variable-length integer codec
//	├── errors/          Structured error types with phase, kind and offset
//	├── verify/          Cross-checks a decoded module against wazero
//	└── cmd/wasmdump/    Command line inspector
//
// # Quick Start
//
// Decode everything up front:
//
//	m, err := wasmdecoder.Decode(data, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range m.Exports {
//	    fmt.Println(e.Name, e.Kind, e.Index)
//	}
//
// Or resolve incrementally:
//
//	m, err := wasm.Decode(data)        // frame sections only
//	err = m.ResolveSections()          // typed entries
//	f, err := m.ResolveCode(0)         // locals and code bytes
//	for in, err := range f.Instructions().All() {
//	    ...
//	}
//
// # Errors
//
// Every failure is an *errors.Error carrying the decoding phase, a kind that
// matches the errors.Err* sentinels with errors.Is, the section and entry path,
// and the absolute byte offset in the input.
//
// # Thread Safety
//
// Module resolution mutates the Module in place. A Module must not be resolved
// from several goroutines at once; once fully resolved it is safe to read
// concurrently.
package wasmdecoder
