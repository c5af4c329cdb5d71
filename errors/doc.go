// Package errors provides structured error types for the wasm decoder.
//
// Errors are categorized by Phase (which decoding layer failed) and Kind
// (the failure category). The Error type carries the section name, entry
// path, absolute byte offset and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSection, errors.KindSectionLengthMismatch).
//		Section("code").
//		Path("3").
//		Offset(42).
//		Detail("2 trailing bytes").
//		Build()
//
// Every kind has a sentinel that matches regardless of phase:
//
//	if errors.Is(err, errors.ErrUnknownOpcode) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
