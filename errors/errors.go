package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which decoding layer produced the error
type Phase string

const (
	PhasePreamble    Phase = "preamble"    // magic and version
	PhaseFrame       Phase = "frame"       // section headers and bodies
	PhaseSection     Phase = "section"     // per-kind section resolution
	PhaseFunction    Phase = "function"    // code entry resolution
	PhaseInstruction Phase = "instruction" // opcode and operand decoding
	PhaseLoad        Phase = "load"        // reading input from disk
	PhaseVerify      Phase = "verify"      // cross-checking against a runtime
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedPreamble     Kind = "malformed_preamble"
	KindUnknownSectionKind    Kind = "unknown_section_kind"
	KindSectionLengthMismatch Kind = "section_length_mismatch"
	KindSectionOrder          Kind = "section_order"
	KindUnknownOpcode         Kind = "unknown_opcode"
	KindUnknownValueType      Kind = "unknown_value_type"
	KindUnknownExternKind     Kind = "unknown_extern_kind"
	KindMalformedVarint       Kind = "malformed_varint"
	KindUnsupportedPayload    Kind = "unsupported_payload"
	KindTruncated             Kind = "truncated"
	KindNestingTooDeep        Kind = "nesting_too_deep"
	KindOutOfBounds           Kind = "out_of_bounds"
	KindInvalidInput          Kind = "invalid_input"
	KindMismatch              Kind = "mismatch"
)

// Sentinels for errors.Is matching. They match any error of the same Kind
// regardless of phase.
var (
	ErrMalformedPreamble     = sentinel(KindMalformedPreamble)
	ErrUnknownSectionKind    = sentinel(KindUnknownSectionKind)
	ErrSectionLengthMismatch = sentinel(KindSectionLengthMismatch)
	ErrSectionOrder          = sentinel(KindSectionOrder)
	ErrUnknownOpcode         = sentinel(KindUnknownOpcode)
	ErrUnknownValueType      = sentinel(KindUnknownValueType)
	ErrUnknownExternKind     = sentinel(KindUnknownExternKind)
	ErrMalformedVarint       = sentinel(KindMalformedVarint)
	ErrUnsupportedPayload    = sentinel(KindUnsupportedPayload)
	ErrTruncated             = sentinel(KindTruncated)
	ErrNestingTooDeep        = sentinel(KindNestingTooDeep)
	ErrOutOfBounds           = sentinel(KindOutOfBounds)
	ErrInvalidInput          = sentinel(KindInvalidInput)
	ErrMismatch              = sentinel(KindMismatch)
)

func sentinel(k Kind) *Error {
	return &Error{Kind: k, Offset: -1}
}

// Error is the structured error type used throughout the decoder
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Path    []string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Offset >= 0 {
		b.WriteString(" (offset ")
		b.WriteString(fmt.Sprintf("%d", e.Offset))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the entry path, e.g. ("code", "3")
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Section sets the section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the absolute byte offset of the failure
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedVarint creates a varint decoding error
func MalformedVarint(offset int, detail string) *Error {
	return &Error{
		Kind:   KindMalformedVarint,
		Offset: offset,
		Detail: detail,
	}
}

// Truncated creates an error for input that ends before a fixed-size field
func Truncated(offset, want, have int) *Error {
	return &Error{
		Kind:   KindTruncated,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, have %d", want, have),
		Value:  want,
	}
}

// UnknownOpcode creates an unknown opcode error
func UnknownOpcode(offset int, op byte) *Error {
	return &Error{
		Phase:  PhaseInstruction,
		Kind:   KindUnknownOpcode,
		Offset: offset,
		Detail: fmt.Sprintf("opcode 0x%02x", op),
		Value:  op,
	}
}

// UnknownValueType creates an unknown value type error
func UnknownValueType(phase Phase, offset int, tag byte) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownValueType,
		Offset: offset,
		Detail: fmt.Sprintf("value type 0x%02x", tag),
		Value:  tag,
	}
}

// Unsupported creates an error for a recognized tag whose payload is not decoded
func Unsupported(phase Phase, offset int, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedPayload,
		Offset: offset,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// InPhase sets the phase of err when the producing layer left it unset.
func InPhase(err error, phase Phase) error {
	e, ok := err.(*Error)
	if !ok || e.Phase != "" {
		return err
	}
	out := *e
	out.Phase = phase
	return &out
}

// Overrun reports a truncation inside a region of declared length as a
// section length mismatch, keeping the truncation as the cause. Any other
// error is returned unchanged.
func Overrun(err error) error {
	e, ok := err.(*Error)
	if !ok || e.Kind != KindTruncated {
		return err
	}
	return &Error{
		Phase:   e.Phase,
		Kind:    KindSectionLengthMismatch,
		Section: e.Section,
		Path:    e.Path,
		Offset:  e.Offset,
		Value:   e.Value,
		Detail:  "runs past declared length",
		Cause:   e,
	}
}

// Within attaches section and entry context to err without losing its kind.
// Errors that are not *Error are wrapped as section length mismatches.
func Within(err error, section string, path ...string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Phase:   PhaseSection,
			Kind:    KindSectionLengthMismatch,
			Section: section,
			Path:    path,
			Offset:  -1,
			Cause:   err,
		}
	}
	out := *e
	if out.Phase == "" {
		out.Phase = PhaseSection
	}
	if out.Section == "" {
		out.Section = section
	}
	if len(path) > 0 {
		out.Path = append(append([]string(nil), path...), e.Path...)
	}
	return &out
}

// Mismatch creates an error describing a disagreement between two views of a module
func Mismatch(what string, want, got any) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindMismatch,
		Offset: -1,
		Detail: fmt.Sprintf("%s: decoder has %v, runtime has %v", what, want, got),
	}
}

// MismatchList aggregates every mismatch found during verification
type MismatchList struct {
	Mismatches []*Error
}

func (e *MismatchList) Error() string {
	if len(e.Mismatches) == 0 {
		return "[verify] mismatch: none"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d mismatch(es):", len(e.Mismatches)))
	for _, m := range e.Mismatches {
		b.WriteString("\n  - ")
		b.WriteString(m.Detail)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MismatchList) Is(target error) bool {
	if _, ok := target.(*MismatchList); ok {
		return true
	}
	t, ok := target.(*Error)
	return ok && t.Kind == KindMismatch
}
