package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseSection,
				Kind:    KindSectionLengthMismatch,
				Section: "code",
				Path:    []string{"3", "locals"},
				Offset:  42,
				Detail:  "2 trailing bytes",
			},
			contains: []string{"[section]", "section_length_mismatch", "code section", "3.locals", "offset 42", "2 trailing bytes"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseInstruction,
				Kind:   KindUnknownOpcode,
				Offset: -1,
			},
			contains: []string{"[instruction]", "unknown_opcode"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidInput,
				Offset: -1,
				Detail: "read file",
				Cause:  errors.New("permission denied"),
			},
			contains: []string{"[load]", "invalid_input", "read file", "caused by", "permission denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_NoOffset(t *testing.T) {
	err := New(PhaseFrame, KindUnknownSectionKind).Build()
	if strings.Contains(err.Error(), "offset") {
		t.Errorf("unexpected offset in %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidInput,
		Cause: cause,
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := New(PhaseInstruction, KindUnknownOpcode).Offset(9).Value(byte(0xff)).Build()

	if !errors.Is(err, ErrUnknownOpcode) {
		t.Error("sentinel without phase should match on kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseInstruction, Kind: KindUnknownOpcode}) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(err, &Error{Phase: PhaseSection, Kind: KindUnknownOpcode}) {
		t.Error("different phase should not match")
	}
	if errors.Is(err, ErrMalformedVarint) {
		t.Error("different kind should not match")
	}

	wrapped := fmt.Errorf("decode module: %w", err)
	if !errors.Is(wrapped, ErrUnknownOpcode) {
		t.Error("wrapped error should still match sentinel")
	}

	var target *Error
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed")
	}
	if target.Offset != 9 {
		t.Errorf("Offset = %d, want 9", target.Offset)
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseSection, KindUnsupportedPayload).
		Section("import").
		Path("1").
		Offset(17).
		Value(1).
		Detail("table import at entry %d", 1).
		Cause(errors.New("inner")).
		Build()

	if err.Phase != PhaseSection || err.Kind != KindUnsupportedPayload {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Section != "import" {
		t.Errorf("Section = %q", err.Section)
	}
	if len(err.Path) != 1 || err.Path[0] != "1" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.Detail != "table import at entry 1" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Value != 1 {
		t.Errorf("Value = %v", err.Value)
	}
}

func TestInPhase(t *testing.T) {
	err := MalformedVarint(3, "truncated")
	got := InPhase(err, PhaseFrame)

	var e *Error
	if !errors.As(got, &e) {
		t.Fatal("expected *Error")
	}
	if e.Phase != PhaseFrame {
		t.Errorf("Phase = %s, want frame", e.Phase)
	}
	if err.Phase != "" {
		t.Error("InPhase must not mutate its argument")
	}

	already := New(PhaseInstruction, KindUnknownOpcode).Build()
	if InPhase(already, PhaseFrame).(*Error).Phase != PhaseInstruction {
		t.Error("InPhase must keep an existing phase")
	}

	plain := errors.New("plain")
	if InPhase(plain, PhaseFrame) != plain {
		t.Error("non-structured errors pass through")
	}
}

func TestWithin(t *testing.T) {
	if Within(nil, "type") != nil {
		t.Error("Within(nil) should be nil")
	}

	inner := UnknownValueType("", 12, 0x7d)
	err := Within(inner, "type", "0", "params")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Section != "type" {
		t.Errorf("Section = %q", e.Section)
	}
	if e.Phase != PhaseSection {
		t.Errorf("Phase = %s, want section", e.Phase)
	}
	if strings.Join(e.Path, ".") != "0.params" {
		t.Errorf("Path = %v", e.Path)
	}
	if !errors.Is(err, ErrUnknownValueType) {
		t.Error("kind must survive Within")
	}

	foreign := Within(errors.New("boom"), "data", "2")
	if !errors.Is(foreign, ErrSectionLengthMismatch) {
		t.Errorf("foreign errors become length mismatches, got %v", foreign)
	}
}

func TestOverrun(t *testing.T) {
	short := Within(Truncated(14, 1, 0), "type", "1")
	err := Overrun(short)

	if !errors.Is(err, ErrSectionLengthMismatch) {
		t.Fatalf("truncation should become a length mismatch, got %v", err)
	}
	if !errors.Is(err, ErrTruncated) {
		t.Error("the truncation should remain reachable as the cause")
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if e.Phase != PhaseSection || e.Section != "type" || e.Offset != 14 {
		t.Errorf("context lost: %+v", e)
	}
	if len(e.Path) != 1 || e.Path[0] != "1" {
		t.Errorf("path = %v", e.Path)
	}

	other := UnknownOpcode(3, 0xff)
	if Overrun(other) != error(other) {
		t.Error("other kinds pass through unchanged")
	}
	if Overrun(nil) != nil {
		t.Error("nil stays nil")
	}
}

func TestMismatchList(t *testing.T) {
	list := &MismatchList{Mismatches: []*Error{
		Mismatch("export count", 2, 3),
		Mismatch("import env.f", "func", "missing"),
	}}

	msg := list.Error()
	if !strings.Contains(msg, "2 mismatch(es)") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "export count") || !strings.Contains(msg, "import env.f") {
		t.Errorf("message should list every mismatch: %q", msg)
	}
	if !errors.Is(list, ErrMismatch) {
		t.Error("MismatchList should match ErrMismatch")
	}
	if (&MismatchList{}).Error() != "[verify] mismatch: none" {
		t.Error("empty list message")
	}
}
