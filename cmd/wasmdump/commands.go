package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/verify"
	"github.com/wippyai/wasm-decoder/wasm"
)

func newSectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sections FILE",
		Short: "List the framed sections of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			a.printSections(in.path, m)
			return nil
		},
	}
}

func (a *app) printSections(path string, m *wasm.Module) {
	p := a.p
	p.printf("%s %s\n", p.style(titleStyle, "module"), path)
	switch {
	case m.Preamble.IsComponent():
		p.printf("version 0x%08x (component)\n", m.Preamble.Version)
	default:
		p.printf("version %d\n", m.Preamble.Version)
	}
	for _, s := range m.Sections {
		p.printf("%s offset=%d size=%d count=%d\n",
			p.style(kindStyle, fmt.Sprintf("%-8s", s.Kind)), s.Offset, s.Size, s.Count)
	}
}

func newFuncsCmd(a *app) *cobra.Command {
	index := -1
	cmd := &cobra.Command{
		Use:   "funcs FILE",
		Short: "Disassemble the defined functions of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			if err := m.ResolveSections(); err != nil {
				return err
			}
			if index >= 0 {
				return a.printFunc(m, index)
			}
			for i := range m.Code {
				if err := a.printFunc(m, i); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", -1, "only print defined function N")
	return cmd
}

func (a *app) printFunc(m *wasm.Module, i int) error {
	f, err := m.ResolveCode(i)
	if err != nil {
		return err
	}
	instrs, err := f.Decode()
	if err != nil {
		return err
	}

	idx := uint32(m.NumImportedFuncs() + i)
	sig := "?"
	if ft, err := m.TypeOfFunc(idx); err == nil {
		sig = ft.String()
	}

	p := a.p
	p.printf("%s %s", p.style(funcStyle, fmt.Sprintf("func %d", idx)), sig)
	for _, name := range exportNames(m, idx) {
		p.printf(" export %q", name)
	}
	p.printf("\n")
	for _, l := range f.Locals {
		p.printf("  local %d x %s\n", l.Count, l.Type)
	}
	p.printf("%s", indent(wasm.Format(instrs), "  "))
	return nil
}

func exportNames(m *wasm.Module, idx uint32) []string {
	var names []string
	for _, e := range m.Exports {
		if e.Kind == wasm.ExternFunc && e.Index == idx {
			names = append(names, e.Name)
		}
	}
	return names
}

func indent(s, prefix string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString(prefix)
			b.WriteString(l)
		}
	}
	return b.String()
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Cross-check the decoded module against wazero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			report, err := verify.Module(cmd.Context(), in.data, m, &verify.Options{Logger: a.log})
			var list *errors.MismatchList
			if stderrors.As(err, &list) {
				for _, mm := range list.Mismatches {
					a.p.printf("%s %s\n", a.p.style(errorStyle, "mismatch"), mm.Detail)
				}
				return err
			}
			if err != nil {
				return err
			}

			a.p.printf("%s imports: %d funcs, %d memories; exports: %d funcs, %d memories\n",
				a.p.style(okStyle, "ok"),
				report.ImportedFuncs, report.ImportedMemories,
				report.ExportedFuncs, report.ExportedMemories)
			return nil
		},
	}
}
