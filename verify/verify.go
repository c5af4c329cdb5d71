// Package verify cross-checks a decoded module against wazero's compiled
// view of the same bytes.
//
// wazero validates and compiles the module independently, so agreement on
// the import and export surface is a useful end-to-end check of the decoder:
//
//	m, _ := wasm.Decode(data)
//	report, err := verify.Module(ctx, data, m, nil)
//	var list *errors.MismatchList
//	if stderrors.As(err, &list) { ... }
package verify

import (
	"context"
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm"
)

// Options configures verification.
type Options struct {
	// RuntimeConfig overrides the wazero runtime configuration.
	// nil means the interpreter, which compiles quickly on every platform.
	RuntimeConfig wazero.RuntimeConfig

	// Logger receives per-check debug output. nil means the package logger.
	Logger *zap.Logger
}

// Report counts what was compared.
type Report struct {
	ImportedFuncs    int
	ExportedFuncs    int
	ImportedMemories int
	ExportedMemories int
}

// Module compiles data with wazero and compares its imports and exports with
// m, resolving m's sections first if needed. Disagreements are returned
// together as an *errors.MismatchList; a module wazero rejects yields a
// verify-phase error wrapping wazero's.
func Module(ctx context.Context, data []byte, m *wasm.Module, opts *Options) (*Report, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = Logger()
	}

	if !m.Resolved() {
		if err := m.ResolveSections(); err != nil {
			return nil, err
		}
	}

	cfg := opts.RuntimeConfig
	if cfg == nil {
		cfg = wazero.NewRuntimeConfigInterpreter()
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.New(errors.PhaseVerify, errors.KindInvalidInput).
			Detail("wazero rejected module").
			Cause(err).
			Build()
	}
	defer compiled.Close(ctx)

	c := &checker{m: m, log: log}
	c.importedFuncs(compiled.ImportedFunctions())
	c.exportedFuncs(compiled.ExportedFunctions())
	c.importedMemories(compiled.ImportedMemories())
	c.exportedMemories(compiled.ExportedMemories())

	log.Debug("verified module",
		zap.Int("imported_funcs", c.report.ImportedFuncs),
		zap.Int("exported_funcs", c.report.ExportedFuncs),
		zap.Int("imported_memories", c.report.ImportedMemories),
		zap.Int("exported_memories", c.report.ExportedMemories),
		zap.Int("mismatches", len(c.mismatches)))

	if len(c.mismatches) > 0 {
		return &c.report, &errors.MismatchList{Mismatches: c.mismatches}
	}
	return &c.report, nil
}

type checker struct {
	m          *wasm.Module
	log        *zap.Logger
	mismatches []*errors.Error
	report     Report
}

func (c *checker) mismatch(what string, want, got any) {
	c.log.Debug("mismatch", zap.String("what", what), zap.Any("decoder", want), zap.Any("runtime", got))
	c.mismatches = append(c.mismatches, errors.Mismatch(what, want, got))
}

func (c *checker) importedFuncs(defs []api.FunctionDefinition) {
	var decoded []wasm.Import
	for _, imp := range c.m.Imports {
		if imp.Kind == wasm.ExternFunc {
			decoded = append(decoded, imp)
		}
	}
	c.report.ImportedFuncs = len(decoded)

	if len(decoded) != len(defs) {
		c.mismatch("imported function count", len(decoded), len(defs))
		return
	}
	for i, def := range defs {
		imp := decoded[i]
		mod, name, _ := def.Import()
		label := fmt.Sprintf("import %d", i)
		if imp.Module != mod || imp.Name != name {
			c.mismatch(label+" name", imp.Module+"."+imp.Name, mod+"."+name)
			continue
		}
		ft, err := c.m.TypeOfFunc(uint32(i))
		if err != nil {
			c.mismatch(label+" type", err.Error(), "resolved")
			continue
		}
		c.signature(fmt.Sprintf("import %s.%s", mod, name), ft, def)
	}
}

func (c *checker) exportedFuncs(defs map[string]api.FunctionDefinition) {
	seen := 0
	for _, e := range c.m.Exports {
		if e.Kind != wasm.ExternFunc {
			continue
		}
		seen++
		label := fmt.Sprintf("export %q", e.Name)
		def, ok := defs[e.Name]
		if !ok {
			c.mismatch(label, "func", "missing")
			continue
		}
		if def.Index() != e.Index {
			c.mismatch(label+" index", e.Index, def.Index())
			continue
		}
		ft, err := c.m.TypeOfFunc(e.Index)
		if err != nil {
			c.mismatch(label+" type", err.Error(), "resolved")
			continue
		}
		c.signature(label, ft, def)
	}
	c.report.ExportedFuncs = seen

	if seen != len(defs) {
		c.mismatch("exported function count", seen, len(defs))
	}
}

func (c *checker) signature(label string, ft wasm.FuncType, def api.FunctionDefinition) {
	if !sameTypes(ft.Params, def.ParamTypes()) {
		c.mismatch(label+" params", ft.Params, typeNames(def.ParamTypes()))
	}
	if !sameTypes(ft.Results, def.ResultTypes()) {
		c.mismatch(label+" results", ft.Results, typeNames(def.ResultTypes()))
	}
}

func (c *checker) importedMemories(defs []api.MemoryDefinition) {
	decoded := c.memoryImports()
	c.report.ImportedMemories = len(decoded)

	if len(decoded) != len(defs) {
		c.mismatch("imported memory count", len(decoded), len(defs))
		return
	}
	for i, def := range defs {
		imp := decoded[i]
		mod, name, _ := def.Import()
		label := fmt.Sprintf("import %s.%s", mod, name)
		if imp.Module != mod || imp.Name != name {
			c.mismatch(fmt.Sprintf("memory import %d name", i), imp.Module+"."+imp.Name, mod+"."+name)
			continue
		}
		c.limits(label, imp.Memory.Limits, def)
	}
}

func (c *checker) exportedMemories(defs map[string]api.MemoryDefinition) {
	imported := c.memoryImports()
	seen := 0
	for _, e := range c.m.Exports {
		if e.Kind != wasm.ExternMemory {
			continue
		}
		seen++
		label := fmt.Sprintf("export %q", e.Name)
		def, ok := defs[e.Name]
		if !ok {
			c.mismatch(label, "memory", "missing")
			continue
		}

		var l wasm.Limits
		switch idx := int(e.Index); {
		case idx < len(imported):
			l = imported[idx].Memory.Limits
		case idx-len(imported) < len(c.m.Memories):
			l = c.m.Memories[idx-len(imported)].Limits
		default:
			c.mismatch(label+" index", e.Index, "out of range")
			continue
		}
		c.limits(label, l, def)
	}
	c.report.ExportedMemories = seen

	if seen != len(defs) {
		c.mismatch("exported memory count", seen, len(defs))
	}
}

func (c *checker) memoryImports() []wasm.Import {
	var out []wasm.Import
	for _, imp := range c.m.Imports {
		if imp.Kind == wasm.ExternMemory {
			out = append(out, imp)
		}
	}
	return out
}

func (c *checker) limits(label string, l wasm.Limits, def api.MemoryDefinition) {
	if l.Min != def.Min() {
		c.mismatch(label+" min", l.Min, def.Min())
	}
	hi, encoded := def.Max()
	switch {
	case (l.Max != nil) != encoded:
		c.mismatch(label+" has max", l.Max != nil, encoded)
	case l.Max != nil && *l.Max != hi:
		c.mismatch(label+" max", *l.Max, hi)
	}
}

func sameTypes(decoded []wasm.ValType, runtime []api.ValueType) bool {
	return slices.EqualFunc(decoded, runtime, func(d wasm.ValType, r api.ValueType) bool {
		return byte(d) == r
	})
}

func typeNames(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}
