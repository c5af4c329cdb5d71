package wasm

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/wasm/internal/binary"
)

// Module is a decoded module. Sections are framed eagerly; the typed lists
// stay nil until ResolveSections fills them from the matching section.
// All byte slices borrow from the buffer passed to Decode.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []Func
	Memories []MemoryType
	Exports  []Export
	Code     []Code
	Data     []DataSegment
	Sections []Section
	Preamble Preamble

	cfg      *Config
	resolved bool
}

// Decode frames a complete module buffer using DefaultConfig.
func Decode(data []byte) (*Module, error) {
	return DecodeWithConfig(data, nil)
}

// DecodeWithConfig frames a complete module buffer. A nil cfg means
// DefaultConfig.
func DecodeWithConfig(data []byte, cfg *Config) (*Module, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := cfg.logger()

	c := binary.NewCursor(data, 0)
	p, err := readPreamble(c)
	if err != nil {
		return nil, err
	}
	if !p.IsDefault() {
		if cfg.RequireVersion1 {
			return nil, checkVersion(p)
		}
		log.Debug("non-default module version",
			zap.Uint32("version", p.Version),
			zap.Bool("component", p.IsComponent()))
	}

	sections, err := readSections(c)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		log.Debug("framed section",
			zap.Stringer("kind", s.Kind),
			zap.Int("offset", s.Offset),
			zap.Uint32("size", s.Size),
			zap.Uint32("count", s.Count))
	}

	return &Module{
		Preamble: p,
		Sections: sections,
		cfg:      cfg,
	}, nil
}

// Section returns the framed section of the given kind.
func (m *Module) Section(kind SectionKind) (Section, bool) {
	for _, s := range m.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Resolved reports whether ResolveSections has completed.
func (m *Module) Resolved() bool {
	return m.resolved
}

// ResolveSections decodes every framed section into its typed list. Lists
// that are already populated are left untouched, so resolved code entries
// survive a second call. The first failing section aborts the call.
func (m *Module) ResolveSections() error {
	if m.resolved {
		return nil
	}
	log := m.cfg.logger()

	for _, s := range m.Sections {
		if m.has(s.Kind) {
			continue
		}
		items, err := s.Resolve()
		if err != nil {
			return err
		}
		m.apply(items)
		log.Debug("resolved section",
			zap.Stringer("kind", s.Kind),
			zap.Int("entries", items.Len()))
	}
	m.resolved = true
	return nil
}

func (m *Module) has(kind SectionKind) bool {
	switch kind {
	case SectionType:
		return m.Types != nil
	case SectionImport:
		return m.Imports != nil
	case SectionFunction:
		return m.Funcs != nil
	case SectionMemory:
		return m.Memories != nil
	case SectionExport:
		return m.Exports != nil
	case SectionCode:
		return m.Code != nil
	case SectionData:
		return m.Data != nil
	}
	return false
}

func (m *Module) apply(items SectionItems) {
	switch items.Kind {
	case SectionType:
		m.Types = items.Types
	case SectionImport:
		m.Imports = items.Imports
	case SectionFunction:
		m.Funcs = items.Funcs
	case SectionMemory:
		m.Memories = items.Memories
	case SectionExport:
		m.Exports = items.Exports
	case SectionCode:
		m.Code = items.Code
	case SectionData:
		m.Data = items.Data
	}
}

// ResolveCode resolves code entry i in place. An entry that is already
// resolved is returned as is without being decoded again.
func (m *Module) ResolveCode(i int) (*Function, error) {
	if i < 0 || i >= len(m.Code) {
		return nil, errors.OutOfBounds(errors.PhaseFunction, []string{"code"}, i, len(m.Code))
	}

	switch body := m.Code[i].Body.(type) {
	case *Function:
		return body, nil
	case RawCode:
		f, err := body.resolve(m.cfg.maxNesting())
		if err != nil {
			return nil, errors.Within(err, SectionCode.String(), strconv.Itoa(i))
		}
		m.Code[i].Body = f
		m.cfg.logger().Debug("resolved function",
			zap.Int("index", i),
			zap.Int("locals", len(f.Locals)),
			zap.Int("code_bytes", len(f.Code)))
		return f, nil
	default:
		return nil, errors.InvalidInput(errors.PhaseFunction, fmt.Sprintf("code entry %d has no body", i))
	}
}

// ResolveAllCode resolves every code entry.
func (m *Module) ResolveAllCode() error {
	for i := range m.Code {
		if _, err := m.ResolveCode(i); err != nil {
			return err
		}
	}
	return nil
}

// NumImportedFuncs returns how many function imports precede the defined
// functions in the function index space.
func (m *Module) NumImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ExternFunc {
			n++
		}
	}
	return n
}

// Signature returns the type of defined function i, joining Funcs to Types.
func (m *Module) Signature(i int) (FuncType, error) {
	if i < 0 || i >= len(m.Funcs) {
		return FuncType{}, errors.OutOfBounds(errors.PhaseSection, []string{"function"}, i, len(m.Funcs))
	}
	return m.typeAt(m.Funcs[i].TypeIdx, "function", strconv.Itoa(i))
}

// TypeOfFunc returns the type of function idx in the function index space,
// where imported functions come first.
func (m *Module) TypeOfFunc(idx uint32) (FuncType, error) {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind != ExternFunc {
			continue
		}
		if uint32(n) == idx {
			return m.typeAt(*imp.TypeIdx, "import", imp.Module+"."+imp.Name)
		}
		n++
	}
	return m.Signature(int(idx) - n)
}

// DefinedIndex maps a function index to its position in Funcs and Code.
// It reports false for imported functions and indices past the function
// index space.
func (m *Module) DefinedIndex(idx uint32) (int, bool) {
	i := int(idx) - m.NumImportedFuncs()
	if i < 0 || i >= len(m.Funcs) {
		return 0, false
	}
	return i, true
}

// ExportedFunction looks up a function export by name and returns its
// function index and type.
func (m *Module) ExportedFunction(name string) (uint32, FuncType, error) {
	for _, e := range m.Exports {
		if e.Kind != ExternFunc || e.Name != name {
			continue
		}
		ft, err := m.TypeOfFunc(e.Index)
		if err != nil {
			return 0, FuncType{}, err
		}
		return e.Index, ft, nil
	}
	return 0, FuncType{}, errors.InvalidInput(errors.PhaseSection, fmt.Sprintf("no function export %q", name))
}

func (m *Module) typeAt(idx uint32, path ...string) (FuncType, error) {
	if int(idx) >= len(m.Types) {
		return FuncType{}, errors.OutOfBounds(errors.PhaseSection, append(path, "type"), int(idx), len(m.Types))
	}
	return m.Types[idx], nil
}
