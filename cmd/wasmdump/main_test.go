package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	werrors "github.com/wippyai/wasm-decoder/errors"
	"github.com/wippyai/wasm-decoder/internal/wasmtest"
	"github.com/wippyai/wasm-decoder/wasm"
)

func doubler() []byte {
	return wasmtest.Module(
		wasmtest.Section(1,
			wasmtest.FuncType([]byte{0x7f}, []byte{0x7f}),
			wasmtest.FuncType(nil, nil),
		),
		wasmtest.Section(2,
			wasmtest.ImportFunc("env", "tick", 1),
			wasmtest.ImportMemory("env", "mem", 1, 2),
		),
		wasmtest.Section(3, []byte{0x00}),
		wasmtest.Section(7,
			wasmtest.Export("double", 0x00, 1),
			wasmtest.Export("mem", 0x02, 0),
		),
		wasmtest.Section(10, wasmtest.Code(nil, 0x20, 0x00, 0x20, 0x00, 0x6a, 0x0b)),
	)
}

func writeModule(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.wasm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSections(t *testing.T) {
	path := writeModule(t, wasmtest.Module(wasmtest.Section(1, wasmtest.FuncType(nil, nil))))

	out, err := run(t, "sections", path)
	require.NoError(t, err)
	require.Equal(t, "module "+path+"\nversion 1\ntype     offset=8 size=4 count=1\n", out)
}

func TestFuncs(t *testing.T) {
	path := writeModule(t, doubler())

	out, err := run(t, "funcs", path)
	require.NoError(t, err)
	require.Equal(t, `func 1 (i32) -> (i32) export "double"
  local.get 0
  local.get 0
  i32.add
`, out)

	out, err = run(t, "funcs", "--index", "0", path)
	require.NoError(t, err)
	require.Contains(t, out, "i32.add")

	_, err = run(t, "funcs", "--index", "5", path)
	require.ErrorIs(t, err, werrors.ErrOutOfBounds)
}

func TestFuncsLocals(t *testing.T) {
	path := writeModule(t, wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}),
		wasmtest.Section(10, wasmtest.Code([]wasmtest.Local{{Count: 2, Type: 0x7e}},
			0x02, 0x40, 0x01, 0x0b, 0x0b)),
	))

	out, err := run(t, "funcs", path)
	require.NoError(t, err)
	require.Equal(t, "func 0 () -> ()\n  local 2 x i64\n  block\n    nop\n  end\n", out)
}

func TestVerify(t *testing.T) {
	path := writeModule(t, doubler())

	out, err := run(t, "verify", path)
	require.NoError(t, err)
	require.Equal(t, "ok imports: 1 funcs, 1 memories; exports: 1 funcs, 1 memories\n", out)
}

func TestStrictVersion(t *testing.T) {
	path := writeModule(t, wasmtest.New().Preamble(2).Bytes())

	out, err := run(t, "sections", path)
	require.NoError(t, err)
	require.Contains(t, out, "version 2")

	_, err = run(t, "--strict-version", "sections", path)
	require.ErrorIs(t, err, werrors.ErrMalformedPreamble)
}

func TestMaxNesting(t *testing.T) {
	path := writeModule(t, wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}),
		wasmtest.Section(10, wasmtest.Code(nil, 0x02, 0x40, 0x02, 0x40, 0x0b, 0x0b, 0x0b)),
	))

	_, err := run(t, "funcs", path)
	require.NoError(t, err)

	_, err = run(t, "--max-nesting", "1", "funcs", path)
	require.ErrorIs(t, err, werrors.ErrNestingTooDeep)
}

func TestLoadErrors(t *testing.T) {
	_, err := run(t, "sections", filepath.Join(t.TempDir(), "missing.wasm"))
	require.ErrorIs(t, err, werrors.ErrInvalidInput)

	var e *werrors.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, werrors.PhaseLoad, e.Phase)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "sections", writeModule(t, nil))
	require.ErrorIs(t, err, werrors.ErrMalformedPreamble)
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "sections", writeModule(t, doubler()))
	require.Error(t, err)
}

func TestLoadReleasesInput(t *testing.T) {
	in, err := load(writeModule(t, doubler()))
	require.NoError(t, err)
	require.Equal(t, doubler(), in.data)
	require.NoError(t, in.Close())
	require.Nil(t, in.data)
	require.NoError(t, in.Close())
}

func TestIndent(t *testing.T) {
	require.Equal(t, "", indent("", "  "))
	require.Equal(t, "  a\n    b\n", indent("a\n  b\n", "  "))
}

func TestBrowser(t *testing.T) {
	data := wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}, []byte{0x00}),
		wasmtest.Section(7,
			wasmtest.Export("alpha", 0x00, 0),
			wasmtest.Export("beta", 0x00, 1),
		),
		wasmtest.Section(10,
			wasmtest.Code(nil, 0x01, 0x0b),
			wasmtest.Code(nil, 0x41, 0x07, 0x1a, 0x0b),
		),
	)
	m, err := wasm.Decode(data)
	require.NoError(t, err)

	b, err := newBrowser("module.wasm", m)
	require.NoError(t, err)
	require.Len(t, b.visible, 2)
	require.Contains(t, b.View(), "alpha")

	b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bet")})
	require.Equal(t, "bet", b.filter.Value())
	require.Len(t, b.visible, 1)
	require.Equal(t, "beta", b.visible[0].name)

	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateDetail, b.state)
	require.Equal(t, "i32.const 7\ndrop\n", b.detail)
	require.Contains(t, b.View(), "i32.const 7")

	b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, stateList, b.state)

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
}

func TestBrowserNavigation(t *testing.T) {
	data := wasmtest.Module(
		wasmtest.Section(1, wasmtest.FuncType(nil, nil)),
		wasmtest.Section(3, []byte{0x00}, []byte{0x00}),
		wasmtest.Section(10, wasmtest.Code(nil, 0x0b), wasmtest.Code(nil, 0x01, 0x0b)),
	)
	m, err := wasm.Decode(data)
	require.NoError(t, err)

	b, err := newBrowser("module.wasm", m)
	require.NoError(t, err)
	require.Equal(t, "func 0", b.visible[0].name)

	b.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, 0, b.selected)
	b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, b.selected)

	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "nop\n", b.detail)
}
