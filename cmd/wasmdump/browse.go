package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-decoder/wasm"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse function disassembly interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			b, err := newBrowser(in.path, m)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(b, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type browserState int

const (
	stateList browserState = iota
	stateDetail
)

type funcEntry struct {
	name  string
	sig   string
	index uint32
	code  int
}

// browser lists defined functions, narrowed by a filter, and shows the
// disassembly of the selected one.
type browser struct {
	m        *wasm.Module
	filter   textinput.Model
	path     string
	detail   string
	all      []funcEntry
	visible  []funcEntry
	selected int
	state    browserState
}

func newBrowser(path string, m *wasm.Module) (*browser, error) {
	if err := m.ResolveSections(); err != nil {
		return nil, err
	}

	imported := m.NumImportedFuncs()
	entries := make([]funcEntry, 0, len(m.Code))
	for i := range m.Code {
		idx := uint32(imported + i)
		e := funcEntry{index: idx, code: i, name: fmt.Sprintf("func %d", idx), sig: "?"}
		if names := exportNames(m, idx); len(names) > 0 {
			e.name = names[0]
		}
		if ft, err := m.TypeOfFunc(idx); err == nil {
			e.sig = ft.String()
		}
		entries = append(entries, e)
	}

	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	b := &browser{m: m, filter: ti, path: path, all: entries}
	b.applyFilter()
	return b, nil
}

func (b *browser) Init() tea.Cmd {
	return textinput.Blink
}

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return b, tea.Quit

		case "esc":
			if b.state == stateDetail {
				b.state = stateList
				b.detail = ""
				return b, nil
			}
			return b, tea.Quit

		case "up":
			if b.state == stateList && b.selected > 0 {
				b.selected--
			}
			return b, nil

		case "down":
			if b.state == stateList && b.selected < len(b.visible)-1 {
				b.selected++
			}
			return b, nil

		case "enter":
			if b.state == stateList && len(b.visible) > 0 {
				b.detail = b.disassemble(b.visible[b.selected])
				b.state = stateDetail
			}
			return b, nil
		}
	}

	if b.state != stateList {
		return b, nil
	}
	var cmd tea.Cmd
	prev := b.filter.Value()
	b.filter, cmd = b.filter.Update(msg)
	if b.filter.Value() != prev {
		b.applyFilter()
	}
	return b, cmd
}

func (b *browser) applyFilter() {
	q := strings.ToLower(b.filter.Value())
	b.visible = b.visible[:0]
	for _, e := range b.all {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) {
			b.visible = append(b.visible, e)
		}
	}
	b.selected = 0
}

func (b *browser) disassemble(e funcEntry) string {
	f, err := b.m.ResolveCode(e.code)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	instrs, err := f.Decode()
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	var s strings.Builder
	for _, l := range f.Locals {
		fmt.Fprintf(&s, "local %d x %s\n", l.Count, l.Type)
	}
	s.WriteString(wasm.Format(instrs))
	return s.String()
}

func (b *browser) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("wasmdump"))
	s.WriteString(" ")
	s.WriteString(b.path)
	s.WriteString("\n\n")

	switch b.state {
	case stateList:
		s.WriteString(b.filter.View())
		s.WriteString("\n\n")
		if len(b.visible) == 0 {
			s.WriteString(helpStyle.Render("no matching functions"))
			s.WriteString("\n")
		}
		for i, e := range b.visible {
			if i == b.selected {
				s.WriteString(selectedStyle.Render("> " + e.name + " " + e.sig))
			} else {
				s.WriteString("  " + funcStyle.Render(e.name) + " " + kindStyle.Render(e.sig))
			}
			s.WriteString("\n")
		}
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter disassemble • esc quit"))

	case stateDetail:
		e := b.visible[b.selected]
		fmt.Fprintf(&s, "%s %s\n\n", funcStyle.Render(e.name), kindStyle.Render(e.sig))
		s.WriteString(b.detail)
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("esc back • ctrl+c quit"))
	}

	return s.String()
}
