// Package debugger implements an interactive bubbletea TUI for stepping any
// of this module's CPU engines one instruction at a time, generalizing the
// teacher's single-CPU debugger to a small introspection interface any of
// sm83, z80, or m68k can satisfy via the adapters in target.go.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// RegisterValue is one named register's current contents, sized to fit the
// widest register in any of this module's CPUs (the 68000's 32-bit data
// registers).
type RegisterValue struct {
	Name  string
	Value uint32
}

// Snapshot is a point-in-time read of a CPU's externally visible state,
// produced fresh after every Step.
type Snapshot struct {
	PC        uint32
	Registers []RegisterValue
	FlagsLine string
	LastOp    string
}

// Target is the narrow interface the debugger drives; sm83Target,
// z80Target, and m68kTarget in target.go implement it by closing over a
// concrete CPU and bus.
type Target interface {
	Step() error
	Snapshot() Snapshot
	ReadByte(addr uint32) byte
}

type model struct {
	target Target
	name   string

	offset uint32
	prevPC uint32
	err    error
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			snap := m.target.Snapshot()
			m.prevPC = snap.PC
			if err := m.target.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m model) renderPage(start uint32) string {
	s := fmt.Sprintf("%06x | ", start)
	snap := m.target.Snapshot()
	for i := uint32(0); i < 16; i++ {
		b := m.target.ReadByte(start + i)
		if start+i == snap.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) pageTable() string {
	header := "addr   | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}
	lines := []string{header}

	snap := m.target.Snapshot()
	pcPage := snap.PC &^ 0xF
	offsets := []uint32{m.offset, m.offset + 16, pcPage, pcPage + 16, pcPage + 32}
	for _, addr := range offsets {
		lines = append(lines, m.renderPage(addr))
	}
	return strings.Join(lines, "\n")
}

func (m model) status() string {
	snap := m.target.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "engine: %s\nPC: %08x (prev %08x)\n", m.name, snap.PC, m.prevPC)
	for _, r := range snap.Registers {
		fmt.Fprintf(&b, "%s: %08x\n", r.Name, r.Value)
	}
	fmt.Fprintf(&b, "%s\n", snap.FlagsLine)
	return b.String()
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("halted: %v\n", m.err)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.pageTable(), m.status()),
		"",
		spew.Sdump(m.target.Snapshot()),
	)
}

// Run starts the interactive TUI against target, reporting name (e.g.
// "sm83", "z80", "m68k") in the status panel. offset is the address the
// page table centers its first two rows on (typically the cartridge's
// entry point).
func Run(name string, target Target, offset uint32) error {
	p := tea.NewProgram(model{target: target, name: name, offset: offset})
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
