package debugger

import (
	"fmt"

	"corecade/m68k"
	"corecade/sm83"
	"corecade/z80"
)

// sm83Target adapts an sm83.CPU plus its bus/interrupt source to Target.
type sm83Target struct {
	cpu *sm83.CPU
	bus sm83.Bus
	irq sm83.InterruptSource
}

func NewSM83Target(cpu *sm83.CPU, bus sm83.Bus, irq sm83.InterruptSource) Target {
	return &sm83Target{cpu: cpu, bus: bus, irq: irq}
}

func (t *sm83Target) Step() error {
	t.cpu.ExecuteInstruction(t.bus, t.irq)
	return nil
}

func (t *sm83Target) ReadByte(addr uint32) byte { return t.bus.Read(uint16(addr)) }

func (t *sm83Target) Snapshot() Snapshot {
	r := t.cpu.Reg
	return Snapshot{
		PC: uint32(r.PC),
		Registers: []RegisterValue{
			{"AF", uint32(r.AF())}, {"BC", uint32(r.BC())},
			{"DE", uint32(r.DE())}, {"HL", uint32(r.HL())},
			{"SP", uint32(r.SP)},
		},
		FlagsLine: fmt.Sprintf("Z:%v N:%v H:%v C:%v IME:%v",
			r.F.Zero, r.F.Subtract, r.F.HalfCarry, r.F.Carry, t.cpu.IME),
		LastOp: fmt.Sprintf("opcode $%02X at $%04X", t.bus.Read(r.PC), r.PC),
	}
}

// z80Target adapts a z80.CPU plus its bus/interrupt source to Target.
type z80Target struct {
	cpu *z80.CPU
	bus z80.Bus
	irq z80.InterruptSource
}

func NewZ80Target(cpu *z80.CPU, bus z80.Bus, irq z80.InterruptSource) Target {
	return &z80Target{cpu: cpu, bus: bus, irq: irq}
}

func (t *z80Target) Step() error {
	t.cpu.ExecuteInstruction(t.bus, t.irq)
	return nil
}

func (t *z80Target) ReadByte(addr uint32) byte { return t.bus.Read(uint16(addr)) }

func (t *z80Target) Snapshot() Snapshot {
	r := t.cpu.Reg
	return Snapshot{
		PC: uint32(r.PC),
		Registers: []RegisterValue{
			{"AF", uint32(r.AF())}, {"BC", uint32(r.BC())},
			{"DE", uint32(r.DE())}, {"HL", uint32(r.HL())},
			{"IX", uint32(r.IX)}, {"IY", uint32(r.IY)},
			{"SP", uint32(r.SP)},
		},
		FlagsLine: fmt.Sprintf("S:%v Z:%v H:%v PV:%v N:%v C:%v IFF1:%v mode:%d",
			r.F.Sign, r.F.Zero, r.F.HalfCarry, r.F.ParityOrOverflow, r.F.Subtract, r.F.Carry,
			t.cpu.IFF1, t.cpu.Mode),
		LastOp: fmt.Sprintf("opcode $%02X at $%04X", t.bus.Read(r.PC), r.PC),
	}
}

// m68kTarget adapts an m68k.CPU plus its bus to Target.
type m68kTarget struct {
	cpu *m68k.CPU
	bus m68k.Bus
}

func NewM68KTarget(cpu *m68k.CPU, bus m68k.Bus) Target {
	return &m68kTarget{cpu: cpu, bus: bus}
}

func (t *m68kTarget) Step() error {
	t.cpu.Step(t.bus)
	return nil
}

func (t *m68kTarget) ReadByte(addr uint32) byte { return byte(t.bus.Read(m68k.Byte, addr)) }

func (t *m68kTarget) Snapshot() Snapshot {
	r := t.cpu.Reg
	regs := make([]RegisterValue, 0, 18)
	for i, d := range r.D {
		regs = append(regs, RegisterValue{fmt.Sprintf("D%d", i), d})
	}
	for i, a := range r.A {
		regs = append(regs, RegisterValue{fmt.Sprintf("A%d", i), a})
	}
	return Snapshot{
		PC:        r.PC,
		Registers: regs,
		FlagsLine: fmt.Sprintf("SR:%04X", r.SR),
		LastOp:    fmt.Sprintf("opcode $%04X at $%06X", t.bus.Read(m68k.Word, r.PC), r.PC),
	}
}
