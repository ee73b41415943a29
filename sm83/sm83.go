// Package sm83 implements the Sharp SM83 microprocessor, as used in the
// Game Boy and Game Boy Color. Architecturally it is a cut-down Zilog Z80:
// no IX/IY, no shadow register set, but the same flag layout shape and the
// same fetch/decode/execute-via-bus discipline documented for the teacher's
// 6502 core, generalized to machine-cycle (not whole-instruction) bus
// accounting.
package sm83

import "fmt"

// Bus provides the SM83 with memory-mapped access to the rest of the
// machine. Unlike a passive RAM array, each Read/Write is expected to step
// every other peripheral (PPU, APU, timer, DMA, serial) by four T-cycles,
// which is how this engine derives cycle counts without ever touching a
// clock itself: see ExecuteInstruction.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)

	// InternalCycle advances peripherals by four T-cycles without
	// performing a memory access, for machine cycles that do pure
	// register/ALU work (e.g. ADD HL,BC).
	InternalCycle()
}

// InterruptSource is the bus's view of the five GB interrupt lines,
// queried at each instruction boundary per spec: VBlank > LCD STAT > Timer
// > Serial > Joypad, in that priority order.
type InterruptSource interface {
	// Pending returns the service vector for the highest-priority set bit
	// of (IE & IF), and false if none is set; the CPU checks IME itself
	// before calling it. ClearPending clears the IF bit so the caller need
	// not know the register layout.
	Pending() (vector uint16, ok bool)
	ClearPending(vector uint16)
	AnyRequested() bool
}

// Flags holds the Z/N/H/C condition bits, mirrored 1:1 onto the hardware F
// register's upper nibble.
type Flags struct {
	Zero      bool
	Subtract  bool
	HalfCarry bool
	Carry     bool
}

// Byte packs the flags into the hardware F register layout (bits 7-4; the
// low nibble is always zero on real hardware).
func (f Flags) Byte() byte {
	var b byte
	if f.Zero {
		b |= 1 << 7
	}
	if f.Subtract {
		b |= 1 << 6
	}
	if f.HalfCarry {
		b |= 1 << 5
	}
	if f.Carry {
		b |= 1 << 4
	}
	return b
}

// FlagsFromByte is the inverse of Flags.Byte. Flags -> byte -> Flags
// round-trips to the identity, since the low nibble is discarded on both
// ends.
func FlagsFromByte(b byte) Flags {
	return Flags{
		Zero:      b&(1<<7) != 0,
		Subtract:  b&(1<<6) != 0,
		HalfCarry: b&(1<<5) != 0,
		Carry:     b&(1<<4) != 0,
	}
}

// Registers is the programmer-visible SM83 register file: eight 8-bit
// registers viewable as four 16-bit pairs (AF, BC, DE, HL), plus SP and PC.
type Registers struct {
	A byte
	F Flags
	B, C byte
	D, E byte
	H, L byte
	SP   uint16
	PC   uint16
}

func (r Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }
func (r Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F.Byte()) }

func (r *Registers) SetBC(v uint16) { r.B, r.C = byte(v>>8), byte(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = byte(v>>8), byte(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = byte(v>>8), byte(v) }
func (r *Registers) SetAF(v uint16) { r.A, r.F = byte(v>>8), FlagsFromByte(byte(v)) }

// Interrupt vectors in priority order, highest first.
const (
	VectorVBlank  uint16 = 0x0040
	VectorLCDStat uint16 = 0x0048
	VectorTimer   uint16 = 0x0050
	VectorSerial  uint16 = 0x0058
	VectorJoypad  uint16 = 0x0060
)

// CPU is the SM83 processor. It carries no memory of its own; every access
// goes through the Bus supplied to ExecuteInstruction.
type CPU struct {
	Reg Registers

	IME bool // interrupt master enable

	// imeScheduled implements EI's one-instruction-delayed enable: EI sets
	// this, and the *next* call to ExecuteInstruction commits it to IME
	// after that instruction completes, not during it.
	imeScheduled bool

	Halted  bool
	Stopped bool

	// haltBug is set when HALT executes while IME is clear and an
	// interrupt is already pending: real hardware fails to increment PC
	// after the following opcode fetch.
	haltBug bool
}

// New returns a CPU with the power-on register state documented for the
// original (non-bootrom) DMG hardware.
func New() *CPU {
	c := &CPU{}
	c.Reg.SetAF(0x01B0)
	c.Reg.SetBC(0x0013)
	c.Reg.SetDE(0x00D8)
	c.Reg.SetHL(0x014D)
	c.Reg.SP = 0xFFFE
	c.Reg.PC = 0x0100
	return c
}

// countingBus wraps the caller's Bus so ExecuteInstruction can derive the
// cycle count for the instruction it just ran from the number of bus
// touches performed, rather than from a static per-opcode table: this is
// the mechanism behind "cycle accuracy is derived from the number of bus
// accesses it performs" (the engine itself never consults a clock).
type countingBus struct {
	Bus
	touches int
}

func (b *countingBus) Read(addr uint16) byte {
	b.touches++
	return b.Bus.Read(addr)
}

func (b *countingBus) Write(addr uint16, value byte) {
	b.touches++
	b.Bus.Write(addr, value)
}

func (b *countingBus) InternalCycle() {
	b.touches++
	b.Bus.InternalCycle()
}

// ExecuteInstruction runs exactly one instruction (or one interrupt
// dispatch, or one halted no-op) and returns the number of T-cycles
// consumed, derived entirely from how many times it touched the bus.
func (c *CPU) ExecuteInstruction(bus Bus, irq InterruptSource) int {
	cb := &countingBus{Bus: bus}

	imeJustEnabled := false
	if c.imeScheduled {
		c.imeScheduled = false
		c.IME = true
		imeJustEnabled = true
	}

	if c.Halted {
		if !irq.AnyRequested() {
			cb.InternalCycle()
			return cb.touches * 4
		}
		c.Halted = false
		// fall through: either service the interrupt below, or (if IME
		// was clear) resume normal fetch/decode on the next opcode.
	}

	// The instruction immediately after EI always runs to completion
	// uninterrupted: IME only takes effect for interrupt servicing
	// starting on the call after the one that commits imeScheduled.
	if c.IME && !imeJustEnabled {
		if vector, ok := irq.Pending(); ok {
			c.IME = false
			irq.ClearPending(vector)
			cb.InternalCycle()
			cb.InternalCycle()
			c.pushPC(cb)
			c.Reg.PC = vector
			cb.InternalCycle()
			return cb.touches * 4
		}
	}

	opcode := cb.Read(c.Reg.PC)

	if opcode == 0x76 { // HALT
		c.Reg.PC++
		if !c.IME && irq.AnyRequested() {
			// halt bug: PC fails to advance past the opcode that
			// follows HALT, so it is fetched twice.
			c.haltBug = true
		} else {
			c.Halted = true
		}
		return cb.touches * 4
	}

	c.Reg.PC++
	if c.haltBug {
		c.haltBug = false
		c.Reg.PC--
	}

	entry := opcodes[opcode]
	if entry == nil {
		panic(fmt.Sprintf("sm83: illegal opcode %#02x at %#04x", opcode, c.Reg.PC-1))
	}
	entry.exec(c, cb)
	return cb.touches * 4
}

func (c *CPU) pushPC(bus Bus) {
	c.Reg.SP--
	bus.Write(c.Reg.SP, byte(c.Reg.PC>>8))
	c.Reg.SP--
	bus.Write(c.Reg.SP, byte(c.Reg.PC))
}

// RequestEnableInterrupts schedules IME to be set after the instruction
// following EI completes.
func (c *CPU) RequestEnableInterrupts() { c.imeScheduled = true }
