package sm83

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testBus is a flat 64KB memory with no attached peripherals, enough to
// drive CPU instruction tests without a full machine behind it.
type testBus struct {
	mem [0x10000]byte
}

func (b *testBus) Read(addr uint16) byte          { return b.mem[addr] }
func (b *testBus) Write(addr uint16, value byte)  { b.mem[addr] = value }
func (b *testBus) InternalCycle()                 {}

func (b *testBus) load(addr uint16, bytes ...byte) {
	for i, v := range bytes {
		b.mem[int(addr)+i] = v
	}
}

// testInterrupts is a minimal InterruptSource stub for tests that don't
// exercise interrupt dispatch.
type testInterrupts struct {
	vector  uint16
	pending bool
}

func (t *testInterrupts) Pending() (uint16, bool) {
	if t.pending {
		return t.vector, true
	}
	return 0, false
}
func (t *testInterrupts) ClearPending(vector uint16) { t.pending = false }
func (t *testInterrupts) AnyRequested() bool         { return t.pending }

func newTestCPU() (*CPU, *testBus, *testInterrupts) {
	c := New()
	return c, &testBus{}, &testInterrupts{}
}

func TestFlagsByteRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		byteVal := byte(b) &^ 0x0F // low nibble is always zero on hardware
		got := FlagsFromByte(byteVal).Byte()
		assert.Equal(t, byteVal, got)
	}
}

func TestLoadRegisterToRegister(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.B = 0x42
	bus.load(0x0100, 0x78) // LD A,B
	cycles := c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x42), c.Reg.A)
	assert.Equal(t, 4, cycles) // one bus read (opcode fetch) = 1 M-cycle = 4 T
}

func TestLoadImmediateIsTwoMCycles(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0x3E, 0x99) // LD A,n
	cycles := c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x99), c.Reg.A)
	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint16(0x0102), c.Reg.PC)
}

func TestAddSetsCarryAndHalfCarry(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.A = 0xFF
	c.Reg.B = 0x01
	bus.load(0x0100, 0x80) // ADD A,B
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x00), c.Reg.A)
	assert.True(t, c.Reg.F.Zero)
	assert.True(t, c.Reg.F.Carry)
	assert.True(t, c.Reg.F.HalfCarry)
	assert.False(t, c.Reg.F.Subtract)
}

func TestIncDoesNotTouchCarry(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.F.Carry = true
	c.Reg.A = 0xFF
	bus.load(0x0100, 0x3C) // INC A
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x00), c.Reg.A)
	assert.True(t, c.Reg.F.Zero)
	assert.True(t, c.Reg.F.Carry, "INC must not clear a pre-existing carry flag")
}

func TestCallAndRetRoundTrip(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xFFFE
	bus.load(0x0100, 0xCD, 0x00, 0x02) // CALL 0x0200
	bus.load(0x0200, 0xC9)             // RET
	callCycles := c.ExecuteInstruction(bus, irq)
	assert.Equal(t, uint16(0x0200), c.Reg.PC)
	assert.Equal(t, 24, callCycles)

	retCycles := c.ExecuteInstruction(bus, irq)
	assert.Equal(t, uint16(0x0103), c.Reg.PC)
	assert.Equal(t, 16, retCycles)
	assert.Equal(t, uint16(0xFFFE), c.Reg.SP)
}

func TestHaltResumesOnPendingInterrupt(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.IME = true
	bus.load(0x0100, 0x76) // HALT
	c.ExecuteInstruction(bus, irq)
	assert.True(t, c.Halted)

	irq.pending = true
	irq.vector = VectorVBlank
	cycles := c.ExecuteInstruction(bus, irq)
	assert.False(t, c.Halted)
	assert.Equal(t, VectorVBlank, c.Reg.PC)
	assert.Equal(t, 20, cycles)
	assert.False(t, c.IME, "servicing an interrupt must clear IME")
}

func TestEiDelaysInterruptEnableByOneInstruction(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0xFB, 0x00) // EI, NOP
	c.ExecuteInstruction(bus, irq)
	assert.False(t, c.IME, "IME must not be set until the instruction after EI completes")
	c.ExecuteInstruction(bus, irq)
	assert.True(t, c.IME)
}

// TestEiThenDiNeverServicesAnAlreadyPendingInterrupt exercises the delay
// window itself: a pending interrupt present before EI runs must not be
// serviced on the instruction immediately after EI, even though IME is
// already true for that call. The classic EI; DI sequence must never let
// that interrupt through.
func TestEiThenDiNeverServicesAnAlreadyPendingInterrupt(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0xFB, 0xF3) // EI, DI
	irq.pending = true
	irq.vector = 0x0040

	c.ExecuteInstruction(bus, irq) // runs EI; imeScheduled set, IME still false
	assert.False(t, c.IME)

	c.ExecuteInstruction(bus, irq) // must run DI to completion, not service the interrupt
	assert.False(t, c.IME, "DI must execute, not be preempted by the interrupt EI just enabled for")
	assert.True(t, irq.pending, "the pending interrupt must not have been acknowledged")
	assert.Equal(t, uint16(0x0102), c.Reg.PC, "PC must have advanced past DI, not jumped to the interrupt vector")
}

func TestRlcaNeverSetsZeroFlag(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.A = 0x00
	bus.load(0x0100, 0x07) // RLCA
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x00), c.Reg.A)
	assert.False(t, c.Reg.F.Zero, "RLCA always clears Z regardless of result")
}

func TestCbBitSetsZeroWhenClear(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.A = 0x00
	bus.load(0x0100, 0xCB, 0x47) // BIT 0,A
	cycles := c.ExecuteInstruction(bus, irq)
	assert.True(t, c.Reg.F.Zero)
	assert.True(t, c.Reg.F.HalfCarry)
	assert.Equal(t, 8, cycles)
}

func TestIllegalOpcodePanics(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0xD3) // unassigned
	assert.Panics(t, func() { c.ExecuteInstruction(bus, irq) })
}
