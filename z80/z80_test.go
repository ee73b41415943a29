package z80

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testBus struct {
	mem  [0x10000]byte
	ports [256]byte
}

func (b *testBus) Read(addr uint16) byte         { return b.mem[addr] }
func (b *testBus) Write(addr uint16, value byte) { b.mem[addr] = value }
func (b *testBus) In(port byte) byte             { return b.ports[port] }
func (b *testBus) Out(port byte, value byte)     { b.ports[port] = value }
func (b *testBus) InternalCycle()                {}

func (b *testBus) load(addr uint16, bytes ...byte) {
	for i, v := range bytes {
		b.mem[int(addr)+i] = v
	}
}

type testInterrupts struct {
	maskable, nmi bool
}

func (t *testInterrupts) MaskableRequested() bool { return t.maskable }
func (t *testInterrupts) NMIRequested() bool      { return t.nmi }
func (t *testInterrupts) ClearNMI()               { t.nmi = false }
func (t *testInterrupts) VectorByte() byte        { return 0xFF }

func newTestCPU() (*CPU, *testBus, *testInterrupts) {
	return New(), &testBus{}, &testInterrupts{}
}

func TestFlagsByteRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := FlagsFromByte(byte(b)).Byte()
		assert.Equal(t, byte(b), got)
	}
}

func TestExAfExchangesShadow(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0000
	c.Reg.A = 0x11
	c.Reg.A2 = 0x22
	bus.load(0x0000, 0x08) // EX AF,AF'
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x22), c.Reg.A)
	assert.Equal(t, byte(0x11), c.Reg.A2)
}

func TestIM1InterruptDispatch(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xDFF0
	c.IFF1 = true
	c.Mode = IM1
	bus.load(0x0100, 0x00) // NOP, but interrupt preempts it
	irq.maskable = true
	cycles := c.ExecuteInstruction(bus, irq)
	assert.Equal(t, uint16(0x0038), c.Reg.PC)
	assert.False(t, c.IFF1)
	assert.Equal(t, 16, cycles) // two acknowledge cycles + two PC pushes
}

func TestNMITakesPriorityOverMaskable(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xDFF0
	c.IFF1 = true
	irq.maskable = true
	irq.nmi = true
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, uint16(0x0066), c.Reg.PC)
	assert.False(t, c.IFF1)
	assert.False(t, irq.nmi)
}

// TestEiThenDiNeverServicesAnAlreadyPendingInterrupt covers the delay
// window for EI's effect on IFF1/IFF2: a maskable interrupt already
// pending before EI runs must not be serviced on the instruction right
// after EI (the classic EI; DI sequence), even though IFF1 is already
// true by the time that instruction's ExecuteInstruction call begins.
func TestEiThenDiNeverServicesAnAlreadyPendingInterrupt(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xDFF0
	bus.load(0x0100, 0xFB, 0xF3) // EI, DI
	irq.maskable = true

	c.ExecuteInstruction(bus, irq) // runs EI; eiDelay set, IFF1 still false
	assert.False(t, c.IFF1)

	c.ExecuteInstruction(bus, irq) // must run DI to completion, not service the interrupt
	assert.False(t, c.IFF1, "DI must execute, not be preempted by the interrupt EI just enabled for")
	assert.Equal(t, uint16(0x0102), c.Reg.PC, "PC must have advanced past DI, not jumped to the interrupt vector")
}

func TestExxSwapsGeneralPurposeRegisters(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0000
	c.Reg.SetBC(0x1234)
	c.Reg.B2, c.Reg.C2 = 0x56, 0x78
	bus.load(0x0000, 0xD9) // EXX
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, uint16(0x5678), c.Reg.BC())
}

func TestLdirCopiesAndDecrementsCounter(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0000
	c.Reg.SetHL(0x2000)
	c.Reg.SetDE(0x3000)
	c.Reg.SetBC(0x0003)
	bus.load(0x2000, 0xAA, 0xBB, 0xCC)
	bus.load(0x0000, 0xED, 0xB0) // LDIR
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0xAA), bus.Read(0x3000))
	assert.Equal(t, byte(0xBB), bus.Read(0x3001))
	assert.Equal(t, byte(0xCC), bus.Read(0x3002))
	assert.Equal(t, uint16(0), c.Reg.BC())
}

func TestIndexedLoadUsesDisplacement(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0000
	c.Reg.IX = 0x4000
	bus.load(0x4005, 0x77)
	bus.load(0x0000, 0xDD, 0x46, 0x05) // LD B,(IX+5)
	c.ExecuteInstruction(bus, irq)
	assert.Equal(t, byte(0x77), c.Reg.B)
}

func TestIllegalOpcodePanics(t *testing.T) {
	c, bus, irq := newTestCPU()
	c.Reg.PC = 0x0000
	bus.load(0x0000, 0xDD, 0xFF) // no handler registered for DD FF
	assert.Panics(t, func() { c.ExecuteInstruction(bus, irq) })
}
