package smsggcore

// Bus wires system memory, the VDP, the PSG, and the controller ports onto
// the Z80's 16-bit memory space and 8-bit I/O space, and implements
// z80.Bus and z80.InterruptSource so the CPU can be driven directly
// against it.
type Bus struct {
	Mem   *Memory
	VDP   *VDP
	PSG   *PSG
	Input *InputState

	gameGear bool

	irqLine bool
	nmi     bool
	pausePrev bool
}

func NewBus(mem *Memory, gameGear bool) *Bus {
	return &Bus{
		Mem:   mem,
		VDP:   NewVDP(gameGear),
		PSG:   NewPSG(),
		Input: NewInputState(gameGear),
		gameGear: gameGear,
	}
}

func (b *Bus) Read(addr uint16) byte {
	b.stepPeripherals()
	return b.Mem.Read(addr)
}

func (b *Bus) Write(addr uint16, value byte) {
	b.stepPeripherals()
	b.Mem.Write(addr, value)
}

func (b *Bus) InternalCycle() { b.stepPeripherals() }

// In implements z80.Bus for the handful of ports SMS/GG software reads:
// the VDP data/control ports, the V/H counters, and the controller ports.
func (b *Bus) In(port byte) byte {
	switch {
	case b.gameGear && port == 0x00:
		return b.Input.ReadGGPort0()
	case port&0xC1 == 0x00: // $00-$3F even: unused on SMS, reads 0xFF
		return 0xFF
	case port&0xC1 == 0x01:
		return 0xFF
	case port >= 0x40 && port <= 0x7F && port&0x01 == 0:
		return b.VDP.VCounter()
	case port >= 0x40 && port <= 0x7F:
		return b.VDP.HCounter()
	case port >= 0x80 && port <= 0xBF && port&0x01 == 0:
		return readVDPData(b)
	case port >= 0x80 && port <= 0xBF:
		return b.VDP.ReadStatus()
	case port >= 0xC0 && port&0x01 == 0:
		return b.Input.ReadPortDC()
	default:
		return b.Input.ReadPortDD()
	}
}

func readVDPData(b *Bus) byte { return b.VDP.ReadData() }

func (b *Bus) Out(port byte, value byte) {
	switch {
	case port == 0x3E:
		b.Mem.WriteMemoryControl(value)
	case port == 0x3F:
		// I/O port control (TR/TH direction); not modeled, controllers are
		// always read-only digital pads.
	case b.gameGear && port == 0x06:
		// stereo panning, not modeled
	case port == 0xF2 && !b.gameGear:
		b.Mem.WriteAudioControl(value)
	case port >= 0x40 && port <= 0x7F:
		b.PSG.WriteData(value)
	case port >= 0x80 && port <= 0xBF && port&0x01 == 0:
		b.VDP.WriteData(value)
	case port >= 0x80 && port <= 0xBF:
		b.VDP.WriteControl(value)
	}
}

const masterClockHz = 3579545 // NTSC colorburst-derived Z80 clock

func (b *Bus) stepPeripherals() {
	const cycles = 1
	b.VDP.Step(cycles*3, &b.irqLine) // VDP dot clock runs 3x the Z80 clock
	b.PSG.Step(cycles, masterClockHz)
}

// MaskableRequested implements z80.InterruptSource. Real hardware holds the
// IRQ line asserted (level-triggered) until the pending VBlank/line-counter
// condition is cleared; this models it as an edge fired once per event
// instead, which is sufficient as long as the Z80 polls with interrupts
// enabled rather than leaving them masked across a VBlank.
func (b *Bus) MaskableRequested() bool {
	requested := b.irqLine
	b.irqLine = false
	return requested
}

// NMIRequested reports a newly pressed pause button, edge-triggered since
// the pause button on real hardware wires directly to the NMI pin.
func (b *Bus) NMIRequested() bool {
	pressed := b.Input.PortA.Pause
	edge := pressed && !b.pausePrev
	b.pausePrev = pressed
	return edge
}

func (b *Bus) ClearNMI() {}

// VectorByte is unused: SMS/GG software never programs IM 2.
func (b *Bus) VectorByte() byte { return 0xFF }
