package gbcore

import "corecade/cartridge/gb"

// Bus wires the cartridge and every peripheral onto the SM83's 16-bit
// address space, and implements both sm83.Bus and sm83.InterruptSource so
// the CPU can be driven directly against it.
type Bus struct {
	Cart *gb.Cartridge
	Mem  *Memory
	PPU  *PPU
	APU  *APU
	Timer *Timer
	DMA   *DmaUnit
	Serial *SerialPort
	Speed  *SpeedRegister
	Input  *InputState
	IRQ    *Interrupts

	gbcMode bool
}

func NewBus(cart *gb.Cartridge, mem *Memory, gbcMode bool) *Bus {
	return &Bus{
		Cart:   cart,
		Mem:    mem,
		PPU:    NewPPU(),
		APU:    NewAPU(),
		Timer:  &Timer{},
		DMA:    &DmaUnit{},
		Serial: &SerialPort{},
		Speed:  &SpeedRegister{},
		Input:  &InputState{},
		IRQ:    &Interrupts{},
		gbcMode: gbcMode,
	}
}

// Read implements sm83.Bus. Every access charges the peripherals four
// T-cycles first (two in GBC double-speed mode), matching the
// per-machine-cycle accounting documented on sm83.Bus.
func (b *Bus) Read(addr uint16) byte {
	b.stepPeripherals()
	return b.read(addr)
}

func (b *Bus) read(addr uint16) byte {
	switch {
	case b.Mem.BootROMActive(addr):
		return b.Mem.ReadBootROM(addr)
	case addr < 0x8000:
		return b.Cart.Read(addr)
	case addr < 0xA000:
		return b.PPU.ReadVRAM(addr - 0x8000)
	case addr < 0xC000:
		return b.Cart.Read(addr)
	case addr < 0xD000:
		return b.Mem.ReadWRAMLow(addr - 0xC000)
	case addr < 0xE000:
		return b.Mem.ReadWRAMHigh(addr - 0xD000)
	case addr < 0xFE00: // echo RAM
		return b.read(addr - 0x2000)
	case addr < 0xFEA0:
		return b.PPU.ReadOAM(addr - 0xFE00)
	case addr < 0xFF00:
		return 0xFF
	case addr == 0xFF00:
		return b.Input.ReadP1()
	case addr == 0xFF01:
		return b.Serial.ReadSB()
	case addr == 0xFF02:
		return b.Serial.ReadSC()
	case addr == 0xFF04:
		return b.Timer.ReadDIV()
	case addr == 0xFF05:
		return b.Timer.ReadTIMA()
	case addr == 0xFF06:
		return b.Timer.ReadTMA()
	case addr == 0xFF07:
		return b.Timer.ReadTAC()
	case addr == 0xFF0F:
		return b.IRQ.Flag | 0xE0
	case addr >= 0xFF10 && addr <= 0xFF14 || addr >= 0xFF16 && addr <= 0xFF1E ||
		addr >= 0xFF20 && addr <= 0xFF26:
		return b.readAPURegister(addr)
	case addr >= 0xFF30 && addr <= 0xFF3F:
		return b.APU.ReadWave(addr - 0xFF30)
	case addr == 0xFF40:
		return b.PPU.ReadLCDC()
	case addr == 0xFF41:
		return b.PPU.ReadSTAT()
	case addr == 0xFF42:
		return b.PPU.ReadSCY()
	case addr == 0xFF43:
		return b.PPU.ReadSCX()
	case addr == 0xFF44:
		return b.PPU.ReadLY()
	case addr == 0xFF45:
		return b.PPU.ReadLYC()
	case addr == 0xFF47:
		return b.PPU.ReadBGP()
	case addr == 0xFF48:
		return b.PPU.ReadOBP0()
	case addr == 0xFF49:
		return b.PPU.ReadOBP1()
	case addr == 0xFF4A:
		return b.PPU.ReadWY()
	case addr == 0xFF4B:
		return b.PPU.ReadWX()
	case addr == 0xFF4D:
		return b.Speed.Read()
	case addr == 0xFF4F:
		return b.PPU.ReadVBK()
	case addr == 0xFF70:
		return b.Mem.ReadSVBK()
	case addr < 0xFFFF:
		return b.Mem.ReadHRAM(addr - 0xFF80)
	case addr == 0xFFFF:
		return b.IRQ.Enable
	default:
		return 0xFF
	}
}

func (b *Bus) readAPURegister(addr uint16) byte {
	switch addr {
	case 0xFF26:
		return b.APU.ReadNR52()
	case 0xFF24:
		return b.APU.ReadNR50()
	case 0xFF25:
		return b.APU.ReadNR51()
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	b.stepPeripherals()
	b.write(addr, value)
}

func (b *Bus) write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.Cart.Write(addr, value)
	case addr < 0xA000:
		b.PPU.WriteVRAM(addr-0x8000, value)
	case addr < 0xC000:
		b.Cart.Write(addr, value)
	case addr < 0xD000:
		b.Mem.WriteWRAMLow(addr-0xC000, value)
	case addr < 0xE000:
		b.Mem.WriteWRAMHigh(addr-0xD000, value)
	case addr < 0xFE00:
		b.write(addr-0x2000, value)
	case addr < 0xFEA0:
		b.PPU.WriteOAM(addr-0xFE00, value)
	case addr < 0xFF00:
		// unusable region, writes discarded
	case addr == 0xFF00:
		b.Input.WriteP1(value)
	case addr == 0xFF01:
		b.Serial.WriteSB(value)
	case addr == 0xFF02:
		b.Serial.WriteSC(value)
	case addr == 0xFF04:
		b.Timer.WriteDIV()
	case addr == 0xFF05:
		b.Timer.WriteTIMA(value)
	case addr == 0xFF06:
		b.Timer.WriteTMA(value)
	case addr == 0xFF07:
		b.Timer.WriteTAC(value)
	case addr == 0xFF0F:
		b.IRQ.Flag = value & 0x1F
	case addr == 0xFF10:
		b.APU.WriteNR10(value)
	case addr == 0xFF11:
		b.APU.WriteNR11(value)
	case addr == 0xFF12:
		b.APU.WriteNR12(value)
	case addr == 0xFF13:
		b.APU.WriteNR13(value)
	case addr == 0xFF14:
		b.APU.WriteNR14(value)
	case addr == 0xFF16:
		b.APU.WriteNR21(value)
	case addr == 0xFF17:
		b.APU.WriteNR22(value)
	case addr == 0xFF18:
		b.APU.WriteNR23(value)
	case addr == 0xFF19:
		b.APU.WriteNR24(value)
	case addr == 0xFF1A:
		b.APU.WriteNR30(value)
	case addr == 0xFF1B:
		b.APU.WriteNR31(value)
	case addr == 0xFF1C:
		b.APU.WriteNR32(value)
	case addr == 0xFF1D:
		b.APU.WriteNR33(value)
	case addr == 0xFF1E:
		b.APU.WriteNR34(value)
	case addr == 0xFF20:
		b.APU.WriteNR41(value)
	case addr == 0xFF21:
		b.APU.WriteNR42(value)
	case addr == 0xFF22:
		b.APU.WriteNR43(value)
	case addr == 0xFF23:
		b.APU.WriteNR44(value)
	case addr == 0xFF24:
		b.APU.WriteNR50(value)
	case addr == 0xFF25:
		b.APU.WriteNR51(value)
	case addr == 0xFF26:
		b.APU.WriteNR52(value)
	case addr >= 0xFF30 && addr <= 0xFF3F:
		b.APU.WriteWave(addr-0xFF30, value)
	case addr == 0xFF40:
		b.PPU.WriteLCDC(value)
	case addr == 0xFF41:
		b.PPU.WriteSTAT(value)
	case addr == 0xFF42:
		b.PPU.WriteSCY(value)
	case addr == 0xFF43:
		b.PPU.WriteSCX(value)
	case addr == 0xFF45:
		b.PPU.WriteLYC(value)
	case addr == 0xFF46:
		b.DMA.Start(value)
	case addr == 0xFF47:
		b.PPU.WriteBGP(value)
	case addr == 0xFF48:
		b.PPU.WriteOBP0(value)
	case addr == 0xFF49:
		b.PPU.WriteOBP1(value)
	case addr == 0xFF4A:
		b.PPU.WriteWY(value)
	case addr == 0xFF4B:
		b.PPU.WriteWX(value)
	case addr == 0xFF4D:
		b.Speed.Write(value)
	case addr == 0xFF4F:
		b.PPU.WriteVBK(value)
	case addr == 0xFF50:
		b.Mem.WriteBootDisable(value)
	case addr == 0xFF70:
		b.Mem.WriteSVBK(value)
	case addr < 0xFFFF:
		b.Mem.WriteHRAM(addr-0xFF80, value)
	case addr == 0xFFFF:
		b.IRQ.Enable = value
	}
}

// InternalCycle implements sm83.Bus for machine cycles that touch no
// address.
func (b *Bus) InternalCycle() { b.stepPeripherals() }

func (b *Bus) stepPeripherals() {
	cycles := 4
	if b.gbcMode && b.Speed.DoubleSpeed() {
		cycles = 2 // peripherals still run at the base clock while the CPU runs at 2x
	}
	b.Timer.Step(cycles, b.IRQ)
	b.PPU.Step(cycles, b.IRQ)
	b.APU.Step(cycles)
	b.Serial.Step(cycles, b.IRQ)
	b.Input.CheckForJoypadInterrupt(b.IRQ)
	if b.DMA.Active() {
		b.DMA.Step(cycles, func(oamIndex int, srcAddr uint16) {
			b.PPU.WriteOAM(uint16(oamIndex), b.read(srcAddr))
		})
	}
}

// Pending implements sm83.InterruptSource.
func (b *Bus) Pending() (uint16, bool)   { return b.IRQ.Pending() }
func (b *Bus) ClearPending(vector uint16) { b.IRQ.ClearPending(vector) }
func (b *Bus) AnyRequested() bool        { return b.IRQ.AnyRequested() }
