// Package gb implements the Game Boy / Game Boy Color cartridge interface:
// header parsing, mapper detection (MBC1/2/3/5, a HuC1 stub), bank
// switching, and optional battery-backed RAM with an MBC3 real-time clock.
package gb

import (
	"fmt"
	"log"

	"corecade/frontend"
	"corecade/mask"
)

// LoadError reports a malformed cartridge header. It is returned once, at
// load time, and is unrecoverable -- the caller must not retry with the
// same ROM bytes.
type LoadError struct {
	msg string
}

func (e *LoadError) Error() string { return e.msg }

func invalidSRAMByte(b byte) error {
	return &LoadError{msg: fmt.Sprintf("gb: ROM header contains invalid SRAM size byte: $%02X", b)}
}

func unsupportedMapperByte(b byte) error {
	return &LoadError{msg: fmt.Sprintf("gb: ROM header contains unsupported mapper byte: $%02X", b)}
}

// MBC identifies the cartridge's memory bank controller.
type MBC int

const (
	MBCNone MBC = iota
	MBC1
	MBC2
	MBC3
	MBC5
	HuC1
)

const (
	headerCartridgeType = 0x0147
	headerRAMSize       = 0x0149
)

func mbcFromHeader(b byte) (MBC, bool) {
	switch {
	case b == 0x00, b == 0x08, b == 0x09:
		return MBCNone, true
	case b >= 0x01 && b <= 0x03:
		return MBC1, true
	case b == 0x05 || b == 0x06:
		return MBC2, true
	case b >= 0x0F && b <= 0x13:
		return MBC3, true
	case b >= 0x19 && b <= 0x1E:
		return MBC5, true
	case b == 0xFF || b == 0xFE:
		return HuC1, true
	default:
		return MBCNone, false
	}
}

func ramSizeFromHeader(b byte) (int, bool) {
	switch b {
	case 0x00:
		return 0, true
	case 0x01:
		return 2 * 1024, true
	case 0x02:
		return 8 * 1024, true
	case 0x03:
		return 32 * 1024, true
	case 0x04:
		return 128 * 1024, true
	case 0x05:
		return 64 * 1024, true
	default:
		return 0, false
	}
}

func hasBattery(headerByte byte) bool {
	switch headerByte {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0xFF:
		return true
	default:
		return false
	}
}

// rtc holds the MBC3 real-time-clock register set.
type rtc struct {
	seconds, minutes, hours byte
	dayLow                  byte
	dayHigh                 byte // bit 0: day counter bit 8; bit 6: halt; bit 7: day carry

	latched    rtcSnapshot
	latchState byte // tracks the $6000 0x00-then-0x01 write sequence
}

type rtcSnapshot struct {
	seconds, minutes, hours, dayLow, dayHigh byte
}

func (r *rtc) latch() {
	r.latched = rtcSnapshot{r.seconds, r.minutes, r.hours, r.dayLow, r.dayHigh}
}

func (r *rtc) writeLatchTrigger(value byte) {
	if r.latchState == 0x00 && value == 0x01 {
		r.latch()
	}
	r.latchState = value
}

// Cartridge owns ROM bytes, optional RAM, the active MBC's banking state,
// and (for MBC3) an RTC register set.
type Cartridge struct {
	rom        []byte
	ram        []byte
	mbc        MBC
	hasBattery bool
	ramDirty   bool

	ramEnabled bool
	romBank    uint16
	ramBank    byte
	bankMode   byte // MBC1 mode select: 0 = ROM banking, 1 = RAM banking

	mbc3RAMOrRTCSelect byte // 0x00-0x03 RAM bank, 0x08-0x0C RTC register
	rtc                rtc
}

// New builds a Cartridge from raw ROM bytes and an optional previously
// persisted RAM image. It returns a LoadError if the header's cartridge
// type or RAM size byte is not one this implementation supports.
func New(rom []byte, initialRAM []byte) (*Cartridge, error) {
	if len(rom) <= headerCartridgeType {
		return nil, unsupportedMapperByte(0)
	}

	typeByte := rom[headerCartridgeType]
	mbc, ok := mbcFromHeader(typeByte)
	if !ok {
		return nil, unsupportedMapperByte(typeByte)
	}

	ramSize, ok := ramSizeFromHeader(rom[headerRAMSize])
	if !ok {
		return nil, invalidSRAMByte(rom[headerRAMSize])
	}
	if mbc == MBC2 {
		ramSize = 512 // MBC2 has 512x4-bit RAM built in, regardless of the header byte
	}

	log.Printf("gb: detected mapper %v, RAM size %d bytes, battery %v", mbc, ramSize, hasBattery(typeByte))

	ram := make([]byte, ramSize)
	if len(initialRAM) == ramSize {
		copy(ram, initialRAM)
	}

	return &Cartridge{
		rom:        mirrorToNextPowerOfTwo(rom),
		ram:        ram,
		mbc:        mbc,
		hasBattery: hasBattery(typeByte),
		romBank:    1,
	}, nil
}

func mirrorToNextPowerOfTwo(rom []byte) []byte {
	n := 1
	for n < len(rom) {
		n <<= 1
	}
	if n == len(rom) {
		return rom
	}
	out := make([]byte, n)
	for i := 0; i < n; i += len(rom) {
		copy(out[i:], rom)
	}
	return out
}

func (c *Cartridge) readROM(addr uint32) byte {
	return c.rom[addr&uint32(len(c.rom)-1)]
}

func (c *Cartridge) effectiveROMBank() uint16 {
	switch c.mbc {
	case MBC1, HuC1:
		bank := c.romBank & 0x1F
		if bank == 0 {
			bank = 1
		}
		if c.bankMode == 0 {
			bank |= uint16(c.ramBank) << 5
		}
		return bank
	case MBC2:
		bank := c.romBank & 0x0F
		if bank == 0 {
			bank = 1
		}
		return bank
	case MBC3:
		bank := c.romBank & 0x7F
		if bank == 0 {
			bank = 1
		}
		return bank
	case MBC5:
		return c.romBank
	default:
		return 1
	}
}

// Read resolves a CPU address in the cartridge's 0x0000..0x7FFF ROM window
// or 0xA000..0xBFFF RAM window.
func (c *Cartridge) Read(addr uint16) byte {
	switch {
	case addr <= 0x3FFF:
		if c.mbc == MBC1 && c.bankMode == 1 {
			return c.readROM(uint32(c.ramBank) << 19 & uint32(len(c.rom)-1) | uint32(addr))
		}
		return c.readROM(uint32(addr))
	case addr >= 0x4000 && addr <= 0x7FFF:
		return c.readROM(uint32(c.effectiveROMBank())<<14 | uint32(addr&0x3FFF))
	case addr >= 0xA000 && addr <= 0xBFFF:
		return c.readRAM(addr)
	default:
		return 0xFF
	}
}

func (c *Cartridge) readRAM(addr uint16) byte {
	if !c.ramEnabled || len(c.ram) == 0 {
		if c.mbc == MBC3 && c.mbc3RAMOrRTCSelect >= 0x08 {
			return c.readRTC()
		}
		return 0xFF
	}
	switch c.mbc {
	case MBC2:
		return c.ram[addr&0x1FF] | 0xF0 // only the low nibble is wired
	case MBC3:
		if c.mbc3RAMOrRTCSelect >= 0x08 {
			return c.readRTC()
		}
		offset := uint32(c.mbc3RAMOrRTCSelect)<<13 | uint32(addr&0x1FFF)
		return c.ram[offset&uint32(len(c.ram)-1)]
	default:
		offset := uint32(c.ramBank)<<13 | uint32(addr&0x1FFF)
		return c.ram[offset&uint32(len(c.ram)-1)]
	}
}

func (c *Cartridge) readRTC() byte {
	s := c.rtc.latched
	switch c.mbc3RAMOrRTCSelect {
	case 0x08:
		return s.seconds
	case 0x09:
		return s.minutes
	case 0x0A:
		return s.hours
	case 0x0B:
		return s.dayLow
	case 0x0C:
		return s.dayHigh
	default:
		return 0xFF
	}
}

// Write routes a CPU write in 0x0000..0xBFFF to the active mapper's
// register bank or RAM window.
func (c *Cartridge) Write(addr uint16, value byte) {
	switch c.mbc {
	case MBC1:
		c.writeMBC1(addr, value)
	case MBC2:
		c.writeMBC2(addr, value)
	case MBC3:
		c.writeMBC3(addr, value)
	case MBC5:
		c.writeMBC5(addr, value)
	case HuC1:
		c.writeMBC1(addr, value) // HuC1 register layout closely mirrors MBC1 for ROM/RAM enable and banking
	}
}

func (c *Cartridge) writeMBC1(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		c.setRAMEnabled(value&0x0F == 0x0A)
	case addr >= 0x2000 && addr <= 0x3FFF:
		c.romBank = uint16(value)
	case addr >= 0x4000 && addr <= 0x5FFF:
		c.ramBank = value & 0x03
	case addr >= 0x6000 && addr <= 0x7FFF:
		c.bankMode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		c.writeRAM(addr, value)
	}
}

func (c *Cartridge) writeMBC2(addr uint16, value byte) {
	switch {
	case addr <= 0x3FFF:
		if mask.Bit16(addr, 8) {
			c.romBank = uint16(value)
		} else {
			c.setRAMEnabled(value&0x0F == 0x0A)
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if c.ramEnabled {
			c.ram[addr&0x1FF] = value & 0x0F
			c.ramDirty = true
		}
	}
}

func (c *Cartridge) writeMBC3(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		c.setRAMEnabled(value&0x0F == 0x0A)
	case addr >= 0x2000 && addr <= 0x3FFF:
		c.romBank = uint16(value)
	case addr >= 0x4000 && addr <= 0x5FFF:
		c.mbc3RAMOrRTCSelect = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		c.rtc.writeLatchTrigger(value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		if c.mbc3RAMOrRTCSelect >= 0x08 {
			c.writeRTC(value)
		} else {
			c.ramBank = c.mbc3RAMOrRTCSelect // the bank readRAM reads for MBC3
			c.writeRAM(addr, value)
		}
	}
}

func (c *Cartridge) writeRTC(value byte) {
	switch c.mbc3RAMOrRTCSelect {
	case 0x08:
		c.rtc.seconds = value
	case 0x09:
		c.rtc.minutes = value
	case 0x0A:
		c.rtc.hours = value
	case 0x0B:
		c.rtc.dayLow = value
	case 0x0C:
		c.rtc.dayHigh = value
	}
	c.ramDirty = true
}

func (c *Cartridge) writeMBC5(addr uint16, value byte) {
	switch {
	case addr <= 0x1FFF:
		c.setRAMEnabled(value&0x0F == 0x0A)
	case addr >= 0x2000 && addr <= 0x2FFF:
		c.romBank = c.romBank&0x100 | uint16(value)
	case addr >= 0x3000 && addr <= 0x3FFF:
		c.romBank = c.romBank&0xFF | uint16(value&0x01)<<8
	case addr >= 0x4000 && addr <= 0x5FFF:
		c.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		c.writeRAM(addr, value)
	}
}

func (c *Cartridge) writeRAM(addr uint16, value byte) {
	if !c.ramEnabled || len(c.ram) == 0 {
		return
	}
	offset := uint32(c.ramBank)<<13 | uint32(addr&0x1FFF)
	c.ram[offset&uint32(len(c.ram)-1)] = value
	c.ramDirty = true
}

func (c *Cartridge) setRAMEnabled(v bool) {
	c.ramEnabled = v
}

// TickRTC advances the MBC3 real-time clock by one second; the façade calls
// this once per emulated second of wall-clock progress (driven off the
// frame rate, since the core has no wall-clock access of its own).
func (c *Cartridge) TickRTC() {
	if c.mbc != MBC3 || mask.Bit(c.rtc.dayHigh, 6) {
		return // halted
	}
	c.rtc.seconds++
	if c.rtc.seconds < 60 {
		return
	}
	c.rtc.seconds = 0
	c.rtc.minutes++
	if c.rtc.minutes < 60 {
		return
	}
	c.rtc.minutes = 0
	c.rtc.hours++
	if c.rtc.hours < 24 {
		return
	}
	c.rtc.hours = 0
	day := uint16(c.rtc.dayLow) | uint16(c.rtc.dayHigh&0x01)<<8
	day++
	if day > 0x1FF {
		day = 0
		c.rtc.dayHigh |= 1 << 7 // day counter carry
	}
	c.rtc.dayLow = byte(day)
	c.rtc.dayHigh = c.rtc.dayHigh&^0x01 | byte(day>>8)
}

// RAM returns the cartridge's current RAM image, for persistence.
func (c *Cartridge) RAM() []byte { return c.ram }

// HasBattery reports whether the cartridge is battery-backed.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }

// RAMDirty reports whether RAM or RTC state has changed since the last
// ClearRAMDirty.
func (c *Cartridge) RAMDirty() bool { return c.ramDirty }

// ClearRAMDirty clears the dirty flag.
func (c *Cartridge) ClearRAMDirty() { c.ramDirty = false }

// PersistRAM writes RAM under "sav" and, for MBC3, RTC state under "rtc".
func (c *Cartridge) PersistRAM(sw frontend.SaveWriter) error {
	if err := sw.PersistBytes("sav", c.RAM()); err != nil {
		return err
	}
	if c.mbc == MBC3 {
		snap := c.rtc.latched
		rtcBytes := []byte{snap.seconds, snap.minutes, snap.hours, snap.dayLow, snap.dayHigh}
		return sw.PersistBytes("rtc", rtcBytes)
	}
	return nil
}

// LoadRTC restores previously persisted MBC3 RTC state. A malformed or
// short byte slice is ignored, leaving the clock at its zeroed default.
func (c *Cartridge) LoadRTC(data []byte) {
	if c.mbc != MBC3 || len(data) < 5 {
		return
	}
	c.rtc.seconds = data[0]
	c.rtc.minutes = data[1]
	c.rtc.hours = data[2]
	c.rtc.dayLow = data[3]
	c.rtc.dayHigh = data[4]
	c.rtc.latched = rtcSnapshot{
		seconds: data[0], minutes: data[1], hours: data[2],
		dayLow: data[3], dayHigh: data[4],
	}
}

// MBC reports the detected memory bank controller.
func (c *Cartridge) MBC() MBC { return c.mbc }

func (m MBC) String() string {
	switch m {
	case MBCNone:
		return "None"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	case HuC1:
		return "HuC1"
	default:
		return "unknown"
	}
}
