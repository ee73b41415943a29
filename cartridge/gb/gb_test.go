package gb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func romWithHeader(cartType, ramByte byte, size int) []byte {
	rom := make([]byte, size)
	rom[headerCartridgeType] = cartType
	rom[headerRAMSize] = ramByte
	return rom
}

func TestUnsupportedMapperByteErrors(t *testing.T) {
	rom := romWithHeader(0x20, 0x00, 0x8000)
	_, err := New(rom, nil)
	assert.Error(t, err)
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestInvalidSRAMByteErrors(t *testing.T) {
	rom := romWithHeader(0x01, 0x09, 0x8000)
	_, err := New(rom, nil)
	assert.Error(t, err)
}

func TestMBC1BankSwitchReadsCorrectROMBank(t *testing.T) {
	rom := romWithHeader(0x01, 0x00, 128*1024)
	for i := range rom {
		rom[i] = byte(i)
	}
	rom[headerCartridgeType] = 0x01
	rom[headerRAMSize] = 0x00
	c, err := New(rom, nil)
	assert.NoError(t, err)

	c.Write(0x2000, 0x05) // select ROM bank 5
	got := c.Read(0x4100)
	want := c.rom[5<<14|0x0100]
	assert.Equal(t, want, got)
}

func TestMBC1BankZeroTranslatesToOne(t *testing.T) {
	rom := romWithHeader(0x01, 0x00, 128*1024)
	c, err := New(rom, nil)
	assert.NoError(t, err)
	c.Write(0x2000, 0x00)
	assert.EqualValues(t, 1, c.effectiveROMBank())
}

func TestMBC3RAMPersistsAcrossRTCSelect(t *testing.T) {
	rom := romWithHeader(0x10, 0x02, 0x8000) // MBC3+TIMER+RAM+BATTERY, 8KB RAM
	c, err := New(rom, nil)
	assert.NoError(t, err)

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0x4000, 0x00) // select RAM bank 0
	c.Write(0xA100, 0x7E)
	assert.True(t, c.RAMDirty())

	c.Write(0x4000, 0x08) // select RTC seconds register
	c.Write(0xA000, 30)
	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01) // latch
	assert.Equal(t, byte(30), c.readRTC())

	c.Write(0x4000, 0x00)
	assert.Equal(t, byte(0x7E), c.Read(0xA100))
}

func TestMBC2RAMIsNibbleWide(t *testing.T) {
	rom := romWithHeader(0x05, 0x00, 0x8000)
	c, err := New(rom, nil)
	assert.NoError(t, err)

	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0xF3)
	assert.Equal(t, byte(0xF3), c.Read(0xA000)&0x0F|0xF0)
}

func TestMBC5WideROMBankSelect(t *testing.T) {
	rom := romWithHeader(0x19, 0x00, 1024*1024)
	for i := range rom {
		rom[i] = byte(i)
	}
	c, err := New(rom, nil)
	assert.NoError(t, err)

	c.Write(0x2000, 0xFF)
	c.Write(0x3000, 0x01) // high bit of the 9-bit bank number
	assert.EqualValues(t, 0x1FF, c.effectiveROMBank())
}
