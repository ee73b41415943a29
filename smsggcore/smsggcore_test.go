package smsggcore

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"

	"corecade/cartridge/sms"
	"corecade/frontend"
)

type fakeSaveWriter struct{ data map[string][]byte }

func newFakeSaveWriter() *fakeSaveWriter { return &fakeSaveWriter{data: map[string][]byte{}} }

func (f *fakeSaveWriter) LoadBytes(key string) ([]byte, bool) { b, ok := f.data[key]; return b, ok }
func (f *fakeSaveWriter) PersistBytes(key string, data []byte) error {
	f.data[key] = append([]byte{}, data...)
	return nil
}

type noopRenderer struct{}

func (noopRenderer) RenderFrame(pixels []byte, size frontend.FrameSize, aspect frontend.PixelAspectRatio) error {
	return nil
}

type noopAudio struct{}

func (noopAudio) PushSamples(samples []frontend.Sample) error { return nil }

func TestMemoryNoBIOSPresetsRAMByte0(t *testing.T) {
	cart := sms.New(make([]byte, 32*1024), nil)
	mem := NewMemory(cart, nil)
	assert.Equal(t, byte(0xAB), mem.Read(0xC000))
}

func TestMemoryBiosAndCartridgeANDedWhenBothEnabled(t *testing.T) {
	rom := make([]byte, 32*1024)
	rom[0] = 0xF0
	cart := sms.New(rom, nil)
	bios := make([]byte, 1024)
	bios[0] = 0x0F
	mem := NewMemory(cart, bios)
	mem.Control.CartridgeEnabled = true
	mem.Control.BiosEnabled = true
	assert.Equal(t, byte(0x00), mem.Read(0x0000))
}

func TestVDPControlPortLatchesTwoBytesThenRegisterWrite(t *testing.T) {
	v := NewVDP(false)
	v.WriteControl(0x00) // low byte of value (register data)
	v.WriteControl(0x81) // code=2 (register write), register 1
	assert.Equal(t, byte(0x00), v.regs[1], "unexpected VDP state:\n%s", spew.Sdump(v))
}

func TestVDPDataWriteReadRoundTrip(t *testing.T) {
	v := NewVDP(false)
	v.WriteControl(0x00)
	v.WriteControl(0x40) // code=1 (VRAM write setup), addr=0
	v.WriteData(0x55)
	v.WriteControl(0x00)
	v.WriteControl(0x00) // code=0 (VRAM read setup), addr=0
	assert.Equal(t, byte(0x55), v.ReadData(), "unexpected VDP state:\n%s", spew.Sdump(v))
}

func TestPSGToneProducesNonZeroPeriod(t *testing.T) {
	p := NewPSG()
	p.WriteData(0x80 | 0x00<<5 | 0x0A) // latch channel 0 tone, low nibble
	p.WriteData(0x00)                  // high 6 bits
	assert.Equal(t, uint16(0x0A), p.tone[0].period, "unexpected PSG state:\n%s", spew.Sdump(p))
}

func TestInputPortDCReflectsPressedButtons(t *testing.T) {
	in := NewInputState(false)
	in.PortA.Up = true
	b := in.ReadPortDC()
	assert.Equal(t, byte(0), b&0x01) // pressed = 0 (active low)
	assert.NotEqual(t, byte(0), b&0x02) // down not pressed = 1
}

func TestEmulatorTickRunsWithoutPanicking(t *testing.T) {
	rom := make([]byte, 32*1024)
	sw := newFakeSaveWriter()
	e, err := New(rom, nil, Config{}, sw)
	assert.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := e.Tick(noopRenderer{}, noopAudio{}, sw)
		assert.NoError(t, err)
	}
}
