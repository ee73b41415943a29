package gbcore

import (
	"corecade/cartridge/gb"
	"corecade/frontend"
	"corecade/sm83"
)

// Emulator is the Game Boy / Game Boy Color façade: it owns the SM83 core,
// the composite Bus, and the cartridge, and exposes the single Tick entry
// point the host drives once per CPU instruction.
type Emulator struct {
	cpu *sm83.CPU
	bus *Bus

	config  Config
	bootROM []byte

	frameCount uint64
}

// New constructs an Emulator from ROM bytes and any previously persisted
// cartridge RAM/RTC state, loaded via sw.
func New(rom []byte, bootROM []byte, cfg Config, sw frontend.SaveWriter) (*Emulator, error) {
	initialRAM, _ := sw.LoadBytes("sav")
	cart, err := gb.New(rom, initialRAM)
	if err != nil {
		return nil, err
	}
	if rtc, ok := sw.LoadBytes("rtc"); ok {
		cart.LoadRTC(rtc)
	}

	gbcMode := !cfg.ForceDmgMode
	cpu := sm83.New()
	if bootROM != nil {
		// The boot ROM starts execution at 0 with all registers clear; it
		// sets up the post-boot state itself before jumping to 0x0100.
		cpu.Reg.SetAF(0)
		cpu.Reg.SetBC(0)
		cpu.Reg.SetDE(0)
		cpu.Reg.SetHL(0)
		cpu.Reg.SP = 0
		cpu.Reg.PC = 0
	}
	e := &Emulator{
		cpu:     cpu,
		bus:     NewBus(cart, NewMemory(bootROM), gbcMode),
		config:  cfg,
		bootROM: bootROM,
	}
	return e, nil
}

// HardReset reinitializes the CPU and every peripheral without reloading the
// cartridge or discarding its RAM; it never fails.
func (e *Emulator) HardReset() {
	cart := e.bus.Cart
	gbcMode := !e.config.ForceDmgMode
	cpu := sm83.New()
	if e.bootROM != nil {
		cpu.Reg.SetAF(0)
		cpu.Reg.SetBC(0)
		cpu.Reg.SetDE(0)
		cpu.Reg.SetHL(0)
		cpu.Reg.SP = 0
		cpu.Reg.PC = 0
	}
	e.cpu = cpu
	e.bus = NewBus(cart, NewMemory(e.bootROM), gbcMode)
	e.frameCount = 0
}

// ReloadConfig stores cfg: AspectRatio applies from the next rendered frame,
// and ForceDmgMode only takes effect on the next HardReset (see Config).
func (e *Emulator) ReloadConfig(cfg Config) { e.config = cfg }

// SetInputs latches the current button state, read by the next Tick.
func (e *Emulator) SetInputs(in Inputs) { e.bus.Input.SetInputs(in) }

// CPU and Bus expose the engine's internals for attaching debugger.Run;
// normal playback only ever calls Tick.
func (e *Emulator) CPU() *sm83.CPU { return e.cpu }
func (e *Emulator) Bus() *Bus      { return e.bus }

// Tick executes exactly one SM83 instruction (committing an armed KEY1 speed
// switch when that instruction was STOP), drains queued audio, and on
// the PPU's frame-complete boundary renders the frame, advances the
// cartridge RTC once every 60 frames, and persists dirty cartridge RAM once
// every 60 frames.
// This mirrors the Rust original's tick() ordering: latch inputs (already
// done by the caller via SetInputs) -> step the CPU (the bus checks for a
// joypad interrupt on every access) -> drain audio -> render/persist on
// frame completion.
func (e *Emulator) Tick(r frontend.Renderer, a frontend.AudioOutput, sw frontend.SaveWriter) (frontend.TickEffect, error) {
	e.cpu.ExecuteInstruction(e.bus, e.bus)
	if e.cpu.Stopped {
		e.cpu.Stopped = false
		e.bus.Speed.Commit() // STOP performs a speed switch armed through KEY1
	}

	if samples := e.bus.APU.DrainSamples(); len(samples) > 0 {
		out := make([]frontend.Sample, len(samples))
		for i, s := range samples {
			out[i] = frontend.Sample{Left: s.Left, Right: s.Right}
		}
		if err := a.PushSamples(out); err != nil {
			return frontend.NoEffect, &frontend.TickError{Stage: frontend.StageAudio, Err: err}
		}
	}

	if !e.bus.PPU.FrameComplete() {
		return frontend.NoEffect, nil
	}
	e.bus.PPU.ClearFrameComplete()
	e.frameCount++

	pixels := e.framebufferToRGBA()
	size := frontend.FrameSize{Width: screenWidth, Height: screenHeight}
	aspect := frontend.Stretched
	if e.config.AspectRatio == AspectRatioSquarePixel {
		aspect = frontend.PixelAspectRatio{Ratio: 1.0}
	}
	if err := r.RenderFrame(pixels, size, aspect); err != nil {
		return frontend.NoEffect, &frontend.TickError{Stage: frontend.StageRender, Err: err}
	}

	if e.frameCount%60 == 0 {
		e.bus.Cart.TickRTC() // one RTC second per 60 frames
	}

	if e.frameCount%60 == 30 && e.bus.Cart.RAMDirty() {
		if err := e.bus.Cart.PersistRAM(sw); err != nil {
			return frontend.FrameRendered, &frontend.TickError{Stage: frontend.StageSaveWrite, Err: err}
		}
		e.bus.Cart.ClearRAMDirty()
	}

	return frontend.FrameRendered, nil
}

var dmgShadeToRGB = [4]frontend.Color{
	{R: 0x9B, G: 0xBC, B: 0x0F, A: 0xFF},
	{R: 0x8B, G: 0xAC, B: 0x0F, A: 0xFF},
	{R: 0x30, G: 0x62, B: 0x30, A: 0xFF},
	{R: 0x0F, G: 0x38, B: 0x0F, A: 0xFF},
}

func (e *Emulator) framebufferToRGBA() []byte {
	fb := e.bus.PPU.FrameBuffer()
	pixels := make([]byte, 0, screenWidth*screenHeight*4)
	for y := 0; y < screenHeight; y++ {
		for x := 0; x < screenWidth; x++ {
			c := dmgShadeToRGB[fb[y][x]&0x03]
			pixels = append(pixels, c.R, c.G, c.B, c.A)
		}
	}
	return pixels
}
