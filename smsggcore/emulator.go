package smsggcore

import (
	"corecade/cartridge/sms"
	"corecade/frontend"
	"corecade/z80"
)

// Emulator is the Sega Master System / Game Gear façade: it owns the Z80
// core, the composite Bus, and the cartridge, and exposes the single Tick
// entry point the host drives once per CPU instruction.
type Emulator struct {
	cpu *z80.CPU
	bus *Bus
	cart *sms.Cartridge

	config Config

	frameCount uint64
}

// New constructs an Emulator from ROM bytes, an optional BIOS image, and
// any previously persisted cartridge RAM.
func New(rom []byte, biosROM []byte, cfg Config, sw frontend.SaveWriter) (*Emulator, error) {
	initialRAM, _ := sw.LoadBytes("sav")
	cart := sms.New(rom, initialRAM)

	mem := NewMemory(cart, biosROM)
	bus := NewBus(mem, cfg.GameGear)
	bus.VDP.SetSpriteLimitRemoved(cfg.RemoveSpriteLimit)

	return &Emulator{
		cpu:    z80.New(),
		bus:    bus,
		cart:   cart,
		config: cfg,
	}, nil
}

// HardReset reinitializes the CPU and every peripheral without reloading
// the cartridge or discarding its RAM; it never fails.
func (e *Emulator) HardReset() {
	mem := e.bus.Mem
	biosROM := mem.biosROM
	mem2 := NewMemory(e.cart, biosROM)
	e.bus = NewBus(mem2, e.config.GameGear)
	e.bus.VDP.SetSpriteLimitRemoved(e.config.RemoveSpriteLimit)
	e.cpu = z80.New()
	e.frameCount = 0
}

func (e *Emulator) ReloadConfig(cfg Config) {
	e.config = cfg
	e.bus.VDP.SetSpriteLimitRemoved(cfg.RemoveSpriteLimit)
}

func (e *Emulator) SetInputs(portA, portB Inputs) {
	e.bus.Input.PortA = portA
	e.bus.Input.PortB = portB
}

// CPU and Bus expose the engine's internals for attaching debugger.Run;
// normal playback only ever calls Tick.
func (e *Emulator) CPU() *z80.CPU { return e.cpu }
func (e *Emulator) Bus() *Bus     { return e.bus }

// Tick executes exactly one Z80 instruction, drains queued PSG audio, and
// on the VDP's frame-complete boundary renders the frame and
// opportunistically persists battery-backed cartridge RAM. This mirrors
// the tick ordering used throughout this module's sibling cores: step the
// CPU, drain audio, then render/persist on frame completion.
func (e *Emulator) Tick(r frontend.Renderer, a frontend.AudioOutput, sw frontend.SaveWriter) (frontend.TickEffect, error) {
	e.cpu.ExecuteInstruction(e.bus, e.bus)

	if samples := e.bus.PSG.DrainSamples(); len(samples) > 0 {
		out := make([]frontend.Sample, len(samples))
		for i, s := range samples {
			out[i] = frontend.Sample{Left: s, Right: s}
		}
		if err := a.PushSamples(out); err != nil {
			return frontend.NoEffect, &frontend.TickError{Stage: frontend.StageAudio, Err: err}
		}
	}

	if !e.bus.VDP.FrameComplete() {
		return frontend.NoEffect, nil
	}
	e.bus.VDP.ClearFrameComplete()
	e.frameCount++

	pixels := e.framebufferToRGBA()
	size := frontend.FrameSize{Width: 256, Height: 192}
	if err := r.RenderFrame(pixels, size, frontend.Stretched); err != nil {
		return frontend.NoEffect, &frontend.TickError{Stage: frontend.StageRender, Err: err}
	}

	if e.frameCount%60 == 30 && e.cart.RAMDirty() {
		if err := e.cart.PersistRAM(sw); err != nil {
			return frontend.FrameRendered, &frontend.TickError{Stage: frontend.StageSaveWrite, Err: err}
		}
		e.cart.ClearRAMDirty()
	}

	return frontend.FrameRendered, nil
}

func (e *Emulator) framebufferToRGBA() []byte {
	fb := e.bus.VDP.FrameBuffer()
	pixels := make([]byte, 0, 256*192*4)
	for y := 0; y < 192; y++ {
		for x := 0; x < 256; x++ {
			r, g, b := e.bus.VDP.Palette(fb[y][x])
			pixels = append(pixels, r, g, b, 0xFF)
		}
	}
	return pixels
}
