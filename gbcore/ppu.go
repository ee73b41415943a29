package gbcore

const (
	screenWidth  = 160
	screenHeight = 144
	dotsPerLine  = 456
	linesPerFrame = 154

	modeOAMDots  = 80
	modeDrawDots = 172 // representative fixed cost; real hardware varies 172-289 with sprite/window fetch stalls
)

// ppuMode is the PPU's four-phase per-scanline state machine.
type ppuMode byte

const (
	modeHBlank ppuMode = 0
	modeVBlank ppuMode = 1
	modeOAM    ppuMode = 2
	modeDraw   ppuMode = 3
)

// PPU is a dot-stepped picture generator producing one native-color-code
// framebuffer per frame and raising VBlank/STAT interrupts at the
// documented mode boundaries. Sprite and window layers are not composited
// (a documented simplification, see DESIGN.md); background rendering is
// real tile/map-driven pixel data.
type PPU struct {
	vram [2][0x2000]byte // bank 0 (DMG+GBC), bank 1 (GBC only)
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc byte
	bgp, obp0, obp1               byte
	wy, wx                        byte
	vbk                           byte // VRAM bank select (GBC)

	dot            int
	mode           ppuMode
	frameComplete  bool
	frameBuffer    [screenHeight][screenWidth]byte
}

func NewPPU() *PPU {
	return &PPU{lcdc: 0x91, bgp: 0xFC, mode: modeOAM}
}

func (p *PPU) enabled() bool { return p.lcdc&0x80 != 0 }

func (p *PPU) vramAddr(addr uint16) byte { return p.vram[p.vbk][addr&0x1FFF] }

func (p *PPU) ReadVRAM(addr uint16) byte    { return p.vramAddr(addr) }
func (p *PPU) WriteVRAM(addr uint16, v byte) { p.vram[p.vbk][addr&0x1FFF] = v }
func (p *PPU) ReadVBK() byte                { return p.vbk | 0xFE }
func (p *PPU) WriteVBK(v byte)              { p.vbk = v & 0x01 }

func (p *PPU) ReadOAM(addr uint16) byte    { return p.oam[addr&0xFF] }
func (p *PPU) WriteOAM(addr uint16, v byte) { p.oam[addr&0xFF] = v }

func (p *PPU) ReadLCDC() byte { return p.lcdc }
func (p *PPU) WriteLCDC(v byte) {
	wasEnabled := p.enabled()
	p.lcdc = v
	if wasEnabled && !p.enabled() {
		p.ly = 0
		p.dot = 0
		p.mode = modeHBlank
	}
}

func (p *PPU) ReadSTAT() byte {
	b := p.stat&0xF8 | byte(p.mode)
	if p.ly == p.lyc {
		b |= 1 << 2
	}
	return b | 0x80
}
func (p *PPU) WriteSTAT(v byte) { p.stat = v & 0x78 }

func (p *PPU) ReadSCY() byte    { return p.scy }
func (p *PPU) WriteSCY(v byte)  { p.scy = v }
func (p *PPU) ReadSCX() byte    { return p.scx }
func (p *PPU) WriteSCX(v byte)  { p.scx = v }
func (p *PPU) ReadLY() byte     { return p.ly }
func (p *PPU) ReadLYC() byte    { return p.lyc }
func (p *PPU) WriteLYC(v byte)  { p.lyc = v }
func (p *PPU) ReadBGP() byte    { return p.bgp }
func (p *PPU) WriteBGP(v byte)  { p.bgp = v }
func (p *PPU) ReadOBP0() byte   { return p.obp0 }
func (p *PPU) WriteOBP0(v byte) { p.obp0 = v }
func (p *PPU) ReadOBP1() byte   { return p.obp1 }
func (p *PPU) WriteOBP1(v byte) { p.obp1 = v }
func (p *PPU) ReadWY() byte     { return p.wy }
func (p *PPU) WriteWY(v byte)   { p.wy = v }
func (p *PPU) ReadWX() byte     { return p.wx }
func (p *PPU) WriteWX(v byte)   { p.wx = v }

func (p *PPU) FrameComplete() bool { return p.frameComplete }
func (p *PPU) ClearFrameComplete() { p.frameComplete = false }
func (p *PPU) FrameBuffer() *[screenHeight][screenWidth]byte { return &p.frameBuffer }

// Step advances the PPU by the given number of T-cycles (already charged
// by the CPU's bus accesses), transitioning modes at the documented dot
// boundaries and raising interrupts on entry to each new mode.
func (p *PPU) Step(cycles int, irq *Interrupts) {
	if !p.enabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		p.dot++
		switch p.mode {
		case modeOAM:
			if p.dot >= modeOAMDots {
				p.dot = 0
				p.mode = modeDraw
			}
		case modeDraw:
			if p.dot >= modeDrawDots {
				p.dot = 0
				p.mode = modeHBlank
				p.renderScanline()
				if p.stat&(1<<3) != 0 {
					irq.Request(flagStat)
				}
			}
		case modeHBlank:
			if p.dot >= dotsPerLine-modeOAMDots-modeDrawDots {
				p.dot = 0
				p.ly++
				p.checkLYC(irq)
				if p.ly == screenHeight {
					p.mode = modeVBlank
					irq.Request(flagVBlank)
					if p.stat&(1<<4) != 0 {
						irq.Request(flagStat)
					}
					p.frameComplete = true
				} else {
					p.mode = modeOAM
					if p.stat&(1<<5) != 0 {
						irq.Request(flagStat)
					}
				}
			}
		case modeVBlank:
			if p.dot >= dotsPerLine {
				p.dot = 0
				p.ly++
				p.checkLYC(irq)
				if p.ly >= linesPerFrame {
					p.ly = 0
					p.mode = modeOAM
					if p.stat&(1<<5) != 0 {
						irq.Request(flagStat)
					}
				}
			}
		}
	}
}

func (p *PPU) checkLYC(irq *Interrupts) {
	if p.ly == p.lyc && p.stat&(1<<6) != 0 {
		irq.Request(flagStat)
	}
}

// renderScanline draws the background layer for the current LY, sampling
// the tile map and tile data the way real hardware's background fetcher
// does. Window and sprite layers are left uncomposited.
func (p *PPU) renderScanline() {
	if p.lcdc&0x01 == 0 {
		for x := 0; x < screenWidth; x++ {
			p.frameBuffer[p.ly][x] = 0
		}
		return
	}

	mapBase := uint16(0x1800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x1C00
	}
	signedTiles := p.lcdc&0x10 == 0

	y := int(p.ly) + int(p.scy)
	tileRow := (y / 8) % 32
	fineY := y % 8

	for x := 0; x < screenWidth; x++ {
		sx := (x + int(p.scx)) & 0xFF
		tileCol := sx / 8
		fineX := sx % 8

		tileIdx := p.vram[0][mapBase+uint16(tileRow*32+tileCol)]

		var tileAddr uint16
		if signedTiles {
			tileAddr = uint16(0x1000 + int(int8(tileIdx))*16)
		} else {
			tileAddr = uint16(tileIdx) * 16
		}
		lo := p.vram[0][tileAddr+uint16(fineY*2)]
		hi := p.vram[0][tileAddr+uint16(fineY*2)+1]

		bit := 7 - fineX
		colorIdx := (hi>>bit&1)<<1 | (lo >> bit & 1)
		shade := (p.bgp >> (colorIdx * 2)) & 0x03
		p.frameBuffer[p.ly][x] = shade
	}
}
