package m68k

// instrEntry pairs a mask/value bit pattern with the function that
// decodes and executes any opcode matching it. Unlike sm83/z80, the
// 68000's opcode space doesn't decompose into a flat byte-indexed table,
// so decode() walks an ordered list of patterns instead, the same
// technique real 68000 decoders use (most specific pattern first).
type instrEntry struct {
	mask, value uint16
	exec        func(c *CPU, bus Bus, opcode uint16) int
}

var instrTable []instrEntry

func init() {
	instrTable = []instrEntry{
		{0xFFFF, 0x4E71, execNop},
		{0xFFFF, 0x4E70, execReset},
		{0xFFFF, 0x4E72, execStop},
		{0xFFFF, 0x4E73, execRte},
		{0xFFFF, 0x4E75, execRts},
		{0xFFF0, 0x4E40, execTrap},
		{0xFFF8, 0x4E50, execLink},
		{0xFFF8, 0x4E58, execUnlk},
		{0xFFC0, 0x4E80, execJsr},
		{0xFFC0, 0x4EC0, execJmp},

		{0xF1C0, 0x41C0, execLea}, // 0100 rrr 111 mmmmmm

		{0xFFC0, 0x40C0, execMoveFromSR},
		{0xFFC0, 0x46C0, execMoveToSR}, // before NOT, whose 0x4600 pattern also matches it

		{0xFF00, 0x4A00, execTst},
		{0xFF00, 0x4200, execClr},
		{0xFF00, 0x4400, execNeg},
		{0xFF00, 0x4600, execNot},

		{0xF1F8, 0x4880, execExtWord},
		{0xF1F8, 0x48C0, execExtLong},
		{0xF1F8, 0x4840, execSwap},

		{0xF000, 0x7000, execMoveq},

		{0xF000, 0x6000, execBcc}, // covers BRA/BSR/Bcc (top nibble 0x6)

		// MOVE/MOVEA: top nibble 1/2/3 select byte/long/word respectively;
		// top nibble 0 is the separate bit-manipulation/immediate group
		// (ORI/ANDI/BTST/MOVEP/...), not implemented here.
		{0xF000, 0x1000, execMove},
		{0xF000, 0x2000, execMove},
		{0xF000, 0x3000, execMove},

		{0xF1C0, 0x80C0, execDivu}, // checked before OR: both share top nibble 0x8
		{0xF1C0, 0x81C0, execDivs},
		{0xF1C0, 0x4180, execChk},

		{0xF000, 0xD000, execAdd},
		{0xF000, 0x9000, execSub},
		{0xF000, 0xB000, execCmpOrEor},
		{0xF000, 0xC000, execAnd},
		{0xF000, 0x8000, execOr},
	}
}

func decode(opcode uint16) (*instrEntry, bool) {
	for i := range instrTable {
		e := &instrTable[i]
		if opcode&e.mask == e.value {
			return e, true
		}
	}
	return nil, false
}

func regField(opcode uint16, shift uint) int { return int(opcode>>shift) & 0x7 }
func modeField(opcode uint16, shift uint) int { return int(opcode>>shift) & 0x7 }

func sizeField(opcode uint16) Size {
	switch (opcode >> 6) & 0x3 {
	case 0:
		return Byte
	case 1:
		return Word
	default:
		return Long
	}
}

func moveSizeField(opcode uint16) Size {
	switch (opcode >> 12) & 0x3 {
	case 1:
		return Byte
	case 3:
		return Word
	default:
		return Long
	}
}

func execNop(c *CPU, bus Bus, opcode uint16) int { return 4 }

func execReset(c *CPU, bus Bus, opcode uint16) int {
	if !c.Reg.supervisor() {
		return c.dispatchException(bus, vecPrivilegeViolation, c.prevPC)
	}
	return 132
}

func execStop(c *CPU, bus Bus, opcode uint16) int {
	if !c.Reg.supervisor() {
		return c.dispatchException(bus, vecPrivilegeViolation, c.prevPC)
	}
	c.Reg.SR = c.fetchExtensionWord(bus)
	c.Stopped = true
	return 4
}

func execRte(c *CPU, bus Bus, opcode uint16) int {
	if !c.Reg.supervisor() {
		return c.dispatchException(bus, vecPrivilegeViolation, c.prevPC)
	}
	sr := c.popWord(bus)
	pc := c.popLong(bus)
	wasSupervisor := c.Reg.supervisor()
	c.Reg.SR = sr
	if wasSupervisor && !c.Reg.supervisor() {
		c.Reg.SSP = c.Reg.A[7]
		c.Reg.A[7] = c.Reg.USP
	}
	c.Reg.PC = pc
	c.fillPrefetch(bus)
	return 20
}

func execRts(c *CPU, bus Bus, opcode uint16) int {
	c.Reg.PC = c.popLong(bus)
	c.fillPrefetch(bus)
	return 16
}

func execTrap(c *CPU, bus Bus, opcode uint16) int {
	vector := vecTrap0 + int(opcode&0xF)
	return c.dispatchException(bus, vector, c.Reg.PC)
}

func execLink(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 0)
	disp := int16(c.fetchExtensionWord(bus))
	c.pushLong(bus, c.Reg.A[reg])
	c.Reg.A[reg] = c.Reg.A[7]
	c.Reg.A[7] = uint32(int32(c.Reg.A[7]) + int32(disp))
	return 16
}

func execUnlk(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 0)
	c.Reg.A[7] = c.Reg.A[reg]
	c.Reg.A[reg] = c.popLong(bus)
	return 12
}

func execJsr(c *CPU, bus Bus, opcode uint16) int {
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, Long)
	target := eaJumpTarget(c, e)
	c.pushLong(bus, c.Reg.PC)
	c.Reg.PC = target
	c.fillPrefetch(bus)
	return 18
}

func execJmp(c *CPU, bus Bus, opcode uint16) int {
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, Long)
	c.Reg.PC = eaJumpTarget(c, e)
	c.fillPrefetch(bus)
	return 8
}

// eaJumpTarget returns the control-transfer address an (already resolved)
// effective address names, which for JMP/JSR/LEA is the address itself
// rather than the value stored there.
func eaJumpTarget(c *CPU, e ea) uint32 {
	if e.isReg || e.isImm {
		panic("m68k: register direct / immediate is not a valid control-transfer target")
	}
	return e.addr
}

func execLea(c *CPU, bus Bus, opcode uint16) int {
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	areg := regField(opcode, 9)
	e := c.resolveEA(bus, mode, reg, Long)
	c.Reg.A[areg] = eaJumpTarget(c, e)
	return 4
}

func execTst(c *CPU, bus Bus, opcode uint16) int {
	size := sizeField(opcode)
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, size)
	v := c.readEA(bus, e, size)
	c.setLogicalFlags(v, size)
	return 4
}

func execClr(c *CPU, bus Bus, opcode uint16) int {
	size := sizeField(opcode)
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, size)
	c.writeEA(bus, e, size, 0)
	c.Reg.SR = c.Reg.SR&^(flagN|flagV|flagC) | flagZ
	return 4
}

func execNeg(c *CPU, bus Bus, opcode uint16) int {
	size := sizeField(opcode)
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, size)
	v := c.readEA(bus, e, size)
	result := c.sub32(0, v, size, false)
	c.writeEA(bus, e, size, result)
	return 4
}

func execNot(c *CPU, bus Bus, opcode uint16) int {
	size := sizeField(opcode)
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, size)
	v := ^c.readEA(bus, e, size)
	c.writeEA(bus, e, size, v)
	c.setLogicalFlags(v, size)
	return 4
}

func execExtWord(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 0)
	v := int8(c.Reg.D[reg])
	c.Reg.D[reg] = setSize(c.Reg.D[reg], Word, uint32(int16(v)))
	c.setLogicalFlags(uint32(int16(v))&0xFFFF, Word)
	return 4
}

func execExtLong(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 0)
	v := int16(c.Reg.D[reg])
	c.Reg.D[reg] = uint32(int32(v))
	c.setLogicalFlags(c.Reg.D[reg], Long)
	return 4
}

func execSwap(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 0)
	v := c.Reg.D[reg]
	c.Reg.D[reg] = v<<16 | v>>16
	c.setLogicalFlags(c.Reg.D[reg], Long)
	return 4
}

func execMoveq(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 9)
	v := int32(int8(opcode & 0xFF))
	c.Reg.D[reg] = uint32(v)
	c.setLogicalFlags(uint32(v), Long)
	return 4
}

func execMoveFromSR(c *CPU, bus Bus, opcode uint16) int {
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, Word)
	c.writeEA(bus, e, Word, uint32(c.Reg.SR))
	return 8
}

func execMoveToSR(c *CPU, bus Bus, opcode uint16) int {
	if !c.Reg.supervisor() {
		return c.dispatchException(bus, vecPrivilegeViolation, c.prevPC)
	}
	mode, reg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, reg, Word)
	c.Reg.SR = uint16(c.readEA(bus, e, Word))
	return 12
}

func execMove(c *CPU, bus Bus, opcode uint16) int {
	size := moveSizeField(opcode)
	srcMode, srcReg := modeField(opcode, 3), regField(opcode, 0)
	dstMode, dstReg := modeField(opcode, 6), regField(opcode, 9)

	src := c.resolveEA(bus, srcMode, srcReg, size)
	v := c.readEA(bus, src, size)
	dst := c.resolveEA(bus, dstMode, dstReg, size)
	c.writeEA(bus, dst, size, v)
	if !dst.isReg || !dst.regIsA {
		c.setLogicalFlags(v, size)
	}
	return 8
}

func execBcc(c *CPU, bus Bus, opcode uint16) int {
	cond := (opcode >> 8) & 0xF
	disp := int32(int8(opcode & 0xFF))
	extraCycles := 0
	if disp == 0 {
		disp = int32(int16(c.fetchExtensionWord(bus)))
		extraCycles = 4
	}
	target := uint32(int32(c.Reg.PC) + disp)

	switch cond {
	case 0: // BRA
		c.Reg.PC = target
		c.fillPrefetch(bus)
		return 10 + extraCycles
	case 1: // BSR
		c.pushLong(bus, c.Reg.PC)
		c.Reg.PC = target
		c.fillPrefetch(bus)
		return 18 + extraCycles
	default:
		if c.condTrue(cond) {
			c.Reg.PC = target
			c.fillPrefetch(bus)
			return 10 + extraCycles
		}
		return 8 + extraCycles
	}
}

func (c *CPU) condTrue(cond uint16) bool {
	n, z, v, cc := c.flag(flagN), c.flag(flagZ), c.flag(flagV), c.flag(flagC)
	switch cond {
	case 2:
		return !cc && !z // BHI
	case 3:
		return cc || z // BLS
	case 4:
		return !cc // BCC
	case 5:
		return cc // BCS
	case 6:
		return !z // BNE
	case 7:
		return z // BEQ
	case 8:
		return !v // BVC
	case 9:
		return v // BVS
	case 10:
		return !n // BPL
	case 11:
		return n // BMI
	case 12:
		return n == v // BGE
	case 13:
		return n != v // BLT
	case 14:
		return !z && n == v // BGT
	case 15:
		return z || n != v // BLE
	}
	return false
}

func execAdd(c *CPU, bus Bus, opcode uint16) int {
	return c.aluToFromReg(bus, opcode, func(a, b uint32, size Size) uint32 { return c.add32(a, b, size, false) })
}
func execSub(c *CPU, bus Bus, opcode uint16) int {
	return c.aluToFromReg(bus, opcode, func(a, b uint32, size Size) uint32 { return c.sub32(a, b, size, false) })
}
// execCmpOrEor handles the 0xB000 opcode nibble, shared by CMP (opmode
// 000-010) and EOR (opmode 100-110); CMPA/CMPM (opmode 011/111) are not
// implemented.
func execCmpOrEor(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 9)
	opmode := (opcode >> 6) & 0x7
	size := sizeField(opcode)
	mode, eaReg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, eaReg, size)

	if opmode >= 4 {
		v := c.readEA(bus, e, size)
		r := v ^ c.Reg.D[reg]
		c.writeEA(bus, e, size, r)
		c.setLogicalFlags(r, size)
		return 8
	}
	src := c.readEA(bus, e, size)
	c.sub32(c.Reg.D[reg], src, size, false)
	return 4
}
func execAnd(c *CPU, bus Bus, opcode uint16) int {
	return c.aluToFromReg(bus, opcode, func(a, b uint32, size Size) uint32 {
		r := a & b
		c.setLogicalFlags(r, size)
		return r
	})
}
func execOr(c *CPU, bus Bus, opcode uint16) int {
	return c.aluToFromReg(bus, opcode, func(a, b uint32, size Size) uint32 {
		r := a | b
		c.setLogicalFlags(r, size)
		return r
	})
}
// aluToFromReg implements the common "opmode selects direction" shape
// shared by ADD/SUB/AND/OR: opmode bit 8 clear means <ea> OP Dn -> Dn,
// set means Dn OP <ea> -> <ea>.
func (c *CPU) aluToFromReg(bus Bus, opcode uint16, op func(a, b uint32, size Size) uint32) int {
	reg := regField(opcode, 9)
	size := sizeField(opcode)
	toMemory := opcode&0x0100 != 0
	mode, eaReg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, eaReg, size)
	eaVal := c.readEA(bus, e, size)

	if toMemory {
		result := op(c.Reg.D[reg], eaVal, size)
		c.writeEA(bus, e, size, result)
	} else {
		result := op(eaVal, c.Reg.D[reg], size)
		c.Reg.D[reg] = setSize(c.Reg.D[reg], size, result)
	}
	return 4
}

func execDivu(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 9)
	mode, eaReg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, eaReg, Word)
	divisor := c.readEA(bus, e, Word)
	if divisor == 0 {
		return c.dispatchException(bus, vecDivideByZero, c.Reg.PC)
	}
	dividend := c.Reg.D[reg]
	quotient := dividend / divisor
	remainder := dividend % divisor
	if quotient > 0xFFFF {
		c.setFlag(flagV, true)
		return 140
	}
	c.Reg.D[reg] = remainder<<16 | quotient&0xFFFF
	c.setLogicalFlags(quotient&0xFFFF, Word)
	return 140
}

func execDivs(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 9)
	mode, eaReg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, eaReg, Word)
	divisor := int32(int16(c.readEA(bus, e, Word)))
	if divisor == 0 {
		return c.dispatchException(bus, vecDivideByZero, c.Reg.PC)
	}
	dividend := int32(c.Reg.D[reg])
	quotient := dividend / divisor
	remainder := dividend % divisor
	if quotient > 0x7FFF || quotient < -0x8000 {
		c.setFlag(flagV, true)
		return 158
	}
	c.Reg.D[reg] = uint32(remainder)<<16 | uint32(quotient)&0xFFFF
	c.setLogicalFlags(uint32(quotient)&0xFFFF, Word)
	return 158
}

func execChk(c *CPU, bus Bus, opcode uint16) int {
	reg := regField(opcode, 9)
	mode, eaReg := modeField(opcode, 3), regField(opcode, 0)
	e := c.resolveEA(bus, mode, eaReg, Word)
	bound := int16(c.readEA(bus, e, Word))
	v := int16(c.Reg.D[reg])
	if v < 0 {
		c.setFlag(flagN, true)
		return c.dispatchException(bus, vecCHK, c.Reg.PC)
	}
	if v > bound {
		c.setFlag(flagN, false)
		return c.dispatchException(bus, vecCHK, c.Reg.PC)
	}
	return 10
}

func (c *CPU) setLogicalFlags(v uint32, size Size) {
	masked := maskSize(v, size)
	signBit := uint32(0x80)
	if size == Word {
		signBit = 0x8000
	} else if size == Long {
		signBit = 0x80000000
	}
	c.setFlag(flagN, masked&signBit != 0)
	c.setFlag(flagZ, masked == 0)
	c.setFlag(flagV, false)
	c.setFlag(flagC, false)
}
