package m68k

import "fmt"

// ea is a resolved effective address: either a register (addr==false) or
// a memory location, ready for Read/Write/WriteBack via the CPU's size-
// aware helpers. Caching the resolution keeps read-modify-write
// instructions (e.g. ADD to memory) from resolving -(An)/(An)+ twice,
// which would double-apply the side effect.
type ea struct {
	isReg  bool
	regIsA bool
	reg    int
	addr   uint32

	isImm bool
	imm   uint32
}

// resolveEA decodes a standard 6-bit mode/register field. Modes 6
// ((An,Xn,d8)) and 7/2-3 (PC-relative) are not implemented, matching the
// representative instruction subset this engine targets; instructions
// using them decode successfully but panic with an illegal-addressing
// message if actually executed with one.
func (c *CPU) resolveEA(bus Bus, mode, reg int, size Size) ea {
	switch mode {
	case 0:
		return ea{isReg: true, regIsA: false, reg: reg}
	case 1:
		return ea{isReg: true, regIsA: true, reg: reg}
	case 2:
		return ea{addr: c.Reg.A[reg]}
	case 3:
		addr := c.Reg.A[reg]
		inc := uint32(size)
		if reg == 7 && size == Byte {
			inc = 2 // A7 always moves in word steps to keep the stack aligned
		}
		c.Reg.A[reg] += inc
		return ea{addr: addr}
	case 4:
		dec := uint32(size)
		if reg == 7 && size == Byte {
			dec = 2
		}
		c.Reg.A[reg] -= dec
		return ea{addr: c.Reg.A[reg]}
	case 5:
		disp := int16(c.fetchExtensionWord(bus))
		return ea{addr: uint32(int32(c.Reg.A[reg]) + int32(disp))}
	case 7:
		switch reg {
		case 0:
			return ea{addr: uint32(int16(c.fetchExtensionWord(bus)))}
		case 1:
			return ea{addr: c.fetchExtensionLong(bus)}
		case 4:
			if size == Long {
				return ea{isImm: true, imm: c.fetchExtensionLong(bus)}
			}
			// byte and word immediates both occupy a full extension word
			return ea{isImm: true, imm: uint32(c.fetchExtensionWord(bus))}
		}
	}
	panic(fmt.Sprintf("m68k: unimplemented addressing mode %d/%d", mode, reg))
}

func (c *CPU) readEA(bus Bus, e ea, size Size) uint32 {
	if e.isImm {
		return maskSize(e.imm, size)
	}
	if e.isReg {
		if e.regIsA {
			return maskSize(c.Reg.A[e.reg], size)
		}
		return maskSize(c.Reg.D[e.reg], size)
	}
	c.checkAlignment(e.addr, size, false)
	return bus.Read(size, e.addr)
}

func (c *CPU) writeEA(bus Bus, e ea, size Size, value uint32) {
	if e.isImm {
		panic("m68k: cannot write to an immediate operand")
	}
	if e.isReg {
		if e.regIsA {
			if size == Word {
				// address-register word writes sign-extend to 32 bits
				c.Reg.A[e.reg] = uint32(int32(int16(value)))
			} else {
				c.Reg.A[e.reg] = setSize(c.Reg.A[e.reg], size, value)
			}
			return
		}
		c.Reg.D[e.reg] = setSize(c.Reg.D[e.reg], size, value)
		return
	}
	c.checkAlignment(e.addr, size, true)
	bus.Write(size, e.addr, value)
}

func (c *CPU) checkAlignment(addr uint32, size Size, write bool) {
	if size != Byte && addr&1 != 0 {
		c.raiseAddressError(addr, size, write, c.functionCode())
	}
}

func (c *CPU) functionCode() FunctionCode {
	if c.Reg.supervisor() {
		return FCSupervisorData
	}
	return FCUserData
}

func maskSize(v uint32, size Size) uint32 {
	switch size {
	case Byte:
		return v & 0xFF
	case Word:
		return v & 0xFFFF
	default:
		return v
	}
}

func setSize(old uint32, size Size, value uint32) uint32 {
	switch size {
	case Byte:
		return old&^0xFF | value&0xFF
	case Word:
		return old&^0xFFFF | value&0xFFFF
	default:
		return value
	}
}
