package sm83

// The SM83 encodes most 8-bit operands as a 3-bit register index: 0=B, 1=C,
// 2=D, 3=E, 4=H, 5=L, 6=(HL) (a bus access, not a register), 7=A. This table
// drives every LD r,r' / ALU r / INC r / CB-prefixed instruction without
// needing a dedicated opcode entry per register, the same way real SM83
// decoders (and every open-source clone of one) are built.

func readReg8(c *CPU, bus Bus, idx byte) byte {
	switch idx {
	case 0:
		return c.Reg.B
	case 1:
		return c.Reg.C
	case 2:
		return c.Reg.D
	case 3:
		return c.Reg.E
	case 4:
		return c.Reg.H
	case 5:
		return c.Reg.L
	case 6:
		return bus.Read(c.Reg.HL())
	case 7:
		return c.Reg.A
	}
	panic("sm83: invalid register index")
}

func writeReg8(c *CPU, bus Bus, idx byte, v byte) {
	switch idx {
	case 0:
		c.Reg.B = v
	case 1:
		c.Reg.C = v
	case 2:
		c.Reg.D = v
	case 3:
		c.Reg.E = v
	case 4:
		c.Reg.H = v
	case 5:
		c.Reg.L = v
	case 6:
		bus.Write(c.Reg.HL(), v)
	case 7:
		c.Reg.A = v
	default:
		panic("sm83: invalid register index")
	}
}

// regName is used by the debugger to label disassembly and by opcode table
// construction to name generated mnemonics.
var regName = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// wideRegName indexes the four 16-bit pairs selectable by bits 5-4 of many
// opcodes: BC, DE, HL, and either SP (for most instructions) or AF (for
// PUSH/POP).
var wideRegName = [4]string{"BC", "DE", "HL", "SP"}

func readReg16SP(c *CPU, idx byte) uint16 {
	switch idx {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		return c.Reg.HL()
	case 3:
		return c.Reg.SP
	}
	panic("sm83: invalid wide register index")
}

func writeReg16SP(c *CPU, idx byte, v uint16) {
	switch idx {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		c.Reg.SetHL(v)
	case 3:
		c.Reg.SP = v
	}
}

func readReg16AF(c *CPU, idx byte) uint16 {
	if idx == 3 {
		return c.Reg.AF()
	}
	return readReg16SP(c, idx)
}

func writeReg16AF(c *CPU, idx byte, v uint16) {
	if idx == 3 {
		c.Reg.SetAF(v)
		return
	}
	writeReg16SP(c, idx, v)
}
