package z80

// readReg8/writeReg8 decode the Z80's 3-bit register field exactly like
// the SM83's: 0=B,1=C,2=D,3=E,4=H,5=L,6=(HL),7=A. HALT (0x76) sits in this
// block's (HL),(HL) slot; the LD table skips that slot and HALT has its own
// table entry.
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
	panic("z80: invalid register index")
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
		panic("z80: invalid register index")
	}
}

var regName = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
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
	panic("z80: invalid wide register index")
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
