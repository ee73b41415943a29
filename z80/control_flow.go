package z80

func condition(c *CPU, idx byte) bool {
	switch idx {
	case 0:
		return !c.Reg.F.Zero
	case 1:
		return c.Reg.F.Zero
	case 2:
		return !c.Reg.F.Carry
	case 3:
		return c.Reg.F.Carry
	}
	panic("z80: invalid condition index")
}

var condName = [4]string{"NZ", "Z", "NC", "C"}

func buildControlFlowOpcodes() {
	opcodes[0xC3] = &opcode{name: "JP nn", exec: func(c *CPU, bus Bus) { c.Reg.PC = c.fetch16(bus) }}
	opcodes[0xE9] = &opcode{name: "JP (HL)", exec: func(c *CPU, bus Bus) { c.Reg.PC = c.Reg.HL() }}

	for cc := byte(0); cc < 4; cc++ {
		cond := cc
		opcodes[0xC2+cc*8] = &opcode{name: "JP " + condName[cond] + ",nn", exec: func(c *CPU, bus Bus) {
			addr := c.fetch16(bus)
			if condition(c, cond) {
				c.Reg.PC = addr
			}
		}}
		opcodes[0xC4+cc*8] = &opcode{name: "CALL " + condName[cond] + ",nn", exec: func(c *CPU, bus Bus) {
			addr := c.fetch16(bus)
			if condition(c, cond) {
				bus.InternalCycle()
				c.pushPC(bus)
				c.Reg.PC = addr
			}
		}}
		opcodes[0xC0+cc*8] = &opcode{name: "RET " + condName[cond], exec: func(c *CPU, bus Bus) {
			bus.InternalCycle()
			if condition(c, cond) {
				c.Reg.PC = c.popPC(bus)
			}
		}}
	}

	opcodes[0xCD] = &opcode{name: "CALL nn", exec: func(c *CPU, bus Bus) {
		addr := c.fetch16(bus)
		bus.InternalCycle()
		c.pushPC(bus)
		c.Reg.PC = addr
	}}
	opcodes[0xC9] = &opcode{name: "RET", exec: func(c *CPU, bus Bus) { c.Reg.PC = c.popPC(bus) }}

	opcodes[0x18] = &opcode{name: "JR e", exec: func(c *CPU, bus Bus) {
		e := int8(bus.Read(c.Reg.PC))
		c.Reg.PC++
		bus.InternalCycle()
		c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
	}}
	for cc := byte(0); cc < 4; cc++ {
		cond := cc
		opcodes[0x20+cc*8] = &opcode{name: "JR " + condName[cond] + ",e", exec: func(c *CPU, bus Bus) {
			e := int8(bus.Read(c.Reg.PC))
			c.Reg.PC++
			if condition(c, cond) {
				bus.InternalCycle()
				c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
			}
		}}
	}

	opcodes[0x10] = &opcode{name: "DJNZ e", exec: func(c *CPU, bus Bus) {
		bus.InternalCycle()
		e := int8(bus.Read(c.Reg.PC))
		c.Reg.PC++
		c.Reg.B--
		if c.Reg.B != 0 {
			bus.InternalCycle()
			c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
		}
	}}

	for n := byte(0); n < 8; n++ {
		vector := n * 8
		opcodes[0xC7+n*8] = &opcode{name: rstName(vector), exec: func(c *CPU, bus Bus) {
			bus.InternalCycle()
			c.pushPC(bus)
			c.Reg.PC = uint16(vector)
		}}
	}
}

func rstName(vector byte) string {
	hex := "0123456789ABCDEF"
	return "RST " + string([]byte{hex[vector>>4], hex[vector&0xF]}) + "H"
}
