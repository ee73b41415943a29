package m68k

func signBit(size Size) uint32 {
	switch size {
	case Byte:
		return 0x80
	case Word:
		return 0x8000
	default:
		return 0x80000000
	}
}

func (c *CPU) add32(a, b uint32, size Size, withExtend bool) uint32 {
	av, bv := maskSize(a, size), maskSize(b, size)
	extend := uint32(0)
	if withExtend && c.flag(flagX) {
		extend = 1
	}
	full := uint64(av) + uint64(bv) + uint64(extend)
	result := maskSize(uint32(full), size)

	sign := signBit(size)
	overflow := (av^result)&(bv^result)&sign != 0
	carry := full > uint64(maskSize(^uint32(0), size))

	c.setFlag(flagN, result&sign != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagV, overflow)
	c.setFlag(flagC, carry)
	c.setFlag(flagX, carry)
	return result
}

func (c *CPU) sub32(a, b uint32, size Size, withExtend bool) uint32 {
	av, bv := maskSize(a, size), maskSize(b, size)
	extend := int64(0)
	if withExtend && c.flag(flagX) {
		extend = 1
	}
	full := int64(av) - int64(bv) - extend
	result := maskSize(uint32(full), size)

	sign := signBit(size)
	overflow := (av^bv)&(av^result)&sign != 0
	borrow := full < 0

	c.setFlag(flagN, result&sign != 0)
	c.setFlag(flagZ, result == 0)
	c.setFlag(flagV, overflow)
	c.setFlag(flagC, borrow)
	c.setFlag(flagX, borrow)
	return result
}
