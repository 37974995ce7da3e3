package cpu

// operand.go maps the 3-bit register-index encoding shared by the LD r,r',
// ALU A,r, INC/DEC r and every CB-prefixed opcode block onto either a
// register or the (HL) memory cell, so the table-building code in
// mapping.go can treat all eight encodings uniformly.

// r8Order is the opcode-table order for the 3-bit register field: index 6
// is not a register at all but the (HL) indirect operand.
var r8Order = [8]Reg8{B, C, D, E, H, L, 0, A}

const hlIndirectIndex = 6

func (c *CPU) readOperand(bus Bus, idx uint8) uint8 {
	if idx == hlIndirectIndex {
		return bus.ReadByte(c.regs.Get16(HL))
	}
	return c.regs.Get8(r8Order[idx])
}

func (c *CPU) writeOperand(bus Bus, idx uint8, v uint8) {
	if idx == hlIndirectIndex {
		bus.WriteByte(c.regs.Get16(HL), v)
		return
	}
	c.regs.Set8(r8Order[idx], v)
}

// rr16Order is the opcode-table order for the 2-bit register-pair field
// used by INC rr/DEC rr/ADD HL,rr/LD rr,d16.
var rr16Order = [4]Reg16{BC, DE, HL, SP}

// rr16StackOrder is the opcode-table order for PUSH/POP, which uses AF
// instead of SP in the fourth slot.
var rr16StackOrder = [4]Reg16{BC, DE, HL, AF}

func condTaken(c *CPU, cond uint8) bool {
	f := c.regs.Flags()
	switch cond {
	case 0:
		return !f.Has(FlagZ)
	case 1:
		return f.Has(FlagZ)
	case 2:
		return !f.Has(FlagC)
	case 3:
		return f.Has(FlagC)
	default:
		panic("cpu: unknown condition code")
	}
}
