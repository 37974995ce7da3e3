package cpu

import "dmgcore/gbcore/cycle"

// opcodeFunc executes one decoded instruction and returns the M-cycles it
// consumed. Each function returns a literal count that matches the bus
// accesses (each of which ticks on its own) plus the explicit internal Tick
// calls its body makes.
type opcodeFunc func(c *CPU, bus Bus) cycle.M

var opcodeTable [256]opcodeFunc
var cbOpcodeTable [256]opcodeFunc

// init builds the two dispatch tables. The regular regions of the
// instruction set -- LD r,r', ALU A,r, INC/DEC r and all of the
// CB-prefixed block -- are generated by looping over the 3-bit operand
// encoding rather than hand-writing 200-odd nearly identical functions;
// the irregular control-flow, stack and immediate-operand opcodes are
// registered individually in control.go's buildControlTable.
func init() {
	buildLoadTable()
	buildALUTable()
	buildIncDecTable()
	buildCBTable()
	buildControlTable()
}

// buildLoadTable fills 0x40-0x7F, the LD r,r' block, minus 0x76 (HALT)
// which control.go overwrites afterward.
func buildLoadTable() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			if dst == hlIndirectIndex && src == hlIndirectIndex {
				continue // 0x76 is HALT, registered separately
			}
			d, s := dst, src
			opcodeTable[0x40+d*8+s] = func(c *CPU, bus Bus) cycle.M {
				v := c.readOperand(bus, s)
				c.writeOperand(bus, d, v)
				if s == hlIndirectIndex || d == hlIndirectIndex {
					return 2
				}
				return 1
			}
		}
	}
}

// aluOp applies one of the eight ALU A,<operand> operations by opcode-table
// block index (0=ADD,1=ADC,2=SUB,3=SBC,4=AND,5=XOR,6=OR,7=CP).
func (c *CPU) aluOp(block uint8, value uint8) {
	switch block {
	case 0:
		c.addToA(value, false)
	case 1:
		c.addToA(value, true)
	case 2:
		c.subFromA(value, false, false)
	case 3:
		c.subFromA(value, true, false)
	case 4:
		c.andA(value)
	case 5:
		c.xorA(value)
	case 6:
		c.orA(value)
	case 7:
		c.subFromA(value, false, true)
	default:
		panic("cpu: unknown ALU block")
	}
}

// buildALUTable fills 0x80-0xBF (ALU A,r / ALU A,(HL)) and the eight
// immediate-operand opcodes at 0xC6,CE,D6,DE,E6,EE,F6,FE.
func buildALUTable() {
	for block := uint8(0); block < 8; block++ {
		for src := uint8(0); src < 8; src++ {
			b, s := block, src
			opcodeTable[0x80+b*8+s] = func(c *CPU, bus Bus) cycle.M {
				value := c.readOperand(bus, s)
				c.aluOp(b, value)
				if s == hlIndirectIndex {
					return 2
				}
				return 1
			}
		}

		b := block
		opcodeTable[0xC6+b*8] = func(c *CPU, bus Bus) cycle.M {
			value := c.fetch8(bus)
			c.aluOp(b, value)
			return 2
		}
	}
}

// buildIncDecTable fills the per-register INC/DEC opcodes scattered at
// 0x04,0x0C,0x14,... (INC) and 0x05,0x0D,0x15,... (DEC).
func buildIncDecTable() {
	for idx := uint8(0); idx < 8; idx++ {
		i := idx
		opcodeTable[0x04+i*8] = func(c *CPU, bus Bus) cycle.M {
			v := c.readOperand(bus, i)
			c.writeOperand(bus, i, c.inc8(v))
			if i == hlIndirectIndex {
				return 3
			}
			return 1
		}
		opcodeTable[0x05+i*8] = func(c *CPU, bus Bus) cycle.M {
			v := c.readOperand(bus, i)
			c.writeOperand(bus, i, c.dec8(v))
			if i == hlIndirectIndex {
				return 3
			}
			return 1
		}
	}
}

// cbShiftOp applies one of the eight CB rotate/shift operations by block index
// (0=RLC,1=RRC,2=RL,3=RR,4=SLA,5=SRA,6=SWAP,7=SRL).
func (c *CPU) cbShiftOp(block uint8, v uint8) uint8 {
	switch block {
	case 0:
		return c.rlc(v)
	case 1:
		return c.rrc(v)
	case 2:
		return c.rl(v)
	case 3:
		return c.rr(v)
	case 4:
		return c.sla(v)
	case 5:
		return c.sra(v)
	case 6:
		return c.swap(v)
	case 7:
		return c.srl(v)
	default:
		panic("cpu: unknown CB shift block")
	}
}

// buildCBTable fills the entire CB-prefixed opcode space: shift/rotate
// block (0x00-0x3F), BIT (0x40-0x7F), RES (0x80-0xBF), SET (0xC0-0xFF).
func buildCBTable() {
	for block := uint8(0); block < 8; block++ {
		for src := uint8(0); src < 8; src++ {
			b, s := block, src
			cbOpcodeTable[b*8+s] = func(c *CPU, bus Bus) cycle.M {
				v := c.readOperand(bus, s)
				result := c.cbShiftOp(b, v)
				c.writeOperand(bus, s, result)
				if s == hlIndirectIndex {
					return 4
				}
				return 2
			}
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		for src := uint8(0); src < 8; src++ {
			n, s := bit, src
			cbOpcodeTable[0x40+n*8+s] = func(c *CPU, bus Bus) cycle.M {
				v := c.readOperand(bus, s)
				c.bit(n, v)
				if s == hlIndirectIndex {
					return 3
				}
				return 2
			}

			cbOpcodeTable[0x80+n*8+s] = func(c *CPU, bus Bus) cycle.M {
				v := c.readOperand(bus, s)
				c.writeOperand(bus, s, c.res(n, v))
				if s == hlIndirectIndex {
					return 4
				}
				return 2
			}

			cbOpcodeTable[0xC0+n*8+s] = func(c *CPU, bus Bus) cycle.M {
				v := c.readOperand(bus, s)
				c.writeOperand(bus, s, c.set(n, v))
				if s == hlIndirectIndex {
					return 4
				}
				return 2
			}
		}
	}
}
