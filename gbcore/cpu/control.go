package cpu

import "dmgcore/gbcore/cycle"

// control.go registers every opcode whose timing or operand shape doesn't
// fit the loop-generated blocks in mapping.go: control flow, stack
// operations, 16-bit loads and the handful of single-byte oddities
// (DAA, CPL, the rotate-A opcodes, HALT/STOP/DI/EI).
func buildControlTable() {
	opcodeTable[0x00] = func(c *CPU, bus Bus) cycle.M { return 1 } // NOP

	opcodeTable[0x76] = func(c *CPU, bus Bus) cycle.M {
		c.halt(bus)
		return 1
	}

	opcodeTable[0x10] = func(c *CPU, bus Bus) cycle.M {
		// STOP is formally followed by a padding byte that real hardware
		// quietly skips over without a bus access; PC is advanced past it
		// directly rather than through a Tick-incurring fetch.
		c.regs.IncPC(1)
		c.stop()
		return 1
	}

	opcodeTable[0xF3] = func(c *CPU, bus Bus) cycle.M { c.di(); return 1 }
	opcodeTable[0xFB] = func(c *CPU, bus Bus) cycle.M { c.ei(); return 1 }

	opcodeTable[0x07] = func(c *CPU, bus Bus) cycle.M { // RLCA
		c.regs.Set8(A, c.rlc(c.regs.Get8(A)))
		c.regs.Flags().Clear(FlagZ)
		return 1
	}
	opcodeTable[0x0F] = func(c *CPU, bus Bus) cycle.M { // RRCA
		c.regs.Set8(A, c.rrc(c.regs.Get8(A)))
		c.regs.Flags().Clear(FlagZ)
		return 1
	}
	opcodeTable[0x17] = func(c *CPU, bus Bus) cycle.M { // RLA
		c.regs.Set8(A, c.rl(c.regs.Get8(A)))
		c.regs.Flags().Clear(FlagZ)
		return 1
	}
	opcodeTable[0x1F] = func(c *CPU, bus Bus) cycle.M { // RRA
		c.regs.Set8(A, c.rr(c.regs.Get8(A)))
		c.regs.Flags().Clear(FlagZ)
		return 1
	}

	opcodeTable[0x27] = func(c *CPU, bus Bus) cycle.M { c.daa(); return 1 }
	opcodeTable[0x2F] = func(c *CPU, bus Bus) cycle.M { // CPL
		c.regs.Set8(A, ^c.regs.Get8(A))
		f := c.regs.Flags()
		f.Set(FlagN)
		f.Set(FlagH)
		return 1
	}
	opcodeTable[0x37] = func(c *CPU, bus Bus) cycle.M { // SCF
		f := c.regs.Flags()
		f.Clear(FlagN)
		f.Clear(FlagH)
		f.Set(FlagC)
		return 1
	}
	opcodeTable[0x3F] = func(c *CPU, bus Bus) cycle.M { // CCF
		f := c.regs.Flags()
		f.Clear(FlagN)
		f.Clear(FlagH)
		f.Put(FlagC, !f.Has(FlagC))
		return 1
	}

	build16BitLoads()
	build16BitIncDec()
	buildStackOps()
	buildJumpsAndCalls()
	buildMiscLoads()
}

func build16BitLoads() {
	for i := uint8(0); i < 4; i++ {
		pair := rr16Order[i]
		opcodeTable[0x01+i*0x10] = func(c *CPU, bus Bus) cycle.M { // LD rr,d16
			c.regs.Set16(pair, c.fetch16(bus))
			return 3
		}
	}

	opcodeTable[0x02] = func(c *CPU, bus Bus) cycle.M { // LD (BC),A
		bus.WriteByte(c.regs.Get16(BC), c.regs.Get8(A))
		return 2
	}
	opcodeTable[0x12] = func(c *CPU, bus Bus) cycle.M { // LD (DE),A
		bus.WriteByte(c.regs.Get16(DE), c.regs.Get8(A))
		return 2
	}
	opcodeTable[0x0A] = func(c *CPU, bus Bus) cycle.M { // LD A,(BC)
		c.regs.Set8(A, bus.ReadByte(c.regs.Get16(BC)))
		return 2
	}
	opcodeTable[0x1A] = func(c *CPU, bus Bus) cycle.M { // LD A,(DE)
		c.regs.Set8(A, bus.ReadByte(c.regs.Get16(DE)))
		return 2
	}

	opcodeTable[0x22] = func(c *CPU, bus Bus) cycle.M { // LD (HL+),A
		hl := c.regs.Get16(HL)
		bus.WriteByte(hl, c.regs.Get8(A))
		c.regs.Set16(HL, hl+1)
		return 2
	}
	opcodeTable[0x32] = func(c *CPU, bus Bus) cycle.M { // LD (HL-),A
		hl := c.regs.Get16(HL)
		bus.WriteByte(hl, c.regs.Get8(A))
		c.regs.Set16(HL, hl-1)
		return 2
	}
	opcodeTable[0x2A] = func(c *CPU, bus Bus) cycle.M { // LD A,(HL+)
		hl := c.regs.Get16(HL)
		c.regs.Set8(A, bus.ReadByte(hl))
		c.regs.Set16(HL, hl+1)
		return 2
	}
	opcodeTable[0x3A] = func(c *CPU, bus Bus) cycle.M { // LD A,(HL-)
		hl := c.regs.Get16(HL)
		c.regs.Set8(A, bus.ReadByte(hl))
		c.regs.Set16(HL, hl-1)
		return 2
	}

	opcodeTable[0x08] = func(c *CPU, bus Bus) cycle.M { // LD (a16),SP
		addr := c.fetch16(bus)
		sp := c.regs.Get16(SP)
		bus.WriteByte(addr, uint8(sp))
		bus.WriteByte(addr+1, uint8(sp>>8))
		return 5
	}
}

func build16BitIncDec() {
	for i := uint8(0); i < 4; i++ {
		pair := rr16Order[i]
		opcodeTable[0x03+i*0x10] = func(c *CPU, bus Bus) cycle.M { // INC rr
			c.regs.Set16(pair, c.regs.Get16(pair)+1)
			bus.Tick(1)
			return 2
		}
		opcodeTable[0x0B+i*0x10] = func(c *CPU, bus Bus) cycle.M { // DEC rr
			c.regs.Set16(pair, c.regs.Get16(pair)-1)
			bus.Tick(1)
			return 2
		}
		opcodeTable[0x09+i*0x10] = func(c *CPU, bus Bus) cycle.M { // ADD HL,rr
			c.addToHL(c.regs.Get16(pair))
			bus.Tick(1)
			return 2
		}
	}
}

func buildStackOps() {
	for i := uint8(0); i < 4; i++ {
		pair := rr16StackOrder[i]
		opcodeTable[0xC1+i*0x10] = func(c *CPU, bus Bus) cycle.M { // POP rr
			c.regs.Set16(pair, c.pop(bus))
			return 3
		}
		opcodeTable[0xC5+i*0x10] = func(c *CPU, bus Bus) cycle.M { // PUSH rr
			bus.Tick(1)
			c.push(bus, c.regs.Get16(pair))
			return 4
		}
	}

	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		opcodeTable[0xC7+n*8] = func(c *CPU, bus Bus) cycle.M { // RST n
			bus.Tick(1)
			c.push(bus, c.regs.Get16(PC))
			c.regs.Set16(PC, vector)
			return 4
		}
	}
}

func buildJumpsAndCalls() {
	opcodeTable[0x18] = func(c *CPU, bus Bus) cycle.M { // JR e8
		offset := int8(c.fetch8(bus))
		bus.Tick(1)
		c.regs.Set16(PC, uint16(int32(c.regs.Get16(PC))+int32(offset)))
		return 3
	}
	opcodeTable[0xC3] = func(c *CPU, bus Bus) cycle.M { // JP a16
		addr := c.fetch16(bus)
		bus.Tick(1)
		c.regs.Set16(PC, addr)
		return 4
	}
	opcodeTable[0xE9] = func(c *CPU, bus Bus) cycle.M { // JP HL
		c.regs.Set16(PC, c.regs.Get16(HL))
		return 1
	}
	opcodeTable[0xCD] = func(c *CPU, bus Bus) cycle.M { // CALL a16
		addr := c.fetch16(bus)
		bus.Tick(1)
		c.push(bus, c.regs.Get16(PC))
		c.regs.Set16(PC, addr)
		return 6
	}
	opcodeTable[0xC9] = func(c *CPU, bus Bus) cycle.M { // RET
		c.regs.Set16(PC, c.pop(bus))
		bus.Tick(1)
		return 4
	}
	opcodeTable[0xD9] = func(c *CPU, bus Bus) cycle.M { // RETI
		c.regs.Set16(PC, c.pop(bus))
		bus.Tick(1)
		c.ime = true
		c.imeDelay = 0
		return 4
	}

	for i := uint8(0); i < 4; i++ {
		cond := i
		opcodeTable[0x20+i*8] = func(c *CPU, bus Bus) cycle.M { // JR cc,e8
			offset := int8(c.fetch8(bus))
			if !condTaken(c, cond) {
				return 2
			}
			bus.Tick(1)
			c.regs.Set16(PC, uint16(int32(c.regs.Get16(PC))+int32(offset)))
			return 3
		}
		opcodeTable[0xC2+i*8] = func(c *CPU, bus Bus) cycle.M { // JP cc,a16
			addr := c.fetch16(bus)
			if !condTaken(c, cond) {
				return 3
			}
			bus.Tick(1)
			c.regs.Set16(PC, addr)
			return 4
		}
		opcodeTable[0xC4+i*8] = func(c *CPU, bus Bus) cycle.M { // CALL cc,a16
			addr := c.fetch16(bus)
			if !condTaken(c, cond) {
				return 3
			}
			bus.Tick(1)
			c.push(bus, c.regs.Get16(PC))
			c.regs.Set16(PC, addr)
			return 6
		}
		opcodeTable[0xC0+i*8] = func(c *CPU, bus Bus) cycle.M { // RET cc
			bus.Tick(1)
			if !condTaken(c, cond) {
				return 2
			}
			c.regs.Set16(PC, c.pop(bus))
			bus.Tick(1)
			return 5
		}
	}
}

func buildMiscLoads() {
	opcodeTable[0xE0] = func(c *CPU, bus Bus) cycle.M { // LDH (a8),A
		addr := 0xFF00 + uint16(c.fetch8(bus))
		bus.WriteByte(addr, c.regs.Get8(A))
		return 3
	}
	opcodeTable[0xF0] = func(c *CPU, bus Bus) cycle.M { // LDH A,(a8)
		addr := 0xFF00 + uint16(c.fetch8(bus))
		c.regs.Set8(A, bus.ReadByte(addr))
		return 3
	}
	opcodeTable[0xE2] = func(c *CPU, bus Bus) cycle.M { // LD (C),A
		addr := 0xFF00 + uint16(c.regs.Get8(C))
		bus.WriteByte(addr, c.regs.Get8(A))
		return 2
	}
	opcodeTable[0xF2] = func(c *CPU, bus Bus) cycle.M { // LD A,(C)
		addr := 0xFF00 + uint16(c.regs.Get8(C))
		c.regs.Set8(A, bus.ReadByte(addr))
		return 2
	}
	opcodeTable[0xEA] = func(c *CPU, bus Bus) cycle.M { // LD (a16),A
		addr := c.fetch16(bus)
		bus.WriteByte(addr, c.regs.Get8(A))
		return 4
	}
	opcodeTable[0xFA] = func(c *CPU, bus Bus) cycle.M { // LD A,(a16)
		addr := c.fetch16(bus)
		c.regs.Set8(A, bus.ReadByte(addr))
		return 4
	}
	opcodeTable[0xE8] = func(c *CPU, bus Bus) cycle.M { // ADD SP,e8
		offset := int8(c.fetch8(bus))
		result := c.addToSP(offset)
		bus.Tick(2)
		c.regs.Set16(SP, result)
		return 4
	}
	opcodeTable[0xF8] = func(c *CPU, bus Bus) cycle.M { // LD HL,SP+e8
		offset := int8(c.fetch8(bus))
		result := c.addToSP(offset)
		bus.Tick(1)
		c.regs.Set16(HL, result)
		return 3
	}
	opcodeTable[0xF9] = func(c *CPU, bus Bus) cycle.M { // LD SP,HL
		bus.Tick(1)
		c.regs.Set16(SP, c.regs.Get16(HL))
		return 2
	}
}
