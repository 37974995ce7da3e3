// Package cpu implements the DMG's SM83 core: registers, the 512-entry
// opcode dispatch table (256 unprefixed plus 256 CB-prefixed), interrupt
// dispatch and the HALT/STOP protocol.
package cpu

import "dmgcore/gbcore/cycle"

// illegalOpcodes are the eleven unprefixed bytes with no defined behavior
// on real hardware. Executing one locks the CPU permanently.
var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

// CPU is the SM83 execution core. It holds no reference to a Bus between
// calls: Step takes the bus as a parameter, so ownership of the memory map
// lives with whoever assembles the system rather than inside the CPU.
type CPU struct {
	regs  Registers
	state RunState

	// ime is the interrupt master enable flip-flop. It is tracked here
	// rather than inside the bus's interrupt controller since EI's
	// one-instruction delay is a CPU timing quirk, not a bus concern.
	ime bool

	// imeDelay implements EI's delayed enable. EI sets it to 2; it counts
	// down by one at the end of every Step (including the instruction
	// following EI itself) and IME flips on only when it reaches zero, so
	// the instruction right after EI still runs with interrupts disabled.
	imeDelay int

	// haltBug is set for exactly one fetch when HALT is entered with
	// IME=0 and an interrupt already pending: the next opcode byte is
	// fetched but PC is not advanced, so it executes twice.
	haltBug bool
}

// New returns a CPU in its documented post-BIOS register state, matching
// what every commercial DMG cartridge observes at 0x0100 when no boot ROM
// is supplied.
func New() *CPU {
	c := &CPU{}
	c.ResetPostBoot()
	return c
}

// ResetPostBoot loads the register values hardware leaves behind after the
// boot ROM hands off control, for the common case of running without one.
func (c *CPU) ResetPostBoot() {
	c.regs = Registers{}
	c.regs.Set16(AF, 0x01B0)
	c.regs.Set16(BC, 0x0013)
	c.regs.Set16(DE, 0x00D8)
	c.regs.Set16(HL, 0x014D)
	c.regs.Set16(SP, 0xFFFE)
	c.regs.Set16(PC, 0x0100)
	c.state = Running
	c.ime = false
}

// ResetWithBoot loads the all-zero state the real boot ROM starts from,
// for the case where a caller supplies boot ROM bytes and wants it to run
// from its own reset vector at 0x0000.
func (c *CPU) ResetWithBoot() {
	c.regs = Registers{}
	c.state = Running
	c.ime = false
}

// Registers exposes the register file, chiefly for tests and debuggers.
func (c *CPU) Registers() *Registers {
	return &c.regs
}

// State reports the CPU's current run state.
func (c *CPU) State() RunState {
	return c.state
}

// IME reports the interrupt master enable flag.
func (c *CPU) IME() bool {
	return c.ime
}

// Step executes one unit of CPU work against bus: either the dispatch of a
// pending interrupt, a single HALT-state bus tick, or one full instruction.
// It returns the number of M-cycles consumed, which by construction always
// equals the sum of ticks the bus actually observed during the call.
func (c *CPU) Step(bus Bus) cycle.M {
	if c.state == Locked {
		return 0
	}

	if dispatched, spent := c.tryDispatchInterrupt(bus); dispatched {
		return spent
	}

	var spent cycle.M
	switch c.state {
	case Halted:
		if bus.AnyInterruptLine() {
			c.state = Running
		}
		bus.Tick(1)
		spent = 1
	case Stopped:
		bus.Tick(1)
		spent = 1
	default:
		spent = c.execute(bus)
	}

	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.ime = true
		}
	}

	return spent
}

// tryDispatchInterrupt services the highest-priority pending interrupt if
// IME is set, pushing PC and jumping to the line's vector. This happens
// between instructions, before the next opcode fetch, and costs 5 M-cycles:
// two internal, two for the PUSH, one to load the vector into PC. If the
// CPU was Halted, waking it costs one further M-cycle on top of that.
func (c *CPU) tryDispatchInterrupt(bus Bus) (bool, cycle.M) {
	if !c.ime {
		return false, 0
	}

	vector, ok := bus.PendingInterrupt()
	if !ok {
		return false, 0
	}

	var wake cycle.M
	if c.state == Halted {
		c.state = Running
		bus.Tick(1)
		wake = 1
	}

	c.ime = false
	bus.Tick(2)
	c.push(bus, c.regs.Get16(PC))
	bus.Tick(1)
	c.regs.Set16(PC, vector)
	bus.AckInterrupt(vector)

	return true, 5 + wake
}

// execute fetches, decodes and runs one instruction, returning the number
// of M-cycles the bus observed while doing so.
func (c *CPU) execute(bus Bus) cycle.M {
	pc := c.regs.Get16(PC)
	opcode := bus.ReadByte(pc)

	if c.haltBug {
		// The halt bug replays the same byte without ever having moved PC
		// forward for it, so the next fetch lands on it again.
		c.haltBug = false
	} else {
		c.regs.IncPC(1)
	}

	if illegalOpcodes[opcode] {
		c.state = Locked
		return 1
	}

	if opcode == 0xCB {
		cbOpcode := bus.ReadByte(c.regs.Get16(PC))
		c.regs.IncPC(1)
		fn := cbOpcodeTable[cbOpcode]
		return fn(c, bus)
	}

	fn := opcodeTable[opcode]
	return fn(c, bus)
}

// halt implements the HALT instruction's suspend-and-maybe-bug behavior.
func (c *CPU) halt(bus Bus) {
	if !c.ime && bus.AnyInterruptLine() {
		c.haltBug = true
		c.state = Running
		return
	}
	c.state = Halted
}

// stop implements STOP: the CPU suspends, and only ResetPostBoot or
// ResetWithBoot takes it out of the Stopped state.
// DIV reset and double-speed switching (CGB-only) are out of scope here.
func (c *CPU) stop() {
	c.state = Stopped
}

// ei schedules IME to turn on after the next instruction completes.
func (c *CPU) ei() {
	c.imeDelay = 2
}

// di clears IME immediately; unlike EI it has no delay.
func (c *CPU) di() {
	c.ime = false
	c.imeDelay = 0
}

func (c *CPU) push(bus Bus, v uint16) {
	sp := c.regs.Get16(SP) - 1
	bus.WriteByte(sp, uint8(v>>8))
	sp--
	bus.WriteByte(sp, uint8(v))
	c.regs.Set16(SP, sp)
}

func (c *CPU) pop(bus Bus) uint16 {
	sp := c.regs.Get16(SP)
	lo := bus.ReadByte(sp)
	sp++
	hi := bus.ReadByte(sp)
	sp++
	c.regs.Set16(SP, sp)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) fetch8(bus Bus) uint8 {
	v := bus.ReadByte(c.regs.Get16(PC))
	c.regs.IncPC(1)
	return v
}

func (c *CPU) fetch16(bus Bus) uint16 {
	lo := c.fetch8(bus)
	hi := c.fetch8(bus)
	return uint16(hi)<<8 | uint16(lo)
}
