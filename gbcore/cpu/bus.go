package cpu

import "dmgcore/gbcore/cycle"

// Bus is everything the CPU needs from the rest of the system. ReadByte and
// WriteByte each advance the clock by one M-cycle on their own, so a plain
// instruction body never has to pair a memory access with a manual tick --
// only cycles that touch no memory (internal register shuffles, the extra
// cycle on conditional branches) call Tick directly.
//
// The CPU takes a Bus as a Step parameter rather than owning one through an embedded field, so the same CPU value
// can be driven against a bare-metal bus in production and a recording stub
// in tests without an interface satisfied by a circular import.
type Bus interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, v uint8)
	Tick(m cycle.M)

	// IME-adjacent interrupt plumbing the CPU needs directly rather than
	// through memory-mapped registers, since dispatch happens before an
	// instruction fetch rather than as a response to one.
	PendingInterrupt() (vector uint16, ok bool)
	AckInterrupt(vector uint16)
	AnyInterruptLine() bool
}
