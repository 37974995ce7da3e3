package video

import (
	"dmgcore/gbcore/addr"
	"dmgcore/gbcore/bit"
)

// fakeBus is a flat 64KB address space standing in for gbcore.Bus in tests
// that only need to poke registers and VRAM/OAM directly; it never ticks a
// clock and tracks requested interrupts for assertions that care about them.
type fakeBus struct {
	mem                  [0x10000]byte
	requestedInterrupts []addr.Interrupt
}

func newFakeBus() *fakeBus {
	return &fakeBus{}
}

func (b *fakeBus) Read(address uint16) byte {
	return b.mem[address]
}

func (b *fakeBus) Write(address uint16, value byte) {
	b.mem[address] = value
}

func (b *fakeBus) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, b.mem[address])
}

func (b *fakeBus) RequestInterrupt(interrupt addr.Interrupt) {
	b.requestedInterrupts = append(b.requestedInterrupts, interrupt)
}

func (b *fakeBus) WriteSTATBits(mask, value uint8) {
	b.mem[addr.STAT] = b.mem[addr.STAT]&^mask | value&mask
}
