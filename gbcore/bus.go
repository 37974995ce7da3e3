// Package gbcore assembles the DMG subsystems -- CPU, bus, PPU, timer,
// interrupt controller, cartridge, joypad, serial and APU register bank --
// into a runnable system and exposes the cooperative update loop the host
// drives.
package gbcore

import (
	"fmt"

	"dmgcore/gbcore/addr"
	"dmgcore/gbcore/audio"
	"dmgcore/gbcore/bit"
	"dmgcore/gbcore/cycle"
	"dmgcore/gbcore/interrupt"
	"dmgcore/gbcore/joypad"
	"dmgcore/gbcore/memory"
	"dmgcore/gbcore/serial"
	"dmgcore/gbcore/timer"
	"dmgcore/gbcore/video"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// SerialPort is the minimal interface a serial device must satisfy to sit
// behind SB/SC. serial.LogSink implements it; tests can substitute a stub.
type SerialPort interface {
	Write(address uint16, value byte)
	Read(address uint16) byte
	Tick(cycles int)
}

// Bus is the DMG's single memory-access mediator: it owns raw VRAM/WRAM/
// OAM/HRAM storage directly and delegates ROM and external-RAM access to
// the cartridge's MBC, exactly as real hardware's address decoder does.
// ReadByte/WriteByte tick the whole system one M-cycle per access; Read/
// Write are the no-tick variants used by the PPU's own register peeks
// (which must not double-tick, since the PPU's Tick argument already
// carries the cost) and by the DMA copy.
type Bus struct {
	cart *memory.Cartridge
	mbc  memory.MBC

	// bios is the optional 256-byte boot ROM overlaid on 0x0000-0x00FF
	// until the game writes to 0xFF50. biosMapped is false whenever no
	// BIOS was supplied, so reads fall straight through to cartridge ROM.
	bios       [256]byte
	biosMapped bool

	vram [0x2000]byte
	wram [0x2000]byte
	oam  [0x100]byte // FE00-FEFF: sprite attributes plus the unusable tail
	io   [0x80]byte  // FF00-FF7F, dispatched per address below
	hram [0x7F]byte  // FF80-FFFE

	regionMap [256]memRegion

	irq    *interrupt.Controller
	timer  *timer.Timer
	joy    *joypad.Joypad
	serial SerialPort
	apu    *audio.APU
	gpu    *video.GPU
}

// newBus wires every sub-component's interrupt-raising callback back to the
// shared controller and builds the region map once at construction.
func newBus() *Bus {
	b := &Bus{
		irq:   interrupt.New(),
		timer: timer.New(),
		joy:   joypad.New(),
		apu:   audio.New(),
	}
	b.timer.InterruptHandler = func() { b.irq.Request(interrupt.Timer) }
	b.joy.OnEdge = func() { b.irq.Request(interrupt.Joypad) }
	b.serial = serial.NewLogSink(func() { b.irq.Request(interrupt.Serial) })
	b.gpu = video.NewGpu(b)
	initRegionMap(b)
	return b
}

func initRegionMap(b *Bus) {
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	b.regionMap[0xFE] = regionOAM
	b.regionMap[0xFF] = regionIO
}

// loadCartridge swaps in a cartridge and its matching MBC, replacing the
// no-op default a fresh Bus starts with.
func (b *Bus) loadCartridge(cart *memory.Cartridge) {
	b.cart = cart
	b.mbc = memory.NewMBCForCartridge(cart)
}

// loadBios maps a 256-byte boot ROM over 0x0000-0x00FF until the cartridge
// unmaps it by writing to 0xFF50.
func (b *Bus) loadBios(data []byte) {
	copy(b.bios[:], data)
	b.biosMapped = true
}

// ReadByte reads one byte and advances the master clock by one M-cycle,
// exactly as every CPU-issued memory access does on real hardware.
func (b *Bus) ReadByte(address uint16) uint8 {
	v := b.Read(address)
	b.Tick(1)
	return v
}

// WriteByte writes one byte and advances the master clock by one M-cycle.
func (b *Bus) WriteByte(address uint16, value uint8) {
	b.Write(address, value)
	b.Tick(1)
}

// Tick advances every tick-driven sub-component by m M-cycles' worth of
// T-cycles, keeping the PPU, timer, serial port and APU in lockstep with
// whatever bus traffic the CPU is generating.
func (b *Bus) Tick(m cycle.M) {
	t := m.ToT()
	b.timer.Tick(t)
	b.serial.Tick(int(t))
	b.apu.Tick(int(t))
	b.gpu.Tick(t)
}

// PendingInterrupt reports the vector of the highest-priority line that is
// both enabled and requested, regardless of IME -- the CPU itself decides
// whether IME permits dispatching it.
func (b *Bus) PendingInterrupt() (uint16, bool) {
	l, ok := b.irq.Highest()
	if !ok {
		return 0, false
	}
	return l.Vector(), true
}

// AckInterrupt clears the requested flag of the line dispatched to vector,
// called by the CPU immediately after it jumps there.
func (b *Bus) AckInterrupt(vector uint16) {
	if l, ok := lineForVector(vector); ok {
		b.irq.ClearRequest(l)
	}
}

// AnyInterruptLine reports whether any line is enabled and requested,
// independent of IME -- this is the condition that wakes the CPU from HALT.
func (b *Bus) AnyInterruptLine() bool {
	return b.irq.AnyPending()
}

func lineForVector(vector uint16) (interrupt.Line, bool) {
	for _, l := range []interrupt.Line{interrupt.VBlank, interrupt.LCDStat, interrupt.Timer, interrupt.Serial, interrupt.Joypad} {
		if l.Vector() == vector {
			return l, true
		}
	}
	return 0, false
}

// RequestInterrupt marks interrupt as pending. Exposed as a public method
// (rather than only the internal closures wired in newBus) because the PPU
// holds the Bus through the video.Bus interface and raises VBlank/LCDSTAT
// directly.
func (b *Bus) RequestInterrupt(i addr.Interrupt) {
	switch i {
	case addr.VBlankInterrupt:
		b.irq.Request(interrupt.VBlank)
	case addr.LCDSTATInterrupt:
		b.irq.Request(interrupt.LCDStat)
	case addr.TimerInterrupt:
		b.irq.Request(interrupt.Timer)
	case addr.SerialInterrupt:
		b.irq.Request(interrupt.Serial)
	case addr.JoypadInterrupt:
		b.irq.Request(interrupt.Joypad)
	default:
		panic(fmt.Sprintf("gbcore: unknown interrupt 0x%02X", uint8(i)))
	}
}

// ReadBit reports whether bit index of the byte at address is set, without
// ticking the clock. Used by the PPU to test STAT's interrupt-enable bits.
func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, b.Read(address))
}

// WriteSTATBits sets the bits selected by mask in the STAT register to the
// matching bits of value, leaving every other bit alone. This is how the
// PPU itself updates the mode and LYC=LY flag bits, bypassing the
// interrupt-enable-bits-only mask writeIO applies to CPU-issued STAT writes.
func (b *Bus) WriteSTATBits(mask, value uint8) {
	i := addr.STAT - 0xFF00
	b.io[i] = b.io[i]&^mask | value&mask
}

// Read is the no-tick byte read used internally by Write (for read-modify-
// write register updates), by the PPU/OAM's own register and tile peeks,
// and by the DMA copy.
func (b *Bus) Read(address uint16) byte {
	switch b.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if b.biosMapped && address < 0x100 {
			return b.bios[address]
		}
		if b.mbc == nil {
			return 0xFF
		}
		return b.mbc.Read(address)
	case regionVRAM:
		return b.vram[address-0x8000]
	case regionWRAM:
		return b.wram[address-0xC000]
	case regionEcho:
		return b.wram[address-0xE000]
	case regionOAM:
		if address > addr.OAMEnd {
			return 0x00
		}
		return b.oam[address-0xFE00]
	case regionIO:
		return b.readIO(address)
	default:
		panic(fmt.Sprintf("gbcore: read at unmapped address 0x%04X", address))
	}
}

// Write is the no-tick byte write backing WriteByte, the PPU's STAT/LY
// updates, and the DMA copy's destination writes.
func (b *Bus) Write(address uint16, value byte) {
	switch b.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if b.mbc != nil {
			b.mbc.Write(address, value)
		}
	case regionVRAM:
		b.vram[address-0x8000] = value
	case regionWRAM:
		b.wram[address-0xC000] = value
	case regionEcho:
		b.wram[address-0xE000] = value
	case regionOAM:
		if address <= addr.OAMEnd {
			b.oam[address-0xFE00] = value
		}
	case regionIO:
		b.writeIO(address, value)
	default:
		panic(fmt.Sprintf("gbcore: write at unmapped address 0x%04X", address))
	}
}

func (b *Bus) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		return b.joy.Register()
	case address == addr.SB || address == addr.SC:
		return b.serial.Read(address)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		return b.timer.Read(address)
	case address == addr.IF:
		return b.irq.IF()
	case address == addr.IE:
		return b.irq.IE()
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		return b.apu.ReadRegister(address)
	case address >= 0xFF80:
		return b.hram[address-0xFF80]
	case address == 0xFF03 || (address >= 0xFF08 && address <= 0xFF0E) || (address >= 0xFF4C && address <= 0xFF7F):
		// Undocumented DMG I/O addresses read as all ones.
		return 0xFF
	default:
		return b.io[address-0xFF00]
	}
}

func (b *Bus) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		b.joy.WriteSelect(value)
	case address == addr.SB || address == addr.SC:
		b.serial.Write(address, value)
	case address == addr.DIV || address == addr.TIMA || address == addr.TMA || address == addr.TAC:
		b.timer.Write(address, value)
	case address == addr.IF:
		b.irq.WriteIF(value)
	case address == addr.IE:
		b.irq.WriteIE(value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		b.apu.WriteRegister(address, value)
	case address == addr.DMA:
		b.runDMA(value)
	case address == addr.STAT:
		// Bits 2:0 (LYC=LY flag, PPU mode) are hardware-driven and
		// read-only from the CPU's side; only the four interrupt-enable
		// bits (6:3) are writable. The PPU updates bits 2:0 itself
		// through WriteSTATBits, which bypasses this mask.
		const writableMask = 0b0111_1000
		current := b.io[address-0xFF00]
		b.io[address-0xFF00] = current&^writableMask | value&writableMask
	case address == addr.BootROMDisable:
		b.biosMapped = false
	case address >= 0xFF80:
		b.hram[address-0xFF80] = value
	default:
		b.io[address-0xFF00] = value
	}
}

// runDMA copies 160 bytes from XX00 into OAM. Modeled as instantaneous per
// the simplified-DMA option: see the design notes for why no consumer here
// needs the real 160 M-cycle blocking transfer.
func (b *Bus) runDMA(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oam[i] = b.Read(source + i)
	}
}

// Press latches a button held and raises the joypad interrupt on a
// released-to-pressed transition.
func (b *Bus) Press(button joypad.Button) {
	b.joy.Press(button)
}

// Release latches a button not held.
func (b *Bus) Release(button joypad.Button) {
	b.joy.Release(button)
}

// FrameReady reports whether the PPU just crossed into VBlank.
func (b *Bus) FrameReady() bool {
	return b.gpu.FrameReady()
}

// FrameBuffer exposes the PPU's completed-frame buffer to a renderer.
func (b *Bus) FrameBuffer() *video.FrameBuffer {
	return b.gpu.GetFrameBuffer()
}
