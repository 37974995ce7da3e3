package gbcore

import (
	"fmt"
	"time"

	"dmgcore/gbcore/cpu"
	"dmgcore/gbcore/cycle"
	"dmgcore/gbcore/joypad"
	"dmgcore/gbcore/memory"
	"dmgcore/gbcore/timing"
	"dmgcore/gbcore/video"
)

// minROMSize is the smallest ROM the cartridge header can be parsed from;
// anything shorter can't even contain the header fields at 0x134-0x14F.
const minROMSize = 32 * 1024

// System owns the CPU and the bus and runs the cooperative update loop: no
// component here ever runs on its own goroutine, matching the core's
// single-threaded execution model.
type System struct {
	cpu  *cpu.CPU
	bus  *Bus
	debt cycle.M
}

// NewSystem builds a system from ROM bytes. rom must be at least 32 KiB;
// bios, if non-nil, must be exactly 256 bytes and causes the CPU to start
// from the zeroed boot-ROM reset vector instead of the documented post-BIOS
// register state.
func NewSystem(rom []byte, bios []byte) (*System, error) {
	if len(rom) < minROMSize {
		return nil, fmt.Errorf("gbcore: ROM too small: got %d bytes, need at least %d", len(rom), minROMSize)
	}
	if bios != nil && len(bios) != 256 {
		return nil, fmt.Errorf("gbcore: BIOS must be exactly 256 bytes, got %d", len(bios))
	}

	bus := newBus()
	bus.loadCartridge(memory.NewCartridgeWithData(rom))

	c := cpu.New()
	if bios != nil {
		c.ResetWithBoot()
		bus.loadBios(bios)
	}

	return &System{cpu: c, bus: bus}, nil
}

// Update runs cpu.Step in a loop until the system has produced enough
// M-cycles to cover wall at the reference clock rate, then yields to the
// host. Any overshoot from the last instruction of this call is carried as
// debt and subtracted from the next call's budget, so overshoot never
// accumulates into drift.
func (s *System) Update(wall time.Duration) {
	budget := cycle.M(wall.Seconds()*timing.CPUFrequency/cycle.PerM) - s.debt
	var spent cycle.M
	for spent < budget {
		spent += s.cpu.Step(s.bus)
	}
	s.debt = spent - budget
}

// Press latches a button held, raising the joypad interrupt on a
// released-to-pressed transition.
func (s *System) Press(button joypad.Button) {
	s.bus.Press(button)
}

// Release latches a button not held.
func (s *System) Release(button joypad.Button) {
	s.bus.Release(button)
}

// FrameReady reports whether the PPU published a new frame since the last
// call, clearing the latch.
func (s *System) FrameReady() bool {
	return s.bus.FrameReady()
}

// CurrentFrame returns the PPU's frame buffer. Its contents are only
// meaningful once FrameReady has reported true at least once.
func (s *System) CurrentFrame() *video.FrameBuffer {
	return s.bus.FrameBuffer()
}
