package gbcore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dmgcore/gbcore/addr"
	"dmgcore/gbcore/cpu"
	"dmgcore/gbcore/interrupt"
	"dmgcore/gbcore/joypad"
)

// blankROM builds a minimal, otherwise-empty 32KiB cartridge image: a
// header byte at 0x147 of 0x00 picks NoMBC, which is all these tests need.
func blankROM() []byte {
	return make([]byte, 32*1024)
}

func TestNewSystemRejectsShortROM(t *testing.T) {
	_, err := NewSystem(make([]byte, 1024), nil)
	assert.Error(t, err)
}

func TestNewSystemRejectsWrongSizedBios(t *testing.T) {
	_, err := NewSystem(blankROM(), make([]byte, 10))
	assert.Error(t, err)
}

func TestNewSystemWithoutBiosStartsPostBoot(t *testing.T) {
	sys, err := NewSystem(blankROM(), nil)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0100), sys.cpu.Registers().Get16(cpu.PC))
}

func TestBiosOverlayMapsThenUnmapsOn0xFF50(t *testing.T) {
	rom := blankROM()
	rom[0x0000] = 0xAA // distinguishable cartridge byte at address 0
	bios := make([]byte, 256)
	bios[0x0000] = 0x55

	sys, err := NewSystem(rom, bios)
	assert.NoError(t, err)

	assert.Equal(t, byte(0x55), sys.bus.Read(0x0000), "BIOS must be visible at 0x0000 while mapped")

	sys.bus.Write(addr.BootROMDisable, 0x01)
	assert.Equal(t, byte(0xAA), sys.bus.Read(0x0000), "cartridge ROM must reappear once the BIOS is unmapped")
}

func TestNoBiosLeavesCartridgeVisibleFromTheStart(t *testing.T) {
	rom := blankROM()
	rom[0x0000] = 0x77

	sys, err := NewSystem(rom, nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x77), sys.bus.Read(0x0000))
}

func TestDMACopiesToOAM(t *testing.T) {
	sys, err := NewSystem(blankROM(), nil)
	assert.NoError(t, err)

	for i := uint16(0); i < 0xA0; i++ {
		sys.bus.Write(0xC100+i, byte(i+1))
	}

	sys.bus.Write(addr.DMA, 0xC1)

	for i := uint16(0); i < 0xA0; i++ {
		assert.Equal(t, byte(i+1), sys.bus.Read(0xFE00+i), "OAM byte %d must match the source page", i)
	}
}

func TestUnusableRegionReadsZeroAndIgnoresWrites(t *testing.T) {
	sys, _ := NewSystem(blankROM(), nil)
	sys.bus.Write(0xFEA0, 0x42)
	assert.Equal(t, byte(0x00), sys.bus.Read(0xFEA0))
}

func TestJoypadRoundTripThroughBus(t *testing.T) {
	sys, err := NewSystem(blankROM(), nil)
	assert.NoError(t, err)

	sys.Press(joypad.A)
	sys.bus.Write(addr.P1, 0b0001_0000) // select action buttons (bit5=0)

	got := sys.bus.Read(addr.P1)
	assert.Equal(t, byte(0), got&0x01, "A must read as pressed (bit clear)")
}

func TestJoypadPressRaisesInterruptOnEdge(t *testing.T) {
	sys, err := NewSystem(blankROM(), nil)
	assert.NoError(t, err)

	assert.False(t, sys.bus.irq.Requested(interrupt.Joypad))
	sys.Press(joypad.Start)
	assert.True(t, sys.bus.irq.Requested(interrupt.Joypad))
}

func TestInterruptDispatchEndToEnd(t *testing.T) {
	// ROM writes go to the MBC and never change ROM contents, so the program
	// is placed in the cartridge image itself.
	rom := blankROM()
	rom[0x0100] = 0xFB // EI
	rom[0x0101] = 0x00 // NOP
	rom[0x0102] = 0x00 // NOP

	sys, err := NewSystem(rom, nil)
	assert.NoError(t, err)

	sys.bus.Write(addr.IE, 0x01) // VBlank enabled
	sys.bus.irq.Request(interrupt.VBlank)
	sys.cpu.ResetPostBoot()

	// IME defaults to false post-boot; force the dispatch path by flipping
	// it through a real EI/NOP sequence so the test exercises the CPU's own
	// delayed-enable behavior rather than poking unexported state.
	sys.cpu.Step(sys.bus) // EI
	sys.cpu.Step(sys.bus) // NOP, IME goes live at the end of this step
	sys.cpu.Step(sys.bus) // dispatch should fire here instead of fetching

	assert.Equal(t, uint16(0x0040), sys.cpu.Registers().Get16(cpu.PC))
	assert.False(t, sys.bus.irq.Requested(interrupt.VBlank))
}

func TestFramePeriodProducesAtLeastOneVBlank(t *testing.T) {
	sys, err := NewSystem(blankROM(), nil)
	assert.NoError(t, err)

	// I/O registers start zeroed, so the LCD is off until LCDC bit 7 is set.
	sys.bus.Write(addr.LCDC, 0x91)

	frames := 0
	budget := 70224 * 2 // two full frames of T-cycles, converted below
	spentT := 0
	for spentT < budget {
		spent := sys.cpu.Step(sys.bus)
		spentT += int(spent) * 4
		if sys.bus.FrameReady() {
			frames++
		}
	}

	assert.GreaterOrEqual(t, frames, 1)
}
