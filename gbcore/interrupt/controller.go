// Package interrupt models the DMG interrupt controller: five prioritized
// lines, each with an independent enabled/requested pair, gated by a single
// master-enable flip-flop checked between CPU instructions.
package interrupt

// Line identifies one of the five interrupt sources, in hardware priority
// order (lower value wins when more than one line is pending).
type Line uint8

const (
	VBlank Line = iota
	LCDStat
	Timer
	Serial
	Joypad

	lineCount
)

// Vector returns the fixed dispatch address for a line.
func (l Line) Vector() uint16 {
	switch l {
	case VBlank:
		return 0x0040
	case LCDStat:
		return 0x0048
	case Timer:
		return 0x0050
	case Serial:
		return 0x0058
	case Joypad:
		return 0x0060
	default:
		panic("interrupt: unknown line")
	}
}

func (l Line) String() string {
	switch l {
	case VBlank:
		return "vblank"
	case LCDStat:
		return "lcd_status"
	case Timer:
		return "timer"
	case Serial:
		return "serial"
	case Joypad:
		return "joypad"
	default:
		return "unknown"
	}
}

// line holds the two independent booleans hardware tracks per interrupt
// source: whether it is enabled (IE) and whether it has fired (IF).
type line struct {
	enabled   bool
	requested bool
}

// Controller is the DMG interrupt controller: IE/IF registers plus the IME
// master-enable flag, exposed as a small typed API instead of raw register
// bytes so the CPU dispatch loop never has to hand-decode bit positions.
type Controller struct {
	lines [lineCount]line
	ime   bool
}

// New returns a controller with everything disabled, matching a fresh IE/IF
// pair of 0x00 at power-on (IME always starts cleared on the DMG).
func New() *Controller {
	return &Controller{}
}

// SetIME sets or clears the interrupt master enable flag.
func (c *Controller) SetIME(on bool) {
	c.ime = on
}

// IME reports the current master-enable state.
func (c *Controller) IME() bool {
	return c.ime
}

// Request marks a line as pending. Called by hardware conditions (PPU mode
// transitions, TIMA overflow, serial completion, joypad edges) as well as by
// a bus write to 0xFF0F.
func (c *Controller) Request(l Line) {
	c.lines[l].requested = true
}

// ClearRequest clears a line's pending flag, used after dispatch and by
// direct writes to 0xFF0F.
func (c *Controller) ClearRequest(l Line) {
	c.lines[l].requested = false
}

// SetRequested sets a line's pending flag to an explicit value; used when
// writing the whole IF register at once.
func (c *Controller) SetRequested(l Line, on bool) {
	c.lines[l].requested = on
}

// Requested reports whether a line is currently pending.
func (c *Controller) Requested(l Line) bool {
	return c.lines[l].requested
}

// SetEnabled sets a line's enabled flag, used when writing the IE register.
func (c *Controller) SetEnabled(l Line, on bool) {
	c.lines[l].enabled = on
}

// Enabled reports whether a line is enabled.
func (c *Controller) Enabled(l Line) bool {
	return c.lines[l].enabled
}

// Pending reports whether a line is both enabled and requested.
func (c *Controller) Pending(l Line) bool {
	return c.lines[l].enabled && c.lines[l].requested
}

// AnyPending reports whether any line is enabled and requested, regardless
// of IME. Used by the HALT protocol, which cares about pending interrupts
// even while IME is clear.
func (c *Controller) AnyPending() bool {
	for l := Line(0); l < lineCount; l++ {
		if c.Pending(l) {
			return true
		}
	}
	return false
}

// Highest returns the highest-priority enabled+requested line, in priority
// order (VBlank first). ok is false if nothing is pending.
func (c *Controller) Highest() (l Line, ok bool) {
	for i := Line(0); i < lineCount; i++ {
		if c.Pending(i) {
			return i, true
		}
	}
	return 0, false
}

// IF returns the interrupt flag register (0xFF0F) as hardware encodes it:
// one bit per line, upper three bits always read as 1.
func (c *Controller) IF() byte {
	var b byte
	for i := Line(0); i < lineCount; i++ {
		if c.lines[i].requested {
			b |= 1 << uint(i)
		}
	}
	return b | 0xE0
}

// WriteIF applies a write to 0xFF0F: only the low five bits are meaningful.
func (c *Controller) WriteIF(value byte) {
	for i := Line(0); i < lineCount; i++ {
		c.lines[i].requested = value&(1<<uint(i)) != 0
	}
}

// IE returns the interrupt enable register (0xFFFF).
func (c *Controller) IE() byte {
	var b byte
	for i := Line(0); i < lineCount; i++ {
		if c.lines[i].enabled {
			b |= 1 << uint(i)
		}
	}
	return b
}

// WriteIE applies a write to 0xFFFF.
func (c *Controller) WriteIE(value byte) {
	for i := Line(0); i < lineCount; i++ {
		c.lines[i].enabled = value&(1<<uint(i)) != 0
	}
}
