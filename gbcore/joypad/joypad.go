// Package joypad models the P1 register (0xFF00): eight physical buttons
// multiplexed two-at-a-time onto the register's low nibble by the
// selection bits the game writes.
package joypad

// Button identifies one of the eight DMG inputs.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad tracks which buttons are currently held and lazily derives the P1
// register value from that state plus the last-written selection bits,
// rather than keeping P1 itself as the source of truth -- the byte is
// recomputed on every read, so there is no cached copy to invalidate.
type Joypad struct {
	buttons  uint8 // bits 0-3: A,B,Select,Start; 1 = released
	dpad     uint8 // bits 0-3: Right,Left,Up,Down; 1 = released
	selector uint8 // raw bits 4-5 as last written to P1

	// OnEdge fires when any button transitions from released to pressed,
	// the condition that raises the joypad interrupt.
	OnEdge func()
}

// New returns a joypad with every button released, matching the P1 state
// observed at power-on.
func New() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Register computes the current P1 byte: bits 6-7 always read 1, bits 4-5
// echo the last-written selector, and bits 0-3 reflect whichever button
// group(s) are selected -- ANDed together if both are, or 0xF if neither.
func (j *Joypad) Register() uint8 {
	result := uint8(0b1100_0000) | j.selector

	selectDpad := j.selector&0b0001_0000 == 0
	selectButtons := j.selector&0b0010_0000 == 0

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// WriteSelect applies a write to P1; only bits 4-5 are writable.
func (j *Joypad) WriteSelect(value uint8) {
	j.selector = value & 0b0011_0000
}

// Press marks a button held. A release-to-press transition is the edge
// that triggers OnEdge, matching real hardware's interrupt condition.
func (j *Joypad) Press(b Button) {
	before := j.Register()
	j.setBit(b, false)
	after := j.Register()

	if j.OnEdge != nil && before&^after != 0 {
		j.OnEdge()
	}
}

// Release marks a button not held.
func (j *Joypad) Release(b Button) {
	j.setBit(b, true)
}

func (j *Joypad) setBit(b Button, released bool) {
	var group *uint8
	var bitPos uint8

	switch b {
	case Right:
		group, bitPos = &j.dpad, 0
	case Left:
		group, bitPos = &j.dpad, 1
	case Up:
		group, bitPos = &j.dpad, 2
	case Down:
		group, bitPos = &j.dpad, 3
	case A:
		group, bitPos = &j.buttons, 0
	case B:
		group, bitPos = &j.buttons, 1
	case Select:
		group, bitPos = &j.buttons, 2
	case Start:
		group, bitPos = &j.buttons, 3
	default:
		panic("joypad: unknown button")
	}

	if released {
		*group |= 1 << bitPos
	} else {
		*group &^= 1 << bitPos
	}
}
