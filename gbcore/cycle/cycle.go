// Package cycle defines the two clock units used across the emulator core:
// machine cycles (the bus access granule) and time cycles (the raw 4.194304 MHz
// clock tick). Keeping them as distinct types means a stray mix of the two
// units is a compile error rather than a timing bug discovered at 3am against
// a blargg ROM.
package cycle

// PerM is the number of T-cycles in a single M-cycle. Fixed by hardware.
const PerM = 4

// M is a count of machine cycles, the granularity at which the bus is accessed.
type M int

// T is a count of time cycles, the granularity at which the PPU and timer advance.
type T int

// ToT converts a machine-cycle count to its equivalent time-cycle count.
func (m M) ToT() T {
	return T(int(m) * PerM)
}

// ToM converts a time-cycle count to whole machine cycles, truncating any
// remainder. Every instruction timing in this core is a whole number of
// M-cycles, so a non-zero remainder indicates a caller bug.
func (t T) ToM() M {
	return M(int(t) / PerM)
}

// Add returns the sum of two machine-cycle counts.
func (m M) Add(other M) M {
	return m + other
}
