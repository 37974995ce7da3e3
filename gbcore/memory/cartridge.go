package memory

import (
	"fmt"
	"log/slog"

	"dmgcore/gbcore/bit"
)

const titleLength = 11

const (
	titleAddress           = 0x134
	cgbFlagAddress         = 0x143
	cartridgeTypeAddress   = 0x147
	romSizeAddress         = 0x148
	ramSizeAddress         = 0x149
	headerChecksumAddress  = 0x14D
	globalChecksumAddress  = 0x14E
	computedChecksumStart  = 0x134
	computedChecksumEnd    = 0x14C
)

// MBCType identifies which memory bank controller a cartridge's header
// declares, independent of the specific chip revision.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC1MultiType
	MBC2Type
	MBC3Type
	MBC5Type
	MBCUnknownType
)

// Cartridge holds raw ROM bytes plus the header fields needed to choose and
// configure the right MBC implementation.
type Cartridge struct {
	data           []byte
	title          string
	headerChecksum uint8
	globalChecksum uint16
	version        uint8

	mbcType      MBCType
	hasBattery   bool
	hasRTC       bool
	hasRumble    bool
	ramBankCount uint8
}

// NewCartridge creates an empty cartridge, useful only for debugging purposes.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:    make([]byte, 0x10000),
		mbcType: NoMBCType,
	}
}

// NewCartridgeWithData initializes a new Cartridge from a slice of ROM
// bytes, parsing just enough of the header to pick an MBC and its RAM size.
// A failing header checksum is logged as a warning, not treated as fatal:
// plenty of legitimately-dumped ROMs have a wrong checksum byte.
func NewCartridgeWithData(bytes []byte) *Cartridge {
	titleBytes := bytes[titleAddress : titleAddress+titleLength]

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		title:          cleanGameboyTitle(titleBytes),
		headerChecksum: bytes[headerChecksumAddress],
		globalChecksum: bit.Combine(bytes[globalChecksumAddress], bytes[globalChecksumAddress+1]),
		version:        bytes[0x14C],
	}
	copy(cart.data, bytes)

	cart.parseCartridgeType(bytes[cartridgeTypeAddress])
	cart.ramBankCount = ramBankCountFromHeader(bytes[ramSizeAddress])

	if computed := computeHeaderChecksum(bytes); computed != cart.headerChecksum {
		slog.Warn("cartridge header checksum mismatch", "title", cart.title,
			"computed", fmt.Sprintf("0x%02X", computed))
	}

	return cart
}

func (c *Cartridge) parseCartridgeType(raw byte) {
	switch raw {
	case 0x00:
		c.mbcType = NoMBCType
	case 0x01, 0x02, 0x03:
		c.mbcType = MBC1Type
		c.hasBattery = raw == 0x03
	case 0x05, 0x06:
		c.mbcType = MBC2Type
		c.hasBattery = raw == 0x06
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		c.mbcType = MBC3Type
		c.hasRTC = raw == 0x0F || raw == 0x10
		c.hasBattery = raw == 0x0F || raw == 0x10 || raw == 0x13
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		c.mbcType = MBC5Type
		c.hasRumble = raw >= 0x1C
		c.hasBattery = raw == 0x1B || raw == 0x1E
	default:
		c.mbcType = MBCUnknownType
	}
}

func ramBankCountFromHeader(raw byte) uint8 {
	switch raw {
	case 0x00:
		return 0
	case 0x02:
		return 1
	case 0x03:
		return 4
	case 0x04:
		return 16
	case 0x05:
		return 8
	default:
		return 0
	}
}

// computeHeaderChecksum reproduces the boot ROM's own header checksum
// algorithm: x = 0; for each byte 0x134-0x14C: x = x - byte - 1.
func computeHeaderChecksum(data []byte) uint8 {
	var x uint8
	for i := computedChecksumStart; i <= computedChecksumEnd; i++ {
		x = x - data[i] - 1
	}
	return x
}

// Title returns the cleaned, human-readable game title from the header.
func (c *Cartridge) Title() string {
	return c.title
}

// ReadByte reads a byte at the specified address. Does not check bounds, so the caller must make sure the
// address is valid for the cartridge.
func (c Cartridge) ReadByte(addr uint16) uint8 {
	return c.data[addr]
}
