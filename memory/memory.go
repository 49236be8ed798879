// Package memory implements the PS1's main RAM, scratchpad, BIOS ROM, and
// the memory-control registers, plus KUSEG/KSEG0/KSEG1 address translation.
// It does not decode the MMIO region itself — that routing lives in the
// bus package, which composes this package with every peripheral.
package memory

import "github.com/retropix/psxcore/internal/psxerr"

const (
	RAMSize        = 2 * 1024 * 1024
	ScratchpadSize = 1024
	BIOSSize       = 512 * 1024
)

// Translate strips the segment bits of a CPU virtual address, mapping
// KUSEG (0x00000000-0x7FFFFFFF), KSEG0 (0x80000000-0x9FFFFFFF, cached) and
// KSEG1 (0xA0000000-0xBFFFFFFF, uncached) all onto the same physical
// address space. KSEG2 (0xC0000000 and above) only has bit 31 cleared,
// which lands outside every physical region; only the cache-control
// register lives there, and the bus recognizes it from the untranslated
// address.
func Translate(addr uint32) uint32 {
	switch addr >> 29 {
	case 4, 5: // 0x80000000-0xBFFFFFFF
		return addr & 0x1FFFFFFF
	default:
		return addr & 0x7FFFFFFF
	}
}

// RAM is the 2 MiB main memory. The real console mirrors it across a larger
// logical window; the bus is responsible for masking addresses down to
// RAMSize before indexing.
type RAM struct {
	data [RAMSize]byte
}

func NewRAM() *RAM { return &RAM{} }

func (m *RAM) Read8(addr uint32) uint8   { return m.data[addr%RAMSize] }
func (m *RAM) Read16(addr uint32) uint16 { return le16(m.data[addr%RAMSize:]) }
func (m *RAM) Read32(addr uint32) uint32 { return le32(m.data[addr%RAMSize:]) }

func (m *RAM) Write8(addr uint32, v uint8)   { m.data[addr%RAMSize] = v }
func (m *RAM) Write16(addr uint32, v uint16) { putLE16(m.data[addr%RAMSize:], v) }
func (m *RAM) Write32(addr uint32, v uint32) { putLE32(m.data[addr%RAMSize:], v) }

// Raw exposes the backing array for DMA block transfers that need to move
// many words at once without per-word call overhead.
func (m *RAM) Raw() []byte { return m.data[:] }

// Scratchpad is the 1 KiB fast data-cache-as-RAM region at 0x1F800000.
type Scratchpad struct {
	data [ScratchpadSize]byte
}

func NewScratchpad() *Scratchpad { return &Scratchpad{} }

func (s *Scratchpad) Read8(addr uint32) uint8   { return s.data[addr%ScratchpadSize] }
func (s *Scratchpad) Read16(addr uint32) uint16 { return le16(s.data[addr%ScratchpadSize:]) }
func (s *Scratchpad) Read32(addr uint32) uint32 { return le32(s.data[addr%ScratchpadSize:]) }

func (s *Scratchpad) Write8(addr uint32, v uint8)   { s.data[addr%ScratchpadSize] = v }
func (s *Scratchpad) Write16(addr uint32, v uint16) { putLE16(s.data[addr%ScratchpadSize:], v) }
func (s *Scratchpad) Write32(addr uint32, v uint32) { putLE32(s.data[addr%ScratchpadSize:], v) }

// BIOS is the 512 KiB read-only boot ROM.
type BIOS struct {
	data [BIOSSize]byte
}

// NewBIOS validates the supplied image is exactly BIOSSize bytes,
// returning InvalidBios otherwise.
func NewBIOS(image []byte) (*BIOS, error) {
	if len(image) != BIOSSize {
		return nil, psxerr.InvalidBios.Wrap("got %d bytes, want %d", len(image), BIOSSize)
	}
	b := &BIOS{}
	copy(b.data[:], image)
	return b, nil
}

func (b *BIOS) Read8(addr uint32) uint8   { return b.data[addr%BIOSSize] }
func (b *BIOS) Read16(addr uint32) uint16 { return le16(b.data[addr%BIOSSize:]) }
func (b *BIOS) Read32(addr uint32) uint32 { return le32(b.data[addr%BIOSSize:]) }

// Patch32 overwrites a BIOS word in the in-memory image. Nothing in the
// core calls it; emulator.SideloadEXE writes the EXE into main RAM instead.
func (b *BIOS) Patch32(addr uint32, v uint32) { putLE32(b.data[addr%BIOSSize:], v) }

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
