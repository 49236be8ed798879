// Package bus assembles every peripheral into the single address space the
// CPU sees, decoding each access into RAM, scratchpad, BIOS, or one of the
// MMIO peripheral register blocks. It implements cpu.Bus, and is
// deliberately the only package that imports every other hardware
// package: no peripheral talks to another peripheral directly, they're
// all wired together here exactly once per tick -- an assembled
// aggregate, not shared ownership.
package bus

import (
	"github.com/retropix/psxcore/cdrom"
	"github.com/retropix/psxcore/dma"
	"github.com/retropix/psxcore/gpu"
	"github.com/retropix/psxcore/internal/logger"
	"github.com/retropix/psxcore/irq"
	"github.com/retropix/psxcore/mdec"
	"github.com/retropix/psxcore/memory"
	"github.com/retropix/psxcore/sio0"
	"github.com/retropix/psxcore/spu"
	"github.com/retropix/psxcore/timers"
)

// Bus is the assembled hardware context a single tick operates over. It
// holds pointers, not values: every field is owned by whatever constructed
// it (typically the emulator package's Console), and Bus itself owns
// nothing but the routing logic.
type Bus struct {
	RAM        *memory.RAM
	Scratchpad *memory.Scratchpad
	BIOS       *memory.BIOS
	IRQ        *irq.Registers
	DMA        *dma.Controller
	Timers     *timers.Controller
	GPU        *gpu.GPU
	SPU        *spu.SPU
	CDROM      *cdrom.Controller
	MDEC       *mdec.MDEC
	SIO0       *sio0.Controller

	cacheControl uint32
}

func (b *Bus) InterruptPending() bool {
	return b.IRQ.Pending()
}

func (b *Bus) Read8(addr uint32) uint8 {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		return b.RAM.Read8(phys)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		return b.Scratchpad.Read8(phys - memory.ScratchpadBase)
	case phys >= memory.BIOSBase && phys < memory.BIOSTop:
		return b.BIOS.Read8(phys - memory.BIOSBase)
	case phys >= memory.IOBase && phys < memory.IOTop:
		return uint8(b.readIO(phys, 1))
	default:
		logger.Log("bus", "unmapped byte read", "addr", addr)
		return 0xFF
	}
}

func (b *Bus) Read16(addr uint32) uint16 {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		return b.RAM.Read16(phys)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		return b.Scratchpad.Read16(phys - memory.ScratchpadBase)
	case phys >= memory.BIOSBase && phys < memory.BIOSTop:
		return b.BIOS.Read16(phys - memory.BIOSBase)
	case phys >= memory.IOBase && phys < memory.IOTop:
		return uint16(b.readIO(phys, 2))
	default:
		logger.Log("bus", "unmapped halfword read", "addr", addr)
		return 0xFFFF
	}
}

func (b *Bus) Read32(addr uint32) uint32 {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		return b.RAM.Read32(phys)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		return b.Scratchpad.Read32(phys - memory.ScratchpadBase)
	case phys >= memory.BIOSBase && phys < memory.BIOSTop:
		return b.BIOS.Read32(phys - memory.BIOSBase)
	case phys >= memory.IOBase && phys < memory.IOTop:
		return b.readIO(phys, 4)
	case addr>>29 == 7: // KSEG2 cache control register
		return b.cacheControl
	default:
		logger.Log("bus", "unmapped word read", "addr", addr)
		return 0xFFFFFFFF
	}
}

func (b *Bus) Write8(addr uint32, v uint8) {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		b.RAM.Write8(phys, v)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		b.Scratchpad.Write8(phys-memory.ScratchpadBase, v)
	case phys >= memory.IOBase && phys < memory.IOTop:
		b.writeIO(phys, uint32(v), 1)
	default:
		logger.Log("bus", "unmapped byte write", "addr", addr)
	}
}

func (b *Bus) Write16(addr uint32, v uint16) {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		b.RAM.Write16(phys, v)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		b.Scratchpad.Write16(phys-memory.ScratchpadBase, v)
	case phys >= memory.IOBase && phys < memory.IOTop:
		b.writeIO(phys, uint32(v), 2)
	default:
		logger.Log("bus", "unmapped halfword write", "addr", addr)
	}
}

func (b *Bus) Write32(addr uint32, v uint32) {
	phys := memory.Translate(addr)
	switch {
	case phys < memory.RAMMirrorTop:
		b.RAM.Write32(phys, v)
	case phys >= memory.ScratchpadBase && phys < memory.ScratchpadTop:
		b.Scratchpad.Write32(phys-memory.ScratchpadBase, v)
	case phys >= memory.IOBase && phys < memory.IOTop:
		b.writeIO(phys, v, 4)
	case addr>>29 == 7:
		b.cacheControl = v
	default:
		logger.Log("bus", "unmapped word write", "addr", addr)
	}
}
