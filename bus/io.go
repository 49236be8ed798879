package bus

import (
	"github.com/retropix/psxcore/dma"
	"github.com/retropix/psxcore/internal/logger"
	"github.com/retropix/psxcore/memory"
)

// readIO/writeIO decode the 0x1F801000-0x1F802000 MMIO window into the
// individual peripheral register blocks. width is 1, 2, or 4 bytes; every
// peripheral register is ultimately a 16- or 32-bit value, so sub-word
// accesses are widened/narrowed here rather than in each peripheral.
func (b *Bus) readIO(addr uint32, width int) uint32 {
	switch {
	case addr >= memory.IRQBase && addr < memory.IRQBase+8:
		if addr == memory.IRQBase {
			return uint32(b.IRQ.Stat())
		}
		return uint32(b.IRQ.Mask())

	case addr >= memory.DMABase && addr < memory.DMABase+0x80:
		off := addr - memory.DMABase
		if off == 0x70 {
			return b.DMA.ReadControlRegister()
		}
		if off == 0x74 {
			return b.DMA.ReadInterruptRegister()
		}
		port := dma.Port(off / 0x10)
		return b.DMA.ReadChannelReg(port, off%0x10)

	case addr >= memory.TimerBase && addr < memory.TimerBase+0x30:
		off := addr - memory.TimerBase
		idx := int(off / 0x10)
		switch off % 0x10 {
		case 0x0:
			return uint32(b.Timers.ReadCounter(idx))
		case 0x4:
			return uint32(b.Timers.ReadMode(idx))
		case 0x8:
			return uint32(b.Timers.ReadTarget(idx))
		}
		return 0

	case addr >= memory.GPUBase && addr < memory.GPUBase+8:
		if addr == memory.GPUBase {
			return b.GPU.GPUREAD()
		}
		return b.GPU.GPUSTAT()

	case addr >= memory.MDECBase && addr < memory.MDECBase+8:
		if addr == memory.MDECBase {
			return 0
		}
		return b.MDEC.Status()

	case addr >= memory.SPUBase && addr < memory.SPUBase+0x280:
		return uint32(readSPU16(b, addr-memory.SPUBase))

	case addr >= memory.CDROMBase && addr < memory.CDROMBase+4:
		return uint32(b.readCDROM(addr - memory.CDROMBase))

	case addr >= memory.PeripheralBase && addr < memory.PeripheralBase+0x20:
		off := addr - memory.PeripheralBase
		switch off {
		case 0x0:
			return uint32(b.SIO0.ReadData())
		case 0x4:
			return b.SIO0.Status()
		}
		return 0

	default:
		logger.Log("bus", "unmapped IO read", "addr", addr, "width", width)
		return 0xFFFFFFFF
	}
}

func (b *Bus) writeIO(addr uint32, v uint32, width int) {
	switch {
	case addr >= memory.IRQBase && addr < memory.IRQBase+8:
		if addr == memory.IRQBase {
			b.IRQ.AcknowledgeWrite(uint16(v))
		} else {
			b.IRQ.SetMask(uint16(v))
		}

	case addr >= memory.DMABase && addr < memory.DMABase+0x80:
		off := addr - memory.DMABase
		if off == 0x70 {
			b.DMA.WriteControlRegister(v)
			return
		}
		if off == 0x74 {
			b.DMA.WriteInterruptRegister(v)
			return
		}
		port := dma.Port(off / 0x10)
		b.DMA.WriteChannelReg(port, off%0x10, v)

	case addr >= memory.TimerBase && addr < memory.TimerBase+0x30:
		off := addr - memory.TimerBase
		idx := int(off / 0x10)
		switch off % 0x10 {
		case 0x0:
			b.Timers.WriteCounter(idx, uint16(v))
		case 0x4:
			b.Timers.WriteMode(idx, uint16(v))
		case 0x8:
			b.Timers.WriteTarget(idx, uint16(v))
		}

	case addr >= memory.GPUBase && addr < memory.GPUBase+8:
		if addr == memory.GPUBase {
			b.GPU.WriteGP0(v)
		} else {
			b.GPU.WriteGP1(v)
		}

	case addr >= memory.MDECBase && addr < memory.MDECBase+8:
		if addr == memory.MDECBase {
			b.MDEC.WriteData(v)
		} else {
			b.MDEC.WriteCommand(v)
		}

	case addr >= memory.SPUBase && addr < memory.SPUBase+0x280:
		b.SPU.WriteRegister(addr-memory.SPUBase, uint16(v))

	case addr >= memory.CDROMBase && addr < memory.CDROMBase+4:
		b.writeCDROM(addr-memory.CDROMBase, uint8(v))

	case addr >= memory.PeripheralBase && addr < memory.PeripheralBase+0x20:
		off := addr - memory.PeripheralBase
		switch off {
		case 0x0:
			b.SIO0.WriteData(uint8(v))
		case 0x8:
			b.SIO0.SetSelectedPort(int(v))
		}

	case addr >= memory.MemControlBase && addr < memory.MemControl2+8:
		// bus-width/delay tuning registers: accepted and discarded, since
		// this core doesn't model per-region bus timing.

	default:
		logger.Log("bus", "unmapped IO write", "addr", addr, "value", v, "width", width)
	}
}

func readSPU16(b *Bus, off uint32) uint16 {
	// Most SPU registers are write-heavy control state; only voice status
	// (ENDX) and key-on/off echo are commonly read back.
	if off == 0x1BC {
		return uint16(b.SPU.VoiceStatus())
	}
	if off == 0x1BE {
		return uint16(b.SPU.VoiceStatus() >> 16)
	}
	return 0
}

// readCDROM/writeCDROM implement the documented index-switched register at
// 0x1F801800: register 0 (status/index) is always readable; registers 1-3
// mean different things depending on the 2-bit index latched in register 0.
func (b *Bus) readCDROM(reg uint32) uint8 {
	switch reg {
	case 0:
		return 0 // index + flags; approximated as index 0 always ready
	case 1:
		return b.CDROM.PopResponse()
	case 2:
		return b.CDROM.ReadDataByte()
	default:
		return 0
	}
}

func (b *Bus) writeCDROM(reg uint32, v uint8) {
	switch reg {
	case 0:
		// index select: this core's Controller doesn't gate behavior by
		// index since ExecCommand/PushParam are called directly.
	case 1:
		b.CDROM.ExecCommand(v)
	case 2:
		b.CDROM.PushParam(v)
	}
}
