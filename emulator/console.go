// Package emulator assembles a complete console instance: it owns the bus
// context, the CPU, and the scheduler, and drives them through one video
// frame at a time. This is the single place that wires config.Config into
// concrete hardware instances.
package emulator

import (
	"io"

	"github.com/retropix/psxcore/bus"
	"github.com/retropix/psxcore/cdrom"
	"github.com/retropix/psxcore/config"
	"github.com/retropix/psxcore/cpu"
	"github.com/retropix/psxcore/dma"
	"github.com/retropix/psxcore/gpu"
	"github.com/retropix/psxcore/internal/logger"
	"github.com/retropix/psxcore/internal/scheduler"
	"github.com/retropix/psxcore/irq"
	"github.com/retropix/psxcore/mdec"
	"github.com/retropix/psxcore/memory"
	"github.com/retropix/psxcore/savestate"
	"github.com/retropix/psxcore/sio0"
	"github.com/retropix/psxcore/spu"
	"github.com/retropix/psxcore/timers"
)

// CyclesPerFrame approximates the NTSC CPU clock (33.8688 MHz) divided by
// the ~60 Hz field rate.
const CyclesPerFrame = 564480

// Console is one fully wired PS1: CPU + bus + every peripheral, ready to
// be driven frame by frame via RunFrame.
type Console struct {
	CPU       *cpu.CPU
	Bus       *bus.Bus
	Scheduler *scheduler.Scheduler

	Pad1, Pad2   *sio0.Pad
	MemCard1     *sio0.MemoryCard
	cfg          config.Config
	frameDone    func()

	// pendingCDROMFn is the single in-flight CD-ROM drive-latency
	// callback. The scheduler's SpuCdClock event type carries no payload
	// of its own, so the Console holds the one closure it fires.
	pendingCDROMFn func()
}

// New builds a Console from cfg and an already-loaded BIOS image: it
// assembles every peripheral, wires the bus, and puts the CPU at the BIOS
// reset vector. cfg.EXEPath is only logged here: New neither loads nor
// sideloads the EXE and does not run the BIOS up to its shell entry point;
// an EXE is patched in only when the caller invokes SideloadEXE.
func New(cfg config.Config, biosImage []byte, disc cdrom.Disc) (*Console, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bios, err := memory.NewBIOS(biosImage)
	if err != nil {
		return nil, err
	}

	c := &Console{cfg: cfg}
	c.Scheduler = scheduler.New()

	irqRegs := irq.New()

	b := &bus.Bus{
		RAM:        memory.NewRAM(),
		Scratchpad: memory.NewScratchpad(),
		BIOS:       bios,
		IRQ:        irqRegs,
		GPU:        gpu.New(),
		SPU:        spu.New(),
		MDEC:       mdec.New(),
		SIO0:       sio0.New(),
	}
	b.Timers = timers.New(
		func(idx int) { irqRegs.Raise(timerIRQSource(idx)) },
		b.GPU.HBlank,
		func() { b.GPU.VBlank(); irqRegs.Raise(irq.VBlank) },
	)
	b.CDROM = cdrom.New(disc, c.scheduleCDROMDelay, func(tag cdrom.InterruptTag) {
		irqRegs.Raise(irq.CDROM)
		_ = tag
	})

	dmaCtrl := dma.New(b.RAM, func() { irqRegs.Raise(irq.DMA) })
	dmaCtrl.AttachPeripheral(dma.PortGPU, gpuDMAAdapter{b.GPU})
	dmaCtrl.AttachPeripheral(dma.PortSPU, spuDMAAdapter{b.SPU})
	b.DMA = dmaCtrl

	c.Pad1 = sio0.NewPad()
	c.Pad2 = sio0.NewPad()
	c.MemCard1 = sio0.NewMemoryCard()
	b.SIO0.AttachPad(0, c.Pad1)
	b.SIO0.AttachCard(0, c.MemCard1)
	b.SIO0.AttachPad(1, c.Pad2)

	c.Bus = b
	c.CPU = cpu.New()
	c.CPU.SetPC(0xBFC00000) // BIOS reset vector, KSEG1

	if cfg.EXEPath != "" {
		logger.Log("emulator", "EXE sideload requested", "path", cfg.EXEPath)
	}

	return c, nil
}

func timerIRQSource(idx int) irq.Source {
	switch idx {
	case 0:
		return irq.Timer0
	case 1:
		return irq.Timer1
	default:
		return irq.Timer2
	}
}

// scheduleCDROMDelay adapts the CD-ROM controller's "run this after N
// cycles" requirement onto the scheduler's SpuCdClock event slot, which the
// scheduler package names for exactly this shared CD/SPU timing domain.
func (c *Console) scheduleCDROMDelay(cycles int, fn func()) {
	c.pendingCDROMFn = fn
	c.Scheduler.UpdateOrPush(scheduler.SpuCdClock, c.Scheduler.Cycle()+uint64(cycles))
}

// RunFrame steps the CPU and every scheduler-driven peripheral until one
// video field's worth of CPU cycles has elapsed.
func (c *Console) RunFrame() {
	target := c.Scheduler.Cycle() + CyclesPerFrame
	for c.Scheduler.Cycle() < target {
		cycles := c.CPU.Step(c.Bus)
		c.Scheduler.IncrementCPUCycles(uint64(cycles))
		c.Bus.Timers.Step(int(cycles))
		for c.Scheduler.IsEventReady() {
			ev, ok := c.Scheduler.PopReadyEvent()
			if !ok {
				break
			}
			if ev.Type == scheduler.SpuCdClock && c.pendingCDROMFn != nil {
				fn := c.pendingCDROMFn
				c.pendingCDROMFn = nil
				fn()
			}
		}
	}
	if c.frameDone != nil {
		c.frameDone()
	}
}

// OnFrame registers a callback RunFrame invokes once per completed field,
// used by hostharness to hand a completed frame to the video thread.
func (c *Console) OnFrame(fn func()) { c.frameDone = fn }

// SideloadEXE patches a PS-EXE's .text section directly into RAM and
// redirects execution to its entry point, bypassing disc boot entirely.
// It must be called only once the BIOS has reached its "ready for
// cartridge" idle loop in a real console; this core instead calls it
// immediately after reset, which is the documented fast-boot shortcut.
func SideloadEXE(c *Console, exe []byte) error {
	hdr, err := parseEXEHeader(exe)
	if err != nil {
		return err
	}
	for i, b := range hdr.Text {
		c.Bus.RAM.Write8(hdr.RAMDest+uint32(i), b)
	}
	c.CPU.SetPC(hdr.InitialPC)
	c.CPU.SetGPR(28, hdr.InitialGP)
	c.CPU.SetGPR(29, hdr.InitialSP)
	c.CPU.SetGPR(30, hdr.InitialSP)
	return nil
}

// SaveState encodes the CPU, GPU and SPU snapshots and main RAM into one
// stream. The scratchpad, DMA, timers, CD-ROM, MDEC, SIO0, interrupt
// registers and scheduler queue are not saved, so LoadState leaves them as
// they are.
func (c *Console) SaveState(w io.Writer) error {
	sw := savestate.NewWriter()
	if err := sw.Put("cpu", c.CPU.SaveState()); err != nil {
		return err
	}
	if err := sw.Put("gpu", c.Bus.GPU.SaveState()); err != nil {
		return err
	}
	if err := sw.Put("spu", c.Bus.SPU.SaveState()); err != nil {
		return err
	}
	if err := sw.Put("ram", c.Bus.RAM.Raw()); err != nil {
		return err
	}
	return sw.Encode(w)
}

// LoadState restores a stream written by SaveState.
func (c *Console) LoadState(r io.Reader) error {
	sr, err := savestate.NewReader(r)
	if err != nil {
		return err
	}
	var cpuSnap cpu.Snapshot
	if err := sr.Get("cpu", &cpuSnap); err != nil {
		return err
	}
	var gpuSnap gpu.Snapshot
	if err := sr.Get("gpu", &gpuSnap); err != nil {
		return err
	}
	var spuSnap spu.Snapshot
	if err := sr.Get("spu", &spuSnap); err != nil {
		return err
	}
	var ram []byte
	if err := sr.Get("ram", &ram); err != nil {
		return err
	}
	c.CPU.LoadState(cpuSnap)
	c.Bus.GPU.LoadState(gpuSnap)
	c.Bus.SPU.LoadState(spuSnap)
	copy(c.Bus.RAM.Raw(), ram)
	return nil
}

// gpuDMAAdapter/spuDMAAdapter satisfy dma.Peripheral by routing DMA words
// through the GPU's GP0 FIFO and the SPU's sound-RAM transfer port,
// respectively -- the dma package stays ignorant of GPU/SPU internals.
type gpuDMAAdapter struct{ g *gpu.GPU }

func (a gpuDMAAdapter) DMAWrite(word uint32) { a.g.WriteGP0(word) }
func (a gpuDMAAdapter) DMARead() uint32      { return a.g.GPUREAD() }

type spuDMAAdapter struct{ s *spu.SPU }

func (a spuDMAAdapter) DMAWrite(word uint32) {
	a.s.WriteRegister(0x1A8, uint16(word))
	a.s.WriteRegister(0x1A8, uint16(word>>16))
}
func (a spuDMAAdapter) DMARead() uint32 {
	return uint32(a.s.RAMRead16(0))
}
