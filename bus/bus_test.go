package bus_test

import (
	"testing"

	"github.com/retropix/psxcore/bus"
	"github.com/retropix/psxcore/cdrom"
	"github.com/retropix/psxcore/dma"
	"github.com/retropix/psxcore/gpu"
	"github.com/retropix/psxcore/irq"
	"github.com/retropix/psxcore/mdec"
	"github.com/retropix/psxcore/memory"
	"github.com/retropix/psxcore/sio0"
	"github.com/retropix/psxcore/spu"
	"github.com/retropix/psxcore/timers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *bus.Bus {
	b := &bus.Bus{
		RAM:        memory.NewRAM(),
		Scratchpad: memory.NewScratchpad(),
		IRQ:        irq.New(),
		GPU:        gpu.New(),
		SPU:        spu.New(),
		MDEC:       mdec.New(),
		SIO0:       sio0.New(),
	}
	b.DMA = dma.New(b.RAM, func() {})
	b.Timers = timers.New(func(int) {}, nil, nil)
	disc := &stubDisc{}
	b.CDROM = cdrom.New(disc, func(_ int, fn func()) { fn() }, func(cdrom.InterruptTag) {})
	return b
}

type stubDisc struct{}

func (stubDisc) ReadSector(int) ([]byte, error) { return make([]byte, 2352), nil }
func (stubDisc) TrackCount() int                { return 1 }
func (stubDisc) Region() string                 { return "SCEA" }

func TestRAMRoundTripThroughKSEG0AndKSEG1(t *testing.T) {
	b := newTestBus()
	b.Write32(0x00001000, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), b.Read32(0x80001000), "KSEG0 must alias KUSEG RAM")
	assert.Equal(t, uint32(0xCAFEBABE), b.Read32(0xA0001000), "KSEG1 must alias KUSEG RAM")
}

func TestGPUSTATReadableThroughBus(t *testing.T) {
	b := newTestBus()
	stat := b.Read32(memory.GPUBase + 4)
	require.NotEqual(t, uint32(0), stat)
}

func TestIRQAcknowledgeWriteClearsLatchedBits(t *testing.T) {
	b := newTestBus()
	b.IRQ.Raise(irq.VBlank)
	require.True(t, b.InterruptPending() == false, "VBlank must stay masked until I_MASK allows it")
	b.Write32(memory.IRQBase+4, uint32(irq.VBlank))
	assert.True(t, b.InterruptPending())
	b.Write32(memory.IRQBase, 0)
	assert.False(t, b.InterruptPending())
}
