package dma_test

import (
	"testing"

	"github.com/retropix/psxcore/dma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRAM struct {
	words [4096]uint32
}

func (r *fakeRAM) Read32(addr uint32) uint32  { return r.words[(addr/4)%uint32(len(r.words))] }
func (r *fakeRAM) Write32(addr uint32, v uint32) { r.words[(addr/4)%uint32(len(r.words))] = v }

type fakeDevice struct {
	written []uint32
}

func (d *fakeDevice) DMAWrite(w uint32) { d.written = append(d.written, w) }
func (d *fakeDevice) DMARead() uint32   { return 0xCAFEBABE }

func TestOTCClearProducesReverseLinkedList(t *testing.T) {
	ram := &fakeRAM{}
	var irqs int
	c := dma.New(ram, func() { irqs++ })
	c.WriteChannelReg(dma.PortOTC, 0x0, 400) // base address
	c.WriteChannelReg(dma.PortOTC, 0x4, 4)   // 4 entries; manual sync uses only the low halfword
	c.WriteInterruptRegister(0x800000 | (0x800 << uint(dma.PortOTC)))
	c.WriteChannelReg(dma.PortOTC, 0x8, 0x11000002) // direction=toRAM, step=-4, sync=manual, enable+trigger

	// The list walks down from the base address; the last (lowest) of the
	// 4 entries is the terminator.
	require.Equal(t, uint32(0xFFFFFF), ram.Read32(388))
	assert.Equal(t, uint32(396), ram.Read32(400))
}

func TestBlockTransferMovesWordsToDevice(t *testing.T) {
	ram := &fakeRAM{}
	ram.Write32(0, 0x11111111)
	ram.Write32(4, 0x22222222)
	dev := &fakeDevice{}
	c := dma.New(ram, func() {})
	c.AttachPeripheral(dma.PortGPU, dev)
	c.WriteChannelReg(dma.PortGPU, 0x0, 0)
	c.WriteChannelReg(dma.PortGPU, 0x4, 2)
	c.WriteChannelReg(dma.PortGPU, 0x8, 0x11000001) // fromMainRAM, manual sync, enable+trigger

	require.Len(t, dev.written, 2)
	assert.Equal(t, uint32(0x11111111), dev.written[0])
	assert.Equal(t, uint32(0x22222222), dev.written[1])
}

func TestLinkedListTransferFollowsChain(t *testing.T) {
	ram := &fakeRAM{}
	// node at 0: 1 payload word, next at 12
	ram.Write32(0, (12)|(1<<24))
	ram.Write32(4, 0xAAAAAAAA)
	// node at 12: 0 payload words, terminator
	ram.Write32(12, 0xFFFFFF)
	dev := &fakeDevice{}
	c := dma.New(ram, func() {})
	c.AttachPeripheral(dma.PortGPU, dev)
	c.WriteChannelReg(dma.PortGPU, 0x0, 0)
	c.WriteChannelReg(dma.PortGPU, 0x8, 0x11000401) // fromMainRAM, linked-list sync, enable+trigger

	require.Len(t, dev.written, 1)
	assert.Equal(t, uint32(0xAAAAAAAA), dev.written[0])
}
