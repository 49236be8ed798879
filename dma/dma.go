// Package dma implements the 7-channel DMA controller: per-channel
// base-address/block-control/channel-control registers, block-copy,
// linked-list, and OTC (ordering-table-clear) transfer modes, and the
// shared priority/interrupt-enable registers.
package dma

import "github.com/retropix/psxcore/internal/psxerr"

// Port identifies which of the 7 fixed DMA channels a transfer targets.
type Port int

const (
	PortMDECIn Port = iota
	PortMDECOut
	PortGPU
	PortCDROM
	PortSPU
	PortPIO
	PortOTC
	portCount
)

// Direction is the transfer direction bit in channel control.
type Direction int

const (
	ToMainRAM Direction = iota
	FromMainRAM
)

// SyncMode selects how the channel paces its transfer.
type SyncMode int

const (
	SyncManual SyncMode = iota
	SyncBlock
	SyncLinkedList
)

// Channel mirrors one DMA channel's three memory-mapped registers plus the
// derived in-progress state the controller tracks between Step calls.
type Channel struct {
	BaseAddr     uint32
	BlockSize    uint16
	BlockCount   uint16
	Direction    Direction
	AddressStep  int32 // +4 or -4
	SyncMode     SyncMode
	ChoppingDMA  int
	ChoppingCPU  int
	Enable       bool
	Trigger      bool
	Busy         bool

	cursor      uint32
	remainingWords uint32
}

// RAM is the narrow interface the controller needs from main memory: word
// access for block/linked-list transfers plus the OTC channel's reverse
// ordering-table fill.
type RAM interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
}

// Peripheral is implemented by each DMA-capable device (GPU, SPU, CD-ROM,
// MDEC); DMAWrite/DMARead move one word in the transfer's direction.
type Peripheral interface {
	DMAWrite(word uint32)
	DMARead() uint32
}

// Controller owns the 7 channels and the shared DPCR/DICR registers. It
// has no Step method and no scheduler event of its own: a transfer runs to
// completion inside the channel-control write that starts it. It raises
// the shared DMA interrupt line through the raiseIRQ callback handed to
// New.
type Controller struct {
	channels [portCount]Channel
	ram      RAM
	peripherals [portCount]Peripheral

	priority  [portCount]int
	enableIRQ [portCount]bool
	masterIRQEnable bool
	forceIRQ  bool
	irqFlags  uint32

	raiseIRQ func()
}

func New(ram RAM, raiseIRQ func()) *Controller {
	return &Controller{ram: ram, raiseIRQ: raiseIRQ}
}

// AttachPeripheral wires a device into a channel slot; unwired channels
// (PIO in practice, since no PS1 title shipped a parallel-port device this
// core models) silently drop transfers with a logged error.
func (c *Controller) AttachPeripheral(p Port, dev Peripheral) {
	c.peripherals[p] = dev
}

func (c *Controller) channel(p Port) *Channel { return &c.channels[p] }

// IRQPending reports whether DICR's master condition (forced, or an
// enabled channel with its flag set while master enable is on) is true,
// matching the documented "IRQ flags are latched, not edge-triggered"
// behavior.
func (c *Controller) IRQPending() bool {
	if c.forceIRQ {
		return true
	}
	if !c.masterIRQEnable {
		return false
	}
	for p := Port(0); p < portCount; p++ {
		if c.enableIRQ[p] && c.irqFlags&(1<<uint(p)) != 0 {
			return true
		}
	}
	return false
}

func (c *Controller) latchChannelIRQ(p Port) {
	c.irqFlags |= 1 << uint(p)
	if c.enableIRQ[p] && c.masterIRQEnable && c.raiseIRQ != nil {
		c.raiseIRQ()
	}
}

func mustPeripheral(c *Controller, p Port) (Peripheral, error) {
	dev := c.peripherals[p]
	if dev == nil {
		return nil, psxerr.UnhandledAddress.Wrap("no peripheral attached to DMA channel %d", p)
	}
	return dev, nil
}
