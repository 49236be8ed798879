package dma

import "github.com/retropix/psxcore/internal/logger"

// startTransfer runs a channel's transfer to completion synchronously. The
// real hardware paces block transfers against chopping windows and bus
// contention; this core performs the equivalent work atomically from the
// scheduler's point of view, which is observationally identical for every
// documented game behavior that doesn't depend on sub-frame DMA timing.
func (c *Controller) startTransfer(port Port, ch *Channel) {
	ch.Busy = true
	switch ch.SyncMode {
	case SyncManual:
		c.blockTransfer(port, ch, uint32(ch.BlockSize))
	case SyncBlock:
		words := uint32(ch.BlockSize) * uint32(ch.BlockCount)
		if ch.BlockSize == 0 {
			words = 0x10000 * uint32(ch.BlockCount)
		}
		c.blockTransfer(port, ch, words)
	case SyncLinkedList:
		c.linkedListTransfer(port, ch)
	}
	ch.Busy = false
	ch.Enable = false
	c.latchChannelIRQ(port)
}

func (c *Controller) blockTransfer(port Port, ch *Channel, words uint32) {
	if port == PortOTC {
		c.otcClear(ch, words)
		return
	}
	dev, err := mustPeripheral(c, port)
	if err != nil {
		logger.Log("dma", "block transfer dropped", "port", port, "err", err)
		return
	}
	addr := ch.BaseAddr
	for i := uint32(0); i < words; i++ {
		if ch.Direction == FromMainRAM {
			dev.DMAWrite(c.ram.Read32(addr & 0x1FFFFC))
		} else {
			c.ram.Write32(addr&0x1FFFFC, dev.DMARead())
		}
		addr = uint32(int32(addr) + ch.AddressStep)
	}
	ch.BaseAddr = addr
}

// linkedListTransfer walks the GPU's command-list chain in main RAM: each
// node is a header word (low 24 bits = next node address, top byte = word
// count in this node) followed by that many payload words, terminated by a
// next-pointer of 0xFFFFFF.
func (c *Controller) linkedListTransfer(port Port, ch *Channel) {
	dev, err := mustPeripheral(c, port)
	if err != nil {
		logger.Log("dma", "linked-list transfer dropped", "port", port, "err", err)
		return
	}
	addr := ch.BaseAddr & 0x1FFFFC
	for {
		header := c.ram.Read32(addr)
		count := header >> 24
		for i := uint32(1); i <= count; i++ {
			dev.DMAWrite(c.ram.Read32((addr + i*4) & 0x1FFFFC))
		}
		next := header & 0xFFFFFF
		if next == 0xFFFFFF || next == addr {
			break
		}
		addr = next & 0x1FFFFC
	}
	ch.BaseAddr = 0xFFFFFF
}

// otcClear fills main RAM, starting at BaseAddr and walking backward, with
// a reverse-linked list of decreasing addresses terminated by 0xFFFFFF --
// the GPU ordering table's empty-list initialization pattern.
func (c *Controller) otcClear(ch *Channel, words uint32) {
	addr := ch.BaseAddr & 0x1FFFFC
	for i := uint32(0); i < words; i++ {
		if i == words-1 {
			c.ram.Write32(addr, 0xFFFFFF)
		} else {
			c.ram.Write32(addr, (addr-4)&0x1FFFFF)
		}
		addr -= 4
	}
	ch.BaseAddr = addr + 4
}
