package gpu

// WriteGP1 handles the GP1 control port: reset, DMA direction, display
// configuration, and the acknowledge-IRQ / reset-command-buffer commands.
func (g *GPU) WriteGP1(word uint32) {
	switch (word >> 24) & 0xFF {
	case 0x00: // reset GPU
		g.draw = DrawingState{}
		g.display = DisplayState{}
		g.fifo = g.fifo[:0]
		g.wantedWords = 0
		g.blit.active = false
	case 0x01: // reset command buffer
		g.fifo = g.fifo[:0]
		g.wantedWords = 0
	case 0x02: // acknowledge GPU IRQ -- no-op, no latched IRQ bit modeled
	case 0x03:
		g.display.DisplayDisabled = word&1 != 0
	case 0x04: // DMA direction -- accepted but not stored; no-op
	case 0x05:
		g.display.DisplayAreaX = int(word & 0x3FF)
		g.display.DisplayAreaY = int((word >> 10) & 0x1FF)
	case 0x06:
		g.display.HRangeX1 = int(word & 0xFFF)
		g.display.HRangeX2 = int((word >> 12) & 0xFFF)
	case 0x07:
		g.display.VRangeY1 = int(word & 0x3FF)
		g.display.VRangeY2 = int((word >> 10) & 0x3FF)
	case 0x08:
		g.setDisplayMode(word)
	default:
		logDropped("unhandled GP1 command", "cmd", (word>>24)&0xFF)
	}
}

func (g *GPU) setDisplayMode(word uint32) {
	hres := word & 3
	switch hres {
	case 0:
		g.display.HorizontalRes = 256
	case 1:
		g.display.HorizontalRes = 320
	case 2:
		g.display.HorizontalRes = 512
	case 3:
		g.display.HorizontalRes = 640
	}
	if word&0x40 != 0 {
		g.display.HorizontalRes = 368
	}
	if word&4 != 0 {
		g.display.VerticalRes = 480
	} else {
		g.display.VerticalRes = 240
	}
	g.display.VideoModePAL = word&8 != 0
	g.display.ColorDepth24 = word&0x10 != 0
	g.display.Interlaced = word&0x20 != 0
}

// VBlank is called by the timers package's video clock at the start of
// vertical blank. It is the scan-out core's synchronization point: the
// interrupt controller's VBlank source is raised by the caller, not here,
// keeping irq ownership centralized.
func (g *GPU) VBlank() {
	g.oddLine = false
}

// HBlank flips the odd/even line parity bit surfaced in GPUSTAT bit 31,
// which some games poll to detect interlaced field timing.
func (g *GPU) HBlank() {
	g.oddLine = !g.oddLine
}
