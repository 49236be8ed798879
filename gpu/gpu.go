// Package gpu implements the GPU command processor: the GP0/GP1 register
// pair, the command FIFO, the drawing state machine, the software
// rasterizer, 1 MiB of VRAM, and display-area scan-out.
package gpu

import "github.com/retropix/psxcore/internal/logger"

const (
	VRAMWidth  = 1024
	VRAMHeight = 512
)

// DrawingState mirrors the GPU registers that configure how primitives are
// rasterized: texture page/window, drawing area, offset, and the
// dither/mask-bit policy bits.
type DrawingState struct {
	TexPageX, TexPageY   int
	TexPageColors        int // 0=4bpp, 1=8bpp, 2=15bpp
	SemiTransparencyMode int // 0..3: B/2+F/2, B+F, B-F, B+F/4
	TexWindowMaskX       uint32
	TexWindowMaskY       uint32
	TexWindowOffsetX     uint32
	TexWindowOffsetY     uint32
	DrawAreaLeft         int
	DrawAreaTop          int
	DrawAreaRight        int
	DrawAreaBottom       int
	DrawOffsetX          int
	DrawOffsetY          int
	DitherEnabled        bool
	ForceMaskBit         bool
	CheckMaskBit         bool
	TexturingDisabled    bool
}

// DisplayState mirrors the GP1 scan-out configuration registers.
type DisplayState struct {
	DisplayAreaX, DisplayAreaY     int
	HRangeX1, HRangeX2             int
	VRangeY1, VRangeY2             int
	HorizontalRes                  int // 256/320/368/512/640 via dot-clock divider
	VerticalRes                    int // 240 or 480 (interlaced)
	VideoModePAL                   bool
	ColorDepth24                   bool
	Interlaced                     bool
	DisplayDisabled                bool
}

// GPU owns VRAM and every drawing/display register. It does not post its
// own scheduler events directly for VBlank -- that is owned by the timers
// package's video clock -- but exposes VBlank()/HBlank()
// hooks the video clock calls to drive scan-out and odd/even-line state.
type GPU struct {
	vram [VRAMHeight][VRAMWidth]uint16

	draw    DrawingState
	display DisplayState

	fifo        []uint32
	wantedWords int
	pendingCmd  uint32

	// Blit-in-progress state for CPU<->VRAM transfers, which span multiple
	// GP0 words after the initial command+rectangle header.
	blit struct {
		active    bool
		toVRAM    bool
		x, y      int
		w, h      int
		curX, curY int
	}

	// lineRun accumulates a polyline's vertices (and, for gouraud polylines,
	// their per-vertex colors) across an unbounded run of GP0 words,
	// terminated by the 5000h/5000h sentinel rather than a fixed word count.
	lineRun struct {
		active          bool
		gouraud         bool
		semiTransparent bool
		verts           []vertex
		nextColor       [3]uint8
		awaitingColor   bool
	}

	gpuReadLatch uint32
	oddLine      bool
}

func New() *GPU {
	return &GPU{}
}

// VRAMRead/VRAMWrite give direct halfword access to VRAM for debug tooling
// and tests; normal gameplay access goes through GP0 blit commands.
func (g *GPU) VRAMRead(x, y int) uint16 {
	return g.vram[y&(VRAMHeight-1)][x&(VRAMWidth-1)]
}

func (g *GPU) VRAMWrite(x, y int, v uint16) {
	g.vram[y&(VRAMHeight-1)][x&(VRAMWidth-1)] = v
}

// Snapshot copies the whole VRAM plane out; hostharness uses it to hand
// each frame to its VideoSink.
func (g *GPU) Snapshot() [VRAMHeight][VRAMWidth]uint16 {
	return g.vram
}

// GPUREAD returns the value last latched by a VRAM->CPU transfer, per the
// documented 0x1F801810 read port. GP1 status queries are not handled, so
// they do not update the latch.
func (g *GPU) GPUREAD() uint32 { return g.gpuReadLatch }

// GPUSTAT returns the GP1 status word the CPU polls to synchronize with
// FIFO and DMA readiness.
func (g *GPU) GPUSTAT() uint32 {
	var s uint32
	s |= uint32(g.draw.TexPageX/64) & 0xF
	s |= (uint32(g.draw.TexPageY/256) & 1) << 4
	s |= uint32(g.draw.SemiTransparencyMode&3) << 5
	s |= uint32(g.draw.TexPageColors&3) << 7
	if g.draw.DitherEnabled {
		s |= 1 << 9
	}
	s |= 1 << 10 // drawing-to-display-area allowed, always set here
	if g.draw.ForceMaskBit {
		s |= 1 << 11
	}
	if g.draw.CheckMaskBit {
		s |= 1 << 12
	}
	s |= 1 << 13 // interlace field, approximated as always "odd" ready
	if g.display.VideoModePAL {
		s |= 1 << 14
	}
	if g.display.ColorDepth24 {
		s |= 1 << 16
	}
	if g.display.Interlaced {
		s |= 1 << 17
	}
	if g.display.DisplayDisabled {
		s |= 1 << 23
	}
	s |= 1 << 26 // ready to receive command word
	s |= 1 << 27 // ready to send VRAM to CPU
	s |= 1 << 28 // ready to receive DMA block
	if g.oddLine {
		s |= 1 << 31
	}
	return s
}

func (g *GPU) SaveState() Snapshot {
	return Snapshot{VRAM: g.vram, Draw: g.draw, Display: g.display}
}

func (g *GPU) LoadState(s Snapshot) {
	g.vram = s.VRAM
	g.draw = s.Draw
	g.display = s.Display
}

// Snapshot is the plain-data projection used by savestate.
type Snapshot struct {
	VRAM    [VRAMHeight][VRAMWidth]uint16
	Draw    DrawingState
	Display DisplayState
}

func logDropped(reason string, args ...interface{}) {
	logger.Log("gpu", reason, args...)
}
