package gpu_test

import (
	"testing"

	"github.com/retropix/psxcore/gpu"
	"github.com/stretchr/testify/assert"
)

func TestFillRectangleWritesSolidColor(t *testing.T) {
	g := gpu.New()
	g.WriteGP0(0x02000000 | 0x0000FF) // fill command, pure red in bits 0-7
	g.WriteGP0(10<<16 | 5)            // x=5, y=10
	g.WriteGP0(4<<16 | 4)             // w=4, h=4
	assert.NotEqual(t, uint16(0), g.VRAMRead(5, 10))
	assert.Equal(t, uint16(0), g.VRAMRead(20, 20), "outside the fill rectangle must stay untouched")
}

func TestSemiTransparentBlendAverages(t *testing.T) {
	g := gpu.New()
	// Seed VRAM with a flat white background rectangle.
	g.WriteGP0(0x02FFFFFF)
	g.WriteGP0(0 << 16)
	g.WriteGP0(8<<16 | 8)

	// Draw a flat, semi-transparent black 2x2 rectangle (opcode 0x62) at (0,0).
	g.WriteGP0(0x62000000)
	g.WriteGP0(0)
	g.WriteGP0(2<<16 | 2)

	px := g.VRAMRead(0, 0)
	r := px & 0x1F
	assert.Less(t, uint16(0), r, "averaged blend must be darker than opaque white but not fully black")
	assert.Greater(t, uint16(31), r)
}

func TestSingleLineDrawsBothEndpoints(t *testing.T) {
	g := gpu.New()
	g.WriteGP0(0x40FF0000)  // monochrome opaque line, blue
	g.WriteGP0(0)           // vertex0 (0,0)
	g.WriteGP0(5<<16 | 5)   // vertex1 (5,5)
	assert.NotEqual(t, uint16(0), g.VRAMRead(0, 0), "the line's first endpoint must be plotted")
	assert.NotEqual(t, uint16(0), g.VRAMRead(5, 5), "the line's last endpoint must be plotted")
}

func TestPolylineDrawsEverySegmentUntilTerminator(t *testing.T) {
	g := gpu.New()
	g.WriteGP0(0x48FF00FF) // monochrome opaque polyline, magenta
	g.WriteGP0(0)          // vertex0 (0,0)
	g.WriteGP0(4 << 16)    // vertex1 (0,4)
	g.WriteGP0(4<<16 | 4)  // vertex2 (4,4)
	g.WriteGP0(0x50005000) // terminator
	assert.NotEqual(t, uint16(0), g.VRAMRead(0, 0), "first vertex of the polyline must be plotted")
	assert.NotEqual(t, uint16(0), g.VRAMRead(0, 4), "middle vertex of the polyline must be plotted")
	assert.NotEqual(t, uint16(0), g.VRAMRead(4, 4), "last vertex of the polyline must be plotted")
	assert.Equal(t, uint16(0), g.VRAMRead(10, 10), "the terminator word must not itself be drawn as a vertex")
}

func TestGP1ResetClearsDisplayDisabled(t *testing.T) {
	g := gpu.New()
	g.WriteGP1(0x03000001) // display off
	assert.NotEqual(t, uint32(0), g.GPUSTAT()&(1<<23))
	g.WriteGP1(0x00000000) // reset
	assert.Equal(t, uint32(0), g.GPUSTAT()&(1<<23))
}

func TestSaveStateRoundTrip(t *testing.T) {
	g := gpu.New()
	g.VRAMWrite(3, 3, 0x1234)
	snap := g.SaveState()

	g2 := gpu.New()
	g2.LoadState(snap)
	assert.Equal(t, uint16(0x1234), g2.VRAMRead(3, 3))
}
