package mdec_test

import (
	"testing"

	"github.com/retropix/psxcore/mdec"
	"github.com/stretchr/testify/assert"
)

func TestDecodeMacroblockProducesRGBOutput(t *testing.T) {
	m := mdec.New()
	var gotWidth, gotHeight int
	var gotLen int
	m.OutputSink = func(rgb []byte, w, h int) {
		gotWidth, gotHeight = w, h
		gotLen = len(rgb)
	}

	// Load all-zero IDCT/quant tables so decode runs against defined tables.
	m.WriteCommand(3 << 29)
	for i := 0; i < 32; i++ {
		m.WriteData(0)
	}
	m.WriteCommand(2 << 29)
	for i := 0; i < 32; i++ {
		m.WriteData(0)
	}

	m.WriteCommand(1 << 29)
	for i := 0; i < 6; i++ {
		m.WriteData(0x0000FE00) // DC=0 packed with immediate end-of-block marker
	}

	assert.Equal(t, 16, gotWidth)
	assert.Equal(t, 16, gotHeight)
	assert.Equal(t, 16*16*3, gotLen)
}

func TestStatusReflectsOutputDepth(t *testing.T) {
	m := mdec.New()
	m.WriteCommand(1<<29 | 1<<26)
	assert.NotEqual(t, uint32(0), m.Status()&(1<<27))
}
