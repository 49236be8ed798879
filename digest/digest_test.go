package digest_test

import (
	"testing"

	"github.com/retropix/psxcore/digest"
	"github.com/retropix/psxcore/gpu"
	"github.com/stretchr/testify/assert"
)

func TestVideoDigestIsDeterministic(t *testing.T) {
	g := gpu.New()
	g.VRAMWrite(0, 0, 0x1234)

	v1 := digest.NewVideo()
	v1.NewFrame(0, g, 0, 0, 4, 4)

	v2 := digest.NewVideo()
	v2.NewFrame(0, g, 0, 0, 4, 4)

	assert.Equal(t, v1.Hash(), v2.Hash())
}

func TestVideoDigestChangesWithPixelData(t *testing.T) {
	g1 := gpu.New()
	g2 := gpu.New()
	g2.VRAMWrite(0, 0, 0xFFFF)

	v1 := digest.NewVideo()
	v1.NewFrame(0, g1, 0, 0, 4, 4)
	v2 := digest.NewVideo()
	v2.NewFrame(0, g2, 0, 0, 4, 4)

	assert.NotEqual(t, v1.Hash(), v2.Hash())
}

func TestAudioDigestAccumulates(t *testing.T) {
	a := digest.NewAudio()
	initial := a.Hash()
	for i := 0; i < 5000; i++ {
		a.Push(int16(i), int16(-i))
	}
	assert.NotEqual(t, initial, a.Hash())
}
