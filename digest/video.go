package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/retropix/psxcore/gpu"
)

// Video generates a chained SHA-1 value of the GPU's display area each
// frame using a chained-fingerprint technique, so a single final hash
// attests to an entire run's sequence of frames rather than just its
// last one.
type Video struct {
	digest   [sha1.Size]byte
	buffer   []byte
	frameNum int
}

func NewVideo() *Video {
	return &Video{buffer: make([]byte, sha1.Size+gpu.VRAMWidth*gpu.VRAMHeight*3)}
}

func (dig Video) Hash() string { return fmt.Sprintf("%x", dig.digest) }

func (dig *Video) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// NewFrame folds the GPU's current display-area window into the running
// digest; it only samples the configured display rectangle rather than all
// of VRAM, so off-screen draw-buffer contents (common with double
// buffering) don't perturb the hash.
func (dig *Video) NewFrame(frameNum int, g *gpu.GPU, displayX, displayY, width, height int) {
	n := copy(dig.buffer, dig.digest[:])
	pos := n
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := g.VRAMRead(displayX+x, displayY+y)
			r, gch, b := unpack555(px)
			if pos+3 <= len(dig.buffer) {
				dig.buffer[pos], dig.buffer[pos+1], dig.buffer[pos+2] = r, gch, b
				pos += 3
			}
		}
	}
	dig.digest = sha1.Sum(dig.buffer[:pos])
	dig.frameNum = frameNum
}

func unpack555(px uint16) (byte, byte, byte) {
	r := byte((px & 0x1F) << 3)
	g := byte(((px >> 5) & 0x1F) << 3)
	b := byte(((px >> 10) & 0x1F) << 3)
	return r, g, b
}
