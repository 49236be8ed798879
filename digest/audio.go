package digest

import (
	"crypto/sha1"
	"fmt"
)

// the length of the buffer we're using isn't really important. that said, it
// needs to be at least sha1.Size bytes in length.
const audioBufferLength = 4096 + sha1.Size

// to allow us to create digests on audio streams longer than
// audioBufferLength, we'll stuff the previous digest value into the first part
// of the buffer array and make sure we include it when we create the next
// digest value.
const audioBufferStart = sha1.Size

// Audio periodically folds the SPU's mixed stereo output into a chained
// SHA-1 digest using a chained buffering strategy, widened to a stereo
// 16-bit sample pair.
type Audio struct {
	digest   [sha1.Size]byte
	buffer   []uint8
	bufferCt int
}

func NewAudio() *Audio {
	dig := &Audio{buffer: make([]uint8, audioBufferLength)}
	dig.bufferCt = audioBufferStart
	return dig
}

// Hash implements digest.Digest interface.
func (dig Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface.
func (dig *Audio) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// Push feeds one mixed stereo sample pair into the digest, flushing once
// the internal buffer fills.
func (dig *Audio) Push(left, right int16) {
	if dig.bufferCt+4 > len(dig.buffer) {
		dig.flushAudio()
	}
	dig.buffer[dig.bufferCt] = byte(left)
	dig.buffer[dig.bufferCt+1] = byte(left >> 8)
	dig.buffer[dig.bufferCt+2] = byte(right)
	dig.buffer[dig.bufferCt+3] = byte(right >> 8)
	dig.bufferCt += 4
}

func (dig *Audio) flushAudio() {
	dig.digest = sha1.Sum(dig.buffer[:dig.bufferCt])
	n := copy(dig.buffer, dig.digest[:])
	dig.bufferCt = n
	if dig.bufferCt < audioBufferStart {
		dig.bufferCt = audioBufferStart
	}
}
