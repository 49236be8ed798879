package digest

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/retropix/psxcore/internal/psxerr"
)

// WavCapture records the SPU's mixed output to a standard stereo 16-bit
// PCM WAV file via go-audio/wav, for manual listening review alongside the
// automated Audio digest's pass/fail comparison.
type WavCapture struct {
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	flushAt int
}

func NewWavCapture(w io.WriteSeeker, sampleRate int) *WavCapture {
	enc := wav.NewEncoder(w, sampleRate, 16, 2, 1)
	return &WavCapture{
		enc: enc,
		buf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
			Data:   make([]int, 0, 4096),
		},
		flushAt: 4096,
	}
}

// Push appends one stereo sample pair, flushing to the encoder once the
// internal batch fills.
func (c *WavCapture) Push(left, right int16) error {
	c.buf.Data = append(c.buf.Data, int(left), int(right))
	if len(c.buf.Data) >= c.flushAt {
		return c.flush()
	}
	return nil
}

func (c *WavCapture) flush() error {
	if err := c.enc.Write(c.buf); err != nil {
		return psxerr.AudioFail.Wrap("writing wav buffer: %v", err)
	}
	c.buf.Data = c.buf.Data[:0]
	return nil
}

// Close flushes any remaining samples and finalizes the WAV header.
func (c *WavCapture) Close() error {
	if err := c.flush(); err != nil {
		return err
	}
	if err := c.enc.Close(); err != nil {
		return psxerr.AudioFail.Wrap("closing wav encoder: %v", err)
	}
	return nil
}
