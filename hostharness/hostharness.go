// Package hostharness implements a reference three-thread host
// integration: an emulation thread that runs frames as fast as the frame
// limiter allows, an audio callback thread that drains SPU samples, and
// the caller's own UI/input thread, kept in sync with golang.org/x/sync's
// errgroup and semaphore primitives rather than hand-rolled channels and
// WaitGroups.
package hostharness

import (
	"context"
	"time"

	"github.com/retropix/psxcore/emulator"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// VideoSink receives a completed field's framebuffer; AudioSink receives
// one mixed stereo sample pair at a time. Both are called from background
// goroutines and must not block indefinitely.
type VideoSink func(frame [][]uint16)
type AudioSink func(left, right int16)

// Harness drives a Console across its own goroutines: one paced by the
// frame limiter, one paced by the audio sample clock, coordinated through a
// weighted semaphore so at most one of them touches the Console at a time
// (the core itself is not safe for concurrent access from two callers).
type Harness struct {
	console *emulator.Console
	video   VideoSink
	audio   AudioSink

	sem *semaphore.Weighted

	frameInterval time.Duration
}

func New(c *emulator.Console, fps int, video VideoSink, audio AudioSink) *Harness {
	if fps <= 0 {
		fps = 60
	}
	return &Harness{
		console:       c,
		video:         video,
		audio:         audio,
		sem:           semaphore.NewWeighted(1),
		frameInterval: time.Second / time.Duration(fps),
	}
}

// Run blocks until ctx is cancelled, driving the emulation and audio loops
// concurrently via errgroup so that either goroutine's fatal error (there
// are none today, but the shape matches a supervised goroutine group)
// cancels the other.
func (h *Harness) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.runVideoLoop(ctx) })
	g.Go(func() error { return h.runAudioLoop(ctx) })
	return g.Wait()
}

func (h *Harness) runVideoLoop(ctx context.Context) error {
	ticker := time.NewTicker(h.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			h.console.RunFrame()
			vram := h.console.Bus.GPU.Snapshot()
			h.sem.Release(1)
			if h.video != nil {
				frame := make([][]uint16, len(vram))
				for y := range vram {
					frame[y] = vram[y][:]
				}
				h.video(frame)
			}
		}
	}
}

// runAudioLoop stands in for a real audio-callback thread (normally driven
// by the host's audio API in a fixed-size buffer callback); here it just
// paces itself against wall-clock time at the SPU's 44.1 kHz sample rate.
func (h *Harness) runAudioLoop(ctx context.Context) error {
	const sampleRate = 44100
	ticker := time.NewTicker(time.Second / sampleRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			l, r := h.console.Bus.SPU.MixSample()
			h.sem.Release(1)
			if h.audio != nil {
				h.audio(l, r)
			}
		}
	}
}
