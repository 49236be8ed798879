package hostharness_test

import (
	"context"
	"testing"
	"time"

	"github.com/retropix/psxcore/config"
	"github.com/retropix/psxcore/emulator"
	"github.com/retropix/psxcore/hostharness"
	"github.com/stretchr/testify/require"
)

type stubDisc struct{}

func (stubDisc) ReadSector(int) ([]byte, error) { return make([]byte, 2352), nil }
func (stubDisc) TrackCount() int                { return 1 }
func (stubDisc) Region() string                 { return "SCEA" }

func TestHarnessRunsUntilContextCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.BIOSPath = "fake"
	cfg.DiscPath = "fake"
	c, err := emulator.New(cfg, make([]byte, 512*1024), stubDisc{})
	require.NoError(t, err)

	frames := 0
	h := hostharness.New(c, 1000, func([][]uint16) { frames++ }, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = h.Run(ctx)
	require.Error(t, err) // context.DeadlineExceeded propagated through errgroup
	require.Greater(t, frames, 0)
}
