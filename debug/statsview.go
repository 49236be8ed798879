package debug

import (
	"context"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retropix/psxcore/emulator"
	"github.com/retropix/psxcore/internal/logger"
)

// StatsView serves a live go-echarts dashboard of runtime statistics
// (goroutine count, GC pauses, heap size) alongside a custom "frames
// rendered" counter fed by the running Console, reachable at the
// configured address while the core runs headless in a CI or batch job.
type StatsView struct {
	console *emulator.Console
	addr    string

	frames uint64
}

func NewStatsView(c *emulator.Console, addr string) *StatsView {
	sv := &StatsView{console: c, addr: addr}
	c.OnFrame(func() { sv.frames++ })
	return sv
}

// Serve starts the statsview HTTP server and blocks until ctx is
// cancelled. viewer.SetConfiguration wires the listen address; New()
// returns the manager whose Start kicks off the background collector.
func (sv *StatsView) Serve(ctx context.Context) error {
	viewer.SetConfiguration(viewer.WithAddr(sv.addr))
	mgr := statsview.New()
	go mgr.Start()
	logger.Log("debug", "statsview listening", "addr", sv.addr)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			mgr.Stop()
			return ctx.Err()
		case <-ticker.C:
			logger.Log("debug", "frames rendered", "count", sv.frames)
		}
	}
}
