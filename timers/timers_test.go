package timers_test

import (
	"testing"

	"github.com/retropix/psxcore/timers"
	"github.com/stretchr/testify/assert"
)

func TestTimerFiresIRQAtTarget(t *testing.T) {
	var fired []int
	c := timers.New(func(idx int) { fired = append(fired, idx) }, nil, nil)
	c.WriteTarget(2, 5)
	c.WriteMode(2, 0x10) // IRQ on target
	c.Step(5)
	assert.Contains(t, fired, 2)
}

func TestVBlankHookFiresOncePerFrame(t *testing.T) {
	var vblanks int
	c := timers.New(nil, nil, func() { vblanks++ })
	c.Step(3413 * 263)
	assert.Equal(t, 1, vblanks)
}

func TestCounterResetOnTarget(t *testing.T) {
	c := timers.New(nil, nil, nil)
	c.WriteTarget(2, 3)
	c.WriteMode(2, 0x08) // reset on target
	c.Step(3)
	assert.Equal(t, uint16(0), c.ReadCounter(2))
}
