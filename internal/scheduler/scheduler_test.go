package scheduler_test

import (
	"testing"

	"github.com/retropix/psxcore/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopReadyEventNonDecreasingOrder(t *testing.T) {
	s := scheduler.New()
	s.UpdateOrPush(scheduler.Timer0Irq, 300)
	s.UpdateOrPush(scheduler.VBlank, 100)
	s.UpdateOrPush(scheduler.ProcessDma, 200)
	s.IncrementCPUCycles(1000)

	var order []uint64
	for {
		e, ok := s.PopReadyEvent()
		if !ok {
			break
		}
		order = append(order, e.DueCycle)
	}

	require.Len(t, order, 3)
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, order[i-1], order[i])
	}
	assert.Equal(t, []uint64{100, 200, 300}, order)
}

func TestUpdateOrPushReplacesPendingEventOfSameType(t *testing.T) {
	s := scheduler.New()
	s.UpdateOrPush(scheduler.VBlank, 500)
	s.UpdateOrPush(scheduler.VBlank, 50)

	s.IncrementCPUCycles(1000)
	e, ok := s.PopReadyEvent()
	require.True(t, ok)
	assert.Equal(t, uint64(50), e.DueCycle)

	_, ok = s.PopReadyEvent()
	assert.False(t, ok, "only one VBlank event should ever be queued")
}

func TestIsEventReadyRespectsCycleCounter(t *testing.T) {
	s := scheduler.New()
	s.UpdateOrPush(scheduler.VBlank, 1000)
	assert.False(t, s.IsEventReady())

	s.IncrementCPUCycles(999)
	assert.False(t, s.IsEventReady())

	s.IncrementCPUCycles(1)
	assert.True(t, s.IsEventReady())
}

func TestRemoveDropsPendingEvent(t *testing.T) {
	s := scheduler.New()
	s.UpdateOrPush(scheduler.Sio0Tx, 10)
	s.Remove(scheduler.Sio0Tx)
	s.IncrementCPUCycles(100)
	_, ok := s.PopReadyEvent()
	assert.False(t, ok)
}

func TestFIFOTiebreakOnEqualDueCycle(t *testing.T) {
	s := scheduler.New()
	s.UpdateOrPush(scheduler.Timer0Irq, 10)
	s.UpdateOrPush(scheduler.Timer1Irq, 10)
	s.IncrementCPUCycles(10)

	first, _ := s.PopReadyEvent()
	second, _ := s.PopReadyEvent()
	assert.Equal(t, scheduler.Timer0Irq, first.Type)
	assert.Equal(t, scheduler.Timer1Irq, second.Type)
}
