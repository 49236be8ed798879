package irq_test

import (
	"testing"

	"github.com/retropix/psxcore/irq"
	"github.com/stretchr/testify/assert"
)

func TestPendingRequiresUnmaskedSource(t *testing.T) {
	r := irq.New()
	r.Raise(irq.VBlank)
	assert.False(t, r.Pending(), "masked interrupt must not be pending")

	r.SetMask(uint16(irq.VBlank))
	assert.True(t, r.Pending())
}

func TestAcknowledgeWriteClearsOnlyZeroBits(t *testing.T) {
	r := irq.New()
	r.Raise(irq.VBlank | irq.GPU)
	r.AcknowledgeWrite(^uint16(irq.VBlank)) // write 0 to VBlank bit, 1 elsewhere
	assert.Equal(t, uint16(irq.GPU), r.Stat())
}
