package cpu_test

import (
	"testing"

	"github.com/retropix/psxcore/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64 KiB RAM used to exercise the interpreter in
// isolation from the rest of the core.
type fakeBus struct {
	mem [65536]byte
}

func (b *fakeBus) Read8(addr uint32) uint8    { return b.mem[addr%uint32(len(b.mem))] }
func (b *fakeBus) Read16(addr uint32) uint16 {
	a := addr % uint32(len(b.mem))
	return uint16(b.mem[a]) | uint16(b.mem[a+1])<<8
}
func (b *fakeBus) Read32(addr uint32) uint32 {
	a := addr % uint32(len(b.mem))
	return uint32(b.mem[a]) | uint32(b.mem[a+1])<<8 | uint32(b.mem[a+2])<<16 | uint32(b.mem[a+3])<<24
}
func (b *fakeBus) Write8(addr uint32, v uint8) { b.mem[addr%uint32(len(b.mem))] = v }
func (b *fakeBus) Write16(addr uint32, v uint16) {
	a := addr % uint32(len(b.mem))
	b.mem[a], b.mem[a+1] = byte(v), byte(v>>8)
}
func (b *fakeBus) Write32(addr uint32, v uint32) {
	a := addr % uint32(len(b.mem))
	b.mem[a] = byte(v)
	b.mem[a+1] = byte(v >> 8)
	b.mem[a+2] = byte(v >> 16)
	b.mem[a+3] = byte(v >> 24)
}
func (b *fakeBus) InterruptPending() bool { return false }

func (b *fakeBus) load(base uint32, words []uint32) {
	for i, w := range words {
		b.Write32(base+uint32(i*4), w)
	}
}

// encR builds an R-type instruction word.
func encR(op, rs, rt, rd, shamt, funct uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

// encI builds an I-type instruction word.
func encI(op, rs, rt uint32, imm16 int32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | (uint32(imm16) & 0xFFFF)
}

func newCPUAt(base uint32, words []uint32) (*cpu.CPU, *fakeBus) {
	bus := &fakeBus{}
	bus.load(base, words)
	c := cpu.New()
	c.SetPC(base)
	return c, bus
}

func TestGPR0AlwaysZeroAfterWrite(t *testing.T) {
	// ADDIU $0, $0, 123 -- an attempt to write register 0.
	base := uint32(0x1000)
	c, bus := newCPUAt(base, []uint32{
		encI(0x09, 0, 0, 123),
		encI(0x09, 0, 0, 0), // nop-ish filler for the delay slot fetch
	})
	c.Step(bus)
	assert.Equal(t, uint32(0), c.GPR(0))
}

func TestDelayedLoadNotVisibleInItsOwnDelaySlot(t *testing.T) {
	base := uint32(0x2000)
	// LW $t0, 0(zero)         <- schedules a delayed load of $t0
	// ADDIU $t1, $t0, 0       <- the load's delay slot: must read the OLD $t0 (zero)
	// ADDIU $t2, $t0, 0       <- first instruction to observe the committed load
	c, bus := newCPUAt(base, []uint32{
		encI(0x23, 0, 8, 0),  // LW $t0, 0($zero)
		encI(0x09, 8, 9, 0),  // ADDIU $t1, $t0, 0
		encI(0x09, 8, 10, 0), // ADDIU $t2, $t0, 0
	})
	bus.Write32(0, 0xDEADBEEF)

	c.Step(bus) // LW
	assert.Equal(t, uint32(0), c.GPR(8), "load must not be visible to the instruction immediately after it")

	c.Step(bus) // ADDIU $t1, $t0, 0 -- the load's delay slot
	assert.Equal(t, uint32(0), c.GPR(9), "the delay-slot instruction must see the pre-load value of $t0")

	c.Step(bus) // ADDIU $t2, $t0, 0 -- now the load has committed
	assert.Equal(t, uint32(0xDEADBEEF), c.GPR(8))
	assert.Equal(t, uint32(0xDEADBEEF), c.GPR(10))
}

func TestSecondLoadToSameRegisterCancelsFirst(t *testing.T) {
	base := uint32(0x2800)
	// LW $t0, 0(zero)    <- schedules a delayed load of $t0 (value A)
	// LW $t0, 4(zero)    <- the first load's delay slot; also targets $t0
	//                       (value B) and must cancel the first load outright
	// ADDIU $t1, $t0, 0  <- must still see the pre-load value of $t0: the
	//                       cancelled load must never reach the GPR file
	// ADDIU $t2, $t0, 0  <- now only the second load's value has committed
	c, bus := newCPUAt(base, []uint32{
		encI(0x23, 0, 8, 0),  // LW $t0, 0($zero)
		encI(0x23, 0, 8, 4),  // LW $t0, 4($zero)
		encI(0x09, 8, 9, 0),  // ADDIU $t1, $t0, 0
		encI(0x09, 8, 10, 0), // ADDIU $t2, $t0, 0
	})
	bus.Write32(0, 0xAAAA0000)
	bus.Write32(4, 0xBBBB0000)

	c.Step(bus) // LW $t0, 0($zero) -- schedules A
	c.Step(bus) // LW $t0, 4($zero) -- schedules B, cancels A
	assert.Equal(t, uint32(0), c.GPR(8), "neither load has committed yet")

	c.Step(bus) // ADDIU $t1, $t0, 0
	assert.Equal(t, uint32(0), c.GPR(9), "the cancelled first load must never reach the GPR file")

	c.Step(bus) // ADDIU $t2, $t0, 0 -- now the second load has committed
	assert.Equal(t, uint32(0xBBBB0000), c.GPR(8))
	assert.Equal(t, uint32(0xBBBB0000), c.GPR(10))
}

func TestDivideByZeroResultRegistersNegativeDividend(t *testing.T) {
	base := uint32(0x3000)
	c, bus := newCPUAt(base, []uint32{
		encR(0, 8, 9, 0, 0, 0x1A), // DIV $t0, $t1
	})
	c.SetGPR(8, uint32(int32(-7)))
	c.SetGPR(9, 0)
	c.Step(bus)
	assert.Equal(t, uint32(1), c.LO(), "LO must be 1 when dividend is negative")
	assert.Equal(t, uint32(int32(-7)), c.HI())
}

func TestDivideByZeroResultRegistersPositiveDividend(t *testing.T) {
	base := uint32(0x4000)
	c, bus := newCPUAt(base, []uint32{
		encR(0, 8, 9, 0, 0, 0x1A), // DIV $t0, $t1
	})
	c.SetGPR(8, 7)
	c.SetGPR(9, 0)
	c.Step(bus)
	assert.Equal(t, uint32(0xFFFFFFFF), c.LO())
	assert.Equal(t, uint32(7), c.HI())
}

func TestBranchInBranchDelaySlotOuterTargetOverwritten(t *testing.T) {
	// The target of the outer branch is overwritten by the
	// target of the inner branch nested in its delay slot. In this
	// implementation's pc/next-pc pipeline, the instruction already
	// committed to the fetch-next slot (the outer branch's target) still
	// executes once -- it was latched before the inner branch ran -- and
	// only the *following* fetch lands on the inner branch's target instead
	// of outerTarget+4.
	base := uint32(0x5000)
	outerTarget := base + 4*10
	innerTarget := base + 4*20
	c, bus := newCPUAt(base, []uint32{
		encI(0x04, 0, 0, int32((outerTarget-(base+4))/4)), // BEQ zero, zero, outerTarget (always taken)
		encI(0x04, 0, 0, int32((innerTarget-(base+8))/4)), // BEQ zero, zero, innerTarget -- in the outer's delay slot
	})
	c.Step(bus) // execute outer BEQ; schedules outerTarget
	c.Step(bus) // execute inner BEQ (the delay-slot instruction); schedules innerTarget
	require.Equal(t, outerTarget, c.PC(), "the outer branch's target is still fetched once")
	c.Step(bus) // executes whatever sits at outerTarget (zero-valued SLL $0,$0,0 here)
	assert.Equal(t, innerTarget, c.PC(), "the inner branch's target wins over outerTarget+4")
}
