package cpu

type loadSlot struct {
	reg   uint32
	value uint32
	valid bool
}

// Registers holds the R3000's general-purpose register file, program
// counters, and the multiply/divide result pair. GPR0 is not stored
// specially; instead every write path runs through set(), which discards
// writes to register 0, so reads of GPR0 are always zero by construction.
type Registers struct {
	gpr [32]uint32
	pc  uint32
	// next holds the address that will become PC after the instruction
	// currently executing retires. Branches and jumps write here instead of
	// PC directly, which is what gives the branch-delay slot its one
	// instruction of lag.
	next uint32
	hi   uint32
	lo   uint32

	// The delayed-load slot is a two-stage shift register, not a single
	// flag: a load scheduled by instruction N is parked in pending during
	// instruction N+1 (the load's own delay slot, which must still observe
	// the *old* register value) and only moves into armed -- and is
	// written back to the GPR file -- at the start of instruction N+2. A
	// second load to the same register arriving while the first is still
	// in pending simply overwrites pending. A second load arriving one
	// instruction later, once the first has moved into armed, cancels
	// armed explicitly in scheduleLoad -- otherwise the stale armed value
	// would commit one instruction before the newer load overwrites it.
	pending loadSlot
	armed   loadSlot

	inDelaySlot    bool
	currentIsDelay bool
	branchTaken    bool
	branchPC       uint32 // target PC computed by a taken branch/jump this step
}

func (r *Registers) get(i uint32) uint32 { return r.gpr[i] }

// set writes a GPR, discarding writes to register 0 as the hardware does.
func (r *Registers) set(i uint32, v uint32) {
	if i == 0 {
		return
	}
	r.gpr[i] = v
}

// scheduleLoad queues a delayed-load commit, two instructions from now. A
// load already armed for the same register -- one instruction ahead of
// this one, about to commit at the start of the next Step -- is cancelled
// outright rather than allowed to commit before this newer load overwrites
// it: only the newer load's value ever reaches the GPR file.
func (r *Registers) scheduleLoad(reg uint32, value uint32) {
	if r.armed.valid && r.armed.reg == reg {
		r.armed = loadSlot{}
	}
	r.pending = loadSlot{reg: reg, value: value, valid: true}
}

// pendingValue returns the most recently scheduled-but-uncommitted load
// value for reg, if any, used by LWL/LWR to merge against a value that
// hasn't reached the GPR file yet.
func (r *Registers) pendingValue(reg uint32) (uint32, bool) {
	if r.pending.valid && r.pending.reg == reg {
		return r.pending.value, true
	}
	if r.armed.valid && r.armed.reg == reg {
		return r.armed.value, true
	}
	return 0, false
}

// advanceLoadPipeline commits whatever was armed from two instructions ago
// and shifts the previous instruction's scheduled load into the armed slot.
// Called once at the start of every Step, before the current instruction
// reads any GPR.
func (r *Registers) advanceLoadPipeline() {
	if r.armed.valid {
		r.set(r.armed.reg, r.armed.value)
	}
	r.armed = r.pending
	r.pending = loadSlot{}
}

// flushLoadPipeline discards both pending and armed loads, used when an
// exception or explicit PC relocation (EXE sideload) invalidates whatever
// was mid-flight.
func (r *Registers) flushLoadPipeline() {
	r.pending = loadSlot{}
	r.armed = loadSlot{}
}
