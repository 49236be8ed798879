// Package cpu implements the MIPS R3000 interpreter at the heart of the
// PS1 core: the integer instruction set, COP0 system control, and the COP2
// Geometry Transformation Engine.
package cpu

import (
	"fmt"

	"github.com/retropix/psxcore/internal/logger"
)

// CPU is the R3000 interpreter. It holds no reference to any peripheral;
// every instruction that touches memory or a coprocessor register does so
// through the Bus passed into Step.
type CPU struct {
	Regs Registers
	COP0 *COP0
	GTE  *GTE

	// Breakpoints holds PC addresses for debug tooling. Step does not
	// consult it, and nothing else in this package checks it.
	Breakpoints map[uint32]struct{}

	// pendingException is not used: Step neither sets nor reads it, and
	// exceptions are taken immediately by raiseException.
	pendingException bool
}

// ResetVector is the address execution begins at after power-on or reset.
const ResetVector = 0xBFC00000

// New constructs a CPU with PC at the reset vector and all GPRs zeroed.
func New() *CPU {
	c := &CPU{COP0: NewCOP0(), GTE: NewGTE()}
	c.Regs.pc = ResetVector
	c.Regs.next = ResetVector + 4
	return c
}

func (c *CPU) PC() uint32 { return c.Regs.pc }

// SetPC forcibly relocates execution, used by BIOS/EXE sideload patching.
// It clears any in-flight branch-delay/load state so the next Step starts
// cleanly at the new address.
func (c *CPU) SetPC(pc uint32) {
	c.Regs.pc = pc
	c.Regs.next = pc + 4
	c.Regs.inDelaySlot = false
	c.Regs.flushLoadPipeline()
}

// GPR returns the current value of general-purpose register i (0..31).
func (c *CPU) GPR(i uint32) uint32 { return c.Regs.get(i) }

// HI and LO expose the multiply/divide result registers, mainly for tests
// and the debug console; ordinary programs read them via MFHI/MFLO.
func (c *CPU) HI() uint32 { return c.Regs.hi }
func (c *CPU) LO() uint32 { return c.Regs.lo }

// SetGPR writes a general-purpose register, used by EXE sideload to seed
// the initial SP/GP before handing control to the program. Writes to
// register 0 are discarded, matching normal execution semantics.
func (c *CPU) SetGPR(i uint32, v uint32) { c.Regs.set(i, v) }

// Step fetches, decodes, and executes exactly one instruction (or services
// a pending exception in its place) and returns the number of CPU cycles
// it consumed.
func (c *CPU) Step(bus Bus) uint32 {
	c.COP0.SetExternalInterruptPending(bus.InterruptPending())

	if !c.Regs.inDelaySlot && c.COP0.pendingMaskedInterrupt() {
		c.raiseException(ExcInterrupt, 0, false)
	}

	pc := c.Regs.pc
	nextPC := c.Regs.next

	word := c.fetch(bus, pc)

	c.Regs.currentIsDelay = c.Regs.inDelaySlot
	c.Regs.inDelaySlot = false
	c.Regs.branchTaken = false

	// Advance the two-stage load-delay pipeline before this instruction
	// observes any register.
	c.Regs.advanceLoadPipeline()

	c.Regs.pc = nextPC
	c.Regs.next = nextPC + 4

	cycles := c.execute(bus, pc, word)

	if c.Regs.branchTaken {
		c.Regs.next = c.Regs.branchPC
		c.Regs.inDelaySlot = true
	}

	return cycles
}

func (c *CPU) fetch(bus Bus, pc uint32) uint32 {
	return bus.Read32(translateForFetch(pc))
}

func translateForFetch(pc uint32) uint32 {
	return pc & 0x1FFFFFFF
}

// raiseException vectors execution to the exception handler, following
// EPC/BD are set from the faulting instruction's PC, adjusted for
// whether it sat in a branch delay slot.
func (c *CPU) raiseException(excCode uint32, badVAddr uint32, hasBadVAddr bool) {
	faultPC := c.Regs.pc
	inDelay := c.Regs.currentIsDelay
	branchPC := faultPC - 4
	vector := c.COP0.enterException(excCode, faultPC, inDelay, branchPC, badVAddr, hasBadVAddr)
	c.Regs.pc = vector
	c.Regs.next = vector + 4
	c.Regs.inDelaySlot = false
	c.Regs.flushLoadPipeline()
}

// execute decodes and runs the instruction word fetched from pc, returning
// its cycle cost. pc is the address the word was fetched from, used for
// branch target computation and exception bookkeeping.
func (c *CPU) execute(bus Bus, pc uint32, word uint32) uint32 {
	op := word >> 26
	rs := (word >> 21) & 0x1F
	rt := (word >> 16) & 0x1F
	rd := (word >> 11) & 0x1F
	shamt := (word >> 6) & 0x1F
	funct := word & 0x3F
	imm16 := uint32(int32(int16(word)))
	immU16 := word & 0xFFFF
	target := word & 0x03FFFFFF

	switch op {
	case 0x00: // SPECIAL
		return c.execSpecial(bus, pc, rs, rt, rd, shamt, funct)
	case 0x01: // REGIMM
		return c.execRegimm(pc, rs, rt, imm16)
	case 0x02: // J
		c.branchTo((pc&0xF0000000)|(target<<2), true)
		return 1
	case 0x03: // JAL
		c.Regs.set(31, pc+8)
		c.branchTo((pc&0xF0000000)|(target<<2), true)
		return 1
	case 0x04: // BEQ
		c.branchIf(pc, rs, rt, imm16, c.Regs.get(rs) == c.Regs.get(rt))
		return 1
	case 0x05: // BNE
		c.branchIf(pc, rs, rt, imm16, c.Regs.get(rs) != c.Regs.get(rt))
		return 1
	case 0x06: // BLEZ
		c.branchIf(pc, rs, rt, imm16, int32(c.Regs.get(rs)) <= 0)
		return 1
	case 0x07: // BGTZ
		c.branchIf(pc, rs, rt, imm16, int32(c.Regs.get(rs)) > 0)
		return 1
	case 0x08: // ADDI
		return c.addImmediate(rs, rt, imm16, true)
	case 0x09: // ADDIU
		return c.addImmediate(rs, rt, imm16, false)
	case 0x0A: // SLTI
		v := uint32(0)
		if int32(c.Regs.get(rs)) < int32(imm16) {
			v = 1
		}
		c.Regs.set(rt, v)
		return 1
	case 0x0B: // SLTIU
		v := uint32(0)
		if c.Regs.get(rs) < imm16 {
			v = 1
		}
		c.Regs.set(rt, v)
		return 1
	case 0x0C: // ANDI
		c.Regs.set(rt, c.Regs.get(rs)&immU16)
		return 1
	case 0x0D: // ORI
		c.Regs.set(rt, c.Regs.get(rs)|immU16)
		return 1
	case 0x0E: // XORI
		c.Regs.set(rt, c.Regs.get(rs)^immU16)
		return 1
	case 0x0F: // LUI
		c.Regs.set(rt, immU16<<16)
		return 1
	case 0x10: // COP0
		return c.execCop0(rs, rt, rd, word)
	case 0x12: // COP2 (GTE)
		return c.execCop2(rs, rt, rd, word)
	case 0x20: // LB
		return c.load(bus, rs, rt, imm16, 1, true)
	case 0x21: // LH
		return c.load(bus, rs, rt, imm16, 2, true)
	case 0x22: // LWL
		return c.loadUnaligned(bus, rs, rt, imm16, true)
	case 0x23: // LW
		return c.load(bus, rs, rt, imm16, 4, true)
	case 0x24: // LBU
		return c.load(bus, rs, rt, imm16, 1, false)
	case 0x25: // LHU
		return c.load(bus, rs, rt, imm16, 2, false)
	case 0x26: // LWR
		return c.loadUnaligned(bus, rs, rt, imm16, false)
	case 0x28: // SB
		return c.store(bus, rs, rt, imm16, 1)
	case 0x29: // SH
		return c.store(bus, rs, rt, imm16, 2)
	case 0x2A: // SWL
		return c.storeUnaligned(bus, rs, rt, imm16, true)
	case 0x2B: // SW
		return c.store(bus, rs, rt, imm16, 4)
	case 0x2E: // SWR
		return c.storeUnaligned(bus, rs, rt, imm16, false)
	case 0x32: // LWC2
		return c.loadCop2(bus, rs, rt, imm16)
	case 0x3A: // SWC2
		return c.storeCop2(bus, rs, rt, imm16)
	default:
		logger.Log("cpu", "reserved instruction opcode=0x%02x pc=0x%08x", op, pc)
		c.raiseException(ExcReservedInstr, 0, false)
		return 1
	}
}

// branchIf evaluates a conditional branch: the target is only committed to
// Regs.next at the *end* of Step (via Regs.branchTaken/branchPC), so the
// delay-slot instruction still executes with the pre-branch PC sequence.
func (c *CPU) branchIf(pc uint32, rs, rt uint32, imm16 uint32, taken bool) {
	if taken {
		c.branchTo(pc+4+imm16<<2, false)
	}
}

func (c *CPU) branchTo(target uint32, isJump bool) {
	c.Regs.branchTaken = true
	c.Regs.branchPC = target
}

func (c *CPU) addImmediate(rs, rt uint32, imm16 uint32, trapOnOverflow bool) uint32 {
	a := int32(c.Regs.get(rs))
	b := int32(imm16)
	sum := a + b
	if trapOnOverflow && overflowsAdd(a, b, sum) {
		c.raiseException(ExcOverflow, 0, false)
		return 1
	}
	c.Regs.set(rt, uint32(sum))
	return 1
}

func overflowsAdd(a, b, sum int32) bool {
	return (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0)
}

func overflowsSub(a, b, diff int32) bool {
	return (a >= 0) != (b >= 0) && (diff >= 0) != (a >= 0)
}

// load implements LB/LBU/LH/LHU/LW: the destination register is written via
// the delayed-load slot, not immediately.
func (c *CPU) load(bus Bus, base, rt uint32, imm16 uint32, size int, signExtend bool) uint32 {
	addr := c.Regs.get(base) + imm16
	if c.COP0.cacheIsolated() {
		return 1
	}
	var v uint32
	switch size {
	case 1:
		b := bus.Read8(addr)
		if signExtend {
			v = uint32(int32(int8(b)))
		} else {
			v = uint32(b)
		}
	case 2:
		if addr&1 != 0 {
			c.raiseException(ExcAddrErrLoad, addr, true)
			return 1
		}
		h := bus.Read16(addr)
		if signExtend {
			v = uint32(int32(int16(h)))
		} else {
			v = uint32(h)
		}
	case 4:
		if addr&3 != 0 {
			c.raiseException(ExcAddrErrLoad, addr, true)
			return 1
		}
		v = bus.Read32(addr)
	}
	// If the instruction in this load's own delay slot is itself a load to
	// rt, its call to scheduleLoad finds this load in the armed slot and
	// cancels it before it ever commits -- the "cancelled by the newer
	// load" rule.
	c.Regs.scheduleLoad(rt, v)
	return 1
}

// loadUnaligned implements LWL (left) / LWR (right): unlike a plain load,
// these merge into the *current* value of rt (including a load still
// pending to rt from the previous instruction) rather than replacing it.
func (c *CPU) loadUnaligned(bus Bus, base, rt uint32, imm16 uint32, isLeft bool) uint32 {
	addr := c.Regs.get(base) + imm16
	aligned := addr &^ 3
	word := bus.Read32(aligned)

	current := c.Regs.get(rt)
	if v, ok := c.Regs.pendingValue(rt); ok {
		current = v
	}

	shift := (addr & 3) * 8
	var merged uint32
	if isLeft {
		mask := uint32(0x00FFFFFF) >> shift
		merged = (current & mask) | (word << (24 - shift))
	} else {
		mask := uint32(0xFFFFFF00) << (24 - shift)
		merged = (current & mask) | (word >> shift)
	}
	c.Regs.scheduleLoad(rt, merged)
	return 1
}

func (c *CPU) store(bus Bus, base, rt uint32, imm16 uint32, size int) uint32 {
	addr := c.Regs.get(base) + imm16
	if c.COP0.cacheIsolated() {
		return 1
	}
	v := c.Regs.get(rt)
	switch size {
	case 1:
		bus.Write8(addr, uint8(v))
	case 2:
		if addr&1 != 0 {
			c.raiseException(ExcAddrErrStore, addr, true)
			return 1
		}
		bus.Write16(addr, uint16(v))
	case 4:
		if addr&3 != 0 {
			c.raiseException(ExcAddrErrStore, addr, true)
			return 1
		}
		bus.Write32(addr, v)
	}
	return 1
}

func (c *CPU) storeUnaligned(bus Bus, base, rt uint32, imm16 uint32, isLeft bool) uint32 {
	addr := c.Regs.get(base) + imm16
	aligned := addr &^ 3
	current := bus.Read32(aligned)
	v := c.Regs.get(rt)
	shift := (addr & 3) * 8

	var merged uint32
	if isLeft {
		mask := uint32(0xFFFFFF00) << shift
		merged = (current & ^mask) | (v >> (24 - shift))
	} else {
		mask := uint32(0x00FFFFFF) >> (24 - shift)
		merged = (current & ^mask) | (v << shift)
	}
	if !c.COP0.cacheIsolated() {
		bus.Write32(aligned, merged)
	}
	return 1
}

func (c *CPU) loadCop2(bus Bus, base, rt uint32, imm16 uint32) uint32 {
	addr := c.Regs.get(base) + imm16
	v := bus.Read32(addr)
	c.GTE.WriteData(rt, v)
	return 1
}

func (c *CPU) storeCop2(bus Bus, base, rt uint32, imm16 uint32) uint32 {
	addr := c.Regs.get(base) + imm16
	bus.Write32(addr, c.GTE.ReadData(rt))
	return 1
}

func (c *CPU) String() string {
	return fmt.Sprintf("pc=%08x hi=%08x lo=%08x", c.Regs.pc, c.Regs.hi, c.Regs.lo)
}

func (c *CPU) SaveState() Snapshot {
	sr, cause, epc, badv := c.COP0.SaveState()
	data, control, flag := c.GTE.SaveState()
	return Snapshot{
		GPR: c.Regs.gpr, PC: c.Regs.pc, Next: c.Regs.next, HI: c.Regs.hi, LO: c.Regs.lo,
		PendingReg: c.Regs.pending.reg, PendingValue: c.Regs.pending.value, PendingValid: c.Regs.pending.valid,
		ArmedReg: c.Regs.armed.reg, ArmedValue: c.Regs.armed.value, ArmedValid: c.Regs.armed.valid,
		InDelaySlot: c.Regs.inDelaySlot,
		SR:          sr, Cause: cause, EPC: epc, BadVAddr: badv,
		GTEData: data, GTEControl: control, GTEFlag: flag,
	}
}

func (c *CPU) LoadState(s Snapshot) {
	c.Regs.gpr = s.GPR
	c.Regs.pc, c.Regs.next, c.Regs.hi, c.Regs.lo = s.PC, s.Next, s.HI, s.LO
	c.Regs.pending = loadSlot{reg: s.PendingReg, value: s.PendingValue, valid: s.PendingValid}
	c.Regs.armed = loadSlot{reg: s.ArmedReg, value: s.ArmedValue, valid: s.ArmedValid}
	c.Regs.inDelaySlot = s.InDelaySlot
	c.COP0.LoadState(s.SR, s.Cause, s.EPC, s.BadVAddr)
	c.GTE.LoadState(s.GTEData, s.GTEControl, s.GTEFlag)
}

// Snapshot is the plain-data projection of CPU state used by the savestate
// package; see savestate.Writer/Reader.
type Snapshot struct {
	GPR          [32]uint32
	PC, Next     uint32
	HI, LO       uint32
	PendingReg   uint32
	PendingValue uint32
	PendingValid bool
	ArmedReg     uint32
	ArmedValue   uint32
	ArmedValid   bool
	InDelaySlot  bool
	SR, Cause    uint32
	EPC          uint32
	BadVAddr     uint32
	GTEData      [32]int32
	GTEControl   [32]int32
	GTEFlag      uint32
}
