package cpu

import "github.com/retropix/psxcore/internal/logger"

// execSpecial decodes the SPECIAL (primary opcode 0) group by its funct
// field (bits 5:0).
func (c *CPU) execSpecial(bus Bus, pc uint32, rs, rt, rd, shamt, funct uint32) uint32 {
	switch funct {
	case 0x00: // SLL
		c.Regs.set(rd, c.Regs.get(rt)<<shamt)
	case 0x02: // SRL
		c.Regs.set(rd, c.Regs.get(rt)>>shamt)
	case 0x03: // SRA
		c.Regs.set(rd, uint32(int32(c.Regs.get(rt))>>shamt))
	case 0x04: // SLLV
		c.Regs.set(rd, c.Regs.get(rt)<<(c.Regs.get(rs)&0x1F))
	case 0x06: // SRLV
		c.Regs.set(rd, c.Regs.get(rt)>>(c.Regs.get(rs)&0x1F))
	case 0x07: // SRAV
		c.Regs.set(rd, uint32(int32(c.Regs.get(rt))>>(c.Regs.get(rs)&0x1F)))
	case 0x08: // JR
		c.branchTo(c.Regs.get(rs), true)
	case 0x09: // JALR
		target := c.Regs.get(rs)
		c.Regs.set(rd, pc+8)
		c.branchTo(target, true)
	case 0x0C: // SYSCALL
		c.raiseException(ExcSyscall, 0, false)
	case 0x0D: // BREAK
		c.raiseException(ExcBreak, 0, false)
	case 0x10: // MFHI
		c.Regs.set(rd, c.Regs.hi)
	case 0x11: // MTHI
		c.Regs.hi = c.Regs.get(rs)
	case 0x12: // MFLO
		c.Regs.set(rd, c.Regs.lo)
	case 0x13: // MTLO
		c.Regs.lo = c.Regs.get(rs)
	case 0x18: // MULT
		a := int64(int32(c.Regs.get(rs)))
		b := int64(int32(c.Regs.get(rt)))
		p := uint64(a * b)
		c.Regs.hi, c.Regs.lo = uint32(p>>32), uint32(p)
	case 0x19: // MULTU
		p := uint64(c.Regs.get(rs)) * uint64(c.Regs.get(rt))
		c.Regs.hi, c.Regs.lo = uint32(p>>32), uint32(p)
	case 0x1A: // DIV
		c.execDiv(rs, rt)
	case 0x1B: // DIVU
		c.execDivu(rs, rt)
	case 0x20: // ADD
		a := int32(c.Regs.get(rs))
		b := int32(c.Regs.get(rt))
		sum := a + b
		if overflowsAdd(a, b, sum) {
			c.raiseException(ExcOverflow, 0, false)
			return 1
		}
		c.Regs.set(rd, uint32(sum))
	case 0x21: // ADDU
		c.Regs.set(rd, c.Regs.get(rs)+c.Regs.get(rt))
	case 0x22: // SUB
		a := int32(c.Regs.get(rs))
		b := int32(c.Regs.get(rt))
		diff := a - b
		if overflowsSub(a, b, diff) {
			c.raiseException(ExcOverflow, 0, false)
			return 1
		}
		c.Regs.set(rd, uint32(diff))
	case 0x23: // SUBU
		c.Regs.set(rd, c.Regs.get(rs)-c.Regs.get(rt))
	case 0x24: // AND
		c.Regs.set(rd, c.Regs.get(rs)&c.Regs.get(rt))
	case 0x25: // OR
		c.Regs.set(rd, c.Regs.get(rs)|c.Regs.get(rt))
	case 0x26: // XOR
		c.Regs.set(rd, c.Regs.get(rs)^c.Regs.get(rt))
	case 0x27: // NOR
		c.Regs.set(rd, ^(c.Regs.get(rs) | c.Regs.get(rt)))
	case 0x2A: // SLT
		v := uint32(0)
		if int32(c.Regs.get(rs)) < int32(c.Regs.get(rt)) {
			v = 1
		}
		c.Regs.set(rd, v)
	case 0x2B: // SLTU
		v := uint32(0)
		if c.Regs.get(rs) < c.Regs.get(rt) {
			v = 1
		}
		c.Regs.set(rd, v)
	default:
		logger.Log("cpu", "reserved SPECIAL funct=0x%02x pc=0x%08x", funct, pc)
		c.raiseException(ExcReservedInstr, 0, false)
	}
	return 1
}

// execDiv implements DIV, including the documented divide-by-zero result
// LO = 1 if dividend<0 else 0xFFFFFFFF, HI = dividend. The
// INT32_MIN / -1 overflow case also has a fixed hardware result rather than
// trapping.
func (c *CPU) execDiv(rs, rt uint32) {
	dividend := int32(c.Regs.get(rs))
	divisor := int32(c.Regs.get(rt))
	if divisor == 0 {
		c.Regs.hi = uint32(dividend)
		if dividend < 0 {
			c.Regs.lo = 1
		} else {
			c.Regs.lo = 0xFFFFFFFF
		}
		return
	}
	if dividend == -0x80000000 && divisor == -1 {
		c.Regs.lo = uint32(dividend)
		c.Regs.hi = 0
		return
	}
	c.Regs.lo = uint32(dividend / divisor)
	c.Regs.hi = uint32(dividend % divisor)
}

func (c *CPU) execDivu(rs, rt uint32) {
	dividend := c.Regs.get(rs)
	divisor := c.Regs.get(rt)
	if divisor == 0 {
		c.Regs.lo = 0xFFFFFFFF
		c.Regs.hi = dividend
		return
	}
	c.Regs.lo = dividend / divisor
	c.Regs.hi = dividend % divisor
}

// execRegimm decodes the REGIMM group (primary opcode 1) by the rt field:
// BLTZ/BGEZ and their AL (link) variants.
func (c *CPU) execRegimm(pc uint32, rs, rt uint32, imm16 uint32) uint32 {
	v := int32(c.Regs.get(rs))
	link := rt&0x1E == 0x10
	taken := false
	switch rt & 0x01 {
	case 0:
		taken = v < 0
	case 1:
		taken = v >= 0
	}
	if link {
		c.Regs.set(31, pc+8)
	}
	if taken {
		c.branchTo(pc+4+imm16<<2, false)
	}
	return 1
}

// execCop0 decodes MFC0/MTC0/RFE by the rs field.
func (c *CPU) execCop0(rs, rt, rd, word uint32) uint32 {
	switch rs {
	case 0x00: // MFC0
		var v uint32
		switch rd {
		case 12:
			v = c.COP0.SR()
		case 13:
			v = c.COP0.Cause()
		case 14:
			v = c.COP0.EPC()
		default:
			v = 0
		}
		c.Regs.scheduleLoad(rt, v)
	case 0x04: // MTC0
		v := c.Regs.get(rt)
		switch rd {
		case 12:
			c.COP0.WriteSR(v)
		case 13:
			c.COP0.WriteCause(v)
		}
	case 0x10: // CO (RFE and friends), decoded by funct
		if word&0x3F == 0x10 {
			c.COP0.rfe()
		}
	}
	return 1
}

// execCop2 decodes the COP2 group: MFC2/CFC2/MTC2/CTC2 register moves (rs
// field) and, when bit 25 of the instruction word is set, one of the 33
// GTE arithmetic commands (funct field).
func (c *CPU) execCop2(rs, rt, rd, word uint32) uint32 {
	if word&(1<<25) != 0 {
		return c.execGTECommand(word)
	}
	switch rs {
	case 0x00: // MFC2
		c.Regs.scheduleLoad(rt, c.GTE.ReadData(rd))
	case 0x02: // CFC2
		c.Regs.scheduleLoad(rt, c.GTE.ReadControl(rd))
	case 0x04: // MTC2
		c.GTE.WriteData(rd, c.Regs.get(rt))
	case 0x06: // CTC2
		c.GTE.WriteControl(rd, c.Regs.get(rt))
	}
	return 1
}

func (c *CPU) execGTECommand(word uint32) uint32 {
	funct := word & 0x3F
	sf := uint((word >> 19) & 1)
	mx := (word >> 17) & 0x3
	v := (word >> 15) & 0x3
	cv := (word >> 13) & 0x3
	lm := (word>>10)&1 != 0

	c.GTE.WriteControl(31, 0) // FLAG is cleared at the start of every command

	switch funct {
	case 0x01:
		c.GTE.RTPS(sf, lm)
		return 15
	case 0x06:
		c.GTE.NCLIP()
		return 8
	case 0x0C:
		c.GTE.OP(sf, lm)
		return 6
	case 0x10:
		c.GTE.DPCS(sf, lm)
		return 8
	case 0x11:
		c.GTE.INTPL(sf, lm)
		return 8
	case 0x12:
		c.GTE.MVMVA(sf, mx, v, cv, lm)
		return 8
	case 0x13:
		c.GTE.NCDS(sf, lm)
		return 19
	case 0x14:
		c.GTE.CDP(sf, lm)
		return 13
	case 0x16:
		c.GTE.NCDT(sf, lm)
		return 44
	case 0x1B:
		c.GTE.NCCS(sf, lm)
		return 17
	case 0x1C:
		c.GTE.CC(sf, lm)
		return 11
	case 0x1E:
		c.GTE.NCS(sf, lm)
		return 14
	case 0x20:
		c.GTE.NCT(sf, lm)
		return 30
	case 0x28:
		c.GTE.SQR(sf, lm)
		return 5
	case 0x29:
		c.GTE.AVSZ3()
		return 5
	case 0x2A:
		c.GTE.AVSZ4()
		return 5
	case 0x2D:
		c.GTE.RTPT(sf, lm)
		return 23
	case 0x3D:
		c.GTE.GPF(sf, lm)
		return 5
	case 0x3E:
		c.GTE.GPL(sf, lm)
		return 5
	case 0x3F:
		c.GTE.DPCT(sf, lm)
		return 17
	case 0x17:
		c.GTE.DCPL(sf, lm)
		return 8
	default:
		logger.Log("cpu", "unimplemented GTE command funct=0x%02x", funct)
		return 1
	}
}
