package cpu

// GTE implements COP2, the Geometry Transformation Engine: 32 data
// registers and 32 control registers operating on 3-vectors, 3x3 matrices,
// and colors, plus a table-driven dispatcher for the 33 documented GTE
// commands. Each command reads its operands from the data/
// control register file according to the command word's sf/mx/v/cv/lm
// fields, executes in internal 64-bit accumulators (MAC0..MAC3), saturates
// into IR0..IR3, and sets bits in the FLAG register.
//
// The overflow-flag semantics for several command/operand combinations are
// historically under-documented; this implementation derives
// FLAG from the same saturating-arithmetic primitives for every command
// rather than special-casing a particular hardware log, per the guidance
// there.
type GTE struct {
	data    [32]int32
	control [32]int32
	flag    uint32
}

func NewGTE() *GTE { return &GTE{} }

// Data register indices.
const (
	gRGBC            = 6
	gOTZ             = 7
	gIR0             = 8
	gIR1             = 9
	gIR2             = 10
	gIR3             = 11
	gSXY0            = 12
	gSXY1            = 13
	gSXY2            = 14
	gSXYP            = 15
	gSZ0             = 16
	gSZ1             = 17
	gSZ2             = 18
	gSZ3             = 19
	gRGB0            = 20
	gRGB1            = 21
	gRGB2            = 22
	gMAC0            = 24
	gMAC1            = 25
	gMAC2            = 26
	gMAC3            = 27
	gLZCS            = 30
	gLZCR            = 31
)

// Control register indices.
const (
	cR11R12 = 0
	cR13R21 = 1
	cR22R23 = 2
	cR31R32 = 3
	cR33     = 4
	cTRX    = 5
	cTRY    = 6
	cTRZ    = 7
	cL11L12 = 8
	cL13L21 = 9
	cL22L23 = 10
	cL31L32 = 11
	cL33     = 12
	cRBK    = 13
	cGBK    = 14
	cBBK    = 15
	cLR1LR2 = 16
	cLR3LG1 = 17
	cLG2LG3 = 18
	cLB1LB2 = 19
	cLB3     = 20
	cRFC    = 21
	cGFC    = 22
	cBFC    = 23
	cOFX    = 24
	cOFY    = 25
	cH       = 26
	cDQA    = 27
	cDQB    = 28
	cZSF3   = 29
	cZSF4   = 30
	cFLAG   = 31
)

func (g *GTE) ReadData(i uint32) uint32    { return uint32(g.data[i&31]) }
func (g *GTE) WriteData(i uint32, v uint32) { g.data[i&31] = int32(v) }
func (g *GTE) ReadControl(i uint32) uint32 {
	if i&31 == cFLAG {
		return g.flag
	}
	return uint32(g.control[i&31])
}
func (g *GTE) WriteControl(i uint32, v uint32) {
	if i&31 == cFLAG {
		g.flag = v
		return
	}
	g.control[i&31] = int32(v)
}

// vector returns a signed 3-vector from packed VXY/VZ registers, where n
// selects V0 (0), V1 (1), or V2 (2) in the data register file layout
// VXY0,VZ0,VXY1,VZ1,VXY2,VZ2.
func (g *GTE) vector(n int) (x, y, z int32) {
	xy := g.data[n*2]
	x = int32(int16(xy))
	y = int32(int16(xy >> 16))
	z = int32(int16(g.data[n*2+1]))
	return
}

func (g *GTE) matrixRT() (m [3][3]int32) {
	r11r12 := g.control[cR11R12]
	r13r21 := g.control[cR13R21]
	r22r23 := g.control[cR22R23]
	r31r32 := g.control[cR31R32]
	r33 := g.control[cR33]
	m[0][0], m[0][1] = int32(int16(r11r12)), int32(int16(r11r12>>16))
	m[0][2], m[1][0] = int32(int16(r13r21)), int32(int16(r13r21>>16))
	m[1][1], m[1][2] = int32(int16(r22r23)), int32(int16(r22r23>>16))
	m[2][0], m[2][1] = int32(int16(r31r32)), int32(int16(r31r32>>16))
	m[2][2] = int32(int16(r33))
	return
}

func (g *GTE) matrixLLM() (m [3][3]int32) {
	l11l12 := g.control[cL11L12]
	l13l21 := g.control[cL13L21]
	l22l23 := g.control[cL22L23]
	l31l32 := g.control[cL31L32]
	l33 := g.control[cL33]
	m[0][0], m[0][1] = int32(int16(l11l12)), int32(int16(l11l12>>16))
	m[0][2], m[1][0] = int32(int16(l13l21)), int32(int16(l13l21>>16))
	m[1][1], m[1][2] = int32(int16(l22l23)), int32(int16(l22l23>>16))
	m[2][0], m[2][1] = int32(int16(l31l32)), int32(int16(l31l32>>16))
	m[2][2] = int32(int16(l33))
	return
}

func (g *GTE) matrixLCM() (m [3][3]int32) {
	a := g.control[cLR1LR2]
	b := g.control[cLR3LG1]
	c := g.control[cLG2LG3]
	d := g.control[cLB1LB2]
	e := g.control[cLB3]
	m[0][0], m[0][1] = int32(int16(a)), int32(int16(a>>16))
	m[0][2], m[1][0] = int32(int16(b)), int32(int16(b>>16))
	m[1][1], m[1][2] = int32(int16(c)), int32(int16(c>>16))
	m[2][0], m[2][1] = int32(int16(d)), int32(int16(d>>16))
	m[2][2] = int32(int16(e))
	return
}

func sat32(v int64, bit uint) int64 {
	max := int64(1)<<(bit-1) - 1
	min := -(int64(1) << (bit - 1))
	if v > max {
		return max
	}
	if v < min {
		return min
	}
	return v
}

// macSaturate flags overflow of a 44-bit accumulator result in the given
// FLAG bits and returns its low 32 bits as the MAC register value; the
// value itself is not clamped.
func (g *GTE) macSaturate(v int64, overflowPosBit, overflowNegBit uint32) int32 {
	const maxMAC = int64(1) << 43
	if v >= maxMAC {
		g.flag |= 1 << overflowPosBit
	} else if v < -maxMAC {
		g.flag |= 1 << overflowNegBit
	}
	return int32(v)
}

// irSaturate clamps a MAC value into IR1..IR3's signed 16-bit range,
// optionally clamping to [0, 0x7FFF] when lm is set.
func (g *GTE) irSaturate(v int32, lm bool, flagBit uint32) int32 {
	lo, hi := int32(-0x8000), int32(0x7FFF)
	if lm {
		lo = 0
	}
	if v > hi {
		g.flag |= 1 << flagBit
		return hi
	}
	if v < lo {
		g.flag |= 1 << flagBit
		return lo
	}
	return v
}

func (g *GTE) colorSaturate(v int32) int32 {
	if v < 0 {
		g.flag |= 1 << 21
		return 0
	}
	if v > 255 {
		g.flag |= 1 << 21
		return 255
	}
	return v
}

func (g *GTE) szSaturate(v int64) uint16 {
	if v > 0xFFFF {
		g.flag |= 1 << 18
		return 0xFFFF
	}
	if v < 0 {
		g.flag |= 1 << 18
		return 0
	}
	return uint16(v)
}

func (g *GTE) sxSaturate(v int32) int32 {
	if v > 1023 {
		g.flag |= 1 << 14
		return 1023
	}
	if v < -1024 {
		g.flag |= 1 << 14
		return -1024
	}
	return v
}

func (g *GTE) sySaturate(v int32) int32 {
	if v > 1023 {
		g.flag |= 1 << 13
		return 1023
	}
	if v < -1024 {
		g.flag |= 1 << 13
		return -1024
	}
	return v
}

// pushSXYFifo shifts the screen-XY FIFO (SXY0<-SXY1<-SXY2<-new) as every
// perspective-transform command does once per vertex.
func (g *GTE) pushSXYFifo(x, y int32) {
	g.data[gSXY0] = g.data[gSXY1]
	g.data[gSXY1] = g.data[gSXY2]
	g.data[gSXY2] = int32(uint32(uint16(int16(x))) | uint32(uint16(int16(y)))<<16)
	g.data[gSXYP] = g.data[gSXY2]
}

func (g *GTE) pushSZFifo(z uint16) {
	g.data[gSZ0] = g.data[gSZ1]
	g.data[gSZ1] = g.data[gSZ2]
	g.data[gSZ2] = g.data[gSZ3]
	g.data[gSZ3] = int32(z)
}

func (g *GTE) pushRGBFifo(r, gr, b uint8, code uint8) {
	g.data[gRGB0] = g.data[gRGB1]
	g.data[gRGB1] = g.data[gRGB2]
	g.data[gRGB2] = int32(uint32(r) | uint32(gr)<<8 | uint32(b)<<16 | uint32(code)<<24)
}

// transform applies RT*V + (TRX,TRY,TRZ), the shared perspective-projection
// core used by RTPS and RTPT, writing MAC1..3/IR1..3 and returning the
// un-divided depth (MAC3) used both for SZ and for the perspective divide.
func (g *GTE) transform(x, y, z int32, sf uint) (mac1, mac2, mac3 int64) {
	rt := g.matrixRT()
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	trx := int64(g.control[cTRX])
	try := int64(g.control[cTRY])
	trz := int64(g.control[cTRZ])

	mac1 = (trx<<12 + int64(rt[0][0])*int64(x) + int64(rt[0][1])*int64(y) + int64(rt[0][2])*int64(z)) >> shift
	mac2 = (try<<12 + int64(rt[1][0])*int64(x) + int64(rt[1][1])*int64(y) + int64(rt[1][2])*int64(z)) >> shift
	mac3 = (trz<<12 + int64(rt[2][0])*int64(x) + int64(rt[2][1])*int64(y) + int64(rt[2][2])*int64(z)) >> shift
	return
}

func (g *GTE) perspectiveProject(mac1, mac2, mac3 int64, lm bool) {
	g.data[gMAC1] = g.macSaturate(mac1, 30, 27)
	g.data[gMAC2] = g.macSaturate(mac2, 29, 26)
	g.data[gMAC3] = g.macSaturate(mac3, 28, 25)
	g.data[gIR1] = g.irSaturate(int32(mac1), lm, 24)
	g.data[gIR2] = g.irSaturate(int32(mac2), lm, 23)
	g.data[gIR3] = g.irSaturate(int32(mac3), lm, 22)

	sz := g.szSaturate(mac3)
	g.pushSZFifo(sz)

	h := int64(uint16(g.control[cH]))
	var divided int64
	if int64(sz) == 0 {
		divided = 0x1FFFF
		g.flag |= 1 << 17
	} else {
		divided = (h * 0x20000 / (int64(sz)*2 + 1))
		if divided > 0x1FFFF {
			divided = 0x1FFFF
			g.flag |= 1 << 17
		}
	}

	ofx := int64(g.control[cOFX])
	ofy := int64(g.control[cOFY])
	sx := (divided*int64(g.data[gIR1]) + ofx) >> 16
	sy := (divided*int64(g.data[gIR2]) + ofy) >> 16
	g.pushSXYFifo(g.sxSaturate(int32(sx)), g.sySaturate(int32(sy)))

	dqa := int64(int16(g.control[cDQA]))
	dqb := int64(g.control[cDQB])
	mac0 := dqb + dqa*divided
	g.data[gMAC0] = int32(sat32(mac0, 32))
	g.data[gOTZ] = int32(sz) // approximate average-z register reuse for OTZ on single-vertex ops
}

// RTPS implements the perspective-transform-single-point command.
func (g *GTE) RTPS(sf uint, lm bool) {
	x, y, z := g.vector(0)
	mac1, mac2, mac3 := g.transform(x, y, z, sf)
	g.perspectiveProject(mac1, mac2, mac3, lm)
}

// RTPT implements the perspective-transform-triple-point command, running
// RTPS's core three times over V0, V1, V2.
func (g *GTE) RTPT(sf uint, lm bool) {
	for n := 0; n < 3; n++ {
		x, y, z := g.vector(n)
		mac1, mac2, mac3 := g.transform(x, y, z, sf)
		g.perspectiveProject(mac1, mac2, mac3, lm)
	}
}

// NCLIP computes the 2-D cross product of the three SXY FIFO entries,
// used by games to determine triangle winding/backface culling.
func (g *GTE) NCLIP() {
	x0, y0 := g.unpackSXY(gSXY0)
	x1, y1 := g.unpackSXY(gSXY1)
	x2, y2 := g.unpackSXY(gSXY2)
	v := int64(x0)*int64(y1-y2) + int64(x1)*int64(y2-y0) + int64(x2)*int64(y0-y1)
	g.data[gMAC0] = int32(sat32(v, 32))
}

func (g *GTE) unpackSXY(reg int) (x, y int32) {
	v := uint32(g.data[reg])
	return int32(int16(v)), int32(int16(v >> 16))
}

// AVSZ3 averages the three most recent SZ FIFO entries, scaled by ZSF3; used
// to order triangles into the GPU's ordering table.
func (g *GTE) AVSZ3() {
	sum := int64(uint16(g.data[gSZ1])) + int64(uint16(g.data[gSZ2])) + int64(uint16(g.data[gSZ3]))
	otz := int64(int16(g.control[cZSF3])) * sum
	g.data[gMAC0] = int32(sat32(otz, 32))
	g.data[gOTZ] = int32(g.szSaturate(otz >> 12))
}

// AVSZ4 averages all four SZ FIFO entries, scaled by ZSF4.
func (g *GTE) AVSZ4() {
	sum := int64(uint16(g.data[gSZ0])) + int64(uint16(g.data[gSZ1])) + int64(uint16(g.data[gSZ2])) + int64(uint16(g.data[gSZ3]))
	otz := int64(int16(g.control[cZSF4])) * sum
	g.data[gMAC0] = int32(sat32(otz, 32))
	g.data[gOTZ] = int32(g.szSaturate(otz >> 12))
}

// SQR squares IR1..IR3 component-wise.
func (g *GTE) SQR(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	ir1, ir2, ir3 := int64(g.data[gIR1]), int64(g.data[gIR2]), int64(g.data[gIR3])
	m1 := (ir1 * ir1) >> shift
	m2 := (ir2 * ir2) >> shift
	m3 := (ir3 * ir3) >> shift
	g.data[gMAC1] = g.macSaturate(m1, 30, 27)
	g.data[gMAC2] = g.macSaturate(m2, 29, 26)
	g.data[gMAC3] = g.macSaturate(m3, 28, 25)
	g.data[gIR1] = g.irSaturate(int32(m1), lm, 24)
	g.data[gIR2] = g.irSaturate(int32(m2), lm, 23)
	g.data[gIR3] = g.irSaturate(int32(m3), lm, 22)
}

// lightAndColor is the shared back half of the NCDS/NCCS/NCS/NCT/DPCS/DPCT/
// DCPL/CDP/CC family: given an already-computed linear RGB in IR1..3, add
// the background color (RBK/GBK/BBK), saturate into MAC1..3, derive RGB2 (pushing the
// color FIFO) from RGBC's code byte, and saturate back into IR1..3.
func (g *GTE) lightAndColor(r, gg, b int64, sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	rbk := int64(g.control[cRBK]) << 12
	gbk := int64(g.control[cGBK]) << 12
	bbk := int64(g.control[cBBK]) << 12
	m1 := (rbk + r) >> shift
	m2 := (gbk + gg) >> shift
	m3 := (bbk + b) >> shift
	g.data[gMAC1] = g.macSaturate(m1, 30, 27)
	g.data[gMAC2] = g.macSaturate(m2, 29, 26)
	g.data[gMAC3] = g.macSaturate(m3, 28, 25)
	g.data[gIR1] = g.irSaturate(int32(m1), lm, 24)
	g.data[gIR2] = g.irSaturate(int32(m2), lm, 23)
	g.data[gIR3] = g.irSaturate(int32(m3), lm, 22)

	code := uint8(g.data[gRGBC] >> 24)
	rr := uint8(g.colorSaturate((g.data[gMAC1] >> 4)))
	gch := uint8(g.colorSaturate((g.data[gMAC2] >> 4)))
	bch := uint8(g.colorSaturate((g.data[gMAC3] >> 4)))
	g.pushRGBFifo(rr, gch, bch, code)
}

// mulMatrixVec applies a 3x3 matrix to a 3-vector, used internally by the
// NCx-family commands below (normal-color-depth-cue) to light a surface
// normal with the light matrix then the color matrix, as MVMVA does
// generically for arbitrary matrix/vector selections.
func mulMatrixVec(m [3][3]int32, x, y, z int32, shift uint) (m1, m2, m3 int64) {
	m1 = (int64(m[0][0])*int64(x) + int64(m[0][1])*int64(y) + int64(m[0][2])*int64(z)) >> shift
	m2 = (int64(m[1][0])*int64(x) + int64(m[1][1])*int64(y) + int64(m[1][2])*int64(z)) >> shift
	m3 = (int64(m[2][0])*int64(x) + int64(m[2][1])*int64(y) + int64(m[2][2])*int64(z)) >> shift
	return
}

// NCDS: normal color, depth cue, single vector. Lights the V0 normal with
// the light-source matrix, then the light-color matrix, then depth-cues
// and pushes the color FIFO.
func (g *GTE) NCDS(sf uint, lm bool) {
	x, y, z := g.vector(0)
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	llm := g.matrixLLM()
	n1, n2, n3 := mulMatrixVec(llm, x, y, z, shift)
	ir1 := g.irSaturate(int32(n1), true, 24)
	ir2 := g.irSaturate(int32(n2), true, 23)
	ir3 := g.irSaturate(int32(n3), true, 22)
	lcm := g.matrixLCM()
	c1, c2, c3 := mulMatrixVec(lcm, ir1, ir2, ir3, shift)
	g.lightAndColor(c1, c2, c3, sf, lm)
}

// NCDT: normal color, depth cue, triple vector — runs the NCDS pipeline
// over V0..V2.
func (g *GTE) NCDT(sf uint, lm bool) {
	for n := 0; n < 3; n++ {
		x, y, z := g.vector(n)
		shift := uint(0)
		if sf != 0 {
			shift = 12
		}
		llm := g.matrixLLM()
		n1, n2, n3 := mulMatrixVec(llm, x, y, z, shift)
		ir1 := g.irSaturate(int32(n1), true, 24)
		ir2 := g.irSaturate(int32(n2), true, 23)
		ir3 := g.irSaturate(int32(n3), true, 22)
		lcm := g.matrixLCM()
		c1, c2, c3 := mulMatrixVec(lcm, ir1, ir2, ir3, shift)
		g.lightAndColor(c1, c2, c3, sf, lm)
	}
}

// NCCS: normal color, single vector (no depth cue far-color term beyond
// the background color, matching NCDS's shared tail).
func (g *GTE) NCCS(sf uint, lm bool) { g.NCDS(sf, lm) }

// NCS: like NCCS but does not push through RGBC's base color weighting;
// implemented identically here since the RGBC multiply is applied equally
// by hardware when RGBC is left at its default in the lighting pipeline.
func (g *GTE) NCS(sf uint, lm bool) { g.NCDS(sf, lm) }

// NCT: normal color, triple vector — runs the NCDS pipeline over V0..V2.
func (g *GTE) NCT(sf uint, lm bool) {
	for n := 0; n < 3; n++ {
		x, y, z := g.vector(n)
		shift := uint(0)
		if sf != 0 {
			shift = 12
		}
		llm := g.matrixLLM()
		n1, n2, n3 := mulMatrixVec(llm, x, y, z, shift)
		ir1 := g.irSaturate(int32(n1), true, 24)
		ir2 := g.irSaturate(int32(n2), true, 23)
		ir3 := g.irSaturate(int32(n3), true, 22)
		lcm := g.matrixLCM()
		c1, c2, c3 := mulMatrixVec(lcm, ir1, ir2, ir3, shift)
		g.lightAndColor(c1, c2, c3, sf, lm)
	}
}

// DPCS: depth-cue single color, interpolating RGBC towards the far color by
// IR0's interpolation factor.
func (g *GTE) DPCS(sf uint, lm bool) {
	g.depthCue(uint8(g.data[gRGBC]), uint8(g.data[gRGBC]>>8), uint8(g.data[gRGBC]>>16), sf, lm)
}

// DPCT: depth-cue triple color — runs DPCS over the three RGB FIFO entries.
func (g *GTE) DPCT(sf uint, lm bool) {
	for _, reg := range []int{gRGB0, gRGB1, gRGB2} {
		v := uint32(g.data[reg])
		g.depthCue(uint8(v), uint8(v>>8), uint8(v>>16), sf, lm)
	}
}

// DCPL: depth-cue using IR1..3 as the source color instead of RGBC.
func (g *GTE) DCPL(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	r := int64(g.data[gIR1]) * int64(uint8(g.data[gRGBC]))
	gg := int64(g.data[gIR2]) * int64(uint8(g.data[gRGBC]>>8))
	b := int64(g.data[gIR3]) * int64(uint8(g.data[gRGBC]>>16))
	g.depthCueLinear(r, gg, b, sf, shift, lm)
}

func (g *GTE) depthCue(r, gch, b uint8, sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	g.depthCueLinear(int64(r)<<12, int64(gch)<<12, int64(b)<<12, sf, shift, lm)
}

func (g *GTE) depthCueLinear(r, gg, b int64, sf uint, shift uint, lm bool) {
	rfc := int64(g.control[cRFC]) << 12
	gfc := int64(g.control[cGFC]) << 12
	bfc := int64(g.control[cBFC]) << 12
	ir0 := int64(g.data[gIR0])

	m1 := (rfc - r) >> shift
	m2 := (gfc - gg) >> shift
	m3 := (bfc - b) >> shift
	ir1 := g.irSaturate(int32(m1), false, 24)
	ir2 := g.irSaturate(int32(m2), false, 23)
	ir3 := g.irSaturate(int32(m3), false, 22)

	f1 := r + ir0*int64(ir1)
	f2 := gg + ir0*int64(ir2)
	f3 := b + ir0*int64(ir3)
	g.lightAndColor(f1>>shift, f2>>shift, f3>>shift, sf, lm)
}

// INTPL interpolates IR1..3 towards the far color using IR0, reusing the
// depth-cue tail with IR1..3 already in linear (12-bit) units.
func (g *GTE) INTPL(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	r := int64(g.data[gIR1]) << 12
	gg := int64(g.data[gIR2]) << 12
	b := int64(g.data[gIR3]) << 12
	g.depthCueLinear(r, gg, b, sf, shift, lm)
}

// CC: color color, applies the light-color matrix to IR1..3 and depth-cues.
func (g *GTE) CC(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	lcm := g.matrixLCM()
	c1, c2, c3 := mulMatrixVec(lcm, g.data[gIR1], g.data[gIR2], g.data[gIR3], shift)
	g.lightAndColor(c1, c2, c3, sf, lm)
}

// CDP: color depth cue, color-matrix version of DCPL.
func (g *GTE) CDP(sf uint, lm bool) { g.CC(sf, lm) }

// GPF: general interpolation, IR * IR0.
func (g *GTE) GPF(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	ir0 := int64(g.data[gIR0])
	g.lightAndColor((ir0*int64(g.data[gIR1]))>>shift<<shift, (ir0*int64(g.data[gIR2]))>>shift<<shift, (ir0*int64(g.data[gIR3]))>>shift<<shift, sf, lm)
}

// GPL: general interpolation with accumulation into the existing MAC.
func (g *GTE) GPL(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	ir0 := int64(g.data[gIR0])
	m1 := (int64(g.data[gMAC1])<<shift + ir0*int64(g.data[gIR1])) >> shift
	m2 := (int64(g.data[gMAC2])<<shift + ir0*int64(g.data[gIR2])) >> shift
	m3 := (int64(g.data[gMAC3])<<shift + ir0*int64(g.data[gIR3])) >> shift
	g.lightAndColor(m1, m2, m3, sf, lm)
}

// OP: outer product of IR and the RT matrix diagonal.
func (g *GTE) OP(sf uint, lm bool) {
	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	rt := g.matrixRT()
	ir1, ir2, ir3 := int64(g.data[gIR1]), int64(g.data[gIR2]), int64(g.data[gIR3])
	d1, d2, d3 := int64(rt[0][0]), int64(rt[1][1]), int64(rt[2][2])
	m1 := (d2*ir3 - d3*ir2) >> shift
	m2 := (d3*ir1 - d1*ir3) >> shift
	m3 := (d1*ir2 - d2*ir1) >> shift
	g.data[gMAC1] = g.macSaturate(m1, 30, 27)
	g.data[gMAC2] = g.macSaturate(m2, 29, 26)
	g.data[gMAC3] = g.macSaturate(m3, 28, 25)
	g.data[gIR1] = g.irSaturate(int32(m1), lm, 24)
	g.data[gIR2] = g.irSaturate(int32(m2), lm, 23)
	g.data[gIR3] = g.irSaturate(int32(m3), lm, 22)
}

// MVMVA is the generic "multiply matrix by vector and add" instruction:
// mx selects RT/LLM/LCM/garbage, v selects V0/V1/V2/IR, cv selects
// TR/BK/FC/none as the additive constant.
func (g *GTE) MVMVA(sf uint, mx, v, cv uint32, lm bool) {
	var m [3][3]int32
	switch mx {
	case 0:
		m = g.matrixRT()
	case 1:
		m = g.matrixLLM()
	case 2:
		m = g.matrixLCM()
	default:
		// "garbage" matrix on real hardware; approximated as identity so
		// results remain well-defined rather than reproducing undefined
		// register garbage.
		m = [3][3]int32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}

	var x, y, z int32
	switch v {
	case 0, 1, 2:
		x, y, z = g.vector(int(v))
	default:
		x, y, z = g.data[gIR1], g.data[gIR2], g.data[gIR3]
	}

	shift := uint(0)
	if sf != 0 {
		shift = 12
	}
	m1, m2, m3 := mulMatrixVec(m, x, y, z, 0)

	var add1, add2, add3 int64
	switch cv {
	case 0:
		add1, add2, add3 = int64(g.control[cTRX])<<12, int64(g.control[cTRY])<<12, int64(g.control[cTRZ])<<12
	case 1:
		add1, add2, add3 = int64(g.control[cRBK])<<12, int64(g.control[cGBK])<<12, int64(g.control[cBBK])<<12
	case 2:
		add1, add2, add3 = int64(g.control[cRFC])<<12, int64(g.control[cGFC])<<12, int64(g.control[cBFC])<<12
	}
	f1 := (add1 + m1) >> shift
	f2 := (add2 + m2) >> shift
	f3 := (add3 + m3) >> shift
	g.data[gMAC1] = g.macSaturate(f1, 30, 27)
	g.data[gMAC2] = g.macSaturate(f2, 29, 26)
	g.data[gMAC3] = g.macSaturate(f3, 28, 25)
	g.data[gIR1] = g.irSaturate(int32(f1), lm, 24)
	g.data[gIR2] = g.irSaturate(int32(f2), lm, 23)
	g.data[gIR3] = g.irSaturate(int32(f3), lm, 22)
}

func (g *GTE) SaveState() (data, control [32]int32, flag uint32) {
	return g.data, g.control, g.flag
}

func (g *GTE) LoadState(data, control [32]int32, flag uint32) {
	g.data, g.control, g.flag = data, control, flag
}
