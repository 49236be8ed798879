// Package timers implements the three programmable interval timers and the
// video clock that derives HBlank/VBlank edges from the scheduler's cycle
// counter.
package timers

// ClockSource selects what increments a given timer's counter.
type ClockSource int

const (
	ClockSystem      ClockSource = iota // CPU clock, /1 or /8 depending on timer
	ClockDotClock                       // timer 0 only
	ClockHBlank                         // timer 1 only
)

// Timer is one of the three 16-bit up-counters with target/overflow IRQs.
type Timer struct {
	Counter uint16
	Target  uint16

	SyncEnabled bool
	SyncMode    int
	ResetOnTarget bool
	IRQOnTarget   bool
	IRQOnOverflow bool
	RepeatIRQ     bool
	ToggleIRQ     bool
	ClockSrc      ClockSource
	Div8          bool

	reachedTarget  bool
	reachedOverflow bool
	irqLine        bool
	subCycles      int
}

// Controller owns the three timers and the horizontal/vertical video
// geometry used to derive dot-clock and HBlank ticks from CPU cycles.
type Controller struct {
	timers [3]Timer

	dotsPerScanline  int
	scanlinesPerFrame int
	cyclesPerDot     int

	scanlineCycles int
	currentLine    int

	raiseIRQ func(timer int)
	onHBlank func()
	onVBlank func()
}

// NTSC geometry: 3413 CPU cycles per scanline (the longer of the 3412/3413
// alternation, used for every line), 263 scanlines per frame.
const (
	cyclesPerScanlineNTSC = 3413
	scanlinesPerFrameNTSC = 263
)

func New(raiseIRQ func(timer int), onHBlank, onVBlank func()) *Controller {
	return &Controller{
		dotsPerScanline:   3413,
		scanlinesPerFrame: scanlinesPerFrameNTSC,
		cyclesPerDot:      8,
		raiseIRQ:          raiseIRQ,
		onHBlank:          onHBlank,
		onVBlank:          onVBlank,
	}
}

// Step advances the video clock and all three timers by cycles CPU cycles,
// raising IRQs and calling the HBlank/VBlank hooks as their respective
// edges are crossed.
func (c *Controller) Step(cycles int) {
	for i := 0; i < cycles; i++ {
		c.scanlineCycles++
		dotTick := c.scanlineCycles%c.cyclesPerDot == 0
		if c.scanlineCycles >= cyclesPerScanlineNTSC {
			c.scanlineCycles = 0
			c.currentLine++
			if c.onHBlank != nil {
				c.onHBlank()
			}
			if c.currentLine >= c.scanlinesPerFrame {
				c.currentLine = 0
				if c.onVBlank != nil {
					c.onVBlank()
				}
			}
		}
		c.tickTimer(0, dotTick)
		c.tickTimer(1, c.scanlineCycles == 0)
		c.tickTimer(2, true)
	}
}

func (c *Controller) tickTimer(idx int, sourceTicked bool) {
	t := &c.timers[idx]
	switch t.ClockSrc {
	case ClockSystem:
		if t.Div8 {
			t.subCycles++
			if t.subCycles < 8 {
				return
			}
			t.subCycles = 0
		}
	case ClockDotClock, ClockHBlank:
		if !sourceTicked {
			return
		}
	}
	t.Counter++
	if t.Counter == t.Target {
		t.reachedTarget = true
		if t.IRQOnTarget {
			c.fireIRQ(idx, t)
		}
		if t.ResetOnTarget {
			t.Counter = 0
		}
	}
	if t.Counter == 0 {
		t.reachedOverflow = true
		if t.IRQOnOverflow {
			c.fireIRQ(idx, t)
		}
	}
}

func (c *Controller) fireIRQ(idx int, t *Timer) {
	if t.ToggleIRQ {
		t.irqLine = !t.irqLine
	} else {
		t.irqLine = false
	}
	if c.raiseIRQ != nil {
		c.raiseIRQ(idx)
	}
}

// WriteMode/ReadMode/WriteCounter/ReadCounter/WriteTarget/ReadTarget cover
// the 3 x 3-register blocks at 0x1F801100 + 0x10*n.
func (c *Controller) WriteMode(idx int, v uint16) {
	t := &c.timers[idx]
	t.SyncEnabled = v&1 != 0
	t.SyncMode = int((v >> 1) & 3)
	t.ResetOnTarget = v&8 != 0
	t.IRQOnTarget = v&0x10 != 0
	t.IRQOnOverflow = v&0x20 != 0
	t.RepeatIRQ = v&0x40 != 0
	t.ToggleIRQ = v&0x80 != 0
	switch idx {
	case 0:
		if v&0x100 != 0 {
			t.ClockSrc = ClockDotClock
		} else {
			t.ClockSrc = ClockSystem
		}
	case 1:
		if v&0x100 != 0 {
			t.ClockSrc = ClockHBlank
		} else {
			t.ClockSrc = ClockSystem
		}
	case 2:
		t.Div8 = v&0x200 != 0
		t.ClockSrc = ClockSystem
	}
	t.Counter = 0
	t.irqLine = true
}

func (c *Controller) ReadMode(idx int) uint16 {
	t := &c.timers[idx]
	var v uint16
	if t.SyncEnabled {
		v |= 1
	}
	v |= uint16(t.SyncMode&3) << 1
	if t.ResetOnTarget {
		v |= 8
	}
	if t.IRQOnTarget {
		v |= 0x10
	}
	if t.IRQOnOverflow {
		v |= 0x20
	}
	if t.RepeatIRQ {
		v |= 0x40
	}
	if t.ToggleIRQ {
		v |= 0x80
	}
	if !t.irqLine {
		v |= 0x400
	}
	if t.reachedTarget {
		v |= 0x800
		t.reachedTarget = false
	}
	if t.reachedOverflow {
		v |= 0x1000
		t.reachedOverflow = false
	}
	return v
}

func (c *Controller) WriteCounter(idx int, v uint16) { c.timers[idx].Counter = v }
func (c *Controller) ReadCounter(idx int) uint16     { return c.timers[idx].Counter }
func (c *Controller) WriteTarget(idx int, v uint16)  { c.timers[idx].Target = v }
func (c *Controller) ReadTarget(idx int) uint16       { return c.timers[idx].Target }
