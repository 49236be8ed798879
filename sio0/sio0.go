// Package sio0 implements the SIO0 serial port used for controller and
// memory card communication: the byte-at-a-time exchange protocol, digital
// pad button state, and a minimal memory card responder sufficient to
// satisfy a BIOS card-detect probe.
package sio0

// Device is implemented by whatever is plugged into a SIO0 port: a
// controller pad or a memory card. Exchange returns the response byte for
// the given byte sent, and whether /ACK should be pulsed afterward.
type Device interface {
	Exchange(b uint8) (resp uint8, ack bool)
	Select()
}

// Pad is a digital controller; ButtonMask bit layout follows the
// documented SCPH-1080 report (low byte then high byte, active-low).
type Pad struct {
	ButtonMask uint16 // 1 = pressed, inverted on the wire
	step       int
	live       bool
}

func NewPad() *Pad { return &Pad{ButtonMask: 0} }

func (p *Pad) Select() { p.step = 0; p.live = true }

// Exchange walks the fixed digital-pad handshake: address byte (0x01),
// then a command byte that must be 0x42 (read switches) or the pad
// aborts the transfer outright -- no further bytes of this frame get a
// real response until the next Select().
func (p *Pad) Exchange(b uint8) (uint8, bool) {
	defer func() { p.step++ }()
	if !p.live {
		return 0xFF, false
	}
	switch p.step {
	case 0: // address byte, expect 0x01 (access controller)
		return 0xFF, b == 0x01
	case 1: // command byte, expect 0x42 (read switches)
		if b != 0x42 {
			p.live = false
			return 0xFF, false
		}
		return 0x41, true // ID low byte
	case 2: // ID high byte
		return 0x5A, true
	case 3:
		return uint8(^p.ButtonMask), true
	case 4:
		return uint8(^p.ButtonMask >> 8), false
	}
	return 0xFF, false
}

// DualShock is a controller with two analog sticks and a config-mode
// handshake layered over the same digital-pad handshake Pad implements:
// command 0x43 toggles config mode, and while config mode is active,
// command 0x44 sets analog/digital mode from the following data byte.
// Analog mode widens the normal 0x42 poll response from 2 data bytes
// (buttons only) to 6 (buttons plus the four stick axes).
type DualShock struct {
	ButtonMask                    uint16
	RightX, RightY, LeftX, LeftY  uint8 // 0x80 = stick centered
	analogMode                    bool
	configMode                    bool
	cmd                           uint8
	step                          int
	live                          bool
}

func NewDualShock() *DualShock {
	return &DualShock{RightX: 0x80, RightY: 0x80, LeftX: 0x80, LeftY: 0x80}
}

func (d *DualShock) Select() { d.step = 0; d.live = true }

// idBytes reports the pad ID word for the current mode: 0x41 digital, 0x73
// analog, 0xF3 config -- the same three IDs a real DualShock reports.
func (d *DualShock) idBytes() (lo, hi uint8) {
	switch {
	case d.configMode:
		return 0xF3, 0x5A
	case d.analogMode:
		return 0x73, 0x5A
	default:
		return 0x41, 0x5A
	}
}

func (d *DualShock) Exchange(b uint8) (uint8, bool) {
	defer func() { d.step++ }()
	if !d.live {
		return 0xFF, false
	}
	switch d.step {
	case 0: // address byte, expect 0x01
		return 0xFF, b == 0x01
	case 1: // command byte: poll, config toggle, or set-analog-mode
		switch b {
		case 0x42, 0x43, 0x44, 0x41:
			d.cmd = b
		default:
			d.live = false
			return 0xFF, false
		}
		lo, _ := d.idBytes()
		return lo, true
	case 2:
		_, hi := d.idBytes()
		return hi, true
	case 3:
		switch d.cmd {
		case 0x43:
			d.configMode = b == 0x01
		case 0x44:
			d.analogMode = b == 0x01
		}
		if d.cmd == 0x42 {
			return uint8(^d.ButtonMask), true
		}
		return 0x00, true
	case 4:
		if d.cmd == 0x42 {
			return uint8(^d.ButtonMask >> 8), d.analogMode
		}
		return 0x00, true
	case 5:
		if d.cmd == 0x42 && d.analogMode {
			return d.RightX, true
		}
		return 0x00, false
	case 6:
		if d.cmd == 0x42 && d.analogMode {
			return d.RightY, true
		}
		return 0x00, false
	case 7:
		if d.cmd == 0x42 && d.analogMode {
			return d.LeftX, true
		}
		return 0x00, false
	case 8:
		if d.cmd == 0x42 && d.analogMode {
			return d.LeftY, false
		}
		return 0x00, false
	}
	return 0xFF, false
}

// MemoryCard is a minimal 128 KiB memory card responder. It answers the
// opening of the card handshake used by card-detect probes (acknowledging
// the 0x81 address byte, then replying 0x5A and 0x5D) and stops
// acknowledging after that; sector read/write command frames get no
// response over the serial port.
type MemoryCard struct {
	data [128 * 1024]byte
	step int
	present bool
}

func NewMemoryCard() *MemoryCard {
	return &MemoryCard{present: true}
}

func (m *MemoryCard) Select() { m.step = 0 }

func (m *MemoryCard) Exchange(b uint8) (uint8, bool) {
	defer func() { m.step++ }()
	if !m.present {
		return 0xFF, false
	}
	switch m.step {
	case 0:
		return 0xFF, b == 0x81
	case 1:
		return 0x5A, true
	case 2:
		return 0x5D, true
	default:
		return 0xFF, false
	}
}

// ReadSector/WriteSector give direct Go-level access to card contents,
// addressed by 128-byte sector; they are not reachable through the serial
// exchange, and save states do not include card contents.
func (m *MemoryCard) ReadSector(n int) []byte {
	return m.data[n*128 : n*128+128]
}

func (m *MemoryCard) WriteSector(n int, data []byte) {
	copy(m.data[n*128:n*128+128], data)
}

// Controller multiplexes two ports (pad+card per port) behind the single
// TX/RX/STAT register set at 0x1F801040.
type Controller struct {
	ports [2]struct {
		pad  Device
		card Device
	}
	selectedPort int
	rxLatch      uint8
	txInProgress bool
	ackLine      bool
}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) AttachPad(port int, d Device)  { c.ports[port].pad = d }
func (c *Controller) AttachCard(port int, d Device) { c.ports[port].card = d }

// WriteData sends one byte out TX and latches the combined device
// response into RX, matching the real bus's single-byte round trip.
func (c *Controller) WriteData(b uint8) {
	port := &c.ports[c.selectedPort]
	var resp uint8 = 0xFF
	var ack bool
	if !c.txInProgress {
		if port.pad != nil {
			port.pad.Select()
		}
		if port.card != nil {
			port.card.Select()
		}
		c.txInProgress = true
	}
	if port.pad != nil {
		r, a := port.pad.Exchange(b)
		resp, ack = r, a
	}
	if !ack && port.card != nil {
		r, a := port.card.Exchange(b)
		resp, ack = r, a
	}
	c.rxLatch = resp
	c.ackLine = ack
}

func (c *Controller) ReadData() uint8 { return c.rxLatch }

func (c *Controller) SetSelectedPort(port int) {
	c.selectedPort = port & 1
	c.txInProgress = false
}

func (c *Controller) Status() uint32 {
	var s uint32
	s |= 1 // TX ready
	s |= 1 << 1 // RX FIFO not empty, approximated as always true after a write
	if c.ackLine {
		s |= 1 << 7
	}
	return s
}
