// Package cdrom implements the CD-ROM controller's command/response state
// machine, the sector-reader event loop, and XA-ADPCM sector decoding.
// Commands are queued one at a time; every response, the first ("INT3")
// as well as a second ("INT2"/"INT5" style) one, is delivered through the
// caller-supplied delay hook, mirroring the real drive's firmware latency.
package cdrom

import "github.com/retropix/psxcore/internal/psxerr"

// InterruptTag labels a reply the controller pushes onto its response
// FIFO; INT1 is a data-sector-ready tag, INT2 a second/complete
// response, INT3 first response (acknowledge), INT5 an error.
type InterruptTag int

const (
	INT1 InterruptTag = 1
	INT2 InterruptTag = 2
	INT3 InterruptTag = 3
	INT5 InterruptTag = 5
)

// Disc is the narrow interface onto a loaded image; a nil Disc models a
// closed/empty tray.
type Disc interface {
	ReadSector(lba int) ([]byte, error)
	TrackCount() int
	Region() string // "SCEA", "SCEE", "SCEI" -- drives the GetID region reply
}

// Controller owns the command FIFO, parameter FIFO, response FIFO, and
// data FIFO (the four byte queues software drives through index/status
// register 0x1F801800) plus the drive motor/seek state machine.
type Controller struct {
	disc Disc

	paramFIFO    []byte
	responseFIFO []byte
	dataFIFO     []byte
	dataPos      int

	statusMotorOn bool
	statusSeeking bool
	statusReading bool
	statusPlaying bool
	statusShellOpen bool

	currentLBA int
	seekTarget int

	mode byte

	scheduleDelay func(cycles int, fn func())
	raiseIRQ      func(tag InterruptTag)
	pendingTag    InterruptTag

	// AudioSink receives each 128-byte XA-ADPCM sound group as it streams
	// off the disc, for the host to forward into the SPU/audio backend.
	AudioSink func(group []byte)
}

func New(disc Disc, scheduleDelay func(int, func()), raiseIRQ func(InterruptTag)) *Controller {
	return &Controller{disc: disc, scheduleDelay: scheduleDelay, raiseIRQ: raiseIRQ, statusShellOpen: disc == nil}
}

// pushResponse appends bytes to the response FIFO and schedules the
// interrupt that announces they're ready, after the given drive-latency
// cycles.
func (c *Controller) pushResponse(tag InterruptTag, delayCycles int, bytes ...byte) {
	c.scheduleDelay(delayCycles, func() {
		c.responseFIFO = append(c.responseFIFO, bytes...)
		c.pendingTag = tag
		if c.raiseIRQ != nil {
			c.raiseIRQ(tag)
		}
	})
}

func (c *Controller) statusByte() byte {
	var s byte
	if c.statusShellOpen {
		s |= 0x10
	}
	if c.statusMotorOn {
		s |= 0x02
	}
	if c.statusSeeking {
		s |= 0x40
	}
	if c.statusReading {
		s |= 0x20
	}
	if c.statusPlaying {
		s |= 0x80
	}
	return s
}

func (c *Controller) requireDisc() error {
	if c.disc == nil {
		return psxerr.CdRomIo.Wrap("no disc loaded")
	}
	return nil
}
