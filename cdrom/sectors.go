package cdrom

import "github.com/retropix/psxcore/internal/psxerr"

// scheduleSectorRead posts the drive's per-sector read event. Each fired
// event decodes one 2048-byte data sector (or 2340-byte raw/XA sector
// depending on mode) into the data FIFO and tags it INT1, then re-arms
// itself while ReadN/ReadS remains active -- the continuous streaming
// model a real drive's continuous streaming.
func (c *Controller) scheduleSectorRead() {
	const cyclesPerSector = 768 * 44100 / 75 // ~1x speed sector cadence
	c.scheduleDelay(cyclesPerSector, func() {
		if !c.statusReading {
			return
		}
		c.deliverSector()
		c.scheduleSectorRead()
	})
}

func (c *Controller) deliverSector() {
	raw, err := c.disc.ReadSector(c.currentLBA)
	if err == nil && len(raw) < 2352 {
		err = psxerr.CdRomIo.Wrap("sector %d is %d bytes, want 2352", c.currentLBA, len(raw))
	}
	if err != nil {
		c.statusReading = false
		c.responseFIFO = append(c.responseFIFO, c.statusByte(), 0x04)
		c.pendingTag = INT5
		if c.raiseIRQ != nil {
			c.raiseIRQ(INT5)
		}
		return
	}
	c.currentLBA++

	if c.mode&0x40 != 0 && isXASector(raw) {
		c.decodeXAAudio(raw)
		return
	}

	if c.mode&0x20 != 0 {
		c.dataFIFO = append([]byte(nil), raw[12:12+2340]...)
	} else {
		c.dataFIFO = append([]byte(nil), raw[24:24+2048]...)
	}
	c.dataPos = 0
	c.responseFIFO = append(c.responseFIFO, c.statusByte())
	c.pendingTag = INT1
	if c.raiseIRQ != nil {
		c.raiseIRQ(INT1)
	}
}

// isXASector inspects the subheader's submode byte (raw[18]) for the audio
// bit; the coding-info byte and the other submode bits are not checked.
func isXASector(raw []byte) bool {
	if len(raw) < 20 {
		return false
	}
	submode := raw[18]
	return submode&0x04 != 0 // "audio" bit
}

// decodeXAAudio hands an XA sector's 2304-byte payload to the SPU-facing
// ADPCM path via the AudioSink hook, bypassing the data FIFO entirely --
// XA sectors are consumed directly into the audio mixer rather than read
// by the CPU -- XA streaming decouples from the data FIFO.
func (c *Controller) decodeXAAudio(raw []byte) {
	if c.AudioSink == nil {
		return
	}
	payload := raw[24 : 24+2304]
	for block := 0; block < 18; block++ {
		chunk := payload[block*128 : block*128+128]
		c.AudioSink(chunk)
	}
}

// ReadDataByte pulls one byte from the current data sector, advancing the
// cursor; reading past the end returns 0, matching open-bus behavior
// rather than panicking.
func (c *Controller) ReadDataByte() byte {
	if c.dataPos >= len(c.dataFIFO) {
		return 0
	}
	b := c.dataFIFO[c.dataPos]
	c.dataPos++
	return b
}

func (c *Controller) DataFIFOEmpty() bool { return c.dataPos >= len(c.dataFIFO) }
