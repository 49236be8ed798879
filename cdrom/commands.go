package cdrom

// ExecCommand dispatches one of the documented opcode-numbered CD-ROM
// commands. Parameters must already be queued via PushParam; the command
// byte triggers execution the way writing register 1 with index=0 does on
// real hardware.
func (c *Controller) ExecCommand(cmd byte) {
	params := c.paramFIFO
	c.paramFIFO = nil
	switch cmd {
	case 0x01: // Getstat
		c.pushResponse(INT3, 5000, c.statusByte())
	case 0x02: // Setloc
		if len(params) >= 3 {
			c.seekTarget = bcdToLBA(params[0], params[1], params[2])
		}
		c.pushResponse(INT3, 5000, c.statusByte())
	case 0x06: // ReadN -- begin reading data sectors starting at Setloc
		c.statusMotorOn = true
		c.statusReading = true
		c.currentLBA = c.seekTarget
		c.pushResponse(INT3, 5000, c.statusByte())
		c.scheduleSectorRead()
	case 0x09: // Pause
		c.statusReading = false
		c.statusPlaying = false
		c.pushResponse(INT3, 5000, c.statusByte())
		c.pushResponse(INT2, 20000, c.statusByte())
	case 0x0A: // Init
		c.statusMotorOn = true
		c.pushResponse(INT3, 5000, c.statusByte())
		c.pushResponse(INT2, 30000, c.statusByte())
	case 0x0E: // Setmode
		if len(params) >= 1 {
			c.mode = params[0]
		}
		c.pushResponse(INT3, 5000, c.statusByte())
	case 0x15: // SeekL
		c.statusSeeking = true
		c.currentLBA = c.seekTarget
		c.pushResponse(INT3, 5000, c.statusByte())
		c.scheduleDelay(20000, func() {
			c.statusSeeking = false
			c.responseFIFO = append(c.responseFIFO, c.statusByte())
			c.pendingTag = INT2
			if c.raiseIRQ != nil {
				c.raiseIRQ(INT2)
			}
		})
	case 0x19: // Test -- subfunction in params[0]
		c.execTest(params)
	case 0x1A: // GetID
		c.execGetID()
	default:
		c.pushResponse(INT5, 5000, c.statusByte(), 0x40)
	}
}

func (c *Controller) execTest(params []byte) {
	if len(params) == 0 {
		c.pushResponse(INT5, 5000, 0x13)
		return
	}
	switch params[0] {
	case 0x20: // return firmware date/version, arbitrary but stable
		c.pushResponse(INT3, 5000, 0x94, 0x09, 0x19, 0xC0)
	default:
		c.pushResponse(INT3, 5000, c.statusByte())
	}
}

// execGetID implements the licensing handshake: a disc with a recognized
// region string answers "licensed, mode2"; an absent disc answers with the
// documented no-disc error byte sequence.
func (c *Controller) execGetID() {
	if err := c.requireDisc(); err != nil {
		c.pushResponse(INT5, 15000, 0x08, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
		return
	}
	region := c.disc.Region()
	var regionBytes [4]byte
	copy(regionBytes[:], region)
	c.pushResponse(INT2, 20000, 0x02, 0x00, 0x20, 0x00, regionBytes[0], regionBytes[1], regionBytes[2], regionBytes[3])
}

// bcdToLBA converts a Setloc minute:second:sector BCD triple into a linear
// block address, subtracting the standard 2-second lead-in/pregap offset.
func bcdToLBA(m, s, f byte) int {
	min := int(bcdDigit(m))
	sec := int(bcdDigit(s))
	frame := int(bcdDigit(f))
	return (min*60+sec)*75 + frame - 150
}

func bcdDigit(b byte) byte {
	return (b>>4)*10 + b&0xF
}

// PushParam queues one parameter byte ahead of a command write, matching
// the parameter FIFO software fills before triggering the command.
func (c *Controller) PushParam(b byte) {
	c.paramFIFO = append(c.paramFIFO, b)
}

// PopResponse drains one byte from the response FIFO.
func (c *Controller) PopResponse() byte {
	if len(c.responseFIFO) == 0 {
		return 0
	}
	b := c.responseFIFO[0]
	c.responseFIFO = c.responseFIFO[1:]
	return b
}

func (c *Controller) ResponseFIFOEmpty() bool { return len(c.responseFIFO) == 0 }
