package spu

// WriteRegister covers writes to the 0x1F801C00-0x1F801E80 register block:
// per-voice volume/pitch/ADSR/address, and the shared control registers.
// Addr is relative to the block's base (0x1F801C00). There is no register
// read counterpart; the bus answers SPU reads itself, returning only the
// VoiceStatus bits.
func (s *SPU) WriteRegister(addr uint32, v uint16) {
	switch {
	case addr < 0x180: // per-voice registers, 16 bytes each
		voice := addr / 16
		reg := addr % 16
		s.writeVoiceReg(int(voice), reg, v)
	case addr == 0x1AA:
		s.control = v
		mode := int((v >> 4) & 3)
		if !bitSet(v, 9) {
			mode = 0
		}
		s.transferMode = mode
	case addr == 0x1A2:
		s.irqAddr = uint32(v) * 8
	case addr == 0x1A6:
		s.transferAddr = uint32(v) * 8
	case addr == 0x1A8:
		s.transferFIFO(v)
	case addr == 0x1AC:
		// sound RAM data transfer control, stored but not behaviorally
		// distinguished from the default burst mode by this core.
	case addr == 0x180:
		s.mainVolLeft = int16(v)
	case addr == 0x182:
		s.mainVolRight = int16(v)
	case addr == 0x184:
		s.reverbVolLeft = int16(v)
	case addr == 0x186:
		s.reverbVolRight = int16(v)
	case addr == 0x188: // voice key-on low
		s.keyOnLatch = (s.keyOnLatch &^ 0xFFFF) | uint32(v)
		s.applyKeyOn()
	case addr == 0x18A: // voice key-on high
		s.keyOnLatch = (s.keyOnLatch &^ 0xFFFF0000) | uint32(v)<<16
		s.applyKeyOn()
	case addr == 0x18C:
		s.keyOffLatch = (s.keyOffLatch &^ 0xFFFF) | uint32(v)
		s.applyKeyOff()
	case addr == 0x18E:
		s.keyOffLatch = (s.keyOffLatch &^ 0xFFFF0000) | uint32(v)<<16
		s.applyKeyOff()
	case addr == 0x1B0:
		s.pitchModOn = (s.pitchModOn &^ 0xFFFF) | uint32(v)
	case addr == 0x1B2:
		s.pitchModOn = (s.pitchModOn &^ 0xFFFF0000) | uint32(v)<<16
	case addr == 0x1B4:
		s.noiseOn = (s.noiseOn &^ 0xFFFF) | uint32(v)
	case addr == 0x1B6:
		s.noiseOn = (s.noiseOn &^ 0xFFFF0000) | uint32(v)<<16
	case addr == 0x1B8:
		s.reverbOn = (s.reverbOn &^ 0xFFFF) | uint32(v)
	case addr == 0x1BA:
		s.reverbOn = (s.reverbOn &^ 0xFFFF0000) | uint32(v)<<16
	default:
		// reverb filter coefficients and CD/external input volume: stored
		// in control-adjacent state this core does not model precisely.
	}
}

func bitSet(v uint16, n uint) bool { return v&(1<<n) != 0 }

func (s *SPU) writeVoiceReg(voice int, reg uint32, v uint16) {
	vc := &s.voices[voice]
	switch reg {
	case 0x0:
		vc.VolLeft = int16(v)
	case 0x2:
		vc.VolRight = int16(v)
	case 0x4:
		vc.SampleRateStep = v
	case 0x6:
		vc.StartAddress = uint32(v) * 8
	case 0x8:
		decodeADSRLo(vc, v)
	case 0xA:
		decodeADSRHi(vc, v)
	case 0xC:
		vc.envLevel = int32(int16(v))
	case 0xE:
		vc.RepeatAddress = uint32(v) * 8
	}
}

func decodeADSRLo(vc *Voice, v uint16) {
	vc.ADSR.SustainRate = int(v & 0x7F)
	vc.ADSR.DecayRate = int((v >> 4) & 0xF)
	vc.ADSR.AttackRate = int((v >> 8) & 0x7F)
}

func decodeADSRHi(vc *Voice, v uint16) {
	vc.ADSR.SustainLevel = int(v&0xF) + 1
	vc.ADSR.ReleaseRate = int((v >> 4) & 0x1F)
	vc.ADSR.ReleaseExponential = v&0x20 != 0
	vc.ADSR.SustainRate = vc.ADSR.SustainRate | int((v>>6)&0x7F)<<1
	vc.ADSR.SustainDecrease = v&0x2000 != 0
	vc.ADSR.SustainExponential = v&0x4000 != 0
}

func (s *SPU) applyKeyOn() {
	for i := 0; i < VoiceCount; i++ {
		if s.keyOnLatch&(1<<uint(i)) != 0 {
			s.keyVoiceOn(i)
		}
	}
	s.keyOnLatch = 0
}

func (s *SPU) applyKeyOff() {
	for i := 0; i < VoiceCount; i++ {
		if s.keyOffLatch&(1<<uint(i)) != 0 {
			s.voices[i].phase = PhaseRelease
		}
	}
	s.keyOffLatch = 0
}

func (s *SPU) keyVoiceOn(i int) {
	vc := &s.voices[i]
	vc.keyed = true
	vc.phase = PhaseAttack
	vc.envLevel = 0
	vc.curAddr = vc.StartAddress
	vc.pitchCounter = 0
	vc.adpcmHist1, vc.adpcmHist2 = 0, 0
	vc.interpHist = [4]int32{}
	vc.pushedUpTo = -1
	vc.bufPos = 28
	s.voiceStatus &^= 1 << uint(i)
}

// VoiceStatus returns the ENDX bitfield, which the bus serves at SPU
// offsets 0x1BC/0x1BE (0x1F801DBC/0x1F801DBE), one bit per
// voice that has played through a block tagged with the loop-end flag.
func (s *SPU) VoiceStatus() uint32 { return s.voiceStatus }

// transferFIFO accepts one 16-bit word via the manual-write sound RAM
// transfer port at 0x1F801DA8, advancing the transfer address afterward.
func (s *SPU) transferFIFO(v uint16) {
	s.RAMWrite16(s.transferAddr, v)
	s.transferAddr = (s.transferAddr + 2) % SoundRAMLen
}
