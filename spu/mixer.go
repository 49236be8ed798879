package spu

// adpcmFilterCoeffs are the 5 fixed Sony ADPCM predictor pairs (K0, K1) in
// 6.0 fixed point, indexed by the filter nibble in each block's header.
var adpcmFilterCoeffs = [5][2]int32{
	{0, 0},
	{60, 0},
	{115, -52},
	{98, -55},
	{122, -60},
}

// decodeBlock unpacks the 16-byte compressed block starting at addr into
// 28 16-bit PCM samples, per the standard 4-bit Sony ADPCM scheme shared
// with XA audio.
func (s *SPU) decodeBlock(vc *Voice, addr uint32) {
	header := s.ram[addr%SoundRAMLen]
	flags := s.ram[(addr+1)%SoundRAMLen]
	vc.blockFlags = flags
	shift := header & 0xF
	filter := (header >> 4) & 0x7
	if filter > 4 {
		filter = 4
	}
	k0, k1 := adpcmFilterCoeffs[filter][0], adpcmFilterCoeffs[filter][1]

	h1, h2 := vc.adpcmHist1, vc.adpcmHist2
	for i := 0; i < 28; i++ {
		byteOff := (addr + 2 + uint32(i/2)) % SoundRAMLen
		b := s.ram[byteOff]
		var nibble int32
		if i%2 == 0 {
			nibble = int32(int8(b<<4) >> 4)
		} else {
			nibble = int32(int8(b) >> 4)
		}
		sample := (nibble << 12) >> shift
		predicted := (h1*k0 + h2*k1) >> 6
		sample += predicted
		sample = clamp16(sample)
		vc.decodeBuf[i] = sample
		h2 = h1
		h1 = sample
	}
	vc.adpcmHist1, vc.adpcmHist2 = h1, h2
}

// interpolate4 resamples across a 4-sample history window using cubic
// Hermite (Catmull-Rom) interpolation, standing in for the fixed Gaussian
// lookup table real SPU hardware indexes with the same fractional pitch
// bits; t12 is the pitch counter's low 12 fractional bits (0..4095)
// marking the position between hist[1] and hist[2].
func interpolate4(hist [4]int32, t12 uint32) int32 {
	t := float64(t12) / 4096.0
	p0, p1, p2, p3 := float64(hist[0]), float64(hist[1]), float64(hist[2]), float64(hist[3])
	a := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	b := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c := -0.5*p0 + 0.5*p2
	d := p1
	v := ((a*t+b)*t+c)*t + d
	return clamp16(int32(v))
}

func clamp16(v int32) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

// stepEnvelope advances one voice's ADSR state machine by one mixer tick,
// following the four-phase model: attack, then decay toward the sustain
// level, a configurable sustain rate/direction, then release. Every phase
// steps by the fixed amount rateStep returns for its rate.
func stepEnvelope(vc *Voice) {
	switch vc.phase {
	case PhaseOff:
		return
	case PhaseAttack:
		step := rateStep(vc.ADSR.AttackRate, false, false)
		vc.envLevel += step
		if vc.envLevel >= 0x7FFF {
			vc.envLevel = 0x7FFF
			vc.phase = PhaseDecay
		}
	case PhaseDecay:
		target := int32(vc.ADSR.SustainLevel) << 11
		step := rateStep(vc.ADSR.DecayRate, true, true)
		vc.envLevel += step
		if vc.envLevel <= target {
			vc.envLevel = target
			vc.phase = PhaseSustain
		}
	case PhaseSustain:
		step := rateStep(vc.ADSR.SustainRate, vc.ADSR.SustainExponential, vc.ADSR.SustainDecrease)
		vc.envLevel += step
		vc.envLevel = clampEnv(vc.envLevel)
	case PhaseRelease:
		step := rateStep(vc.ADSR.ReleaseRate, vc.ADSR.ReleaseExponential, true)
		vc.envLevel += step
		if vc.envLevel <= 0 {
			vc.envLevel = 0
			vc.phase = PhaseOff
			vc.keyed = false
		}
	}
}

func clampEnv(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 0x7FFF {
		return 0x7FFF
	}
	return v
}

// rateStep approximates the hardware's piecewise exponential/linear rate
// table with a single monotone curve: higher "rate" values step faster.
// The step is linear: the exponential flag is ignored and the step does not
// depend on the current level. This is a simplification noted in the
// design ledger rather than a cycle-exact reproduction of the documented
// rate table.
func rateStep(rate int, exponential, decreasing bool) int32 {
	if rate <= 0 {
		if decreasing {
			return -1
		}
		return 1
	}
	base := int32(1 << uint(max0(11-rate/4)))
	if decreasing {
		base = -base
	}
	return base
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// MixSample advances every active voice by one sample tick and returns the
// summed stereo output, scaled by the main volume registers. RunFrame does
// not call it; hostharness's audio loop calls it once per tick of a
// wall-clock 44.1 kHz ticker.
func (s *SPU) MixSample() (left, right int16) {
	var accL, accR int32
	for i := range s.voices {
		vc := &s.voices[i]
		if !vc.keyed {
			continue
		}
		stepEnvelope(vc)
		if vc.bufPos >= 28 {
			s.decodeBlock(vc, vc.curAddr)
			vc.bufPos = 0
			vc.pushedUpTo = -1
			if vc.blockFlags&1 != 0 {
				s.voiceStatus |= 1 << uint(i)
			}
			if vc.blockFlags&2 != 0 {
				// loop-start flag: not acted on; the repeat point comes
				// only from the RepeatAddress register.
			}
			nextAddr := vc.curAddr + 16
			if vc.blockFlags&1 != 0 { // loop-end
				if vc.blockFlags&4 == 0 {
					vc.keyed = false
				}
				nextAddr = vc.RepeatAddress
			}
			vc.curAddr = nextAddr
		}
		if vc.pushedUpTo < vc.bufPos {
			vc.interpHist[0], vc.interpHist[1], vc.interpHist[2] = vc.interpHist[1], vc.interpHist[2], vc.interpHist[3]
			vc.interpHist[3] = vc.decodeBuf[vc.bufPos]
			vc.pushedUpTo = vc.bufPos
		}
		raw := interpolate4(vc.interpHist, vc.pitchCounter&0xFFF)
		vc.pitchCounter += uint32(vc.SampleRateStep)
		if vc.pitchCounter >= 0x1000 {
			vc.pitchCounter -= 0x1000
			vc.bufPos++
		}

		scaled := (raw * vc.envLevel) >> 15
		accL += (scaled * int32(vc.VolLeft)) >> 14
		accR += (scaled * int32(vc.VolRight)) >> 14
	}

	accL = (accL * int32(s.mainVolLeft)) >> 14
	accR = (accR * int32(s.mainVolRight)) >> 14

	left = int16(clamp16(accL))
	right = int16(clamp16(accR))
	s.applyReverb(&left, &right)
	return left, right
}

// applyReverb mixes in a single feedback delay line as a stand-in for the
// full multi-tap reverb network; see the design ledger for why the full
// network was out of scope.
func (s *SPU) applyReverb(left, right *int16) {
	if s.reverbVolLeft == 0 && s.reverbVolRight == 0 {
		return
	}
	delayed := s.reverbBuf[s.reverbPos]
	s.reverbBuf[s.reverbPos] = int16(clamp16(int32(*left)/2 + int32(delayed)/2))
	s.reverbPos = (s.reverbPos + 1) % len(s.reverbBuf)
	*left = int16(clamp16(int32(*left) + (int32(delayed)*int32(s.reverbVolLeft))>>15))
	*right = int16(clamp16(int32(*right) + (int32(delayed)*int32(s.reverbVolRight))>>15))
}
