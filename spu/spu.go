// Package spu implements the 24-voice ADPCM sound processor: per-voice
// pitch/ADSR envelopes, the shared sound RAM used for compressed sample
// playback, the key-on/key-off latches, and a simplified stereo mixer with
// reverb.
package spu

const (
	VoiceCount  = 24
	SoundRAMLen = 512 * 1024
	SampleRate  = 44100
)

// ADSRPhase enumerates the envelope's state machine.
type ADSRPhase int

const (
	PhaseOff ADSRPhase = iota
	PhaseAttack
	PhaseDecay
	PhaseSustain
	PhaseRelease
)

// Voice is one of the 24 identical ADPCM playback channels.
type Voice struct {
	VolLeft, VolRight int16
	SampleRateStep    uint16 // 4.12 fixed-point pitch counter step
	StartAddress      uint32
	RepeatAddress     uint32

	ADSR struct {
		SustainLevel int
		AttackRate   int
		DecayRate    int
		SustainRate  int
		ReleaseRate  int
		SustainExponential bool
		SustainDecrease    bool
		ReleaseExponential bool
	}

	phase       ADSRPhase
	envLevel    int32 // 0..0x7FFF
	keyed       bool
	curAddr     uint32
	pitchCounter uint32
	adpcmHist1, adpcmHist2 int32
	decodeBuf   [28]int32
	bufPos      int
	blockFlags  uint8

	// interpHist is the rolling 4-sample window the pitch-counter resampler
	// interpolates across, carried over the 28-sample decodeBuf boundary
	// rather than reset with it -- interpHist[3] is the newest sample.
	// pushedUpTo is the bufPos index last folded into interpHist, so each
	// raw decoded sample is pushed exactly once regardless of how many
	// MixSample ticks it takes pitchCounter to reach the next one.
	interpHist [4]int32
	pushedUpTo int
}

// SPU owns sound RAM and the voice array. Reverb is approximated with a
// single feedback delay line rather than the full 32-tap hardware
// network, a scope decision recorded in the design ledger.
type SPU struct {
	ram    [SoundRAMLen]byte
	voices [VoiceCount]Voice

	mainVolLeft, mainVolRight   int16
	reverbVolLeft, reverbVolRight int16
	cdVolLeft, cdVolRight       int16

	keyOnLatch, keyOffLatch uint32
	voiceStatus             uint32 // ENDX bits
	noiseOn, reverbOn, pitchModOn uint32

	transferAddr uint32
	transferMode int // 0=stop 1=manual 2=DMAwrite 3=DMAread
	irqAddr      uint32
	irqEnabled   bool
	irqLatched   bool

	control uint16
	reverbBuf [0x10000]int16
	reverbPos int
}

func New() *SPU {
	return &SPU{}
}

// SaveState/LoadState give the savestate package a flat snapshot.
type Snapshot struct {
	RAM    [SoundRAMLen]byte
	Voices [VoiceCount]Voice
	MainVolLeft, MainVolRight int16
	Control                  uint16
}

func (s *SPU) SaveState() Snapshot {
	return Snapshot{RAM: s.ram, Voices: s.voices, MainVolLeft: s.mainVolLeft, MainVolRight: s.mainVolRight, Control: s.control}
}

func (s *SPU) LoadState(snap Snapshot) {
	s.ram = snap.RAM
	s.voices = snap.Voices
	s.mainVolLeft = snap.MainVolLeft
	s.mainVolRight = snap.MainVolRight
	s.control = snap.Control
}

// RAMRead/RAMWrite expose sound RAM to the DMA package for SPU-direction
// transfers (DMA channel 4).
func (s *SPU) RAMRead16(addr uint32) uint16 {
	a := addr % SoundRAMLen
	return uint16(s.ram[a]) | uint16(s.ram[(a+1)%SoundRAMLen])<<8
}

func (s *SPU) RAMWrite16(addr uint32, v uint16) {
	a := addr % SoundRAMLen
	s.ram[a] = byte(v)
	s.ram[(a+1)%SoundRAMLen] = byte(v >> 8)
}
