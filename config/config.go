// Package config defines the typed configuration surface for a console
// instance: BIOS/disc paths, region, and the debug/instrumentation toggles
// threaded through to the debug and hostharness packages.
package config

import "time"

// Region selects the BIOS/video-timing variant, mirroring the three retail
// regions the GetID handshake in cdrom distinguishes.
type Region string

const (
	RegionNTSCU Region = "SCEA"
	RegionNTSCJ Region = "SCEI"
	RegionPAL   Region = "SCEE"
)

// Config is the top-level knob set the cmd/psxcore front-end builds from
// CLI flags and hands to emulator.New.
type Config struct {
	BIOSPath string
	DiscPath string
	EXEPath  string
	Region   Region

	FastBoot bool // set from the --fastboot flag; nothing in the core reads it, so boot is the same either way

	EnableDebugConsole bool
	EnableStatsView    bool
	StatsViewAddr      string
	ScriptPath         string

	AudioBufferSize int
	FrameLimiter    bool

	SaveStateDir string

	heartbeat time.Duration
}

// Default returns a Config with the same conservative defaults the BIOS
// cold-boot path assumes: NTSC-U region, frame limiting on, no debug tools
// attached.
func Default() Config {
	return Config{
		Region:          RegionNTSCU,
		AudioBufferSize: 2048,
		FrameLimiter:    true,
		StatsViewAddr:   "localhost:18080",
		heartbeat:       time.Second,
	}
}

// Validate checks the combination of fields makes sense: exactly one of
// DiscPath/EXEPath should usually be set, and BIOSPath is mandatory since
// this core does not ship a HLE BIOS substitute.
func (c Config) Validate() error {
	return validate(c)
}
