package config

import "github.com/retropix/psxcore/internal/psxerr"

func validate(c Config) error {
	if c.BIOSPath == "" {
		return psxerr.InvalidBios.Wrap("no BIOS path configured")
	}
	if c.DiscPath == "" && c.EXEPath == "" {
		return psxerr.InvalidExe.Wrap("neither a disc image nor a sideload EXE was configured")
	}
	switch c.Region {
	case RegionNTSCU, RegionNTSCJ, RegionPAL, "":
	default:
		return psxerr.InvalidExe.Wrap("unknown region %q", c.Region)
	}
	return nil
}
