package main

import (
	"fmt"
	"os"

	"github.com/retropix/psxcore/config"
)

const sectorSize = 2352
const sectorSizeHeaderOffset = 0x10 // raw 2352-byte sectors: 12-byte sync + header, data begins here

// discLoader is a raw BIN image opened read-only: most dumped PS1 discs
// ship as a single-track .bin paired with a .cue, and all this core needs
// out of the pair is linear 2352-byte sector access.
type discLoader struct {
	f      *os.File
	region string
}

// loadDisc opens path as a raw single-track BIN image. No CUE sheet is
// parsed; ReadSector always indexes into this one file.
func loadDisc(path string, region config.Region) (discLoader, error) {
	f, err := os.Open(path)
	if err != nil {
		return discLoader{}, fmt.Errorf("opening disc image: %w", err)
	}
	return discLoader{f: f, region: string(region)}, nil
}

func (d discLoader) ReadSector(lba int) ([]byte, error) {
	buf := make([]byte, sectorSize)
	off := int64(lba) * sectorSize
	if _, err := d.f.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("reading sector %d: %w", lba, err)
	}
	return buf, nil
}

func (d discLoader) TrackCount() int { return 1 }

func (d discLoader) Region() string {
	if d.region == "" {
		return "SCEA"
	}
	return d.region
}
