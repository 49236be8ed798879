package emulator

import "github.com/retropix/psxcore/internal/psxerr"

// exeHeader is the fixed 0x800-byte PS-EXE header layout: an 8-byte magic
// ("PS-X EXE"), the initial PC/GP, the RAM load address and size, and the
// initial stack pointer.
type exeHeader struct {
	InitialPC uint32
	InitialGP uint32
	RAMDest   uint32
	Text      []byte
	InitialSP uint32
}

const exeHeaderSize = 0x800
const exeMagic = "PS-X EXE"

func parseEXEHeader(raw []byte) (*exeHeader, error) {
	if len(raw) < exeHeaderSize {
		return nil, psxerr.InvalidExeHeader.Wrap("file too short for a PS-EXE header: %d bytes", len(raw))
	}
	if string(raw[0:8]) != exeMagic {
		return nil, psxerr.InvalidExeHeader.Wrap("missing %q magic", exeMagic)
	}
	h := &exeHeader{
		InitialPC: le32(raw, 0x10),
		InitialGP: le32(raw, 0x14),
		RAMDest:   le32(raw, 0x18),
		InitialSP: le32(raw, 0x30),
	}
	size := le32(raw, 0x1C)
	body := raw[exeHeaderSize:]
	if uint32(len(body)) < size {
		return nil, psxerr.InvalidExeHeader.Wrap("declared text size %d exceeds file contents %d", size, len(body))
	}
	h.Text = body[:size]
	if h.InitialSP == 0 {
		h.InitialSP = 0x801FFFF0
	}
	return h, nil
}

func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
