// Package psxerr defines the curated error numbers the core can originate.
//
// Call sites construct an error with Errno.Wrap(format, args...) rather than
// reaching for fmt.Errorf directly, so that callers higher up the stack can
// match on the Errno with errors.Is.
package psxerr

import "fmt"

// Errno identifies a class of error the core can produce.
type Errno int

const (
	// InvalidBios: the supplied BIOS image is not exactly 512 KiB.
	InvalidBios Errno = iota
	// InvalidExe: the supplied PS-X EXE lacks the magic header or is too short.
	InvalidExe
	// InvalidExeHeader: the EXE magic is present but a header field is out of range.
	InvalidExeHeader
	// CdRomIo: the disc image collaborator failed to deliver a sector.
	CdRomIo
	// RenderFail: the renderer collaborator returned an error.
	RenderFail
	// AudioFail: the audio-output collaborator returned an error.
	AudioFail
	// SaveFail: the save-writer collaborator returned an error.
	SaveFail
	// InvalidSaveState: a save-state blob failed to decode (bad magic, truncated, or over the 1 GB safety limit).
	InvalidSaveState
	// UnhandledAddress: the bus was asked to route a load/store to an address with no mapped peripheral.
	UnhandledAddress
)

var names = map[Errno]string{
	InvalidBios:       "invalid BIOS image",
	InvalidExe:        "invalid PS-X EXE",
	InvalidExeHeader:  "invalid PS-X EXE header field",
	CdRomIo:           "CD-ROM disc image I/O failure",
	RenderFail:        "renderer failure",
	AudioFail:         "audio output failure",
	SaveFail:          "save-state writer failure",
	InvalidSaveState:  "invalid save state",
	UnhandledAddress:  "unhandled bus address",
}

func (e Errno) String() string {
	if s, ok := names[e]; ok {
		return s
	}
	return "unknown error"
}

// Error satisfies the error interface so an Errno alone can be returned.
func (e Errno) Error() string {
	return e.String()
}

// curated wraps an Errno with a formatted detail message.
type curated struct {
	errno Errno
	msg   string
}

func (c curated) Error() string {
	if c.msg == "" {
		return c.errno.String()
	}
	return fmt.Sprintf("%s: %s", c.errno, c.msg)
}

func (c curated) Unwrap() error {
	return c.errno
}

// Wrap builds an error carrying this Errno plus a formatted detail string.
func (e Errno) Wrap(format string, args ...interface{}) error {
	return curated{errno: e, msg: fmt.Sprintf(format, args...)}
}
