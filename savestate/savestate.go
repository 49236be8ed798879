// Package savestate implements the container for console snapshots: a
// versioned envelope of named components, each gob-encoded, with the whole
// envelope gob-encoded and gzip-compressed. Encoding uses encoding/gob
// rather than a hand-rolled byte layout, giving a single Put/Get call
// each component can opt into. Which components are stored is up to the
// caller; emulator.Console stores the CPU, GPU, SPU and main RAM.
package savestate

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"io"

	"github.com/retropix/psxcore/internal/psxerr"
)

// FormatVersion is bumped whenever a component's snapshot shape changes in
// a way that would corrupt decoding of an older save.
const FormatVersion = 1

// maxDecodedSize bounds how much decompressed envelope data NewReader will
// read before giving up, so a truncated or adversarial save file can't make
// gzip decompression run away with memory.
const maxDecodedSize = 1 << 30

// Envelope is the on-disk/in-memory container. Component maps each name to
// that component's own gob encoding (decoded by Get into a value the caller
// supplies) rather than a fixed struct, so each hardware package keeps
// owning its own Snapshot type instead of this package reaching into their
// internals.
type Envelope struct {
	Version   int
	Component map[string][]byte
}

// Writer accumulates one named component at a time before a single Encode
// call, mirroring how emulator.Console gathers its subsystems' snapshots.
type Writer struct {
	env Envelope
}

func NewWriter() *Writer {
	return &Writer{env: Envelope{Version: FormatVersion, Component: map[string][]byte{}}}
}

// Put gob-encodes one named component's snapshot value into the envelope.
func (w *Writer) Put(name string, v interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return psxerr.SaveFail.Wrap("encoding %s: %v", name, err)
	}
	w.env.Component[name] = buf.Bytes()
	return nil
}

// Encode writes the gzip-compressed envelope to w.
func (w *Writer) Encode(dst io.Writer) error {
	gz := gzip.NewWriter(dst)
	if err := gob.NewEncoder(gz).Encode(w.env); err != nil {
		return psxerr.SaveFail.Wrap("encoding envelope: %v", err)
	}
	return gz.Close()
}

// Reader is the decode-side counterpart; Get fills a caller-provided
// pointer from the named component, returning InvalidSaveState if the
// component is absent (a save from a core built without that subsystem).
type Reader struct {
	env Envelope
}

func NewReader(src io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(src)
	if err != nil {
		return nil, psxerr.InvalidSaveState.Wrap("not a gzip stream: %v", err)
	}
	defer gz.Close()

	limited := &io.LimitedReader{R: gz, N: maxDecodedSize + 1}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, limited); err != nil {
		return nil, psxerr.InvalidSaveState.Wrap("reading envelope: %v", err)
	}
	if limited.N == 0 {
		return nil, psxerr.InvalidSaveState.Wrap("save state exceeds %d byte safety limit", maxDecodedSize)
	}

	var env Envelope
	if err := gob.NewDecoder(&buf).Decode(&env); err != nil {
		return nil, psxerr.InvalidSaveState.Wrap("decoding envelope: %v", err)
	}
	if env.Version != FormatVersion {
		return nil, psxerr.InvalidSaveState.Wrap("unsupported save format version %d, want %d", env.Version, FormatVersion)
	}
	return &Reader{env: env}, nil
}

func (r *Reader) Get(name string, v interface{}) error {
	raw, ok := r.env.Component[name]
	if !ok {
		return psxerr.InvalidSaveState.Wrap("save state has no %s component", name)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return psxerr.InvalidSaveState.Wrap("decoding %s: %v", name, err)
	}
	return nil
}
