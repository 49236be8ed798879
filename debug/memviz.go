package debug

import (
	"io"

	"github.com/bradleyjkemp/memviz"
	"github.com/retropix/psxcore/emulator"
)

// DumpMemoryGraph writes a Graphviz DOT rendering of the Console's
// in-memory object graph (bus, CPU registers, VRAM, sound RAM) to w, using
// memviz to walk the pointer graph the way a heap-debugging session would
// rather than hand-writing a struct-to-dot visitor for every new
// peripheral this core grows.
func DumpMemoryGraph(w io.Writer, c *emulator.Console) {
	memviz.Map(w, c)
}
