// Package debug provides the interactive tooling layered on top of a
// running emulator.Console: a raw-mode terminal command console (grounded
// on a raw-mode terminal wrapper), a live web stats view, a memory
// object-graph dumper, and a Lua scripting front-end for scripted input
// sequences and assertions.
package debug

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/term/termios"
	"github.com/retropix/psxcore/emulator"
)

// Console is a minimal line-oriented debugger: step/run/regs/peek/poke,
// read one line at a time from stdin, with the terminal switched to cbreak
// mode while the command loop runs.
type Console struct {
	console *emulator.Console

	input  *os.File
	output *os.File

	canAttr    syscall.Termios
	cbreakAttr syscall.Termios

	mu sync.Mutex

	running bool
}

func NewConsole(c *emulator.Console) (*Console, error) {
	dc := &Console{console: c, input: os.Stdin, output: os.Stdout}
	if err := termios.Tcgetattr(dc.input.Fd(), &dc.canAttr); err != nil {
		return nil, fmt.Errorf("debug console requires a real terminal: %w", err)
	}
	dc.cbreakAttr = dc.canAttr
	termios.Cfmakecbreak(&dc.cbreakAttr)
	return dc, nil
}

func (dc *Console) cbreakMode() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	termios.Tcsetattr(dc.input.Fd(), termios.TCIFLUSH, &dc.cbreakAttr)
}

func (dc *Console) canonicalMode() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	termios.Tcsetattr(dc.input.Fd(), termios.TCIFLUSH, &dc.canAttr)
}

// Run reads one command per line from stdin until "quit" or EOF. Commands:
// step, run, regs, poke <addr> <value>, peek <addr>.
func (dc *Console) Run() error {
	dc.cbreakMode()
	defer dc.canonicalMode()

	dc.running = true
	scanner := bufio.NewScanner(dc.input)
	fmt.Fprint(dc.output, "psxcore debug console, type \"help\" for commands\n> ")
	for dc.running && scanner.Scan() {
		dc.dispatch(strings.TrimSpace(scanner.Text()))
		if dc.running {
			fmt.Fprint(dc.output, "> ")
		}
	}
	return scanner.Err()
}

func (dc *Console) dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "help":
		fmt.Fprintln(dc.output, "step | run | regs | peek <addr> | poke <addr> <value> | quit")
	case "step":
		dc.console.CPU.Step(dc.console.Bus)
	case "run":
		dc.console.RunFrame()
	case "regs":
		fmt.Fprintf(dc.output, "pc=%08x\n", dc.console.CPU.PC())
	case "peek":
		if len(fields) < 2 {
			return
		}
		addr := parseHex(fields[1])
		fmt.Fprintf(dc.output, "%08x: %08x\n", addr, dc.console.Bus.Read32(addr))
	case "poke":
		if len(fields) < 3 {
			return
		}
		addr, val := parseHex(fields[1]), parseHex(fields[2])
		dc.console.Bus.Write32(addr, val)
	case "quit", "exit":
		dc.running = false
	default:
		fmt.Fprintf(dc.output, "unknown command %q\n", fields[0])
	}
}

func parseHex(s string) uint32 {
	s = strings.TrimPrefix(s, "0x")
	var v uint32
	fmt.Sscanf(s, "%x", &v)
	return v
}
