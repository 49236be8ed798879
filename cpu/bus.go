package cpu

// Bus is the subset of the top-level bus context (see the emulator and bus
// packages, and the "cross-peripheral references" design note) that the
// CPU needs during instruction execution: address-
// routed loads and stores, plus a way to ask the interrupt controller
// whether an external interrupt is pending this instruction.
//
// A Bus value is assembled fresh by the emulator for each call into
// Execute and is never retained by the CPU past that call, matching the
// "temporary bus context" ownership model.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v uint8)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)

	// InterruptPending mirrors irq.Registers.Pending(); the CPU ORs it into
	// COP0 Cause bit 10 before checking for a pending exception.
	InterruptPending() bool
}
