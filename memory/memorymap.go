package memory

// Physical (post-translation) address ranges for the regions the bus
// package routes between. These are the documented PS1 MMIO base
// addresses.
const (
	RAMBase        = 0x00000000
	RAMMirrorTop   = 0x00800000 // RAM is mirrored four times up to this address
	ScratchpadBase = 0x1F800000
	ScratchpadTop  = 0x1F800400
	IOBase         = 0x1F801000
	IOTop          = 0x1F802000
	BIOSBase       = 0x1FC00000
	BIOSTop        = 0x1FC80000

	// MMIO sub-regions within 0x1F801000..0x1F802000.
	MemControlBase = 0x1F801000
	PeripheralBase = 0x1F801040 // SIO0/SIO1 JOY_DATA etc., routed via sio0
	MemControl2    = 0x1F801060
	IRQBase        = 0x1F801070
	DMABase        = 0x1F801080
	TimerBase      = 0x1F801100
	CDROMBase      = 0x1F801800
	GPUBase        = 0x1F801810
	MDECBase       = 0x1F801820
	SPUBase        = 0x1F801C00
)
